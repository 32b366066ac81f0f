package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer"
	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/models"
)

var (
	schemaOutput string
	includeText  bool
)

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema [input.xlsx]",
		Short: "Infer the schema of every sheet without extracting rows",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchema,
	}
	addPipelineFlags(cmd)
	cmd.Flags().StringVarP(&schemaOutput, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

type schemaReport struct {
	BookName string                              `json:"book_name"`
	Schemas  map[string]*models.SchemaDefinition `json:"schemas"`
	Failures map[string]*models.UnitFailure      `json:"failures"`
}

func runSchema(cmd *cobra.Command, args []string) error {
	_, _, client, opts, err := setup(cmd)
	if err != nil {
		return err
	}
	wb, err := sheetinfer.LoadWorkbook(args[0], opts)
	if err != nil {
		return err
	}
	p, err := sheetinfer.New(client, opts)
	if err != nil {
		return err
	}

	schemas, failures, err := p.ProposeSchemas(cmd.Context(), wb.Units)
	if err != nil {
		return fmt.Errorf("schema inference failed: %w", err)
	}
	data, err := marshal(schemaReport{BookName: wb.BookName, Schemas: schemas, Failures: failures})
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	return writeOutput(schemaOutput, data)
}

func newSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets [input.xlsx]",
		Short: "Show the units a workbook splits into, without calling the completion service",
		Args:  cobra.ExactArgs(1),
		RunE:  runSheets,
	}
	cmd.Flags().BoolVar(&consolidate, "consolidate", false, "Merge all sheets into a single unit")
	cmd.Flags().BoolVar(&printAreas, "print-areas", false, "Limit each sheet to its print area when it defines one")
	cmd.Flags().BoolVar(&includeText, "text", false, "Include the CSV text of every unit")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

func runSheets(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	wb, err := sheetinfer.LoadWorkbook(args[0], sheetinfer.Options{
		Consolidate: cfg.Pipeline.Consolidate,
		PrintAreas:  cfg.Pipeline.PrintAreas,
	})
	if err != nil {
		return err
	}
	if !includeText {
		for i := range wb.Units {
			wb.Units[i].Text = ""
		}
	}
	data, err := marshal(wb)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	return writeOutput("", data)
}

func marshal(v any) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
