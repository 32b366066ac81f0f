package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer"
	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/models"
	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/output"
)

var (
	outputPath string
	jsonPath   string
	sqlitePath string
	unitsDir   string
	headerMode string
	noSummary  bool
	pretty     bool
)

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean [input.xlsx]",
		Short: "Infer schemas and extract validated rows from every sheet",
		Long: `clean runs the full pipeline over a workbook. Each sheet gets an inferred
schema; rows that fail validation are dropped and logged; sheets that fail
entirely are reported in the summary without stopping the others.

Without -o, --json, --sqlite or --units-dir the JSON report goes to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: runClean,
	}
	addPipelineFlags(cmd)
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the cleaned workbook to this .xlsx file")
	cmd.Flags().StringVar(&jsonPath, "json", "", "Write the JSON report to this file (- for stdout)")
	cmd.Flags().StringVar(&sqlitePath, "sqlite", "", "Store the run in this SQLite database")
	cmd.Flags().StringVar(&unitsDir, "units-dir", "", "Directory for per-sheet JSON files")
	cmd.Flags().StringVar(&headerMode, "header", string(output.HeaderName), "Column headers of the cleaned workbook: name, original")
	cmd.Flags().BoolVar(&noSummary, "no-summary", false, "Omit the _summary and _fields tabs")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

func runClean(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	header := output.HeaderMode(headerMode)
	if header != output.HeaderName && header != output.HeaderOriginal {
		return fmt.Errorf("invalid header mode: %s (must be name or original)", headerMode)
	}

	_, logger, client, opts, err := setup(cmd)
	if err != nil {
		return err
	}
	p, err := sheetinfer.New(client, opts)
	if err != nil {
		return err
	}

	result, err := p.Clean(cmd.Context(), inputPath)
	if err != nil {
		return fmt.Errorf("clean failed: %w", err)
	}

	wrote := false
	if outputPath != "" {
		if err := output.WriteWorkbook(outputPath, result, output.WorkbookOptions{Header: header, SkipSummary: noSummary}); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}
		logger.Info("workbook written", "path", outputPath)
		wrote = true
	}
	if sqlitePath != "" {
		if err := output.WriteSQLite(cmd.Context(), sqlitePath, result); err != nil {
			return fmt.Errorf("failed to write sqlite: %w", err)
		}
		logger.Info("run stored", "path", sqlitePath, "run_id", result.RunID)
		wrote = true
	}
	if unitsDir != "" {
		if err := writeUnitFiles(result, unitsDir); err != nil {
			return fmt.Errorf("failed to write unit files: %w", err)
		}
		wrote = true
	}
	if jsonPath != "" || !wrote {
		data, err := output.ToJSON(result, pretty)
		if err != nil {
			return fmt.Errorf("serialization failed: %w", err)
		}
		if err := writeOutput(jsonPath, data); err != nil {
			return err
		}
	}

	printSummary(result)
	return nil
}

func writeUnitFiles(result *models.OverallResult, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	used := make(map[string]bool)
	for _, u := range result.OrderedUnits() {
		data, err := output.UnitToJSON(u, pretty)
		if err != nil {
			return err
		}
		name := models.NormalizeFieldName(u.UnitName)
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", models.NormalizeFieldName(u.UnitName), n)
		}
		used[name] = true

		filename := filepath.Join(dir, name+".json")
		if err := os.WriteFile(filename, data, 0644); err != nil {
			return err
		}
	}
	return nil
}

// printSummary reports every unit on stderr.
func printSummary(result *models.OverallResult) {
	var b strings.Builder
	for _, s := range result.Summary() {
		if s.OK {
			fmt.Fprintf(&b, "  %-31s %6d rows", s.UnitName, s.Rows)
			if s.Rejected > 0 {
				fmt.Fprintf(&b, " (%d dropped)", s.Rejected)
			}
			b.WriteByte('\n')
			continue
		}
		fmt.Fprintf(&b, "  %-31s failed at %s: %s\n", s.UnitName, s.Stage, s.Reason)
	}
	fmt.Fprintf(os.Stderr, "run %s: %d ok, %d failed\n%s", result.RunID, len(result.Units), len(result.Failures), b.String())
}
