package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer"
	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/models"
	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/output"
)

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("list_sheets",
		mcp.WithDescription("List the units a workbook splits into, with their cell ranges"),
		mcp.WithString("path", mcp.Description("Path to the .xlsx file"), mcp.Required()),
		mcp.WithBoolean("consolidate", mcp.Description("Merge all sheets into one unit")),
		mcp.WithBoolean("print_areas", mcp.Description("Limit each sheet to its print area when it defines one")),
		mcp.WithBoolean("include_text", mcp.Description("Include the CSV text of every unit")),
	), s.handleListSheets)

	s.mcp.AddTool(mcp.NewTool("propose_schema",
		mcp.WithDescription("Infer a typed field schema for every unit of a workbook without extracting rows"),
		mcp.WithString("path", mcp.Description("Path to the .xlsx file"), mcp.Required()),
		mcp.WithString("background", mcp.Description("Free text describing the file (optional)")),
		mcp.WithBoolean("consolidate", mcp.Description("Merge all sheets into one unit")),
		mcp.WithBoolean("print_areas", mcp.Description("Limit each sheet to its print area when it defines one")),
	), s.handleProposeSchema)

	s.mcp.AddTool(mcp.NewTool("clean_workbook",
		mcp.WithDescription("Infer schemas and extract validated rows for every unit of a workbook"),
		mcp.WithString("path", mcp.Description("Path to the .xlsx file"), mcp.Required()),
		mcp.WithString("background", mcp.Description("Free text describing the file (optional)")),
		mcp.WithBoolean("consolidate", mcp.Description("Merge all sheets into one unit")),
		mcp.WithBoolean("print_areas", mcp.Description("Limit each sheet to its print area when it defines one")),
		mcp.WithString("output", mcp.Description("Write the cleaned workbook to this .xlsx path (optional)")),
		mcp.WithString("sqlite", mcp.Description("Store the run in this SQLite database (optional)")),
	), s.handleCleanWorkbook)
}

// toolOptions applies tool arguments over the server defaults.
func (s *Server) toolOptions(args map[string]any) sheetinfer.Options {
	opts := s.opts
	if bg, ok := args["background"].(string); ok && bg != "" {
		opts.Background = bg
	}
	if c, ok := args["consolidate"].(bool); ok {
		opts.Consolidate = c
	}
	if p, ok := args["print_areas"].(bool); ok {
		opts.PrintAreas = p
	}
	return opts
}

func (s *Server) loadWorkbook(args map[string]any, opts sheetinfer.Options) (*models.Workbook, error) {
	path, _ := args["path"].(string)
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return sheetinfer.LoadWorkbook(path, opts)
}

func (s *Server) handleListSheets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	wb, err := s.loadWorkbook(args, s.toolOptions(args))
	if err != nil {
		return nil, err
	}
	if withText, _ := args["include_text"].(bool); withText {
		return jsonResult(wb)
	}

	type unitInfo struct {
		Name  string `json:"name"`
		Index int    `json:"index"`
		Range string `json:"range,omitempty"`
		Bytes int    `json:"bytes"`
	}
	units := make([]unitInfo, len(wb.Units))
	for i, u := range wb.Units {
		units[i] = unitInfo{Name: u.Name, Index: u.Index, Range: u.Range, Bytes: len(u.Text)}
	}
	return jsonResult(map[string]any{
		"book_name":    wb.BookName,
		"consolidated": wb.Consolidated,
		"units":        units,
	})
}

func (s *Server) handleProposeSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	opts := s.toolOptions(args)
	wb, err := s.loadWorkbook(args, opts)
	if err != nil {
		return nil, err
	}
	p, err := sheetinfer.New(s.client, opts)
	if err != nil {
		return nil, err
	}
	schemas, failures, err := p.ProposeSchemas(ctx, wb.Units)
	if err != nil {
		return nil, fmt.Errorf("propose schemas: %w", err)
	}
	return jsonResult(map[string]any{
		"book_name": wb.BookName,
		"schemas":   schemas,
		"failures":  failures,
	})
}

func (s *Server) handleCleanWorkbook(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	opts := s.toolOptions(args)
	wb, err := s.loadWorkbook(args, opts)
	if err != nil {
		return nil, err
	}
	p, err := sheetinfer.New(s.client, opts)
	if err != nil {
		return nil, err
	}
	result, err := p.RunWorkbook(ctx, wb)
	if err != nil {
		return nil, fmt.Errorf("clean workbook: %w", err)
	}

	written := map[string]string{}
	if path, _ := args["output"].(string); path != "" {
		if err := output.WriteWorkbook(path, result, output.WorkbookOptions{}); err != nil {
			return nil, fmt.Errorf("write workbook: %w", err)
		}
		written["xlsx"] = path
	}
	if path, _ := args["sqlite"].(string); path != "" {
		if err := output.WriteSQLite(ctx, path, result); err != nil {
			return nil, fmt.Errorf("write sqlite: %w", err)
		}
		written["sqlite"] = path
	}

	// Reply with the summary only once the result is on disk.
	if len(written) > 0 {
		return jsonResult(map[string]any{
			"run_id":  result.RunID,
			"summary": result.Summary(),
			"written": written,
		})
	}
	return jsonResult(output.Report{OverallResult: result, Summary: result.Summary()})
}
