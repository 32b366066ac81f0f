// Package mcpserver exposes the cleaning pipeline as MCP tools over stdio.
package mcpserver

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ukaji3/sheetinfer-go/internal/logging"
	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer"
	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/completion"
)

// Server is the sheetinfer MCP server.
type Server struct {
	mcp    *server.MCPServer
	client completion.Client
	opts   sheetinfer.Options
	logger *slog.Logger
}

// New creates an MCP server whose pipelines send completions to client.
// opts supplies the defaults that tool arguments may override.
func New(client completion.Client, opts sheetinfer.Options, version string) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
		opts.Logger = logger
	}
	s := &Server{
		client: client,
		opts:   opts,
		logger: logger,
	}
	s.mcp = server.NewMCPServer(
		"sheetinfer",
		version,
		server.WithToolCapabilities(true),
	)
	s.registerTools()
	return s
}

// ServeStdio serves on stdin/stdout until the input closes.
func (s *Server) ServeStdio() error {
	s.logger.Info("mcp stdio server starting")
	return server.ServeStdio(s.mcp)
}

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}
