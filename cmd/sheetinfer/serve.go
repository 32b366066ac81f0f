package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ukaji3/sheetinfer-go/internal/mcpserver"
	"github.com/ukaji3/sheetinfer-go/internal/server"
)

var listenAddr string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	addPipelineFlags(cmd)
	cmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address (default from config)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, client, opts, err := setup(cmd)
	if err != nil {
		return err
	}
	addr := cfg.Server.Addr
	if cmd.Flags().Changed("addr") {
		addr = listenAddr
	}

	srv := server.New(client, server.Config{
		Options:        opts,
		MaxUploadBytes: cfg.Server.MaxUploadMB << 20,
		Logger:         logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx, addr)
}

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the pipeline as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, client, opts, err := setup(cmd)
			if err != nil {
				return err
			}
			return mcpserver.New(client, opts, version).ServeStdio()
		},
	}
	addPipelineFlags(cmd)
	return cmd
}
