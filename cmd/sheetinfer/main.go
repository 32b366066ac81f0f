// Package main provides the CLI entry point for sheetinfer.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ukaji3/sheetinfer-go/internal/config"
	"github.com/ukaji3/sheetinfer-go/internal/logging"
	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer"
	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/completion"
)

var version = "dev"

// Flags shared by every subcommand.
var (
	configPath string
	logLevel   string
	logFormat  string
	baseURL    string
	model      string
)

// Flags shared by the commands that run the pipeline.
var (
	background     string
	backgroundFile string
	consolidate    bool
	printAreas     bool
	concurrency    int
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sheetinfer",
		Short: "Turn messy spreadsheets into typed, validated tables",
		Long: `sheetinfer infers a typed schema for every sheet of an Excel workbook
with a structured completion service, extracts the rows that conform to it,
and writes clean output as xlsx, JSON or SQLite.`,
		Version:      version,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to a TOML config file")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", "", "Log format: text, json")
	pf.StringVar(&baseURL, "base-url", "", "Base URL of the OpenAI-compatible completion service")
	pf.StringVar(&model, "model", "", "Model name")

	rootCmd.AddCommand(
		newCleanCmd(),
		newSchemaCmd(),
		newSheetsCmd(),
		newServeCmd(),
		newMCPCmd(),
	)
	return rootCmd
}

// addPipelineFlags registers the flags of commands that run the pipeline.
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&background, "background", "", "Free text describing the file, shared by all sheets")
	cmd.Flags().StringVar(&backgroundFile, "background-file", "", "Read the background text from a file")
	cmd.Flags().BoolVar(&consolidate, "consolidate", false, "Merge all sheets into a single unit")
	cmd.Flags().BoolVar(&printAreas, "print-areas", false, "Limit each sheet to its print area when it defines one")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Maximum number of sheets processed at once, 0 for no limit (default from config)")
}

// loadSettings reads the config file and applies explicitly set flags.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if flags.Changed("base-url") {
		cfg.LLM.BaseURL = baseURL
	}
	if flags.Changed("model") {
		cfg.LLM.Model = model
	}
	if flags.Lookup("consolidate") != nil && flags.Changed("consolidate") {
		cfg.Pipeline.Consolidate = consolidate
	}
	if flags.Lookup("print-areas") != nil && flags.Changed("print-areas") {
		cfg.Pipeline.PrintAreas = printAreas
	}
	if flags.Lookup("concurrency") != nil && flags.Changed("concurrency") {
		cfg.Pipeline.Concurrency = concurrency
	}

	bg, err := resolveBackground(background, backgroundFile)
	if err != nil {
		return nil, err
	}
	if bg != "" {
		cfg.Pipeline.Background = bg
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveBackground returns the inline text, or the file content when a
// file is given. Giving both is an error.
func resolveBackground(inline, path string) (string, error) {
	if path == "" {
		return inline, nil
	}
	if inline != "" {
		return "", fmt.Errorf("--background and --background-file are mutually exclusive")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read background file: %w", err)
	}
	return string(data), nil
}

// newLogger writes to stderr so stdout stays free for results.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
}

func newClient(cfg *config.Config, logger *slog.Logger) *completion.OpenAIClient {
	logger.Debug("completion client",
		"base_url", cfg.LLM.BaseURL,
		"model", cfg.LLM.Model,
		"api_key", logging.Redact(cfg.LLM.APIKey),
	)
	return completion.NewOpenAIClient(completion.OpenAIConfig{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout(),
		MaxRetries:  cfg.LLM.MaxRetries,
		Logger:      logger,
	})
}

func pipelineOptions(cfg *config.Config, logger *slog.Logger) sheetinfer.Options {
	return sheetinfer.Options{
		Background:  cfg.Pipeline.Background,
		Consolidate: cfg.Pipeline.Consolidate,
		PrintAreas:  cfg.Pipeline.PrintAreas,
		Concurrency: cfg.Pipeline.Concurrency,
		Logger:      logger,
	}
}

// setup loads settings and builds the logger, completion client and run
// options used by a pipeline command.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, completion.Client, sheetinfer.Options, error) {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return nil, nil, nil, sheetinfer.Options{}, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, nil, sheetinfer.Options{}, err
	}
	return cfg, logger, newClient(cfg, logger), pipelineOptions(cfg, logger), nil
}

func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
