// Package cli implements the pdfoutline command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsawler/pdfoutline/internal/config"
)

var (
	version = "dev"

	cfgFile   string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "pdfoutline",
	Short: "Extract a title and heading outline from PDF files",
	Long: `pdfoutline reads the font size, weight and position of every text span in
a PDF, works out the document's body text size and classifies larger or
bold lines as H1/H2/H3 headings. The result is a JSON outline:

  {"title": "...", "outline": [{"level": "H1", "text": "...", "page": 1}]}

Configuration is read from ~/.pdfoutline/config.yaml (see "pdfoutline config").

Examples:
  pdfoutline extract report.pdf
  pdfoutline extract report.pdf -o report.json
  pdfoutline batch --input ./pdfs --output ./json
  pdfoutline serve --addr :5001`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.pdfoutline/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text, json")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version reported by the version command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func newLoader() (*config.Loader, error) {
	if cfgFile != "" {
		return config.NewLoaderWithPath(cfgFile), nil
	}
	return config.NewLoader()
}

// loadConfig reads the config file, applies environment and flag overrides
// in that order, and validates the result
func loadConfig(overrides ...func(*config.Config)) (*config.Config, error) {
	loader, err := newLoader()
	if err != nil {
		return nil, fmt.Errorf("failed to initialise config loader: %w", err)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	for _, override := range overrides {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the slog handler selected by the log config
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
