// Package config manages application configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tsawler/pdfoutline"
	"github.com/tsawler/pdfoutline/layout"
	"github.com/tsawler/pdfoutline/model"
)

// Environment variables that override the configuration file
const (
	EnvInputDir  = "PDFOUTLINE_INPUT_DIR"
	EnvOutputDir = "PDFOUTLINE_OUTPUT_DIR"
	EnvWorkers   = "PDFOUTLINE_WORKERS"
	EnvLogLevel  = "PDFOUTLINE_LOG_LEVEL"
)

// Config represents the application configuration.
type Config struct {
	Heading   HeadingConfig   `yaml:"heading"`
	Collector CollectorConfig `yaml:"collector"`
	Output    OutputConfig    `yaml:"output"`
	Batch     BatchConfig     `yaml:"batch"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
}

// HeadingConfig controls baseline analysis and heading classification.
type HeadingConfig struct {
	MinHeadingDelta  float64 `yaml:"min_heading_delta"`
	MaxHeadingChars  int     `yaml:"max_heading_chars"`
	HeadingTierCount int     `yaml:"heading_tier_count"`
	MinHeadingChars  int     `yaml:"min_heading_chars"`
	RequireLetter    bool    `yaml:"require_letter"`
}

// CollectorConfig controls how spans merge into blocks.
type CollectorConfig struct {
	LineTolerance  float64 `yaml:"line_tolerance"`
	GapTolerance   float64 `yaml:"gap_tolerance"`
	SpaceTolerance float64 `yaml:"space_tolerance"`
	MarginBand     float64 `yaml:"margin_band"`
	MinFontSize    float64 `yaml:"min_font_size"`
	SortByPosition bool    `yaml:"sort_by_position"`
}

// OutputConfig controls the JSON result.
type OutputConfig struct {
	PageBase      int    `yaml:"page_base"`
	TitleFallback string `yaml:"title_fallback"`
	Indent        int    `yaml:"indent"`
}

// BatchConfig controls directory processing.
type BatchConfig struct {
	InputDir      string `yaml:"input_dir"`
	OutputDir     string `yaml:"output_dir"`
	Workers       int    `yaml:"workers"` // 0 means one per CPU
	FailOnError   bool   `yaml:"fail_on_error"`
	EmitOnFailure bool   `yaml:"emit_on_failure"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	heading := layout.DefaultHeadingConfig()
	collector := layout.DefaultCollectorConfig()

	return &Config{
		Heading: HeadingConfig{
			MinHeadingDelta:  heading.MinHeadingDelta,
			MaxHeadingChars:  heading.MaxHeadingChars,
			HeadingTierCount: heading.HeadingTierCount,
		},
		Collector: CollectorConfig{
			LineTolerance:  collector.LineTolerance,
			GapTolerance:   collector.GapTolerance,
			SpaceTolerance: collector.SpaceTolerance,
		},
		Output: OutputConfig{
			PageBase:      1,
			TitleFallback: string(pdfoutline.TitleFromNone),
			Indent:        2,
		},
		Batch: BatchConfig{
			InputDir:  "/app/input",
			OutputDir: "/app/output",
		},
		Server: ServerConfig{
			Addr:           ":5001",
			AllowedOrigins: []string{"*"},
			MaxUploadBytes: 50 << 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ApplyEnv overrides settings from PDFOUTLINE_* environment variables.
func (c *Config) ApplyEnv() error {
	c.Batch.InputDir = GetEnvOrDefault(EnvInputDir, c.Batch.InputDir)
	c.Batch.OutputDir = GetEnvOrDefault(EnvOutputDir, c.Batch.OutputDir)
	c.Log.Level = GetEnvOrDefault(EnvLogLevel, c.Log.Level)

	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Batch.Workers = n
	}
	return nil
}

// Validate reports every setting that cannot be used.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Heading.MinHeadingDelta >= 0, "heading.min_heading_delta must not be negative")
	check(c.Heading.MaxHeadingChars > 0, "heading.max_heading_chars must be positive")
	check(c.Heading.HeadingTierCount >= 1 && c.Heading.HeadingTierCount <= model.MaxHeadingTiers,
		"heading.heading_tier_count must be between 1 and %d", model.MaxHeadingTiers)
	check(c.Heading.MinHeadingChars >= 0, "heading.min_heading_chars must not be negative")

	check(c.Collector.LineTolerance > 0, "collector.line_tolerance must be positive")
	check(c.Collector.GapTolerance > 0, "collector.gap_tolerance must be positive")
	check(c.Collector.SpaceTolerance >= 0, "collector.space_tolerance must not be negative")
	check(c.Collector.MarginBand >= 0 && c.Collector.MarginBand < 0.5, "collector.margin_band must be in [0, 0.5)")
	check(c.Collector.MinFontSize >= 0, "collector.min_font_size must not be negative")

	check(c.Output.Indent >= 1 && c.Output.Indent <= 8, "output.indent must be between 1 and 8")
	if _, err := pdfoutline.ParseTitleFallback(c.Output.TitleFallback); err != nil {
		errs = append(errs, fmt.Errorf("output.title_fallback: %w", err))
	}

	check(c.Batch.Workers >= 0, "batch.workers must not be negative")
	check(c.Server.MaxUploadBytes > 0, "server.max_upload_bytes must be positive")

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of text, json", c.Log.Format))
	}

	return errors.Join(errs...)
}

// Settings converts the configuration into extraction settings.
func (c *Config) Settings() (pdfoutline.Settings, error) {
	fallback, err := pdfoutline.ParseTitleFallback(c.Output.TitleFallback)
	if err != nil {
		return pdfoutline.Settings{}, err
	}

	analyzer := layout.DefaultAnalyzerConfig()

	analyzer.HeadingConfig.MinHeadingDelta = c.Heading.MinHeadingDelta
	analyzer.HeadingConfig.MaxHeadingChars = c.Heading.MaxHeadingChars
	analyzer.HeadingConfig.HeadingTierCount = c.Heading.HeadingTierCount
	analyzer.HeadingConfig.MinHeadingChars = c.Heading.MinHeadingChars
	analyzer.HeadingConfig.RequireLetter = c.Heading.RequireLetter

	analyzer.CollectorConfig.LineTolerance = c.Collector.LineTolerance
	analyzer.CollectorConfig.GapTolerance = c.Collector.GapTolerance
	analyzer.CollectorConfig.SpaceTolerance = c.Collector.SpaceTolerance
	analyzer.CollectorConfig.MarginBand = c.Collector.MarginBand
	analyzer.CollectorConfig.MinFontSize = c.Collector.MinFontSize
	analyzer.CollectorConfig.SortByPosition = c.Collector.SortByPosition

	return pdfoutline.Settings{
		Analyzer:      analyzer,
		PageBase:      c.Output.PageBase,
		TitleFallback: fallback,
	}, nil
}

// IndentString returns the JSON indentation as spaces.
func (c *Config) IndentString() string {
	return strings.Repeat(" ", c.Output.Indent)
}
