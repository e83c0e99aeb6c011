package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tsawler/pdfoutline"
	"github.com/tsawler/pdfoutline/internal/config"
)

var (
	extractOutput        string
	extractTitleFallback string
	extractPageBase      int
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract the outline of one PDF",
	Long: `Extract the title and headings of one PDF and print the JSON outline.

Pages that cannot be decoded are skipped and reported as warnings on stderr.

Examples:
  pdfoutline extract report.pdf
  pdfoutline extract report.pdf -o report.json
  pdfoutline extract report.pdf --title-fallback filename --page-base 0`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "output file (default: stdout)")
	extractCmd.Flags().StringVar(&extractTitleFallback, "title-fallback", "", "title when none is found: none, metadata, filename")
	extractCmd.Flags().IntVar(&extractPageBase, "page-base", 1, "number of the first page in the output")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	cfg, err := loadConfig(func(c *config.Config) {
		if cmd.Flags().Changed("title-fallback") {
			c.Output.TitleFallback = extractTitleFallback
		}
		if cmd.Flags().Changed("page-base") {
			c.Output.PageBase = extractPageBase
		}
	})
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log, cmd.ErrOrStderr())

	settings, err := cfg.Settings()
	if err != nil {
		return err
	}

	outline, warnings, err := pdfoutline.ExtractFile(inputPath, settings)
	for _, w := range warnings {
		logger.Warn("extract: warning", "file", inputPath, "code", w.Code.String(), "page", w.Page, "message", w.Message)
	}
	if err != nil {
		return fmt.Errorf("extract %s: %w", inputPath, err)
	}

	data, err := outline.Bytes(cfg.IndentString())
	if err != nil {
		return err
	}

	if extractOutput == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	if err := os.WriteFile(extractOutput, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", extractOutput, err)
	}
	logger.Info("extract: written", "file", inputPath, "output", extractOutput,
		"title", outline.Title, "headings", outline.Len())

	return nil
}
