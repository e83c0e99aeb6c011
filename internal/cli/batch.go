package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tsawler/pdfoutline/batch"
	"github.com/tsawler/pdfoutline/internal/config"
)

var (
	batchInput         string
	batchOutput        string
	batchWorkers       int
	batchStrict        bool
	batchEmitOnFailure bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Extract outlines for every PDF in a directory",
	Long: `Extract the outline of every *.pdf file in the input directory and write
<stem>.json for each into the output directory.

A file that fails is reported and skipped; the command still exits with
status 0 unless batch.fail_on_error is set or --strict is given.

Environment variables:
  PDFOUTLINE_INPUT_DIR    input directory
  PDFOUTLINE_OUTPUT_DIR   output directory
  PDFOUTLINE_WORKERS      number of files processed at once

Examples:
  pdfoutline batch
  pdfoutline batch --input ./pdfs --output ./json --workers 4 --strict`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchInput, "input", "i", "", "input directory (default from config)")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "output directory (default from config)")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "files processed at once (default: one per CPU)")
	batchCmd.Flags().BoolVar(&batchStrict, "strict", false, "exit with an error when any file fails")
	batchCmd.Flags().BoolVar(&batchEmitOnFailure, "emit-on-failure", false, "write an empty outline for files that fail")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(func(c *config.Config) {
		if batchInput != "" {
			c.Batch.InputDir = batchInput
		}
		if batchOutput != "" {
			c.Batch.OutputDir = batchOutput
		}
		if cmd.Flags().Changed("workers") {
			c.Batch.Workers = batchWorkers
		}
		if batchStrict {
			c.Batch.FailOnError = true
		}
		if batchEmitOnFailure {
			c.Batch.EmitOnFailure = true
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

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := batch.New(batch.Config{
		InputDir:      cfg.Batch.InputDir,
		OutputDir:     cfg.Batch.OutputDir,
		Workers:       cfg.Batch.Workers,
		Indent:        cfg.IndentString(),
		EmitOnFailure: cfg.Batch.EmitOnFailure,
		Settings:      settings,
		Logger:        logger,
	})

	report, err := runner.Run(ctx)
	if report != nil {
		printReport(cmd, report)
	}
	if err != nil {
		return err
	}

	if report.Failed() > 0 && cfg.Batch.FailOnError {
		return fmt.Errorf("%d of %d files failed: %w", report.Failed(), len(report.Results), report.Err())
	}
	return nil
}

func printReport(cmd *cobra.Command, report *batch.Report) {
	out := cmd.OutOrStdout()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, res := range report.Results {
		name := filepath.Base(res.Path)
		if res.OK() {
			fmt.Fprintf(w, "ok\t%s\t%s\t%d headings\n", name, filepath.Base(res.Output), res.Headings)
			continue
		}
		fmt.Fprintf(w, "failed\t%s\t\t%v\n", name, res.Err)
	}
	w.Flush()

	fmt.Fprintf(out, "\n%d files in %s: %d succeeded, %d failed (run %s)\n",
		len(report.Results), report.Duration.Round(time.Millisecond),
		report.Succeeded(), report.Failed(), report.RunID)
}
