package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tsawler/pdfoutline"
	"github.com/tsawler/pdfoutline/format"
	"github.com/tsawler/pdfoutline/model"
)

// Config configures a batch run
type Config struct {
	// InputDir is scanned (not recursively) for *.pdf files
	InputDir string

	// OutputDir receives <stem>.json per input. Created when missing.
	OutputDir string

	// Workers is the number of documents processed at once.
	// Default: runtime.NumCPU()
	Workers int

	// Indent is the JSON indentation. Default: two spaces.
	Indent string

	// EmitOnFailure writes an empty outline for inputs that fail, so every
	// input has an output file
	EmitOnFailure bool

	// Settings configures the extraction of every file.
	// Default: pdfoutline.DefaultSettings()
	Settings pdfoutline.Settings

	// Logger receives per-file progress. Default: slog.Default()
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Indent == "" {
		c.Indent = "  "
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Settings == (pdfoutline.Settings{}) {
		c.Settings = pdfoutline.DefaultSettings()
	}
}

// Result is the outcome for one input file
type Result struct {
	Path string

	// Output is the written JSON path, empty when nothing was written
	Output string

	Title    string
	Headings int
	Size     int64
	Duration time.Duration
	Warnings []pdfoutline.Warning

	// Err is a *FileError when the file failed
	Err error
}

// OK reports whether the file was processed successfully
func (r Result) OK() bool {
	return r.Err == nil
}

// Report summarises a batch run. Results are in input order.
type Report struct {
	RunID    string
	Started  time.Time
	Duration time.Duration
	Results  []Result
}

// Succeeded returns the number of files processed without error
func (r *Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.OK() {
			n++
		}
	}
	return n
}

// Failed returns the number of files that failed
func (r *Report) Failed() int {
	return len(r.Results) - r.Succeeded()
}

// Err joins every per-file error, nil when all files succeeded
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errors.Join(errs...)
}

// Runner processes directories of PDFs
type Runner struct {
	config Config
}

// New creates a Runner
func New(cfg Config) *Runner {
	cfg.defaults()
	return &Runner{config: cfg}
}

// Config returns the effective configuration
func (r *Runner) Config() Config {
	return r.config
}

// Discover lists the PDF files in the input directory in lexical order
func (r *Runner) Discover() ([]string, error) {
	entries, err := os.ReadDir(r.config.InputDir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if format.Detect(e.Name()) != format.PDF {
			continue
		}
		files = append(files, filepath.Join(r.config.InputDir, e.Name()))
	}
	sort.Strings(files)

	return files, nil
}

// Run processes every PDF in the input directory. The returned error is
// set only when the run could not start or ctx was cancelled; per-file
// failures are in the report.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	files, err := r.Discover()
	if err != nil {
		return nil, err
	}
	return r.RunFiles(ctx, files)
}

// RunFiles processes the given files. Output names derive from each file's
// stem, so inputs should come from a single directory.
func (r *Runner) RunFiles(ctx context.Context, files []string) (*Report, error) {
	if err := os.MkdirAll(r.config.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	report := &Report{
		RunID:   uuid.NewString(),
		Started: time.Now(),
	}
	log := r.config.Logger.With("run_id", report.RunID)
	log.Info("batch: start", "files", len(files), "workers", r.config.Workers,
		"input", r.config.InputDir, "output", r.config.OutputDir)

	results := make([]Result, len(files))
	done := make([]bool, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Workers)

	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.process(path, log)
			done[i] = true
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	for i, ok := range done {
		if ok {
			report.Results = append(report.Results, results[i])
		}
	}
	report.Duration = time.Since(report.Started)

	log.Info("batch: finished", "succeeded", report.Succeeded(), "failed", report.Failed(),
		"skipped", len(files)-len(report.Results), "duration", report.Duration.Round(time.Millisecond))

	if err != nil {
		return report, fmt.Errorf("batch cancelled: %w", err)
	}
	return report, nil
}

// ProcessFile extracts one file and writes its JSON output
func (r *Runner) ProcessFile(path string) Result {
	return r.process(path, r.config.Logger)
}

func (r *Runner) process(path string, log *slog.Logger) Result {
	start := time.Now()
	res := Result{Path: path}
	if info, err := os.Stat(path); err == nil {
		res.Size = info.Size()
	}
	log = log.With("file", filepath.Base(path))

	outline, warnings, err := pdfoutline.ExtractFile(path, r.config.Settings)
	res.Warnings = warnings
	if len(warnings) > 0 {
		log.Warn("batch: warnings", "warnings", pdfoutline.FormatWarnings(warnings))
	}

	if err != nil {
		res.Err = &FileError{Path: path, Kind: classify(err), Err: err}
		if r.config.EmitOnFailure {
			if out, werr := r.write(path, model.NewOutline()); werr == nil {
				res.Output = out
			}
		}
		res.Duration = time.Since(start)
		log.Warn("batch: failed", "kind", classify(err).String(), "error", err)
		return res
	}

	out, err := r.write(path, outline)
	res.Duration = time.Since(start)
	if err != nil {
		res.Err = &FileError{Path: path, Kind: KindWrite, Err: err}
		log.Warn("batch: failed", "kind", KindWrite.String(), "error", err)
		return res
	}

	res.Output = out
	res.Title = outline.Title
	res.Headings = outline.Len()
	log.Info("batch: processed", "title", outline.Title, "headings", outline.Len(),
		"size", humanize.Bytes(uint64(res.Size)), "duration", res.Duration.Round(time.Millisecond))

	return res
}

// write stores the outline as <stem>.json through a temporary file so a
// reader never sees partial output
func (r *Runner) write(input string, outline *model.Outline) (string, error) {
	target := filepath.Join(r.config.OutputDir, format.Stem(input)+".json")

	tmp, err := os.CreateTemp(r.config.OutputDir, "."+format.Stem(input)+"-*.json.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := outline.Encode(tmp, r.config.Indent); err != nil {
		tmp.Close()
		return "", fmt.Errorf("encode outline: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("rename output: %w", err)
	}

	return target, nil
}
