package pdfoutline

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tsawler/pdfoutline/format"
	"github.com/tsawler/pdfoutline/layout"
	"github.com/tsawler/pdfoutline/model"
	"github.com/tsawler/pdfoutline/reader"
)

// ErrNotPDF is returned when the input does not carry a PDF header
var ErrNotPDF = errors.New("not a PDF file")

// Extractor provides a fluent interface for extracting outlines from PDFs.
// Each configuration method returns a new Extractor instance, making it
// safe to share a configured Extractor as a template and allowing method
// chaining. Terminal operations must not run concurrently on the same
// instance.
type Extractor struct {
	// Source
	filename string

	reader *reader.Reader

	// Lifecycle
	ownsReader   bool // true if we opened the reader and should close it
	readerOpened bool // true if reader has been opened

	// Configuration
	options ExtractOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Extractor with a deep copy of options.
// This ensures immutability - each chain method returns a new instance.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		filename:     e.filename,
		reader:       e.reader,
		ownsReader:   e.ownsReader,
		readerOpened: e.readerOpened,
		options:      e.options.clone(),
		err:          e.err,
	}
}

// fail returns a copy carrying err unless an earlier error is already set
func (e *Extractor) fail(err error) *Extractor {
	newExt := e.clone()
	if newExt.err == nil {
		newExt.err = err
	}
	return newExt
}

// ensureReader opens the reader if not already open.
func (e *Extractor) ensureReader() error {
	if e.readerOpened {
		if e.reader == nil {
			return fmt.Errorf("reader is closed")
		}
		return nil
	}
	if e.filename == "" {
		return fmt.Errorf("no filename specified")
	}

	f, err := format.DetectFile(e.filename)
	if err != nil {
		return err
	}
	if f != format.PDF {
		return fmt.Errorf("%s: %w", filepath.Base(e.filename), ErrNotPDF)
	}

	r, err := reader.Open(e.filename)
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}
	e.reader = r
	e.ownsReader = true
	e.readerOpened = true
	return nil
}

// Close releases resources associated with the Extractor.
// It is safe to call Close multiple times.
func (e *Extractor) Close() error {
	if !e.ownsReader || e.reader == nil {
		return nil
	}
	err := e.reader.Close()
	e.reader = nil
	e.ownsReader = false
	e.readerOpened = false
	return err
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// Pages restricts the analysis to the given pages (1-indexed). The style
// baseline is then computed from those pages only. Multiple calls are
// cumulative.
//
// Example:
//
//	outline, _, err := pdfoutline.Open("doc.pdf").Pages(1, 2, 3).Outline()
func (e *Extractor) Pages(pages ...int) *Extractor {
	newExt := e.clone()
	newExt.options.pages = append(newExt.options.pages, pages...)
	return newExt
}

// PageRange restricts the analysis to a range of pages (1-indexed, inclusive).
func (e *Extractor) PageRange(start, end int) *Extractor {
	newExt := e.clone()
	for i := start; i <= end; i++ {
		newExt.options.pages = append(newExt.options.pages, i)
	}
	return newExt
}

// MinHeadingDelta sets how many points above the body size a font size must
// be to form a heading tier.
func (e *Extractor) MinHeadingDelta(points float64) *Extractor {
	if points < 0 {
		return e.fail(fmt.Errorf("min heading delta must not be negative, got %v", points))
	}
	newExt := e.clone()
	newExt.options.config.HeadingConfig.MinHeadingDelta = points
	return newExt
}

// MaxHeadingChars sets the longest text, in characters, accepted as a heading.
func (e *Extractor) MaxHeadingChars(n int) *Extractor {
	if n <= 0 {
		return e.fail(fmt.Errorf("max heading chars must be positive, got %d", n))
	}
	newExt := e.clone()
	newExt.options.config.HeadingConfig.MaxHeadingChars = n
	return newExt
}

// HeadingTiers sets how many size tiers map to heading levels (H1..Hn).
func (e *Extractor) HeadingTiers(n int) *Extractor {
	if n < 1 || n > model.MaxHeadingTiers {
		return e.fail(fmt.Errorf("heading tiers must be between 1 and %d, got %d", model.MaxHeadingTiers, n))
	}
	newExt := e.clone()
	newExt.options.config.HeadingConfig.HeadingTierCount = n
	return newExt
}

// MinHeadingChars rejects headings shorter than n characters.
func (e *Extractor) MinHeadingChars(n int) *Extractor {
	if n < 0 {
		return e.fail(fmt.Errorf("min heading chars must not be negative, got %d", n))
	}
	newExt := e.clone()
	newExt.options.config.HeadingConfig.MinHeadingChars = n
	return newExt
}

// RequireLetter rejects headings made only of digits and punctuation, such
// as page numbers.
func (e *Extractor) RequireLetter() *Extractor {
	newExt := e.clone()
	newExt.options.config.HeadingConfig.RequireLetter = true
	return newExt
}

// IgnoreMargins drops text in the top and bottom fraction of each page,
// where running headers and page numbers live.
//
// Example:
//
//	outline, _, err := pdfoutline.Open("doc.pdf").IgnoreMargins(0.08).Outline()
func (e *Extractor) IgnoreMargins(fraction float64) *Extractor {
	if fraction < 0 || fraction >= 0.5 {
		return e.fail(fmt.Errorf("margin band must be in [0, 0.5), got %v", fraction))
	}
	newExt := e.clone()
	newExt.options.config.CollectorConfig.MarginBand = fraction
	return newExt
}

// MinFontSize ignores text set smaller than points.
func (e *Extractor) MinFontSize(points float64) *Extractor {
	if points < 0 {
		return e.fail(fmt.Errorf("min font size must not be negative, got %v", points))
	}
	newExt := e.clone()
	newExt.options.config.CollectorConfig.MinFontSize = points
	return newExt
}

// SortByPosition orders text top to bottom instead of content stream order.
func (e *Extractor) SortByPosition() *Extractor {
	newExt := e.clone()
	newExt.options.config.CollectorConfig.SortByPosition = true
	return newExt
}

// PageBase sets the number added to 0-based page indices in the outline.
// The default is 1.
func (e *Extractor) PageBase(base int) *Extractor {
	newExt := e.clone()
	newExt.options.pageBase = base
	return newExt
}

// TitleFallback selects the title source used when no heading qualifies.
func (e *Extractor) TitleFallback(mode TitleFallback) *Extractor {
	parsed, err := ParseTitleFallback(string(mode))
	if err != nil {
		return e.fail(err)
	}
	newExt := e.clone()
	newExt.options.titleFallback = parsed
	return newExt
}

// WithConfig replaces the whole analysis configuration.
func (e *Extractor) WithConfig(config layout.AnalyzerConfig) *Extractor {
	newExt := e.clone()
	newExt.options.config = config
	return newExt
}

// ============================================================================
// Terminal Operations (execute extraction and return results)
// ============================================================================

// PageCount returns the number of pages in the document.
// Note: This does NOT close the reader, allowing further operations.
//
// Example:
//
//	ext := pdfoutline.Open("document.pdf")
//	defer ext.Close()
//	count, err := ext.PageCount()
func (e *Extractor) PageCount() (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	if err := e.ensureReader(); err != nil {
		return 0, err
	}
	return e.reader.PageCount(), nil
}

// Blocks returns the text blocks of the configured pages in reading order.
// This is a terminal operation that closes the underlying reader.
func (e *Extractor) Blocks() ([]model.TextBlock, []Warning, error) {
	if e.err != nil {
		return nil, nil, e.err
	}
	if err := e.ensureReader(); err != nil {
		return nil, nil, err
	}
	defer e.Close()

	pages, warnings, err := e.collectPages()
	if err != nil {
		return nil, warnings, err
	}

	blocks := layout.NewBlockCollectorWithConfig(e.options.config.CollectorConfig).Collect(pages)
	return blocks, noTextWarning(warnings, pages, blocks), nil
}

// Baseline returns the document's style baseline: body size, size
// histogram and heading thresholds.
// This is a terminal operation that closes the underlying reader.
func (e *Extractor) Baseline() (layout.StyleBaseline, []Warning, error) {
	blocks, warnings, err := e.Blocks()
	if err != nil {
		return layout.StyleBaseline{}, warnings, err
	}
	return layout.AnalyzeBaseline(blocks, e.options.config.HeadingConfig), warnings, nil
}

// Analyze runs every stage and returns the intermediate results along with
// the outline. Outline pages in the result are 0-based and no title
// fallback is applied; use Outline for the final form.
// This is a terminal operation that closes the underlying reader.
func (e *Extractor) Analyze() (*layout.AnalysisResult, []Warning, error) {
	blocks, warnings, err := e.Blocks()
	if err != nil {
		return nil, warnings, err
	}
	return layout.NewAnalyzerWithConfig(e.options.config).AnalyzeBlocks(blocks), warnings, nil
}

// Outline extracts the title and headings. Pages are numbered from the
// configured page base and the title fallback is applied when no heading
// was promoted to title.
// This is a terminal operation that closes the underlying reader.
//
// Example:
//
//	outline, warnings, err := pdfoutline.Open("document.pdf").Outline()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	outline.Encode(os.Stdout, "  ")
func (e *Extractor) Outline() (*model.Outline, []Warning, error) {
	result, warnings, err := e.Analyze()
	if err != nil {
		return nil, warnings, err
	}

	outline := result.Outline.WithPageBase(e.options.pageBase)
	if outline.Title == "" {
		title, w := e.fallbackTitle()
		outline.Title = title
		if w != nil {
			warnings = append(warnings, *w)
		}
	}

	return outline, warnings, nil
}

// ============================================================================
// Helpers
// ============================================================================

// resolvePages converts the page selection to sorted 0-based indices
func (e *Extractor) resolvePages() ([]int, error) {
	pageCount := e.reader.PageCount()

	// If no pages specified, use all pages
	if len(e.options.pages) == 0 {
		pageIndices := make([]int, pageCount)
		for i := 0; i < pageCount; i++ {
			pageIndices[i] = i
		}
		return pageIndices, nil
	}

	// Convert 1-indexed to 0-indexed and validate
	seen := make(map[int]bool)
	var pageIndices []int
	for _, p := range e.options.pages {
		if p < 1 || p > pageCount {
			return nil, fmt.Errorf("page %d out of range (1-%d)", p, pageCount)
		}
		zeroIndexed := p - 1
		if !seen[zeroIndexed] {
			seen[zeroIndexed] = true
			pageIndices = append(pageIndices, zeroIndexed)
		}
	}

	// Sort pages in order
	sort.Ints(pageIndices)
	return pageIndices, nil
}

// collectPages decodes the selected pages. Pages that fail to decode are
// skipped with a warning; the document fails only when every page does.
func (e *Extractor) collectPages() ([]layout.PageSpans, []Warning, error) {
	pageIndices, err := e.resolvePages()
	if err != nil {
		return nil, nil, err
	}

	var warnings []Warning
	pages := make([]layout.PageSpans, 0, len(pageIndices))

	for _, idx := range pageIndices {
		page, err := e.reader.Page(idx)
		if err != nil {
			msg := err.Error()
			var pe *reader.PageError
			if errors.As(err, &pe) {
				msg = pe.Err.Error()
			}
			warnings = append(warnings, Warning{Code: WarningPageSkipped, Page: idx + 1, Message: msg})
			continue
		}
		pages = append(pages, page)
	}

	if len(pageIndices) > 0 && len(pages) == 0 {
		return nil, warnings, fmt.Errorf("%w: none of %d pages could be decoded", reader.ErrCorrupt, len(pageIndices))
	}

	return pages, warnings, nil
}

// noTextWarning adds a warning when decoded pages produced no text at all
func noTextWarning(warnings []Warning, pages []layout.PageSpans, blocks []model.TextBlock) []Warning {
	if len(pages) > 0 && len(blocks) == 0 {
		warnings = append(warnings, Warning{
			Code:    WarningNoText,
			Message: "no text layer found; the document may be scanned",
		})
	}
	return warnings
}

// fallbackTitle resolves the configured title fallback
func (e *Extractor) fallbackTitle() (string, *Warning) {
	switch e.options.titleFallback {
	case TitleFromMetadata:
		if e.filename == "" {
			return "", &Warning{Code: WarningTitleFallback, Message: "metadata title needs a file name"}
		}
		info, err := reader.Inspect(e.filename)
		if err != nil {
			return "", &Warning{Code: WarningTitleFallback, Message: fmt.Sprintf("reading metadata: %v", err)}
		}
		return layout.CleanText(info.Title), nil

	case TitleFromFilename:
		if e.filename == "" {
			return "", &Warning{Code: WarningTitleFallback, Message: "filename title needs a file name"}
		}
		return titleFromFilename(e.filename), nil
	}

	return "", nil
}

// titleFromFilename turns "annual_report-2024.pdf" into "annual report 2024"
func titleFromFilename(path string) string {
	stem := format.Stem(path)
	stem = strings.NewReplacer("_", " ", "-", " ").Replace(stem)
	return layout.CleanText(stem)
}
