package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/tsawler/pdfoutline/model"
)

// Span is one run of text as reported by the PDF parser. Parsers often
// report single glyphs, so spans are usually much smaller than a line.
type Span struct {
	Text     string
	FontName string
	FontSize float64
	Bold     bool

	// X, Y is the span origin (left edge, baseline) in page coordinates
	X, Y   float64
	Width  float64
	Height float64
}

// BBox returns the span's bounding box
func (s Span) BBox() model.BBox {
	return model.NewBBox(s.X, s.Y, s.Width, s.Height)
}

// PageSpans holds the raw spans of one page in source order
type PageSpans struct {
	PageIndex int
	Width     float64
	Height    float64
	Spans     []Span
}

// CollectorConfig holds configuration for block collection
type CollectorConfig struct {
	// LineTolerance is the maximum baseline difference, as a fraction of the
	// font size, for two spans to be on the same visual line
	// Default: 0.5
	LineTolerance float64

	// GapTolerance is the largest horizontal gap, as a fraction of the font
	// size, that still counts as contiguous text
	// Default: 1.0
	GapTolerance float64

	// OverlapTolerance is how far, as a fraction of the font size, a span may
	// start to the left of the previous span's right edge (kerning, fake bold)
	// Default: 0.5
	OverlapTolerance float64

	// SpaceTolerance is the gap, as a fraction of the font size, above which a
	// space is inserted between merged spans
	// Default: 0.15
	SpaceTolerance float64

	// MarginBand drops spans whose baseline lies within this fraction of the
	// page height from the top or bottom edge. 0 disables the filter.
	// Default: 0
	MarginBand float64

	// MinFontSize drops spans smaller than this size. 0 disables the filter.
	// Default: 0
	MinFontSize float64

	// SortByPosition reorders spans top-to-bottom, left-to-right before
	// merging instead of trusting the content stream order
	// Default: false
	SortByPosition bool
}

// DefaultCollectorConfig returns sensible default configuration
func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{
		LineTolerance:    0.5,
		GapTolerance:     1.0,
		OverlapTolerance: 0.5,
		SpaceTolerance:   0.15,
	}
}

// BlockCollector merges parser spans into TextBlocks
type BlockCollector struct {
	config CollectorConfig
}

// NewBlockCollector creates a new collector with default configuration
func NewBlockCollector() *BlockCollector {
	return &BlockCollector{
		config: DefaultCollectorConfig(),
	}
}

// NewBlockCollectorWithConfig creates a collector with custom configuration
func NewBlockCollectorWithConfig(config CollectorConfig) *BlockCollector {
	return &BlockCollector{
		config: config,
	}
}

// Collect turns the parser's per-page spans into an ordered sequence of
// blocks: pages in the order given, blocks within a page in source order.
// An empty input produces an empty (nil) result.
func (c *BlockCollector) Collect(pages []PageSpans) []model.TextBlock {
	var blocks []model.TextBlock
	for _, page := range pages {
		blocks = append(blocks, c.CollectPage(page)...)
	}
	return blocks
}

// CollectPage merges the spans of a single page into blocks
func (c *BlockCollector) CollectPage(page PageSpans) []model.TextBlock {
	spans := c.filterSpans(page)
	if len(spans) == 0 {
		return nil
	}

	if c.config.SortByPosition {
		c.sortByPosition(spans)
	}

	var (
		blocks  []model.TextBlock
		current *pendingBlock
		spaced  bool // a whitespace span was seen since the last glyph
	)

	flush := func() {
		if current == nil {
			return
		}
		if b, ok := current.block(page.PageIndex, len(blocks)); ok {
			blocks = append(blocks, b)
		}
		current = nil
	}

	for _, s := range spans {
		if strings.TrimSpace(s.Text) == "" {
			spaced = true
			continue
		}

		if current != nil && c.continues(current, s) {
			gap := current.bbox.HorizontalGap(s.BBox())
			if spaced || gap > s.FontSize*c.config.SpaceTolerance {
				current.text.WriteByte(' ')
			}
			current.add(s)
		} else {
			flush()
			current = newPendingBlock(s)
		}
		spaced = false
	}
	flush()

	return blocks
}

// filterSpans removes spans that can never contribute to a block
func (c *BlockCollector) filterSpans(page PageSpans) []Span {
	spans := make([]Span, 0, len(page.Spans))
	for _, s := range page.Spans {
		if !validSize(s.FontSize) {
			continue
		}
		if math.IsNaN(s.X) || math.IsNaN(s.Y) || math.IsInf(s.X, 0) || math.IsInf(s.Y, 0) {
			continue
		}
		if c.config.MinFontSize > 0 && s.FontSize < c.config.MinFontSize {
			continue
		}
		if c.inMarginBand(s, page.Height) {
			continue
		}
		if s.Width < 0 {
			s.Width = 0
		}
		if s.Height <= 0 {
			s.Height = s.FontSize
		}
		spans = append(spans, s)
	}
	return spans
}

// inMarginBand reports whether the span sits in the page's top or bottom band
func (c *BlockCollector) inMarginBand(s Span, pageHeight float64) bool {
	band := c.config.MarginBand
	if band <= 0 || pageHeight <= 0 {
		return false
	}
	return s.Y < pageHeight*band || s.Y > pageHeight*(1-band)
}

// sortByPosition orders spans top to bottom, then left to right. Spans whose
// baselines are within the line tolerance keep their relative X order.
func (c *BlockCollector) sortByPosition(spans []Span) {
	sort.SliceStable(spans, func(i, j int) bool {
		tol := math.Max(spans[i].FontSize, spans[j].FontSize) * c.config.LineTolerance
		if dy := spans[i].Y - spans[j].Y; math.Abs(dy) > tol {
			return dy > 0 // higher Y first (top of page)
		}
		return spans[i].X < spans[j].X
	})
}

// continues reports whether s belongs to the same visual line and style
// as the block being built
func (c *BlockCollector) continues(b *pendingBlock, s Span) bool {
	if s.FontName != b.fontName || s.Bold != b.bold {
		return false
	}
	if model.RoundSize(s.FontSize) != model.RoundSize(b.fontSize) {
		return false
	}
	if math.Abs(s.Y-b.lastY) > s.FontSize*c.config.LineTolerance {
		return false
	}
	gap := b.bbox.HorizontalGap(s.BBox())
	return gap <= s.FontSize*c.config.GapTolerance &&
		gap >= -s.FontSize*c.config.OverlapTolerance
}

// pendingBlock accumulates spans until the line or style changes
type pendingBlock struct {
	text     strings.Builder
	fontName string
	fontSize float64
	bold     bool
	bbox     model.BBox
	lastY    float64
}

func newPendingBlock(s Span) *pendingBlock {
	b := &pendingBlock{
		fontName: s.FontName,
		fontSize: s.FontSize,
		bold:     s.Bold,
		bbox:     s.BBox(),
		lastY:    s.Y,
	}
	b.text.WriteString(s.Text)
	return b
}

func (b *pendingBlock) add(s Span) {
	b.text.WriteString(s.Text)
	b.bbox = b.bbox.Union(s.BBox())
	b.lastY = s.Y
}

// block finalises the pending block; it reports false when cleaning left no
// text behind
func (b *pendingBlock) block(pageIndex, order int) (model.TextBlock, bool) {
	text := CleanText(b.text.String())
	if text == "" {
		return model.TextBlock{}, false
	}
	return model.TextBlock{
		Text:      text,
		FontSize:  b.fontSize,
		FontName:  b.fontName,
		Bold:      b.bold,
		PageIndex: pageIndex,
		BBox:      b.bbox,
		Order:     order,
	}, true
}

func validSize(size float64) bool {
	return size > 0 && !math.IsNaN(size) && !math.IsInf(size, 0)
}
