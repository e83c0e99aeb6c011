package model

import (
	"math"
	"strings"
	"unicode/utf8"
)

// TextBlock is one line or run of text sharing a single dominant style.
// Blocks are produced once by the collector and only read afterwards.
type TextBlock struct {
	// Text is the trimmed, non-empty text content
	Text string

	// FontSize is the font size in points as reported by the parser
	FontSize float64

	// FontName is the base font name with any subset prefix removed
	FontName string

	// Bold is the parser's boldness decision for the block's font
	Bold bool

	// PageIndex is the 0-based page number
	PageIndex int

	// BBox is the block's position in page coordinates
	BBox BBox

	// Order is the block's sequence position within its page
	Order int
}

// RoundSize rounds a font size to one decimal place, absorbing the
// floating point noise parsers leave in text matrices.
func RoundSize(size float64) float64 {
	return math.Round(size*10) / 10
}

// RoundedSize returns the block's font size rounded to one decimal place
func (b TextBlock) RoundedSize() float64 {
	return RoundSize(b.FontSize)
}

// CharCount returns the number of characters (runes) in the block text
func (b TextBlock) CharCount() int {
	return utf8.RuneCountInString(b.Text)
}

// IsValid reports whether the block can take part in analysis: it must
// have text, a finite positive font size and a sane position.
func (b TextBlock) IsValid() bool {
	if strings.TrimSpace(b.Text) == "" {
		return false
	}
	if math.IsNaN(b.FontSize) || math.IsInf(b.FontSize, 0) || b.FontSize <= 0 {
		return false
	}
	if b.PageIndex < 0 {
		return false
	}
	return b.BBox.IsValid()
}
