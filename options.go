package pdfoutline

import (
	"fmt"
	"strings"

	"github.com/tsawler/pdfoutline/layout"
)

// TitleFallback selects where the title comes from when no first-page
// heading is promoted
type TitleFallback string

const (
	// TitleFromNone leaves the title empty
	TitleFromNone TitleFallback = "none"

	// TitleFromMetadata uses the Title entry of the PDF Info dictionary
	TitleFromMetadata TitleFallback = "metadata"

	// TitleFromFilename derives a title from the file name, with
	// underscores and hyphens read as spaces
	TitleFromFilename TitleFallback = "filename"
)

// ParseTitleFallback converts a configuration value into a TitleFallback.
// The empty string means TitleFromNone.
func ParseTitleFallback(s string) (TitleFallback, error) {
	switch TitleFallback(strings.ToLower(strings.TrimSpace(s))) {
	case "", TitleFromNone:
		return TitleFromNone, nil
	case TitleFromMetadata:
		return TitleFromMetadata, nil
	case TitleFromFilename:
		return TitleFromFilename, nil
	default:
		return "", fmt.Errorf("unknown title fallback %q (want none, metadata or filename)", s)
	}
}

// ExtractOptions holds configuration for outline extraction.
type ExtractOptions struct {
	// Page selection (1-indexed in API, stored as-is)
	pages []int

	// Analysis configuration
	config layout.AnalyzerConfig

	// Output
	pageBase      int
	titleFallback TitleFallback
}

// defaultOptions returns the default extraction options.
func defaultOptions() ExtractOptions {
	return ExtractOptions{
		pages:         nil, // nil means all pages
		config:        layout.DefaultAnalyzerConfig(),
		pageBase:      1,
		titleFallback: TitleFromNone,
	}
}

// clone creates a deep copy of ExtractOptions.
func (o ExtractOptions) clone() ExtractOptions {
	newOpts := ExtractOptions{
		config:        o.config,
		pageBase:      o.pageBase,
		titleFallback: o.titleFallback,
	}

	// Deep copy pages slice
	if o.pages != nil {
		newOpts.pages = make([]int, len(o.pages))
		copy(newOpts.pages, o.pages)
	}

	return newOpts
}
