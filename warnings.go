package pdfoutline

import (
	"fmt"
	"strings"
)

// WarningCode classifies a non-fatal extraction issue
type WarningCode int

const (
	// WarningPageSkipped means a page could not be decoded and was left out
	WarningPageSkipped WarningCode = iota + 1

	// WarningNoText means no page produced any text. Scanned documents
	// without a text layer end up here.
	WarningNoText

	// WarningTitleFallback means the configured title fallback could not
	// be applied
	WarningTitleFallback
)

// String returns a short name for the code
func (c WarningCode) String() string {
	switch c {
	case WarningPageSkipped:
		return "page-skipped"
	case WarningNoText:
		return "no-text"
	case WarningTitleFallback:
		return "title-fallback"
	default:
		return "unknown"
	}
}

// Warning describes an issue that did not stop extraction but may make the
// outline incomplete
type Warning struct {
	Code WarningCode

	// Page is the 1-based page number, 0 when the warning concerns the
	// whole document
	Page int

	Message string
}

// String formats the warning for display
func (w Warning) String() string {
	if w.Page > 0 {
		return fmt.Sprintf("%s: page %d: %s", w.Code, w.Page, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}

// FormatWarnings joins warnings into a single line suitable for logging
func FormatWarnings(warnings []Warning) string {
	parts := make([]string, len(warnings))
	for i, w := range warnings {
		parts[i] = w.String()
	}
	return strings.Join(parts, "; ")
}
