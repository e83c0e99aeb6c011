package pdfoutline

import (
	"github.com/tsawler/pdfoutline/layout"
	"github.com/tsawler/pdfoutline/model"
)

// Settings is the flat form of the extraction options, as read from a
// configuration file. The batch runner and the HTTP server build their
// extractors from it.
type Settings struct {
	Analyzer      layout.AnalyzerConfig
	PageBase      int
	TitleFallback TitleFallback
}

// DefaultSettings returns the settings used by Open
func DefaultSettings() Settings {
	opts := defaultOptions()
	return Settings{
		Analyzer:      opts.config,
		PageBase:      opts.pageBase,
		TitleFallback: opts.titleFallback,
	}
}

// Apply configures the extractor with every value in s
//
// Example:
//
//	outline, _, err := pdfoutline.Open(path).Apply(settings).Outline()
func (e *Extractor) Apply(s Settings) *Extractor {
	return e.WithConfig(s.Analyzer).PageBase(s.PageBase).TitleFallback(s.TitleFallback)
}

// ExtractFile extracts the outline of a PDF file using s
func ExtractFile(path string, s Settings) (*model.Outline, []Warning, error) {
	return Open(path).Apply(s).Outline()
}
