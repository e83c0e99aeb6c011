// Package pdfoutline extracts a document outline (a title plus H1, H2 and
// H3 headings) from PDF files using the font sizes and weights embedded in
// the text layer.
//
// Basic usage:
//
//	outline, warnings, err := pdfoutline.Open("document.pdf").Outline()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", pdfoutline.FormatWarnings(warnings))
//	}
//
// With options:
//
//	outline, _, err := pdfoutline.Open("report.pdf").
//	    MinHeadingDelta(1.5).
//	    MaxHeadingChars(80).
//	    TitleFallback(pdfoutline.TitleFromMetadata).
//	    Outline()
//
// The outline is serialised with model.Outline.Encode. The analysis stages
// live in the layout package and can be used directly on spans from any
// source.
package pdfoutline

import (
	"github.com/tsawler/pdfoutline/reader"
)

// Open returns an Extractor for the named PDF file. The file is opened
// lazily by the first terminal operation and closed when it returns.
//
// Example:
//
//	outline, warnings, err := pdfoutline.Open("document.pdf").Outline()
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromReader creates an Extractor from an already-opened reader.Reader.
// This is useful when the PDF does not live in a file.
// Note: The caller is responsible for closing the reader.
//
// Example:
//
//	r, err := reader.NewReader(bytes.NewReader(data), int64(len(data)))
//	if err != nil {
//	    // handle error
//	}
//	outline, warnings, err := pdfoutline.FromReader(r).Outline()
func FromReader(r *reader.Reader) *Extractor {
	return &Extractor{
		reader:       r,
		ownsReader:   false,
		readerOpened: true,
		options:      defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	count := pdfoutline.Must(pdfoutline.Open("document.pdf").PageCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustOutline wraps a terminal operation returning a value, warnings and an
// error. It panics if the error is non-nil and discards the warnings.
//
// Example:
//
//	outline := pdfoutline.MustOutline(pdfoutline.Open("document.pdf").Outline())
func MustOutline[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
