package batch

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/tsawler/pdfoutline"
	"github.com/tsawler/pdfoutline/reader"
)

// Kind classifies a per-file failure
type Kind int

const (
	// KindOpen means the file could not be read
	KindOpen Kind = iota + 1
	// KindNotPDF means the file has no PDF header
	KindNotPDF
	// KindParse means the PDF structure could not be decoded
	KindParse
	// KindWrite means the JSON output could not be written
	KindWrite
)

func (k Kind) String() string {
	switch k {
	case KindOpen:
		return "open"
	case KindNotPDF:
		return "not-pdf"
	case KindParse:
		return "parse"
	case KindWrite:
		return "write"
	default:
		return "unknown"
	}
}

// FileError reports why a single input failed
type FileError struct {
	Path string
	Kind Kind
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s: %v", filepath.Base(e.Path), e.Kind, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// classify maps an extraction error to its Kind
func classify(err error) Kind {
	switch {
	case errors.Is(err, pdfoutline.ErrNotPDF):
		return KindNotPDF
	case errors.Is(err, reader.ErrCorrupt):
		return KindParse
	default:
		return KindOpen
	}
}
