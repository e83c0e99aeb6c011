// Package format identifies PDF inputs by file extension and content.
package format

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format represents a recognised document format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// PDF indicates a PDF document.
	PDF
)

// headerWindow is how far into a file the %PDF- marker may appear. Readers
// tolerate leading junk before the header within the first kilobyte.
const headerWindow = 1024

var pdfMagic = []byte("%PDF-")

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case PDF:
		return "PDF"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case PDF:
		return ".pdf"
	default:
		return ""
	}
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return PDF
	}
	return Unknown
}

// DetectFromMagic checks the leading bytes for a PDF header.
func DetectFromMagic(data []byte) Format {
	if len(data) > headerWindow {
		data = data[:headerWindow]
	}
	if bytes.Contains(data, pdfMagic) {
		return PDF
	}
	return Unknown
}

// DetectFromReader reads the start of r and checks it for a PDF header.
func DetectFromReader(r io.ReaderAt) (Format, error) {
	magic := make([]byte, headerWindow)
	n, err := r.ReadAt(magic, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return Unknown, err
	}
	return DetectFromMagic(magic[:n]), nil
}

// DetectFile checks the content of the named file. The extension is not
// consulted.
func DetectFile(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return Unknown, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return DetectFromReader(f)
}

// IsPDF reports whether path has a .pdf extension and PDF content.
func IsPDF(path string) bool {
	if Detect(path) != PDF {
		return false
	}
	f, err := DetectFile(path)
	return err == nil && f == PDF
}

// Stem returns the base name of path without its extension
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
