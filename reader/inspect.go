package reader

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Info is document-level metadata
type Info struct {
	// PageCount is the number of pages reported by the page tree
	PageCount int

	// Title is the Info dictionary title, empty when absent
	Title string
}

var disableConfigDir sync.Once

// Inspect validates the PDF at path and reads its metadata
func Inspect(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return InspectReader(f)
}

// InspectReader validates the PDF read from rs and reads its metadata
func InspectReader(rs io.ReadSeeker) (info *Info, err error) {
	// pdfcpu would otherwise create a configuration directory in the
	// user's home on first use
	disableConfigDir.Do(api.DisableConfigDir)

	defer func() {
		if p := recover(); p != nil {
			info, err = nil, fmt.Errorf("%w: %v", ErrCorrupt, p)
		}
	}()

	ctx, err := api.ReadValidateAndOptimize(rs, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	return &Info{
		PageCount: ctx.PageCount,
		Title:     strings.TrimSpace(ctx.Title),
	}, nil
}
