package reader

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/tsawler/pdfoutline/layout"
)

// ErrCorrupt is wrapped by every error caused by unparseable PDF content
var ErrCorrupt = errors.New("corrupt or unsupported PDF")

// maxInheritDepth bounds the walk up the page tree for inherited attributes
const maxInheritDepth = 32

// PageError reports a page that could not be decoded
type PageError struct {
	// Index is the 0-based page index
	Index int
	Err   error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d: %v", e.Index+1, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// Reader represents an open PDF document
type Reader struct {
	closer    io.Closer
	doc       *pdf.Reader
	pageCount int
	size      int64
}

// Open opens a PDF file and returns a Reader
func Open(filename string) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	r, err := NewReader(file, info.Size())
	if err != nil {
		file.Close()
		return nil, err
	}
	r.closer = file

	return r, nil
}

// NewReader parses the PDF held in ra. The caller keeps ownership of ra;
// Close on the returned Reader does not close it.
func NewReader(ra io.ReaderAt, size int64) (r *Reader, err error) {
	// The parser panics on some malformed cross-reference tables
	defer func() {
		if p := recover(); p != nil {
			r, err = nil, fmt.Errorf("%w: %v", ErrCorrupt, p)
		}
	}()

	doc, err := pdf.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	return &Reader{
		doc:       doc,
		pageCount: doc.NumPage(),
		size:      size,
	}, nil
}

// Close releases the underlying file when the Reader was created by Open
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// PageCount returns the number of pages in the document
func (r *Reader) PageCount() int {
	return r.pageCount
}

// Size returns the size of the PDF in bytes
func (r *Reader) Size() int64 {
	return r.size
}

// Page decodes the page at the 0-based index into text spans. A page with
// no content yields an empty PageSpans.
func (r *Reader) Page(index int) (page layout.PageSpans, err error) {
	if index < 0 || index >= r.pageCount {
		return layout.PageSpans{}, fmt.Errorf("page index %d out of range [0, %d)", index, r.pageCount)
	}

	defer func() {
		if p := recover(); p != nil {
			page = layout.PageSpans{PageIndex: index}
			err = &PageError{Index: index, Err: fmt.Errorf("%w: %v", ErrCorrupt, p)}
		}
	}()

	page.PageIndex = index

	p := r.doc.Page(index + 1)
	if p.V.IsNull() {
		return page, nil
	}

	page.Width, page.Height = mediaBox(p.V)

	texts := p.Content().Text
	page.Spans = make([]layout.Span, 0, len(texts))
	for _, t := range texts {
		page.Spans = append(page.Spans, spanFromText(t))
	}

	return page, nil
}

// Pages decodes every page in order. Pages that fail are left out of the
// result and reported in the returned errors, each a *PageError.
func (r *Reader) Pages() ([]layout.PageSpans, []error) {
	pages := make([]layout.PageSpans, 0, r.pageCount)
	var errs []error

	for i := 0; i < r.pageCount; i++ {
		page, err := r.Page(i)
		if err != nil {
			var pe *PageError
			if !errors.As(err, &pe) {
				err = &PageError{Index: i, Err: err}
			}
			errs = append(errs, err)
			continue
		}
		pages = append(pages, page)
	}

	return pages, errs
}

func spanFromText(t pdf.Text) layout.Span {
	name := BaseFontName(t.Font)
	return layout.Span{
		Text:     t.S,
		FontName: name,
		FontSize: t.FontSize,
		Bold:     IsBoldFont(name),
		X:        t.X,
		Y:        t.Y,
		Width:    t.W,
		Height:   t.FontSize,
	}
}

// mediaBox returns the page dimensions, following the Parent chain for an
// inherited MediaBox. Unknown dimensions are reported as zero.
func mediaBox(v pdf.Value) (width, height float64) {
	for i := 0; i < maxInheritDepth && !v.IsNull(); i++ {
		box := v.Key("MediaBox")
		if box.Len() == 4 {
			x0, y0 := box.Index(0).Float64(), box.Index(1).Float64()
			x1, y1 := box.Index(2).Float64(), box.Index(3).Float64()
			return math.Abs(x1 - x0), math.Abs(y1 - y0)
		}
		v = v.Key("Parent")
	}
	return 0, 0
}
