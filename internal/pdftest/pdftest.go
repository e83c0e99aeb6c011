// Package pdftest assembles small, valid PDF files for tests. Documents use
// the standard Helvetica fonts with explicit widths so parsers can position
// every glyph.
package pdftest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Line is one run of text drawn at a baseline position
type Line struct {
	Text string
	Size float64
	X, Y float64
	Bold bool
}

// Page is a US Letter page holding lines in drawing order
type Page struct {
	Lines []Line
}

// Document describes a PDF to build
type Document struct {
	// Title is written to the Info dictionary when not empty
	Title string
	Pages []Page
}

// Text appends a regular-weight line to the page
func (p Page) Text(text string, size, x, y float64) Page {
	p.Lines = append(p.Lines, Line{Text: text, Size: size, X: x, Y: y})
	return p
}

// BoldText appends a bold line to the page
func (p Page) BoldText(text string, size, x, y float64) Page {
	p.Lines = append(p.Lines, Line{Text: text, Size: size, X: x, Y: y, Bold: true})
	return p
}

// Bytes renders the document. Object numbers: 1 catalog, 2 page tree,
// 3 and 4 fonts, 5 info, then a page and content stream pair per page.
func (d Document) Bytes() []byte {
	var b strings.Builder
	var offsets []int

	obj := func(body string) {
		offsets = append(offsets, b.Len())
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	b.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	kids := make([]string, len(d.Pages))
	for i := range d.Pages {
		kids[i] = fmt.Sprintf("%d 0 R", 6+2*i)
	}

	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(d.Pages)))
	obj(fontDict("Helvetica"))
	obj(fontDict("Helvetica-Bold"))
	obj(fmt.Sprintf("<< /Title (%s) /Producer (pdftest) >>", escape(d.Title)))

	for i, page := range d.Pages {
		stream := contentStream(page)
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
			"/Resources << /Font << /F1 3 0 R /F2 4 0 R >> >> /Contents %d 0 R >>", 7+2*i))
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", len(offsets)+1)
	b.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}

	info := ""
	if d.Title != "" {
		info = " /Info 5 0 R"
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R%s >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, info, xref)

	return []byte(b.String())
}

// fontDict declares a standard font with a flat 500-unit width for the
// printable ASCII range
func fontDict(base string) string {
	widths := strings.TrimSpace(strings.Repeat("500 ", 126-32+1))
	return fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /%s /Encoding /WinAnsiEncoding "+
		"/FirstChar 32 /LastChar 126 /Widths [%s] >>", base, widths)
}

func contentStream(p Page) string {
	var b strings.Builder
	for _, l := range p.Lines {
		font := "F1"
		if l.Bold {
			font = "F2"
		}
		fmt.Fprintf(&b, "BT /%s %g Tf 1 0 0 1 %g %g Tm (%s) Tj ET\n", font, l.Size, l.X, l.Y, escape(l.Text))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "(", `\(`)
	return strings.ReplaceAll(s, ")", `\)`)
}

// Corrupt returns bytes that start like a PDF but cannot be parsed
func Corrupt() []byte {
	return []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog /Pages 2 0 R\nthis is not a pdf\n%%EOF\n")
}

// Sample returns a two-page document with a title, section headings and
// body text. Its expected outline is Title "Annual Report", H1 "Results"
// on page index 1, H2 "Overview" on page index 0 and H3 "Regional Detail"
// on page index 1.
func Sample() Document {
	body := "Body text paragraph line with ordinary words"

	first := Page{}.
		BoldText("Annual Report", 24, 72, 720).
		BoldText("Overview", 16, 72, 680)
	second := Page{}.
		BoldText("Results", 24, 72, 720)
	for i := 0; i < 8; i++ {
		first = first.Text(body, 10, 72, 660-float64(i)*14)
		second = second.Text(body, 10, 72, 700-float64(i)*14)
	}
	second = second.BoldText("Regional Detail", 13, 72, 560)

	return Document{Title: "Annual Report 2024", Pages: []Page{first, second}}
}

// Write renders doc into dir/name and returns the path
func Write(t testing.TB, dir, name string, doc Document) string {
	t.Helper()
	return WriteBytes(t, dir, name, doc.Bytes())
}

// WriteBytes writes raw data into dir/name and returns the path
func WriteBytes(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
