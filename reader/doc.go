// Package reader opens PDF files and turns their pages into the positioned
// text spans consumed by the layout package.
//
// Text extraction uses github.com/ledongthuc/pdf, which reports one span
// per glyph with its font name, effective font size and baseline position.
// Document metadata and structural validation use pdfcpu.
//
// # Opening PDF Files
//
// Use [Open] to open a PDF file for reading:
//
//	r, err := reader.Open("document.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
// Or use [NewReader] with any io.ReaderAt.
//
// # Pages
//
// [Reader.Page] decodes a single page by 0-based index. [Reader.Pages]
// decodes every page and returns the failures separately so that one
// damaged content stream does not lose the rest of the document.
//
// # Bold Detection
//
// PDF fonts carry no reliable weight flag, so [IsBoldFont] looks for weight
// words in the font name after removing any subset prefix.
//
// # Errors
//
// Every parse failure wraps [ErrCorrupt]. Page failures are reported as
// [*PageError].
package reader
