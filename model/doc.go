// Package model provides the data types shared by every stage of outline
// extraction.
//
// # Blocks
//
// A [TextBlock] is one line or run of text that shares a single style. The
// collector in the layout package produces blocks from raw parser spans and
// nothing downstream rewrites them:
//
//	block := model.TextBlock{
//	    Text:      "Introduction",
//	    FontSize:  16,
//	    Bold:      true,
//	    PageIndex: 0,
//	    Order:     3,
//	}
//
// # Outline
//
// An [Outline] is the final result for one document: the detected title and
// the headings in reading order. Its JSON form is the wire format consumed by
// indexing pipelines:
//
//	{"title": "...", "outline": [{"level": "H1", "text": "...", "page": 1}]}
//
// # Geometry
//
// [BBox] holds block positions in PDF page coordinates (points, origin at
// the bottom-left corner).
package model
