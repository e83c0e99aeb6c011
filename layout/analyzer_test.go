package layout

import (
	"bytes"
	"testing"

	"github.com/tsawler/pdfoutline/model"
)

func TestNewAnalyzer(t *testing.T) {
	a := NewAnalyzer()
	if a == nil {
		t.Fatal("NewAnalyzer returned nil")
	}
	if a.Config().HeadingConfig.HeadingTierCount != 3 {
		t.Errorf("HeadingTierCount = %d, want 3", a.Config().HeadingConfig.HeadingTierCount)
	}
}

func TestAnalyze_EmptyDocument(t *testing.T) {
	a := NewAnalyzer()

	var outputs [][]byte
	for i := 0; i < 2; i++ {
		result := a.Analyze(nil)
		if len(result.Blocks) != 0 || len(result.Candidates) != 0 {
			t.Fatalf("Expected nothing from an empty document, got %+v", result)
		}
		b, err := result.Outline.Bytes("")
		if err != nil {
			t.Fatalf("Bytes failed: %v", err)
		}
		outputs = append(outputs, b)
	}

	want := []byte(`{"title":"","outline":[]}` + "\n")
	for i, out := range outputs {
		if !bytes.Equal(out, want) {
			t.Errorf("Run %d produced %q, want %q", i, out, want)
		}
	}
}

func TestAnalyze_Pages(t *testing.T) {
	a := NewAnalyzer()

	body := func(y float64) []Span {
		return glyphSpans("Body copy of the document that runs for a while", 72, y, 10, "Times-Roman", false)
	}

	pages := []PageSpans{
		{PageIndex: 0, Height: 792, Spans: concatSpans(
			glyphSpans("A Study of Layout", 72, 720, 24, "Helvetica-Bold", true),
			body(690), body(676), body(662),
			glyphSpans("Background", 72, 630, 16, "Helvetica-Bold", true),
			body(610), body(596),
		)},
		{PageIndex: 1, Height: 792, Spans: concatSpans(
			glyphSpans("Method", 72, 720, 16, "Helvetica-Bold", true),
			body(700),
			glyphSpans("Sampling", 72, 680, 12, "Helvetica-Bold", true),
			body(660), body(646), body(632),
		)},
	}

	result := a.Analyze(pages)

	if result.Baseline.BodySize != 10 {
		t.Errorf("BodySize = %v, want 10", result.Baseline.BodySize)
	}
	if result.Outline.Title != "A Study of Layout" {
		t.Errorf("Title = %q, want %q", result.Outline.Title, "A Study of Layout")
	}

	expected := []model.Entry{
		{Level: model.LevelH2, Text: "Background", Page: 0, PageIndex: 0},
		{Level: model.LevelH2, Text: "Method", Page: 1, PageIndex: 1},
		{Level: model.LevelH3, Text: "Sampling", Page: 1, PageIndex: 1},
	}
	if len(result.Outline.Headings) != len(expected) {
		t.Fatalf("Expected %d headings, got %+v", len(expected), result.Outline.Headings)
	}
	for i, e := range expected {
		if result.Outline.Headings[i] != e {
			t.Errorf("Heading %d = %+v, want %+v", i, result.Outline.Headings[i], e)
		}
	}

	if len(result.Candidates) != 4 || result.Candidates[0].Level != model.LevelTitle {
		t.Errorf("Expected title plus 3 headings in candidates, got %+v", result.Candidates)
	}
}

func TestAnalyze_OrderIsAscending(t *testing.T) {
	a := NewAnalyzer()

	blocks := []model.TextBlock{
		newBlock("Third", 16).at(2, 1).build(),
		bodyText(3000, 10, 0, 0),
		newBlock("Second", 16).at(1, 4).build(),
		newBlock("First", 16).at(1, 2).build(),
		newBlock("Fourth", 13).at(2, 3).build(),
	}

	result := a.AnalyzeBlocks(blocks)

	headings := result.Outline.Headings
	for i := 1; i < len(headings); i++ {
		prev, cur := headings[i-1], headings[i]
		if prev.PageIndex > cur.PageIndex {
			t.Errorf("Heading %q on page %d precedes %q on page %d", prev.Text, prev.PageIndex, cur.Text, cur.PageIndex)
		}
	}

	want := []string{"First", "Second", "Third", "Fourth"}
	if len(headings) != len(want) {
		t.Fatalf("Got %d headings, want %d", len(headings), len(want))
	}
	for i, text := range want {
		if headings[i].Text != text {
			t.Errorf("Heading %d = %q, want %q", i, headings[i].Text, text)
		}
	}
}

func TestAnalyze_DoesNotModifyBlocks(t *testing.T) {
	a := NewAnalyzer()
	blocks := []model.TextBlock{
		newBlock("Title Here", 20).at(0, 0).build(),
		bodyText(500, 10, 0, 1),
	}
	before := append([]model.TextBlock(nil), blocks...)

	a.AnalyzeBlocks(blocks)

	for i := range blocks {
		if blocks[i] != before[i] {
			t.Errorf("Block %d was modified", i)
		}
	}
}

func TestAnalyzerConfig_Custom(t *testing.T) {
	config := DefaultAnalyzerConfig()
	config.HeadingConfig.MinHeadingDelta = 5
	a := NewAnalyzerWithConfig(config)

	blocks := []model.TextBlock{
		bodyText(1000, 10, 0, 0),
		newBlock("Close", 13).at(1, 0).build(),
		newBlock("Far", 16).at(1, 1).build(),
	}

	result := a.AnalyzeBlocks(blocks)

	if len(result.Outline.Headings) != 1 || result.Outline.Headings[0].Text != "Far" {
		t.Errorf("Expected only the 16pt heading, got %+v", result.Outline.Headings)
	}
}
