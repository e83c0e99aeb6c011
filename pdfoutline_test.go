package pdfoutline

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/tsawler/pdfoutline/internal/pdftest"
	"github.com/tsawler/pdfoutline/model"
	"github.com/tsawler/pdfoutline/reader"
)

// noFirstPageHeading has body text on the first page and its only heading
// on the second, so no title is promoted
func noFirstPageHeading(title string) pdftest.Document {
	body := "Plain paragraph text that is long enough to dominate"
	first, second := pdftest.Page{}, pdftest.Page{}
	for i := 0; i < 6; i++ {
		first = first.Text(body, 11, 72, 700-float64(i)*14)
		second = second.Text(body, 11, 72, 660-float64(i)*14)
	}
	second = second.BoldText("Findings", 18, 72, 700)
	return pdftest.Document{Title: title, Pages: []pdftest.Page{first, second}}
}

func TestOpen_NonExistent(t *testing.T) {
	_, _, err := Open("nonexistent.pdf").Outline()
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestOpen_NoFilename(t *testing.T) {
	_, _, err := Open("").Outline()
	if err == nil {
		t.Error("expected error for empty filename")
	}
}

func TestOpen_NotPDF(t *testing.T) {
	path := pdftest.WriteBytes(t, t.TempDir(), "notes.pdf", []byte("just some notes\n"))

	_, _, err := Open(path).Outline()
	if !errors.Is(err, ErrNotPDF) {
		t.Errorf("expected ErrNotPDF, got %v", err)
	}
}

func TestOpen_Corrupt(t *testing.T) {
	path := pdftest.WriteBytes(t, t.TempDir(), "broken.pdf", pdftest.Corrupt())

	_, _, err := Open(path).Outline()
	if !errors.Is(err, reader.ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
}

func TestOutline_Sample(t *testing.T) {
	path := pdftest.Write(t, t.TempDir(), "sample.pdf", pdftest.Sample())

	outline, warnings, err := Open(path).Outline()
	if err != nil {
		t.Fatalf("Outline failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %s", FormatWarnings(warnings))
	}

	if outline.Title != "Annual Report" {
		t.Errorf("Title = %q, want %q", outline.Title, "Annual Report")
	}

	expected := []struct {
		level model.Level
		text  string
		page  int
	}{
		{model.LevelH2, "Overview", 1},
		{model.LevelH1, "Results", 2},
		{model.LevelH3, "Regional Detail", 2},
	}
	if len(outline.Headings) != len(expected) {
		t.Fatalf("expected %d headings, got %+v", len(expected), outline.Headings)
	}
	for i, e := range expected {
		h := outline.Headings[i]
		if h.Level != e.level || h.Text != e.text || h.Page != e.page {
			t.Errorf("heading %d = {%v %q %d}, want {%v %q %d}", i, h.Level, h.Text, h.Page, e.level, e.text, e.page)
		}
	}

	var buf bytes.Buffer
	if err := outline.Encode(&buf, ""); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := `{"title":"Annual Report","outline":[` +
		`{"level":"H2","text":"Overview","page":1},` +
		`{"level":"H1","text":"Results","page":2},` +
		`{"level":"H3","text":"Regional Detail","page":2}]}` + "\n"
	if buf.String() != want {
		t.Errorf("JSON = %s\nwant   %s", buf.String(), want)
	}
}

func TestOutline_PageBase(t *testing.T) {
	path := pdftest.Write(t, t.TempDir(), "sample.pdf", pdftest.Sample())

	outline, _, err := Open(path).PageBase(0).Outline()
	if err != nil {
		t.Fatalf("Outline failed: %v", err)
	}
	if len(outline.Headings) == 0 || outline.Headings[0].Page != 0 {
		t.Errorf("expected 0-based pages, got %+v", outline.Headings)
	}
}

func TestOutline_PageSelection(t *testing.T) {
	path := pdftest.Write(t, t.TempDir(), "sample.pdf", pdftest.Sample())

	outline, _, err := Open(path).Pages(2).Outline()
	if err != nil {
		t.Fatalf("Outline failed: %v", err)
	}

	// Page 2 alone has tiers 24 and 13, and no first page to take a title from
	if outline.Title != "" {
		t.Errorf("Title = %q, want empty", outline.Title)
	}
	if len(outline.Headings) != 2 {
		t.Fatalf("expected 2 headings, got %+v", outline.Headings)
	}
	if outline.Headings[0].Text != "Results" || outline.Headings[0].Level != model.LevelH1 {
		t.Errorf("heading 0 = %+v", outline.Headings[0])
	}
	if outline.Headings[1].Text != "Regional Detail" || outline.Headings[1].Level != model.LevelH2 {
		t.Errorf("heading 1 = %+v", outline.Headings[1])
	}

	if _, _, err := Open(path).Pages(5).Outline(); err == nil {
		t.Error("expected error for page out of range")
	}
}

func TestOutline_EmptyDocument(t *testing.T) {
	doc := pdftest.Document{Pages: []pdftest.Page{{}, {}}}
	path := pdftest.Write(t, t.TempDir(), "blank.pdf", doc)

	for i := 0; i < 2; i++ {
		outline, warnings, err := Open(path).Outline()
		if err != nil {
			t.Fatalf("Outline failed: %v", err)
		}

		b, err := outline.Bytes("")
		if err != nil {
			t.Fatalf("Bytes failed: %v", err)
		}
		if string(b) != `{"title":"","outline":[]}`+"\n" {
			t.Errorf("run %d: got %s", i, b)
		}

		if len(warnings) != 1 || warnings[0].Code != WarningNoText {
			t.Errorf("expected a single no-text warning, got %v", warnings)
		}
	}
}

func TestOutline_TitleFallback(t *testing.T) {
	dir := t.TempDir()
	path := pdftest.Write(t, dir, "quarterly_update-notes.pdf", noFirstPageHeading("Quarterly Update"))

	tests := []struct {
		name  string
		mode  TitleFallback
		title string
	}{
		{"none", TitleFromNone, ""},
		{"filename", TitleFromFilename, "quarterly update notes"},
		{"metadata", TitleFromMetadata, "Quarterly Update"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outline, warnings, err := Open(path).TitleFallback(tt.mode).Outline()
			if err != nil {
				t.Fatalf("Outline failed: %v", err)
			}
			if outline.Title != tt.title {
				t.Errorf("Title = %q, want %q", outline.Title, tt.title)
			}
			if len(warnings) != 0 {
				t.Errorf("unexpected warnings: %s", FormatWarnings(warnings))
			}
			if len(outline.Headings) != 1 || outline.Headings[0].Text != "Findings" {
				t.Errorf("expected the Findings heading, got %+v", outline.Headings)
			}
		})
	}
}

func TestOutline_TitleFallbackDoesNotOverridePromotedTitle(t *testing.T) {
	path := pdftest.Write(t, t.TempDir(), "sample.pdf", pdftest.Sample())

	outline, _, err := Open(path).TitleFallback(TitleFromMetadata).Outline()
	if err != nil {
		t.Fatalf("Outline failed: %v", err)
	}
	if outline.Title != "Annual Report" {
		t.Errorf("Title = %q, want the promoted heading", outline.Title)
	}
}

func TestFromReader(t *testing.T) {
	data := pdftest.Sample().Bytes()
	r, err := reader.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	outline, _, err := FromReader(r).Outline()
	if err != nil {
		t.Fatalf("Outline failed: %v", err)
	}
	if outline.Title != "Annual Report" {
		t.Errorf("Title = %q", outline.Title)
	}

	// A metadata fallback cannot work without a file name
	_, warnings, err := FromReader(r).Pages(2).TitleFallback(TitleFromMetadata).Outline()
	if err != nil {
		t.Fatalf("Outline failed: %v", err)
	}
	if len(warnings) != 1 || warnings[0].Code != WarningTitleFallback {
		t.Errorf("expected a title fallback warning, got %v", warnings)
	}
}

func TestBaselineAndBlocks(t *testing.T) {
	path := pdftest.Write(t, t.TempDir(), "sample.pdf", pdftest.Sample())

	baseline, _, err := Open(path).Baseline()
	if err != nil {
		t.Fatalf("Baseline failed: %v", err)
	}
	if baseline.BodySize != 10 {
		t.Errorf("BodySize = %v, want 10", baseline.BodySize)
	}
	want := []float64{24, 16, 13}
	if len(baseline.Thresholds) != len(want) {
		t.Fatalf("Thresholds = %v, want %v", baseline.Thresholds, want)
	}
	for i := range want {
		if baseline.Thresholds[i] != want[i] {
			t.Errorf("Thresholds = %v, want %v", baseline.Thresholds, want)
		}
	}

	blocks, _, err := Open(path).Blocks()
	if err != nil {
		t.Fatalf("Blocks failed: %v", err)
	}
	if len(blocks) == 0 || blocks[0].Text != "Annual Report" || !blocks[0].Bold {
		t.Errorf("unexpected first block: %+v", blocks)
	}
}

func TestPageCount(t *testing.T) {
	path := pdftest.Write(t, t.TempDir(), "sample.pdf", pdftest.Sample())

	ext := Open(path)
	defer ext.Close()

	count, err := ext.PageCount()
	if err != nil {
		t.Fatalf("PageCount failed: %v", err)
	}
	if count != 2 {
		t.Errorf("PageCount = %d, want 2", count)
	}
}

func TestExtractor_Immutability(t *testing.T) {
	base := Open("document.pdf")
	derived := base.MinHeadingDelta(2).HeadingTiers(2).Pages(1).PageBase(0)

	if base.options.config.HeadingConfig.MinHeadingDelta != 1.0 {
		t.Error("base MinHeadingDelta was modified")
	}
	if base.options.config.HeadingConfig.HeadingTierCount != 3 {
		t.Error("base HeadingTierCount was modified")
	}
	if len(base.options.pages) != 0 || base.options.pageBase != 1 {
		t.Error("base options were modified")
	}

	if derived.options.config.HeadingConfig.MinHeadingDelta != 2 ||
		derived.options.config.HeadingConfig.HeadingTierCount != 2 ||
		derived.options.pageBase != 0 {
		t.Errorf("derived options not applied: %+v", derived.options)
	}

	// Appending to one branch must not leak into another
	a := derived.Pages(2)
	b := derived.Pages(3)
	if len(a.options.pages) != 2 || len(b.options.pages) != 2 || a.options.pages[1] == b.options.pages[1] {
		t.Error("page selections share storage")
	}
}

func TestExtractor_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		ext  *Extractor
	}{
		{"negative delta", Open("x.pdf").MinHeadingDelta(-1)},
		{"zero max chars", Open("x.pdf").MaxHeadingChars(0)},
		{"zero tiers", Open("x.pdf").HeadingTiers(0)},
		{"too many tiers", Open("x.pdf").HeadingTiers(7)},
		{"negative min chars", Open("x.pdf").MinHeadingChars(-2)},
		{"margin too wide", Open("x.pdf").IgnoreMargins(0.5)},
		{"negative font size", Open("x.pdf").MinFontSize(-1)},
		{"unknown fallback", Open("x.pdf").TitleFallback("guess")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.ext.Outline()
			if err == nil {
				t.Fatal("expected configuration error")
			}
		})
	}

	// The first error wins
	_, _, err := Open("x.pdf").HeadingTiers(0).MaxHeadingChars(0).Outline()
	if err == nil || !strings.Contains(err.Error(), "heading tiers") {
		t.Errorf("expected the heading tiers error, got %v", err)
	}
}

func TestApplySettings(t *testing.T) {
	s := DefaultSettings()
	if s.PageBase != 1 || s.TitleFallback != TitleFromNone {
		t.Errorf("unexpected defaults: %+v", s)
	}

	s.PageBase = 0
	s.Analyzer.HeadingConfig.MaxHeadingChars = 40
	ext := Open("x.pdf").Apply(s)
	if ext.options.pageBase != 0 || ext.options.config.HeadingConfig.MaxHeadingChars != 40 {
		t.Errorf("settings not applied: %+v", ext.options)
	}

	path := pdftest.Write(t, t.TempDir(), "sample.pdf", pdftest.Sample())
	outline, _, err := ExtractFile(path, s)
	if err != nil {
		t.Fatalf("ExtractFile failed: %v", err)
	}
	if len(outline.Headings) == 0 || outline.Headings[0].Page != 0 {
		t.Errorf("expected 0-based pages, got %+v", outline.Headings)
	}
}

func TestParseTitleFallback(t *testing.T) {
	tests := []struct {
		input   string
		want    TitleFallback
		wantErr bool
	}{
		{"", TitleFromNone, false},
		{"none", TitleFromNone, false},
		{"Metadata", TitleFromMetadata, false},
		{" filename ", TitleFromFilename, false},
		{"first-line", "", true},
	}

	for _, tt := range tests {
		got, err := ParseTitleFallback(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTitleFallback(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTitleFallback(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTitleFromFilename(t *testing.T) {
	tests := map[string]string{
		"/in/annual_report-2024.pdf": "annual report 2024",
		"plain.pdf":                  "plain",
		"__odd--name__.pdf":          "odd name",
	}
	for in, want := range tests {
		if got := titleFromFilename(in); got != want {
			t.Errorf("titleFromFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatWarnings(t *testing.T) {
	warnings := []Warning{
		{Code: WarningPageSkipped, Page: 3, Message: "bad stream"},
		{Code: WarningNoText, Message: "no text"},
	}

	got := FormatWarnings(warnings)
	want := "page-skipped: page 3: bad stream; no-text: no text"
	if got != want {
		t.Errorf("FormatWarnings() = %q, want %q", got, want)
	}
	if FormatWarnings(nil) != "" {
		t.Error("expected empty string for no warnings")
	}
}

func TestMust(t *testing.T) {
	if got := Must(42, nil); got != 42 {
		t.Errorf("Must returned %d", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected Must to panic")
		}
	}()
	Must(0, errors.New("boom"))
}
