package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Level is the role a block plays in the outline.
type Level int

const (
	LevelNone  Level = iota // body text, not part of the outline
	LevelTitle              // document title
	LevelH1                 // top-level heading
	LevelH2
	LevelH3
	LevelH4
	LevelH5
	LevelH6
)

// MaxHeadingTiers is the number of heading levels below the title.
const MaxHeadingTiers = 6

// HeadingLevel returns the heading level for a 1-based tier number,
// clamped to H1..H6.
func HeadingLevel(tier int) Level {
	if tier < 1 {
		tier = 1
	}
	if tier > MaxHeadingTiers {
		tier = MaxHeadingTiers
	}
	return LevelH1 + Level(tier-1)
}

// String returns the wire name of the level ("H1", "TITLE", ...)
func (l Level) String() string {
	switch {
	case l == LevelTitle:
		return "TITLE"
	case l >= LevelH1 && l <= LevelH6:
		return fmt.Sprintf("H%d", int(l-LevelH1)+1)
	default:
		return ""
	}
}

// IsHeading reports whether the level is one of H1..H6
func (l Level) IsHeading() bool {
	return l >= LevelH1 && l <= LevelH6
}

// MarshalText implements encoding.TextMarshaler
func (l Level) MarshalText() ([]byte, error) {
	if l == LevelNone {
		return nil, fmt.Errorf("level %d has no wire name", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (l *Level) UnmarshalText(text []byte) error {
	s := strings.ToUpper(strings.TrimSpace(string(text)))
	if s == "TITLE" {
		*l = LevelTitle
		return nil
	}
	var n int
	if _, err := fmt.Sscanf(s, "H%d", &n); err != nil || n < 1 || n > MaxHeadingTiers {
		return fmt.Errorf("invalid heading level %q", string(text))
	}
	*l = HeadingLevel(n)
	return nil
}

// Entry is one heading in an outline
type Entry struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`

	// Page is the page number as written to JSON (PageIndex + page base)
	Page int `json:"page"`

	// PageIndex is the 0-based page the heading was found on
	PageIndex int `json:"-"`
}

// Outline is the extraction result for a single document.
type Outline struct {
	Title    string  `json:"title"`
	Headings []Entry `json:"outline"`
}

// NewOutline returns an empty outline whose headings encode as [] rather
// than null.
func NewOutline() *Outline {
	return &Outline{Headings: []Entry{}}
}

// Len returns the number of headings (the title is not counted)
func (o *Outline) Len() int {
	if o == nil {
		return 0
	}
	return len(o.Headings)
}

// WithPageBase returns a copy of the outline whose entries number pages
// from base (0 or 1).
func (o *Outline) WithPageBase(base int) *Outline {
	out := &Outline{Headings: make([]Entry, 0, o.Len())}
	if o == nil {
		return out
	}
	out.Title = o.Title
	for _, e := range o.Headings {
		e.Page = e.PageIndex + base
		out.Headings = append(out.Headings, e)
	}
	return out
}

// MarshalJSON keeps the "outline" key an array even for empty outlines.
func (o Outline) MarshalJSON() ([]byte, error) {
	type wire Outline
	w := wire(o)
	if w.Headings == nil {
		w.Headings = []Entry{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(w); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Encode writes the outline as JSON. HTML characters are left unescaped so
// heading text round-trips byte for byte; indent "" produces compact output.
func (o *Outline) Encode(w io.Writer, indent string) error {
	if o == nil {
		o = NewOutline()
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(o)
}

// Bytes returns the encoded outline (see Encode)
func (o *Outline) Bytes(indent string) ([]byte, error) {
	var buf bytes.Buffer
	if err := o.Encode(&buf, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeOutline reads an outline previously written by Encode
func DecodeOutline(r io.Reader) (*Outline, error) {
	var o Outline
	if err := json.NewDecoder(r).Decode(&o); err != nil {
		return nil, fmt.Errorf("failed to decode outline: %w", err)
	}
	if o.Headings == nil {
		o.Headings = []Entry{}
	}
	return &o, nil
}
