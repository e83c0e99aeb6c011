package layout

import (
	"sort"
	"strings"

	"github.com/tsawler/pdfoutline/model"
)

// Candidate is a block the classifier accepted as title or heading
type Candidate struct {
	Level model.Level
	Rule  string
	Block model.TextBlock
}

// Candidates classifies every block and returns the headings in reading
// order: ascending page, then ascending order within the page.
func (c *HeadingClassifier) Candidates(blocks []model.TextBlock, baseline StyleBaseline) []Candidate {
	var candidates []Candidate
	for _, b := range blocks {
		if d := c.Classify(b, baseline); d.IsHeading() {
			candidates = append(candidates, Candidate{Level: d.Level, Rule: d.Rule, Block: b})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		bi, bj := candidates[i].Block, candidates[j].Block
		if bi.PageIndex != bj.PageIndex {
			return bi.PageIndex < bj.PageIndex
		}
		return bi.Order < bj.Order
	})

	return candidates
}

// Assemble runs classification, deduplication and title promotion and
// returns the outline. It never fails: a document without headings yields
// an empty outline. Entry pages are 0-based; see model.Outline.WithPageBase.
func (c *HeadingClassifier) Assemble(blocks []model.TextBlock, baseline StyleBaseline) *model.Outline {
	candidates := DedupeCandidates(c.Candidates(blocks, baseline))
	return buildOutline(PromoteTitle(candidates))
}

// buildOutline converts the promoted title and remaining candidates into
// the outline model
func buildOutline(title *Candidate, headings []Candidate) *model.Outline {
	outline := model.NewOutline()
	if title != nil {
		outline.Title = title.Block.Text
	}
	for _, h := range headings {
		outline.Headings = append(outline.Headings, model.Entry{
			Level:     h.Level,
			Text:      h.Block.Text,
			Page:      h.Block.PageIndex,
			PageIndex: h.Block.PageIndex,
		})
	}
	return outline
}

// DedupeCandidates drops repeated heading text within a page. The earlier
// candidate normally survives; when the two are at the same level and
// adjacent in block order, the one closer to the left margin is kept.
// Repeats on different pages are left alone. Input must be in reading order.
func DedupeCandidates(candidates []Candidate) []Candidate {
	if len(candidates) == 0 {
		return candidates
	}

	kept := make([]Candidate, 0, len(candidates))
	seen := make(map[string]int)
	page := candidates[0].Block.PageIndex

	for _, cand := range candidates {
		if cand.Block.PageIndex != page {
			page = cand.Block.PageIndex
			seen = make(map[string]int)
		}

		key := dedupeKey(cand.Block.Text)
		pos, dup := seen[key]
		if !dup {
			seen[key] = len(kept)
			kept = append(kept, cand)
			continue
		}

		prev := kept[pos]
		if prev.Level == cand.Level &&
			cand.Block.Order-prev.Block.Order == 1 &&
			cand.Block.BBox.X < prev.Block.BBox.X {
			kept[pos] = cand
		}
	}

	return kept
}

// dedupeKey folds case and whitespace so near-identical text compares equal
func dedupeKey(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// PromoteTitle picks the title among the H1 candidates on the first page:
// the largest font size wins, ties go to the earliest block. The title is
// removed from the returned headings. Without a first-page H1 there is no
// title.
func PromoteTitle(candidates []Candidate) (*Candidate, []Candidate) {
	best := -1
	for i, cand := range candidates {
		if cand.Level != model.LevelH1 || cand.Block.PageIndex != 0 {
			continue
		}
		if best < 0 || cand.Block.RoundedSize() > candidates[best].Block.RoundedSize() ||
			(cand.Block.RoundedSize() == candidates[best].Block.RoundedSize() &&
				cand.Block.Order < candidates[best].Block.Order) {
			best = i
		}
	}

	if best < 0 {
		return nil, candidates
	}

	title := candidates[best]
	title.Level = model.LevelTitle

	rest := make([]Candidate, 0, len(candidates)-1)
	rest = append(rest, candidates[:best]...)
	rest = append(rest, candidates[best+1:]...)
	return &title, rest
}
