package layout

import (
	"sort"

	"github.com/tsawler/pdfoutline/model"
)

// sizeEpsilon absorbs float error left after rounding sizes to 0.1pt
const sizeEpsilon = 1e-6

// tierTolerance is how far a rounded size may be from a threshold and
// still match it
const tierTolerance = 0.05

// StyleBaseline is the document-relative description of body text and the
// font sizes that rank above it.
type StyleBaseline struct {
	// BodySize is the rounded font size carrying the most characters
	BodySize float64

	// Histogram maps rounded font size to total character count
	Histogram map[float64]int

	// Thresholds are the heading sizes, largest first. Index 0 is the H1
	// tier, index 1 H2 and so on.
	Thresholds []float64
}

// AnalyzeBaseline computes the style baseline of a document. It is a pure
// function of its inputs; invalid blocks are ignored.
func AnalyzeBaseline(blocks []model.TextBlock, config HeadingConfig) StyleBaseline {
	config = config.withDefaults()

	baseline := StyleBaseline{
		Histogram: make(map[float64]int),
	}

	for _, b := range blocks {
		if !b.IsValid() {
			continue
		}
		baseline.Histogram[b.RoundedSize()] += b.CharCount()
	}

	if len(baseline.Histogram) == 0 {
		return baseline
	}

	// Ties go to the smaller size so the result does not depend on map order
	sizes := baseline.Sizes()
	maxCount := -1
	for _, size := range sizes {
		if count := baseline.Histogram[size]; count > maxCount {
			maxCount = count
			baseline.BodySize = size
		}
	}

	// Sizes come back ascending; walk them from the top
	for i := len(sizes) - 1; i >= 0; i-- {
		size := sizes[i]
		if size <= baseline.BodySize+sizeEpsilon {
			break
		}
		if size-baseline.BodySize+sizeEpsilon < config.MinHeadingDelta {
			continue
		}
		baseline.Thresholds = append(baseline.Thresholds, size)
		if len(baseline.Thresholds) == config.HeadingTierCount {
			break
		}
	}

	return baseline
}

// Sizes returns the distinct rounded sizes in ascending order
func (b StyleBaseline) Sizes() []float64 {
	sizes := make([]float64, 0, len(b.Histogram))
	for size := range b.Histogram {
		sizes = append(sizes, size)
	}
	sort.Float64s(sizes)
	return sizes
}

// HasBody reports whether any text was measured
func (b StyleBaseline) HasBody() bool {
	return len(b.Histogram) > 0
}

// TotalChars returns the number of characters measured
func (b StyleBaseline) TotalChars() int {
	total := 0
	for _, n := range b.Histogram {
		total += n
	}
	return total
}

// TierFor returns the heading level whose threshold matches size
func (b StyleBaseline) TierFor(size float64) (model.Level, bool) {
	size = model.RoundSize(size)
	for i, threshold := range b.Thresholds {
		if abs(size-threshold) <= tierTolerance {
			return model.HeadingLevel(i + 1), true
		}
	}
	return model.LevelNone, false
}

// LargerThanBody reports whether size is strictly above the body size
func (b StyleBaseline) LargerThanBody(size float64) bool {
	if !b.HasBody() {
		return false
	}
	return model.RoundSize(size) > b.BodySize+sizeEpsilon
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
