package layout

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tsawler/pdfoutline/model"
)

// HeadingConfig holds configuration for baseline analysis and heading
// classification
type HeadingConfig struct {
	// MinHeadingDelta is how many points a size must exceed the body size by
	// to become a heading tier
	// Default: 1.0
	MinHeadingDelta float64

	// MaxHeadingChars is the longest text, in characters, accepted as a heading
	// Default: 120
	MaxHeadingChars int

	// HeadingTierCount is the number of size tiers mapped to H1, H2, ...
	// Default: 3
	HeadingTierCount int

	// TerminalPunctuation lists characters that mark a block as prose when
	// they end it
	// Default: ".;,"
	TerminalPunctuation string

	// MinHeadingChars rejects headings shorter than this. 0 disables the check.
	// Default: 0
	MinHeadingChars int

	// RequireLetter rejects headings that contain no letter at all
	// Default: false
	RequireLetter bool
}

// DefaultHeadingConfig returns sensible default configuration
func DefaultHeadingConfig() HeadingConfig {
	return HeadingConfig{
		MinHeadingDelta:     1.0,
		MaxHeadingChars:     120,
		HeadingTierCount:    3,
		TerminalPunctuation: ".;,",
	}
}

// withDefaults replaces unusable values with their defaults
func (c HeadingConfig) withDefaults() HeadingConfig {
	def := DefaultHeadingConfig()
	if c.MinHeadingDelta < 0 {
		c.MinHeadingDelta = def.MinHeadingDelta
	}
	if c.MaxHeadingChars <= 0 {
		c.MaxHeadingChars = def.MaxHeadingChars
	}
	if c.HeadingTierCount <= 0 {
		c.HeadingTierCount = def.HeadingTierCount
	}
	if c.HeadingTierCount > model.MaxHeadingTiers {
		c.HeadingTierCount = model.MaxHeadingTiers
	}
	if c.TerminalPunctuation == "" {
		c.TerminalPunctuation = def.TerminalPunctuation
	}
	return c
}

// IsBrief reports whether text is short enough to be a heading label and
// does not end like a sentence
func (c HeadingConfig) IsBrief(text string) bool {
	text = strings.TrimSpace(text)
	n := utf8.RuneCountInString(text)
	if n == 0 || n > c.MaxHeadingChars {
		return false
	}
	if c.MinHeadingChars > 0 && n < c.MinHeadingChars {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(text)
	if strings.ContainsRune(c.TerminalPunctuation, last) {
		return false
	}
	if c.RequireLetter && strings.IndexFunc(text, unicode.IsLetter) < 0 {
		return false
	}
	return true
}

// Rule is one entry of the classifier's decision list. It returns the level
// for the block, or false when the rule does not apply.
type Rule struct {
	Name  string
	Match func(block model.TextBlock, baseline StyleBaseline) (model.Level, bool)
}

// Decision is the outcome of classifying one block
type Decision struct {
	// Level is LevelNone for body text
	Level model.Level

	// Rule names the rule that matched, empty for body text
	Rule string
}

// IsHeading reports whether the block was classified as a heading
func (d Decision) IsHeading() bool {
	return d.Level != model.LevelNone
}

// Rule names
const (
	RuleSizeTier     = "size-tier"
	RuleBoldFallback = "bold-fallback"
)

// HeadingClassifier assigns outline levels to blocks by evaluating an
// ordered list of rules against the document's style baseline
type HeadingClassifier struct {
	config HeadingConfig
	rules  []Rule
}

// NewHeadingClassifier creates a classifier with default configuration
func NewHeadingClassifier() *HeadingClassifier {
	return NewHeadingClassifierWithConfig(DefaultHeadingConfig())
}

// NewHeadingClassifierWithConfig creates a classifier with custom configuration
func NewHeadingClassifierWithConfig(config HeadingConfig) *HeadingClassifier {
	c := &HeadingClassifier{config: config.withDefaults()}
	c.rules = []Rule{
		{Name: RuleSizeTier, Match: c.matchSizeTier},
		{Name: RuleBoldFallback, Match: c.matchBoldFallback},
	}
	return c
}

// Config returns the effective configuration
func (c *HeadingClassifier) Config() HeadingConfig {
	return c.config
}

// Rules returns the decision list in evaluation order
func (c *HeadingClassifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Baseline computes the style baseline using the classifier's configuration
func (c *HeadingClassifier) Baseline(blocks []model.TextBlock) StyleBaseline {
	return AnalyzeBaseline(blocks, c.config)
}

// Classify runs the decision list for a single block. The first matching
// rule wins; a block no rule matches is body text.
func (c *HeadingClassifier) Classify(block model.TextBlock, baseline StyleBaseline) Decision {
	if !block.IsValid() {
		return Decision{}
	}
	for _, rule := range c.rules {
		if level, ok := rule.Match(block, baseline); ok {
			return Decision{Level: level, Rule: rule.Name}
		}
	}
	return Decision{}
}

// matchSizeTier classifies blocks whose size equals one of the heading
// thresholds
func (c *HeadingClassifier) matchSizeTier(block model.TextBlock, baseline StyleBaseline) (model.Level, bool) {
	level, ok := baseline.TierFor(block.FontSize)
	if !ok || !c.config.IsBrief(block.Text) {
		return model.LevelNone, false
	}
	return level, true
}

// matchBoldFallback puts bold text that is only slightly larger than body
// text into the lowest heading tier
func (c *HeadingClassifier) matchBoldFallback(block model.TextBlock, baseline StyleBaseline) (model.Level, bool) {
	if !block.Bold || !baseline.LargerThanBody(block.FontSize) {
		return model.LevelNone, false
	}
	if !c.config.IsBrief(block.Text) {
		return model.LevelNone, false
	}
	return model.HeadingLevel(c.config.HeadingTierCount), true
}
