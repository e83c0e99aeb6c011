// Package layout recovers a document outline from the font metadata of its
// text.
//
// Processing runs in three stages, each producing a new value from the
// previous one:
//
//   - [BlockCollector] merges parser spans into [model.TextBlock] lines
//   - [AnalyzeBaseline] measures the body text size and the larger sizes
//     that become heading tiers ([StyleBaseline])
//   - [HeadingClassifier] applies an ordered rule list to every block and
//     assembles the title and headings
//
// The [Analyzer] runs all three:
//
//	analyzer := layout.NewAnalyzer()
//	result := analyzer.Analyze(pages)
//	fmt.Println(result.Outline.Title)
//
// # Baseline
//
// Sizes are rounded to 0.1pt and weighted by character count, so long body
// paragraphs dominate even when headings are frequent. Sizes at least
// MinHeadingDelta above the body size become tiers, largest first.
//
// # Rules
//
// Rules are evaluated in order and the first match wins:
//
//  1. size-tier: the block size equals a tier threshold
//  2. bold-fallback: bold text larger than body text goes to the lowest tier
//
// Both require the block to be brief: at most MaxHeadingChars characters
// and not ending in sentence punctuation.
//
// # Configuration
//
//	config := layout.DefaultAnalyzerConfig()
//	config.HeadingConfig.MaxHeadingChars = 80
//	analyzer := layout.NewAnalyzerWithConfig(config)
package layout
