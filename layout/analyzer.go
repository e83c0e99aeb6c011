package layout

import (
	"github.com/tsawler/pdfoutline/model"
)

// AnalyzerConfig holds the configuration of every stage of the analyzer
type AnalyzerConfig struct {
	// CollectorConfig configures span merging
	CollectorConfig CollectorConfig

	// HeadingConfig configures the baseline and the classifier
	HeadingConfig HeadingConfig
}

// DefaultAnalyzerConfig returns a configuration with sensible defaults
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		CollectorConfig: DefaultCollectorConfig(),
		HeadingConfig:   DefaultHeadingConfig(),
	}
}

// AnalysisResult holds the output of every stage for one document
type AnalysisResult struct {
	// Blocks are the collected text blocks in reading order
	Blocks []model.TextBlock

	// Baseline is the document's style baseline
	Baseline StyleBaseline

	// Candidates are the headings after deduplication, title included
	Candidates []Candidate

	// Outline is the final result
	Outline *model.Outline
}

// Analyzer runs the collector, the baseline analysis and the classifier in
// sequence. It holds no per-document state and is safe for concurrent use.
type Analyzer struct {
	config     AnalyzerConfig
	collector  *BlockCollector
	classifier *HeadingClassifier
}

// NewAnalyzer creates an analyzer with default configuration
func NewAnalyzer() *Analyzer {
	return NewAnalyzerWithConfig(DefaultAnalyzerConfig())
}

// NewAnalyzerWithConfig creates an analyzer with custom configuration
func NewAnalyzerWithConfig(config AnalyzerConfig) *Analyzer {
	return &Analyzer{
		config:     config,
		collector:  NewBlockCollectorWithConfig(config.CollectorConfig),
		classifier: NewHeadingClassifierWithConfig(config.HeadingConfig),
	}
}

// Config returns the analyzer configuration
func (a *Analyzer) Config() AnalyzerConfig {
	return a.config
}

// Analyze extracts the outline from the raw spans of a document
func (a *Analyzer) Analyze(pages []PageSpans) *AnalysisResult {
	return a.AnalyzeBlocks(a.collector.Collect(pages))
}

// AnalyzeBlocks extracts the outline from already collected blocks
func (a *Analyzer) AnalyzeBlocks(blocks []model.TextBlock) *AnalysisResult {
	baseline := a.classifier.Baseline(blocks)
	candidates := DedupeCandidates(a.classifier.Candidates(blocks, baseline))
	title, headings := PromoteTitle(candidates)

	all := make([]Candidate, 0, len(candidates))
	if title != nil {
		all = append(all, *title)
	}
	all = append(all, headings...)

	return &AnalysisResult{
		Blocks:     blocks,
		Baseline:   baseline,
		Candidates: all,
		Outline:    buildOutline(title, headings),
	}
}
