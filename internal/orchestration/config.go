package orchestration

// QualityConfig controls the agent draft quality gate and retry budget.
// The thresholds are product-tuned values, not algorithmic requirements,
// so they stay configurable.
type QualityConfig struct {
	// MinWords is the word count a draft must reach to pass the gate.
	MinWords int
	// TargetWords is the word count requested in corrective follow-ups.
	TargetWords int
	// MinHeadings is the minimum number of markdown headings.
	MinHeadings int
	// MaxAttempts bounds total backend calls per agent run (first draft
	// plus corrective retries).
	MaxAttempts int
	// MaxImages caps how many extracted images an agent embeds.
	MaxImages int
}

// DefaultQualityConfig returns the production quality gate settings.
func DefaultQualityConfig() QualityConfig {
	return QualityConfig{
		MinWords:    700,
		TargetWords: 800,
		MinHeadings: 3,
		MaxAttempts: 3,
		MaxImages:   2,
	}
}

// AssembleConfig controls section validation and deduplication during
// final assembly.
type AssembleConfig struct {
	// MinWords is the minimum non-heading word count for a section.
	MinWords int
	// MinLines is the minimum number of non-heading content lines.
	MinLines int
	// MinFlatChars is the minimum character count after stripping all
	// markdown syntax.
	MinFlatChars int
	// SimilarityThreshold rejects a candidate whose word-set overlap
	// ratio with an accepted section exceeds it.
	SimilarityThreshold float64
	// PreviewChars is the length of cross-reference content previews.
	PreviewChars int
}

// DefaultAssembleConfig returns the production assembly settings.
func DefaultAssembleConfig() AssembleConfig {
	return AssembleConfig{
		MinWords:            100,
		MinLines:            5,
		MinFlatChars:        100,
		SimilarityThreshold: 0.65,
		PreviewChars:        300,
	}
}
