// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CompetitorProfile describes one competitor and the features attributed to
// it. A feature is attributed only when it co-occurs with the competitor in
// source text.
type CompetitorProfile struct {
	Name     string   `json:"name" yaml:"name"`
	Features []string `json:"features,omitempty" yaml:"features,omitempty"`
}

// SWOT holds the four standard analysis quadrants.
type SWOT struct {
	Strengths     []string `json:"strengths,omitempty" yaml:"strengths,omitempty"`
	Weaknesses    []string `json:"weaknesses,omitempty" yaml:"weaknesses,omitempty"`
	Opportunities []string `json:"opportunities,omitempty" yaml:"opportunities,omitempty"`
	Threats       []string `json:"threats,omitempty" yaml:"threats,omitempty"`
}

// MarketData summarizes market evidence found in the sources.
type MarketData struct {
	Size   string   `json:"size,omitempty" yaml:"size,omitempty"`
	Growth string   `json:"growth,omitempty" yaml:"growth,omitempty"`
	Trends []string `json:"trends,omitempty" yaml:"trends,omitempty"`
}

// AnalysisResult is the singleton deep analysis for a task, replaced
// wholesale on every analyzer run.
type AnalysisResult struct {
	Features    []string            `json:"features,omitempty" yaml:"features,omitempty"`
	Competitors []CompetitorProfile `json:"competitors,omitempty" yaml:"competitors,omitempty"`
	SWOT        SWOT                `json:"swot" yaml:"swot"`
	Market      MarketData          `json:"market" yaml:"market"`
	TechStack   []string            `json:"tech_stack,omitempty" yaml:"tech_stack,omitempty"`

	// ConfidenceScore rates trust in the analysis from 0 to 100. The
	// rule-based fallback path fixes it low to signal reduced trust.
	ConfidenceScore int `json:"confidence_score" yaml:"confidence_score"`
}

// HasMarketData reports whether any market evidence was found.
func (a *AnalysisResult) HasMarketData() bool {
	return a.Market.Size != "" || a.Market.Growth != "" || len(a.Market.Trends) > 0
}

// QualityCheck is the quality gate's verdict for one iteration. It is
// recomputed from current state every cycle, never stored independently.
type QualityCheck struct {
	// Score is the weighted coverage score (0-100) after trust penalties.
	Score float64 `json:"score" yaml:"score"`

	// IsComplete is true when the score meets the plan's completion
	// threshold or the iteration ceiling is reached.
	IsComplete bool `json:"is_complete" yaml:"is_complete"`

	Issues            []string `json:"issues,omitempty" yaml:"issues,omitempty"`
	MissingDimensions []string `json:"missing_dimensions,omitempty" yaml:"missing_dimensions,omitempty"`

	// DimensionScores maps each scored dimension to its 0-100 coverage.
	DimensionScores map[string]float64 `json:"dimension_scores,omitempty" yaml:"dimension_scores,omitempty"`

	// RecommendedQueries are supplemental queries (at most 3) targeting the
	// weakest dimensions, for the next search cycle.
	RecommendedQueries []SearchQuery `json:"recommended_queries,omitempty" yaml:"recommended_queries,omitempty"`
}

// Snapshot is the full durable state of a task: everything needed to resume
// after a crash. The checkpoint store persists it atomically after every
// stage transition.
type Snapshot struct {
	Task        ResearchTask          `json:"task" yaml:"task"`
	Plan        *SearchPlan           `json:"plan,omitempty" yaml:"plan,omitempty"`
	Results     []SearchResult        `json:"results,omitempty" yaml:"results,omitempty"`
	Extractions []ExtractionResult    `json:"extractions,omitempty" yaml:"extractions,omitempty"`
	Summary     *ComprehensiveSummary `json:"summary,omitempty" yaml:"summary,omitempty"`
	Analysis    *AnalysisResult       `json:"analysis,omitempty" yaml:"analysis,omitempty"`
	Quality     *QualityCheck         `json:"quality,omitempty" yaml:"quality,omitempty"`
}
