// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SearchResult is one page discovered by a provider. The URL is the dedup
// key: across the whole lifetime of a task there is exactly one SearchResult
// per distinct URL.
type SearchResult struct {
	// URL is the canonical page address and global dedup key.
	URL string `json:"url" yaml:"url"`

	// Title is the page title as returned by the provider.
	Title string `json:"title" yaml:"title"`

	// Content is the snippet or, after enrichment, the full page body.
	Content string `json:"content" yaml:"content"`

	// Provider identifies which backend found this result (e.g. "brave").
	Provider string `json:"provider" yaml:"provider"`

	// Dimension is the research facet of the query that found the result.
	Dimension string `json:"dimension" yaml:"dimension"`

	// QueryID links back to the originating SearchQuery.
	QueryID string `json:"query_id" yaml:"query_id"`

	// Enriched is set when Content was replaced with a full-page fetch.
	Enriched bool `json:"enriched" yaml:"enriched"`
}

// ExtractionResult is the structured extraction for one SearchResult,
// produced by the summarizer's map phase. It is an immutable fact record.
type ExtractionResult struct {
	// URL links the extraction to its SearchResult.
	URL string `json:"url" yaml:"url"`

	KeyPoints   []string `json:"key_points,omitempty" yaml:"key_points,omitempty"`
	Features    []string `json:"features,omitempty" yaml:"features,omitempty"`
	Competitors []string `json:"competitors,omitempty" yaml:"competitors,omitempty"`
	TechStack   []string `json:"tech_stack,omitempty" yaml:"tech_stack,omitempty"`
	UseCases    []string `json:"use_cases,omitempty" yaml:"use_cases,omitempty"`
	MarketInfo  []string `json:"market_info,omitempty" yaml:"market_info,omitempty"`
	Limitations []string `json:"limitations,omitempty" yaml:"limitations,omitempty"`

	// QualityScore rates the extraction from 1 (fallback/empty) to 10.
	QualityScore int `json:"quality_score" yaml:"quality_score"`
}

// SummaryQuality rates the comprehensive summary on three 0-100 axes.
type SummaryQuality struct {
	Completeness int `json:"completeness" yaml:"completeness"`
	Reliability  int `json:"reliability" yaml:"reliability"`
	Depth        int `json:"depth" yaml:"depth"`
}

// ComprehensiveSummary is the singleton reduce output for a task. Every
// reduce pass replaces it wholesale; it is never patched incrementally.
type ComprehensiveSummary struct {
	Features    []string `json:"features,omitempty" yaml:"features,omitempty"`
	Competitors []string `json:"competitors,omitempty" yaml:"competitors,omitempty"`
	TechStack   []string `json:"tech_stack,omitempty" yaml:"tech_stack,omitempty"`
	UseCases    []string `json:"use_cases,omitempty" yaml:"use_cases,omitempty"`
	MarketInfo  []string `json:"market_info,omitempty" yaml:"market_info,omitempty"`
	Limitations []string `json:"limitations,omitempty" yaml:"limitations,omitempty"`

	// KeyFindings aggregates the per-result key points.
	KeyFindings []string `json:"key_findings,omitempty" yaml:"key_findings,omitempty"`

	// CoreThemes are synthesis-level themes across all sources.
	CoreThemes []string `json:"core_themes,omitempty" yaml:"core_themes,omitempty"`

	// DataGaps names facets with little or no evidence.
	DataGaps []string `json:"data_gaps,omitempty" yaml:"data_gaps,omitempty"`

	Quality SummaryQuality `json:"quality" yaml:"quality"`
}
