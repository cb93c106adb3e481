// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Research dimensions bucket queries, results, and coverage scoring.
const (
	DimensionFeatures     = "functional features"
	DimensionCompetitors  = "competitor analysis"
	DimensionTechnical    = "technical architecture"
	DimensionMarket       = "market size and trends"
	DimensionUseCases     = "use cases"
)

// DefaultDimensions is the rule-based dimension set used when no
// text-generation collaborator is configured.
func DefaultDimensions() []string {
	return []string{
		DimensionFeatures,
		DimensionCompetitors,
		DimensionTechnical,
		DimensionMarket,
		DimensionUseCases,
	}
}

// SearchQuery is one planned query. Queries are immutable once issued:
// supplemental queries get fresh ids and are appended, never edited in place.
type SearchQuery struct {
	// ID is the query identifier (UUID).
	ID string `json:"id" yaml:"id"`

	// Text is the query string sent to providers.
	Text string `json:"text" yaml:"text"`

	// Purpose explains what the query is meant to uncover.
	Purpose string `json:"purpose,omitempty" yaml:"purpose,omitempty"`

	// Dimension is the research facet the query serves.
	Dimension string `json:"dimension" yaml:"dimension"`

	// Priority orders execution: 1 is highest, 5 lowest.
	Priority int `json:"priority" yaml:"priority"`

	// Hints is free-text guidance passed through to providers.
	Hints string `json:"hints,omitempty" yaml:"hints,omitempty"`

	// Executed is set once the executor has issued the query. It is the only
	// field written after creation; identity fields never change.
	Executed bool `json:"executed" yaml:"executed"`
}

// QualityThresholds are the minimum coverage counts and the completion score
// the quality gate checks against.
type QualityThresholds struct {
	MinFeatures      int `json:"min_features" yaml:"min_features"`
	MinCompetitors   int `json:"min_competitors" yaml:"min_competitors"`
	MinUseCases      int `json:"min_use_cases" yaml:"min_use_cases"`
	MinTechStack     int `json:"min_tech_stack" yaml:"min_tech_stack"`
	MinSearchResults int `json:"min_search_results" yaml:"min_search_results"`

	// CompletionScore is the gate score (0-100) at which research stops.
	CompletionScore float64 `json:"completion_score" yaml:"completion_score"`
}

// DefaultThresholds returns the rule-based fallback thresholds.
func DefaultThresholds() QualityThresholds {
	return QualityThresholds{
		MinFeatures:      3,
		MinCompetitors:   2,
		MinUseCases:      3,
		MinTechStack:     2,
		MinSearchResults: 15,
		CompletionScore:  60,
	}
}

// SearchPlan is the planner's output. The plan is append-only: quality-gate
// supplemental queries are appended and existing entries never edited or
// removed.
type SearchPlan struct {
	Queries         []SearchQuery     `json:"queries" yaml:"queries"`
	TargetProviders []string          `json:"target_providers" yaml:"target_providers"`
	Dimensions      []string          `json:"dimensions" yaml:"dimensions"`
	Thresholds      QualityThresholds `json:"thresholds" yaml:"thresholds"`
}

// PendingQueries returns the queries not yet marked executed, in ascending
// priority order preserved from the plan.
func (p *SearchPlan) PendingQueries() []SearchQuery {
	var pending []SearchQuery
	for _, q := range p.Queries {
		if !q.Executed {
			pending = append(pending, q)
		}
	}
	return pending
}

// MarkExecuted flags the query with the given id as executed.
func (p *SearchPlan) MarkExecuted(id string) {
	for i := range p.Queries {
		if p.Queries[i].ID == id {
			p.Queries[i].Executed = true
			return
		}
	}
}
