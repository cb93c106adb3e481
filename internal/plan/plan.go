// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package plan turns a research topic into a SearchPlan: prioritized queries
// per research dimension plus quality thresholds. Planning never fails
// outright; a missing or malformed collaborator response degrades to the
// rule-based plan.
package plan

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/meshintel/prodscout/internal/llm"
	"github.com/meshintel/prodscout/pkg/types"
)

// Request holds the planner inputs.
type Request struct {
	Title       string
	Description string
	Keywords    []string
}

// Planner builds search plans. A nil generator selects the rule-based path.
type Planner struct {
	generator llm.Generator
}

// New returns a Planner backed by the given generator, which may be nil.
func New(generator llm.Generator) *Planner {
	return &Planner{generator: generator}
}

// Build produces a SearchPlan for the request. When the collaborator is
// available its response is decoded leniently and any missing field is
// filled from the rule-based defaults.
func (p *Planner) Build(ctx context.Context, req Request) *types.SearchPlan {
	fallback := RuleBasedPlan(req)
	if p.generator == nil {
		return fallback
	}

	text, err := p.generator.Generate(ctx, buildPrompt(req), llm.Options{
		System:      planSystemPrompt,
		Temperature: 0.3,
		Role:        "planner",
	})
	if err != nil {
		klog.V(2).Infof("planner: generation failed, using rule-based plan: %v", err)
		return fallback
	}

	var resp planResponse
	if err := llm.Decode(text, &resp); err != nil {
		klog.V(2).Infof("planner: undecodable response, using rule-based plan: %v", err)
		return fallback
	}

	return mergePlan(resp, fallback)
}

// RuleBasedPlan is the deterministic fallback: one query per default
// dimension derived from the title, with default thresholds.
func RuleBasedPlan(req Request) *types.SearchPlan {
	dimensions := types.DefaultDimensions()
	queries := make([]types.SearchQuery, 0, len(dimensions))
	for i, dim := range dimensions {
		queries = append(queries, types.SearchQuery{
			ID:        uuid.NewString(),
			Text:      ruleBasedQueryText(req.Title, dim),
			Purpose:   fmt.Sprintf("cover %s for %s", dim, req.Title),
			Dimension: dim,
			Priority:  i + 1,
		})
	}
	return &types.SearchPlan{
		Queries:    queries,
		Dimensions: dimensions,
		Thresholds: types.DefaultThresholds(),
	}
}

// ruleBasedQueryText derives a provider query from the title and dimension.
func ruleBasedQueryText(title, dimension string) string {
	switch dimension {
	case types.DimensionFeatures:
		return title + " features and capabilities"
	case types.DimensionCompetitors:
		return title + " competitors and alternatives"
	case types.DimensionTechnical:
		return title + " technical architecture"
	case types.DimensionMarket:
		return title + " market size and trends"
	case types.DimensionUseCases:
		return title + " use cases"
	default:
		return title + " " + dimension
	}
}

// planResponse is the collaborator's plan shape, decoded leniently.
type planResponse struct {
	Dimensions []string `json:"dimensions"`
	Queries    []struct {
		Text      string `json:"text"`
		Purpose   string `json:"purpose"`
		Dimension string `json:"dimension"`
		Priority  int    `json:"priority"`
		Hints     string `json:"hints"`
	} `json:"queries"`
	Thresholds struct {
		MinFeatures      int     `json:"min_features"`
		MinCompetitors   int     `json:"min_competitors"`
		MinUseCases      int     `json:"min_use_cases"`
		MinTechStack     int     `json:"min_tech_stack"`
		MinSearchResults int     `json:"min_search_results"`
		CompletionScore  float64 `json:"completion_score"`
	} `json:"thresholds"`
}

// mergePlan converts a decoded response into a SearchPlan, filling every
// missing field from the rule-based fallback.
func mergePlan(resp planResponse, fallback *types.SearchPlan) *types.SearchPlan {
	merged := &types.SearchPlan{
		Dimensions: resp.Dimensions,
		Thresholds: fallback.Thresholds,
	}
	if len(merged.Dimensions) == 0 {
		merged.Dimensions = fallback.Dimensions
	}

	if t := resp.Thresholds; t.MinFeatures > 0 {
		merged.Thresholds.MinFeatures = t.MinFeatures
	}
	if t := resp.Thresholds; t.MinCompetitors > 0 {
		merged.Thresholds.MinCompetitors = t.MinCompetitors
	}
	if t := resp.Thresholds; t.MinUseCases > 0 {
		merged.Thresholds.MinUseCases = t.MinUseCases
	}
	if t := resp.Thresholds; t.MinTechStack > 0 {
		merged.Thresholds.MinTechStack = t.MinTechStack
	}
	if t := resp.Thresholds; t.MinSearchResults > 0 {
		merged.Thresholds.MinSearchResults = t.MinSearchResults
	}
	if t := resp.Thresholds; t.CompletionScore > 0 {
		merged.Thresholds.CompletionScore = t.CompletionScore
	}

	for i, q := range resp.Queries {
		if strings.TrimSpace(q.Text) == "" {
			continue
		}
		priority := q.Priority
		if priority < 1 || priority > 5 {
			priority = min(i+1, 5)
		}
		dimension := q.Dimension
		if dimension == "" {
			dimension = merged.Dimensions[min(i, len(merged.Dimensions)-1)]
		}
		merged.Queries = append(merged.Queries, types.SearchQuery{
			ID:        uuid.NewString(),
			Text:      q.Text,
			Purpose:   q.Purpose,
			Dimension: dimension,
			Priority:  priority,
			Hints:     q.Hints,
		})
	}
	if len(merged.Queries) == 0 {
		merged.Queries = fallback.Queries
	}
	return merged
}

const planSystemPrompt = `You are a research planner for product intelligence.
Respond with a single JSON object and nothing else:
{
  "dimensions": ["..."],
  "queries": [{"text": "...", "purpose": "...", "dimension": "...", "priority": 1, "hints": ""}],
  "thresholds": {"min_features": 3, "min_competitors": 2, "min_use_cases": 3,
                 "min_tech_stack": 2, "min_search_results": 15, "completion_score": 60}
}
Priorities run from 1 (highest) to 5 (lowest).`

// buildPrompt renders the planner user prompt.
func buildPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Plan web research for the product topic: %s\n", req.Title)
	if req.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", req.Description)
	}
	if len(req.Keywords) > 0 {
		fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(req.Keywords, ", "))
	}
	b.WriteString("Produce 5-8 search queries covering functional features, competitors, technical architecture, market, and use cases.")
	return b.String()
}
