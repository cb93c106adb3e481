// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package quality scores accumulated evidence against the plan's thresholds
// and decides whether research is complete. When it is not, the gate
// proposes supplemental queries targeting the weakest dimensions.
package quality

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/meshintel/prodscout/internal/llm"
	"github.com/meshintel/prodscout/pkg/types"
)

// Coverage weights per dimension; they sum to 100.
const (
	weightFeatures    = 25
	weightCompetitors = 20
	weightUseCases    = 20
	weightTechStack   = 15
	weightMarket      = 20
)

const maxSupplementalQueries = 3

// Input bundles everything the gate scores.
type Input struct {
	Topic      string
	Results    []types.SearchResult
	Summary    *types.ComprehensiveSummary
	Analysis   *types.AnalysisResult
	Thresholds types.QualityThresholds
	Iteration  int
	MaxIters   int
}

// Gate evaluates research completeness. A nil generator selects rule-based
// supplemental-query phrasing.
type Gate struct {
	generator llm.Generator
}

// New returns a Gate backed by the given generator, which may be nil.
func New(generator llm.Generator) *Gate {
	return &Gate{generator: generator}
}

// Check scores the current state. The score is a weighted sum of coverage
// ratios, penalized by summary reliability and analysis confidence. The
// iteration ceiling completes the run regardless of score.
func (g *Gate) Check(ctx context.Context, in Input) *types.QualityCheck {
	check := &types.QualityCheck{
		DimensionScores: make(map[string]float64),
	}

	raw := 0.0
	raw += g.scoreDimension(check, types.DimensionFeatures, len(in.Summary.Features), in.Thresholds.MinFeatures, weightFeatures)
	raw += g.scoreDimension(check, types.DimensionCompetitors, len(in.Summary.Competitors), in.Thresholds.MinCompetitors, weightCompetitors)
	raw += g.scoreDimension(check, types.DimensionUseCases, len(in.Summary.UseCases), in.Thresholds.MinUseCases, weightUseCases)
	raw += g.scoreDimension(check, types.DimensionTechnical, len(in.Summary.TechStack), in.Thresholds.MinTechStack, weightTechStack)

	marketPresent := in.Analysis != nil && in.Analysis.HasMarketData()
	if marketPresent {
		raw += weightMarket
		check.DimensionScores[types.DimensionMarket] = 100
	} else {
		check.DimensionScores[types.DimensionMarket] = 0
		check.MissingDimensions = append(check.MissingDimensions, types.DimensionMarket)
		check.Issues = append(check.Issues, "no market data found")
	}

	// Trust penalties: unreliable summaries and low-confidence analyses
	// cannot reach a high score on volume alone.
	reliability := float64(in.Summary.Quality.Reliability) / 100
	confidence := 0.0
	if in.Analysis != nil {
		confidence = float64(in.Analysis.ConfidenceScore) / 100
	}
	check.Score = raw * reliability * confidence

	if len(in.Results) < in.Thresholds.MinSearchResults {
		check.Issues = append(check.Issues,
			fmt.Sprintf("only %d search results, want at least %d", len(in.Results), in.Thresholds.MinSearchResults))
	}

	check.IsComplete = check.Score >= in.Thresholds.CompletionScore

	// The iteration ceiling is absolute: at the last permitted cycle no
	// supplemental queries are proposed and the run proceeds to reporting
	// with the incomplete verdict recorded as a visible caveat.
	atCeiling := in.Iteration >= in.MaxIters-1
	if !check.IsComplete && !atCeiling {
		check.RecommendedQueries = g.supplementalQueries(ctx, in, check)
	}
	return check
}

// scoreDimension adds a proportional sub-score for one counted dimension
// and records issues and missing dimensions on the check.
func (g *Gate) scoreDimension(check *types.QualityCheck, dimension string, actual, threshold, weight int) float64 {
	if threshold <= 0 {
		check.DimensionScores[dimension] = 100
		return float64(weight)
	}
	ratio := float64(actual) / float64(threshold)
	if ratio > 1 {
		ratio = 1
	}
	check.DimensionScores[dimension] = ratio * 100
	if actual < threshold {
		check.MissingDimensions = append(check.MissingDimensions, dimension)
		check.Issues = append(check.Issues,
			fmt.Sprintf("%s: have %d, want at least %d", dimension, actual, threshold))
	}
	return ratio * float64(weight)
}

// supplementalQueries proposes up to three new queries for the
// lowest-coverage dimensions. Each carries the dimension's current score so
// the executor can prioritize, and gets a fresh id: the plan is append-only.
// dimScore pairs a dimension with its current coverage score.
type dimScore struct {
	dimension string
	score     float64
}

func (g *Gate) supplementalQueries(ctx context.Context, in Input, check *types.QualityCheck) []types.SearchQuery {
	var weakest []dimScore
	for dim, score := range check.DimensionScores {
		if score < 100 {
			weakest = append(weakest, dimScore{dim, score})
		}
	}
	sort.Slice(weakest, func(i, j int) bool {
		if weakest[i].score != weakest[j].score {
			return weakest[i].score < weakest[j].score
		}
		return weakest[i].dimension < weakest[j].dimension
	})
	if len(weakest) > maxSupplementalQueries {
		weakest = weakest[:maxSupplementalQueries]
	}

	phrasings := g.phraseQueries(ctx, in, weakest)

	var queries []types.SearchQuery
	for i, ds := range weakest {
		text := ruleBasedSupplementalText(in.Topic, ds.dimension)
		if i < len(phrasings) && strings.TrimSpace(phrasings[i]) != "" {
			text = phrasings[i]
		}
		queries = append(queries, types.SearchQuery{
			ID:        uuid.NewString(),
			Text:      text,
			Purpose:   fmt.Sprintf("supplement %s (coverage %.0f/100)", ds.dimension, ds.score),
			Dimension: ds.dimension,
			Priority:  1,
		})
	}
	return queries
}

// phraseQueries asks the collaborator for sharper query phrasings. Any
// failure returns nil and the rule-based templates are used.
func (g *Gate) phraseQueries(ctx context.Context, in Input, weakest []dimScore) []string {
	if g.generator == nil || len(weakest) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", in.Topic)
	b.WriteString("Write one web search query per line, in order, for these under-covered research facets:\n")
	for _, ds := range weakest {
		fmt.Fprintf(&b, "- %s (current coverage %.0f/100)\n", ds.dimension, ds.score)
	}
	b.WriteString("Respond with only the queries, one per line, no numbering.")

	text, err := g.generator.Generate(ctx, b.String(), llm.Options{
		Temperature: 0.5,
		Role:        "quality-gate",
	})
	if err != nil {
		klog.V(2).Infof("quality gate: query phrasing failed, using templates: %v", err)
		return nil
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*0123456789. "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// ruleBasedSupplementalText is the template phrasing for one dimension.
func ruleBasedSupplementalText(topic, dimension string) string {
	switch dimension {
	case types.DimensionFeatures:
		return topic + " detailed feature list"
	case types.DimensionCompetitors:
		return topic + " vs alternatives comparison"
	case types.DimensionTechnical:
		return topic + " architecture and technology stack"
	case types.DimensionMarket:
		return topic + " market size report"
	case types.DimensionUseCases:
		return topic + " customer case studies"
	default:
		return topic + " " + dimension
	}
}
