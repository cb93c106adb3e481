// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package quality

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/meshintel/prodscout/internal/llm"
	"github.com/meshintel/prodscout/pkg/types"
)

type fakeGenerator struct {
	response string
	err      error
}

func (g *fakeGenerator) Generate(_ context.Context, _ string, _ llm.Options) (string, error) {
	return g.response, g.err
}

func fullCoverageInput() Input {
	return Input{
		Topic: "vector databases",
		Results: []types.SearchResult{
			{URL: "https://a.example/1"}, {URL: "https://a.example/2"},
		},
		Summary: &types.ComprehensiveSummary{
			Features:    []string{"a", "b", "c"},
			Competitors: []string{"Acme", "Beta"},
			UseCases:    []string{"x", "y", "z"},
			TechStack:   []string{"Rust", "Go"},
			Quality:     types.SummaryQuality{Reliability: 100},
		},
		Analysis: &types.AnalysisResult{
			Market:          types.MarketData{Size: "$4B"},
			ConfidenceScore: 100,
		},
		Thresholds: types.QualityThresholds{
			MinFeatures:      3,
			MinCompetitors:   2,
			MinUseCases:      3,
			MinTechStack:     2,
			MinSearchResults: 2,
			CompletionScore:  60,
		},
		Iteration: 0,
		MaxIters:  3,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}

// --- Scoring ---

func TestCheckFullCoverage(t *testing.T) {
	g := New(nil)
	check := g.Check(context.Background(), fullCoverageInput())

	if !almostEqual(check.Score, 100) {
		t.Errorf("Score = %v, want 100", check.Score)
	}
	if !check.IsComplete {
		t.Error("IsComplete = false, want true")
	}
	if len(check.Issues) != 0 || len(check.MissingDimensions) != 0 {
		t.Errorf("Issues = %v, MissingDimensions = %v", check.Issues, check.MissingDimensions)
	}
	if len(check.RecommendedQueries) != 0 {
		t.Errorf("RecommendedQueries = %v, want none when complete", check.RecommendedQueries)
	}
	for dim, score := range check.DimensionScores {
		if score != 100 {
			t.Errorf("DimensionScores[%s] = %v, want 100", dim, score)
		}
	}
}

func TestCheckPartialCoverage(t *testing.T) {
	in := fullCoverageInput()
	// One of three wanted features, no competitors, no market data.
	in.Summary.Features = in.Summary.Features[:1]
	in.Summary.Competitors = nil
	in.Analysis.Market = types.MarketData{}

	g := New(nil)
	check := g.Check(context.Background(), in)

	// features 25/3, competitors 0, use cases 20, tech 15, market 0.
	want := 25.0/3 + 20 + 15
	if !almostEqual(check.Score, want) {
		t.Errorf("Score = %v, want %v", check.Score, want)
	}
	if check.IsComplete {
		t.Error("IsComplete = true, want false")
	}
	if !almostEqual(check.DimensionScores[types.DimensionFeatures], 100.0/3) {
		t.Errorf("features score = %v", check.DimensionScores[types.DimensionFeatures])
	}
	wantMissing := map[string]bool{
		types.DimensionFeatures:    true,
		types.DimensionCompetitors: true,
		types.DimensionMarket:      true,
	}
	for _, dim := range check.MissingDimensions {
		if !wantMissing[dim] {
			t.Errorf("unexpected missing dimension %s", dim)
		}
		delete(wantMissing, dim)
	}
	if len(wantMissing) != 0 {
		t.Errorf("dimensions not flagged missing: %v", wantMissing)
	}
}

func TestCheckTrustPenalties(t *testing.T) {
	in := fullCoverageInput()
	in.Summary.Quality.Reliability = 50
	in.Analysis.ConfidenceScore = 80

	g := New(nil)
	check := g.Check(context.Background(), in)
	if !almostEqual(check.Score, 40) {
		t.Errorf("Score = %v, want 100 * 0.5 * 0.8 = 40", check.Score)
	}
	if check.IsComplete {
		t.Error("IsComplete = true, want false below the completion score")
	}
}

func TestCheckNilAnalysisZeroesScore(t *testing.T) {
	in := fullCoverageInput()
	in.Analysis = nil

	g := New(nil)
	check := g.Check(context.Background(), in)
	if check.Score != 0 {
		t.Errorf("Score = %v, want 0 with no analysis confidence", check.Score)
	}
	if check.DimensionScores[types.DimensionMarket] != 0 {
		t.Errorf("market score = %v, want 0", check.DimensionScores[types.DimensionMarket])
	}
}

func TestCheckZeroThresholdCountsAsCovered(t *testing.T) {
	in := fullCoverageInput()
	in.Thresholds.MinFeatures = 0
	in.Summary.Features = nil

	g := New(nil)
	check := g.Check(context.Background(), in)
	if check.DimensionScores[types.DimensionFeatures] != 100 {
		t.Errorf("features score = %v, want 100 when unthresholded", check.DimensionScores[types.DimensionFeatures])
	}
}

func TestCheckFewSearchResultsIssue(t *testing.T) {
	in := fullCoverageInput()
	in.Thresholds.MinSearchResults = 15

	g := New(nil)
	check := g.Check(context.Background(), in)
	found := false
	for _, issue := range check.Issues {
		if strings.Contains(issue, "only 2 search results") {
			found = true
		}
	}
	if !found {
		t.Errorf("Issues = %v, want a search-result shortfall", check.Issues)
	}
}

// --- Supplemental queries ---

func TestCheckRecommendsWeakestDimensions(t *testing.T) {
	in := fullCoverageInput()
	in.Summary.Features = nil
	in.Summary.Competitors = in.Summary.Competitors[:1]
	in.Summary.UseCases = in.Summary.UseCases[:1]
	in.Summary.TechStack = in.Summary.TechStack[:1]
	in.Analysis.Market = types.MarketData{}

	g := New(nil)
	check := g.Check(context.Background(), in)
	if check.IsComplete {
		t.Fatal("IsComplete = true, want false")
	}
	if len(check.RecommendedQueries) != maxSupplementalQueries {
		t.Fatalf("got %d queries, want %d", len(check.RecommendedQueries), maxSupplementalQueries)
	}
	// features (0) and market (0) sort first by name, then use cases (33).
	wantDims := []string{types.DimensionFeatures, types.DimensionMarket, types.DimensionUseCases}
	seen := make(map[string]bool)
	for i, q := range check.RecommendedQueries {
		if q.Dimension != wantDims[i] {
			t.Errorf("query %d dimension = %s, want %s", i, q.Dimension, wantDims[i])
		}
		if q.ID == "" || seen[q.ID] {
			t.Errorf("query %d id %q not fresh and unique", i, q.ID)
		}
		seen[q.ID] = true
		if q.Priority != 1 {
			t.Errorf("query %d priority = %d, want 1", i, q.Priority)
		}
		if !strings.Contains(q.Text, in.Topic) {
			t.Errorf("query %d text %q does not mention the topic", i, q.Text)
		}
	}
}

func TestCheckCeilingSuppressesQueries(t *testing.T) {
	in := fullCoverageInput()
	in.Summary.Features = nil
	in.Summary.Quality.Reliability = 50
	in.Iteration = 2
	in.MaxIters = 3

	g := New(nil)
	check := g.Check(context.Background(), in)
	if check.IsComplete {
		t.Error("IsComplete = true, want the honest incomplete verdict")
	}
	if len(check.RecommendedQueries) != 0 {
		t.Errorf("RecommendedQueries = %v, want none at the iteration ceiling", check.RecommendedQueries)
	}
}

func TestCheckGeneratorPhrasesQueries(t *testing.T) {
	in := fullCoverageInput()
	in.Summary.Features = nil
	in.Summary.Quality.Reliability = 50

	g := New(&fakeGenerator{response: "1. best vector database feature comparison\n"})
	check := g.Check(context.Background(), in)
	if len(check.RecommendedQueries) != 1 {
		t.Fatalf("got %d queries, want 1", len(check.RecommendedQueries))
	}
	if check.RecommendedQueries[0].Text != "best vector database feature comparison" {
		t.Errorf("Text = %q, want the phrased query with numbering stripped", check.RecommendedQueries[0].Text)
	}
}

func TestCheckGeneratorFailureUsesTemplates(t *testing.T) {
	in := fullCoverageInput()
	in.Summary.Features = nil
	in.Summary.Quality.Reliability = 50

	g := New(&fakeGenerator{err: errors.New("down")})
	check := g.Check(context.Background(), in)
	if len(check.RecommendedQueries) != 1 {
		t.Fatalf("got %d queries, want 1", len(check.RecommendedQueries))
	}
	want := "vector databases detailed feature list"
	if check.RecommendedQueries[0].Text != want {
		t.Errorf("Text = %q, want template %q", check.RecommendedQueries[0].Text, want)
	}
}
