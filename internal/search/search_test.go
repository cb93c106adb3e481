// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/meshintel/prodscout/pkg/types"
)

// fakeProvider returns canned results keyed by query text.
type fakeProvider struct {
	name    string
	results map[string][]types.SearchResult
	err     error
	calls   []string
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Search(_ context.Context, query string, _ int) ([]types.SearchResult, error) {
	p.calls = append(p.calls, query)
	if p.err != nil {
		return nil, p.err
	}
	return p.results[query], nil
}

func result(url, title string) types.SearchResult {
	return types.SearchResult{URL: url, Title: title, Content: "snippet for " + title}
}

func planWith(queries ...types.SearchQuery) *types.SearchPlan {
	return &types.SearchPlan{
		Queries:    queries,
		Dimensions: types.DefaultDimensions(),
		Thresholds: types.DefaultThresholds(),
	}
}

// --- Execute ---

func TestExecuteTagsAndMarksExecuted(t *testing.T) {
	p := &fakeProvider{name: "fake", results: map[string][]types.SearchResult{
		"q1": {result("https://a.example/1", "one"), result("https://a.example/2", "two")},
	}}
	plan := planWith(types.SearchQuery{ID: "id-1", Text: "q1", Dimension: types.DimensionFeatures, Priority: 1})

	e := NewExecutor([]Provider{p}, types.SearchConfig{}, io.Discard)
	out, err := e.Execute(context.Background(), plan, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(out.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(out.Results))
	}
	for _, r := range out.Results {
		if r.Provider != "fake" || r.Dimension != types.DimensionFeatures || r.QueryID != "id-1" {
			t.Errorf("result %q missing provenance tags: %+v", r.URL, r)
		}
	}
	if !plan.Queries[0].Executed {
		t.Error("query should be marked executed")
	}
}

func TestExecuteDeduplicatesAgainstHistoryAndSelf(t *testing.T) {
	p := &fakeProvider{name: "fake", results: map[string][]types.SearchResult{
		"q1": {result("https://a.example/old", "old"), result("https://a.example/new", "new")},
		"q2": {result("https://a.example/new", "new again"), result("https://a.example/other", "other")},
	}}
	plan := planWith(
		types.SearchQuery{ID: "id-1", Text: "q1", Dimension: types.DimensionFeatures, Priority: 1},
		types.SearchQuery{ID: "id-2", Text: "q2", Dimension: types.DimensionUseCases, Priority: 2},
	)
	history := []types.SearchResult{{URL: "https://a.example/old", Dimension: types.DimensionFeatures}}

	e := NewExecutor([]Provider{p}, types.SearchConfig{}, io.Discard)
	out, err := e.Execute(context.Background(), plan, history)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	urls := map[string]bool{}
	for _, r := range out.Results {
		if urls[r.URL] {
			t.Errorf("duplicate URL in output: %s", r.URL)
		}
		urls[r.URL] = true
	}
	if urls["https://a.example/old"] {
		t.Error("historical URL must not reappear")
	}
	if len(out.Results) != 2 {
		t.Errorf("got %d results, want 2 (new, other)", len(out.Results))
	}
	if out.DupsRemoved != 2 {
		t.Errorf("DupsRemoved = %d, want 2", out.DupsRemoved)
	}
}

func TestExecutePriorityOrder(t *testing.T) {
	p := &fakeProvider{name: "fake", results: map[string][]types.SearchResult{}}
	plan := planWith(
		types.SearchQuery{ID: "low", Text: "low", Dimension: types.DimensionFeatures, Priority: 3},
		types.SearchQuery{ID: "high", Text: "high", Dimension: types.DimensionFeatures, Priority: 1},
		types.SearchQuery{ID: "mid", Text: "mid", Dimension: types.DimensionFeatures, Priority: 2},
	)

	e := NewExecutor([]Provider{p}, types.SearchConfig{}, io.Discard)
	if _, err := e.Execute(context.Background(), plan, nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := []string{"high", "mid", "low"}
	if len(p.calls) != 3 {
		t.Fatalf("got %d calls, want 3", len(p.calls))
	}
	for i, q := range want {
		if p.calls[i] != q {
			t.Errorf("call %d = %q, want %q", i, p.calls[i], q)
		}
	}
}

func TestExecuteDimensionCap(t *testing.T) {
	p := &fakeProvider{name: "fake", results: map[string][]types.SearchResult{
		"q1": {result("https://a.example/x", "x")},
	}}
	plan := planWith(types.SearchQuery{ID: "id-1", Text: "q1", Dimension: types.DimensionFeatures, Priority: 1})

	// History already saturates the dimension.
	var history []types.SearchResult
	for i := 0; i < 2; i++ {
		history = append(history, types.SearchResult{
			URL:       fmt.Sprintf("https://a.example/h%d", i),
			Dimension: types.DimensionFeatures,
		})
	}

	var buf strings.Builder
	e := NewExecutor([]Provider{p}, types.SearchConfig{DimensionCap: 2}, &buf)
	out, err := e.Execute(context.Background(), plan, history)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if out.QueriesSkipped != 1 {
		t.Errorf("QueriesSkipped = %d, want 1", out.QueriesSkipped)
	}
	if len(p.calls) != 0 {
		t.Errorf("provider called %d times, want 0 for capped dimension", len(p.calls))
	}
	if !plan.Queries[0].Executed {
		t.Error("capped query should still be marked executed")
	}
	if !strings.Contains(buf.String(), "skipping query") {
		t.Errorf("expected skip warning, got %q", buf.String())
	}
}

func TestExecuteProviderFailureDegrades(t *testing.T) {
	ok := &fakeProvider{name: "ok", results: map[string][]types.SearchResult{
		"q1": {result("https://a.example/ok", "good")},
	}}
	broken := &fakeProvider{name: "broken", err: fmt.Errorf("connection refused")}
	plan := planWith(types.SearchQuery{ID: "id-1", Text: "q1", Dimension: types.DimensionFeatures, Priority: 1})

	var buf strings.Builder
	e := NewExecutor([]Provider{ok, broken}, types.SearchConfig{}, &buf)
	out, err := e.Execute(context.Background(), plan, nil)
	if err != nil {
		t.Fatalf("Execute should tolerate one failing provider: %v", err)
	}

	if len(out.Results) != 1 || out.Results[0].Provider != "ok" {
		t.Errorf("results = %+v, want the working provider's result", out.Results)
	}
	if len(out.ProviderErrors) != 1 || !strings.Contains(out.ProviderErrors[0], "broken") {
		t.Errorf("ProviderErrors = %v, want one entry for broken provider", out.ProviderErrors)
	}
	if !strings.Contains(buf.String(), "warning: provider broken failed") {
		t.Errorf("expected warning output, got %q", buf.String())
	}
}

func TestExecuteNoProviders(t *testing.T) {
	e := NewExecutor(nil, types.SearchConfig{}, io.Discard)
	if _, err := e.Execute(context.Background(), planWith(), nil); err == nil {
		t.Fatal("Execute() = nil error, want error with no providers")
	}
}

func TestExecuteContextCancelled(t *testing.T) {
	p := &fakeProvider{name: "fake", results: map[string][]types.SearchResult{}}
	plan := planWith(types.SearchQuery{ID: "id-1", Text: "q1", Dimension: types.DimensionFeatures, Priority: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewExecutor([]Provider{p}, types.SearchConfig{}, io.Discard)
	if _, err := e.Execute(ctx, plan, nil); err == nil {
		t.Fatal("Execute() = nil error, want context error")
	}
}

// --- Sample provider ---

func TestSampleProviderDeterministic(t *testing.T) {
	p := &SampleProvider{}

	first, err := p.Search(context.Background(), "vector databases", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	second, _ := p.Search(context.Background(), "vector databases", 10)

	if len(first) != 3 {
		t.Fatalf("got %d results, want 3", len(first))
	}
	for i := range first {
		if first[i].URL != second[i].URL {
			t.Errorf("result %d not deterministic: %q vs %q", i, first[i].URL, second[i].URL)
		}
	}

	other, _ := p.Search(context.Background(), "different topic", 10)
	if first[0].URL == other[0].URL {
		t.Error("different queries should produce different URLs")
	}

	limited, _ := p.Search(context.Background(), "vector databases", 1)
	if len(limited) != 1 {
		t.Errorf("got %d results with limit 1, want 1", len(limited))
	}
}
