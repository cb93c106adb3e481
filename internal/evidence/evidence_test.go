// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/meshintel/prodscout/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.EvidenceConfig{IndexDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSnapshot(taskID string) *types.Snapshot {
	return &types.Snapshot{
		Task: types.ResearchTask{
			ID:             taskID,
			Title:          "vector databases",
			Status:         types.StatusCompleted,
			IterationsUsed: 2,
			UpdatedAt:      time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
		Results: []types.SearchResult{
			{
				URL:       "https://a.example/intro",
				Title:     "Vector database introduction",
				Provider:  "brave",
				Dimension: types.DimensionFeatures,
				Content:   "An overview of approximate nearest neighbor indexes and filtering.",
				Enriched:  true,
			},
			{
				URL:       "https://a.example/market",
				Title:     "Market outlook",
				Provider:  "serper",
				Dimension: types.DimensionMarket,
				Content:   "The market is projected to reach four billion dollars.",
			},
		},
		Extractions: []types.ExtractionResult{
			{
				URL:          "https://a.example/intro",
				KeyPoints:    []string{"ANN indexes trade recall for speed"},
				Features:     []string{"filtering"},
				QualityScore: 8,
			},
		},
		Quality: &types.QualityCheck{Score: 72.5},
	}
}

// --- Ingest ---

func TestIngestCounts(t *testing.T) {
	s := newTestStore(t)
	got, err := s.Ingest(context.Background(), sampleSnapshot("task-1"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	want := IngestSummary{Sources: 2, Findings: 1}
	if got != want {
		t.Errorf("Ingest() = %+v, want %+v", got, want)
	}
}

func TestIngestIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	snap := sampleSnapshot("task-1")

	if _, err := s.Ingest(ctx, snap); err != nil {
		t.Fatalf("first Ingest: %v", err)
	}
	// Re-ingest with one result dropped; the stale row must disappear.
	snap.Results = snap.Results[:1]
	if _, err := s.Ingest(ctx, snap); err != nil {
		t.Fatalf("second Ingest: %v", err)
	}

	results, err := s.Retrieve(ctx, QueryOptions{TaskID: "task-1"})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 1 || results[0].URL != "https://a.example/intro" {
		t.Errorf("results = %+v, want only the surviving source", results)
	}

	// The dropped row is gone from the full-text index too.
	stale, err := s.Retrieve(ctx, QueryOptions{Query: "billion"})
	if err != nil {
		t.Fatalf("Retrieve stale: %v", err)
	}
	if len(stale) != 0 {
		t.Errorf("stale FTS rows = %+v, want none", stale)
	}
}

func TestIngestMultipleTasks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, id := range []string{"task-1", "task-2"} {
		if _, err := s.Ingest(ctx, sampleSnapshot(id)); err != nil {
			t.Fatalf("Ingest %s: %v", id, err)
		}
	}

	results, err := s.Retrieve(ctx, QueryOptions{TaskID: "task-2"})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d results for task-2, want 2", len(results))
	}
	for _, r := range results {
		if r.TaskID != "task-2" {
			t.Errorf("result %s has task %s", r.URL, r.TaskID)
		}
	}
}

// --- Retrieve ---

func TestRetrieveFullText(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.Ingest(ctx, sampleSnapshot("task-1")); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	results, err := s.Retrieve(ctx, QueryOptions{Query: "filtering"})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0]
	if r.URL != "https://a.example/intro" || !r.Enriched {
		t.Errorf("result = %+v", r)
	}
	// The finding joined in.
	if !reflect.DeepEqual(r.Features, []string{"filtering"}) {
		t.Errorf("Features = %v", r.Features)
	}
	if !reflect.DeepEqual(r.KeyPoints, []string{"ANN indexes trade recall for speed"}) {
		t.Errorf("KeyPoints = %v", r.KeyPoints)
	}
	if !strings.Contains(r.Snippet, "approximate nearest neighbor") {
		t.Errorf("Snippet = %q", r.Snippet)
	}
}

func TestRetrieveFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.Ingest(ctx, sampleSnapshot("task-1")); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	tests := []struct {
		name string
		opts QueryOptions
		want []string
	}{
		{
			name: "by provider",
			opts: QueryOptions{Provider: "serper"},
			want: []string{"https://a.example/market"},
		},
		{
			name: "by dimension",
			opts: QueryOptions{Dimension: types.DimensionFeatures},
			want: []string{"https://a.example/intro"},
		},
		{
			name: "fts with filter",
			opts: QueryOptions{Query: "market", Provider: "brave"},
			want: nil,
		},
		{
			name: "structured only sorted by url",
			opts: QueryOptions{TaskID: "task-1"},
			want: []string{"https://a.example/intro", "https://a.example/market"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := s.Retrieve(ctx, tt.opts)
			if err != nil {
				t.Fatalf("Retrieve: %v", err)
			}
			var urls []string
			for _, r := range results {
				urls = append(urls, r.URL)
			}
			if !reflect.DeepEqual(urls, tt.want) {
				t.Errorf("urls = %v, want %v", urls, tt.want)
			}
		})
	}
}

func TestRetrieveMaxResults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.Ingest(ctx, sampleSnapshot("task-1")); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	results, err := s.Retrieve(ctx, QueryOptions{TaskID: "task-1", MaxResults: 1})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want the limit applied", len(results))
	}
}

func TestQueryOptionsIsEmpty(t *testing.T) {
	if !(QueryOptions{}).IsEmpty() {
		t.Error("zero options not empty")
	}
	if (QueryOptions{Provider: "brave"}).IsEmpty() {
		t.Error("filtered options reported empty")
	}
}

func TestSnippetTruncation(t *testing.T) {
	long := strings.Repeat("word ", 100)
	got := snippet(long)
	if len([]rune(got)) != snippetLen+3 {
		t.Errorf("snippet length = %d, want %d plus ellipsis", len([]rune(got)), snippetLen+3)
	}
	if snippet("short") != "short" {
		t.Errorf("short content altered: %q", snippet("short"))
	}
}
