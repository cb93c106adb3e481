// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search runs planned queries against web search providers and
// returns provenance-tagged, deduplicated results. Deduplication by URL is
// global: a URL seen in any earlier cycle of the task is never returned
// again.
package search

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/meshintel/prodscout/pkg/types"
)

// Provider searches a single web backend. Each provider (Brave, Serper,
// sample) implements this interface per the Strategy pattern.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error)
}

// Output holds newly discovered results and execution statistics.
type Output struct {
	// Results are the new results, deduplicated against history and
	// against each other.
	Results []types.SearchResult

	// DupsRemoved counts results dropped by URL deduplication.
	DupsRemoved int

	// QueriesSkipped counts queries skipped by the per-dimension cap.
	QueriesSkipped int

	// ProviderErrors records per-provider failures (logged, never fatal).
	ProviderErrors []string
}

// Executor fans planned queries out to providers with bounded concurrency.
type Executor struct {
	providers []Provider
	cfg       types.SearchConfig
	w         io.Writer
}

// NewExecutor returns an Executor over the given providers. Warnings are
// written to w.
func NewExecutor(providers []Provider, cfg types.SearchConfig, w io.Writer) *Executor {
	return &Executor{providers: providers, cfg: cfg, w: w}
}

// Execute runs every pending query in the plan in ascending priority order
// and returns the newly discovered results. Queries whose dimension already
// holds dimensionCap accumulated results are skipped. Each query fans out to
// all providers with at most maxConcurrent simultaneous calls; a failing
// provider is logged and skipped. The executor marks queries executed on the
// plan as it goes.
func (e *Executor) Execute(ctx context.Context, plan *types.SearchPlan, history []types.SearchResult) (Output, error) {
	if len(e.providers) == 0 {
		return Output{}, fmt.Errorf("no search providers configured")
	}

	dimCap := e.cfg.DimensionCap
	if dimCap <= 0 {
		dimCap = 10
	}
	limit := e.cfg.MaxResultsPerQuery
	if limit <= 0 {
		limit = 10
	}

	seen := make(map[string]bool, len(history))
	perDimension := make(map[string]int)
	for _, r := range history {
		seen[r.URL] = true
		perDimension[r.Dimension]++
	}

	pending := plan.PendingQueries()
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Priority < pending[j].Priority
	})

	var out Output
	for _, q := range pending {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}

		if perDimension[q.Dimension] >= dimCap {
			fmt.Fprintf(e.w, "skipping query %q: dimension %q already has %d results\n",
				q.Text, q.Dimension, perDimension[q.Dimension])
			plan.MarkExecuted(q.ID)
			out.QueriesSkipped++
			continue
		}

		results, errs := e.fanOut(ctx, q, limit)
		out.ProviderErrors = append(out.ProviderErrors, errs...)

		// Merge single-threaded: workers never touch the shared collection.
		for _, r := range results {
			if seen[r.URL] {
				out.DupsRemoved++
				continue
			}
			seen[r.URL] = true
			perDimension[r.Dimension]++
			out.Results = append(out.Results, r)
		}

		plan.MarkExecuted(q.ID)
	}

	return out, nil
}

// fanOut issues one query to every provider with bounded concurrency and
// collects the tagged results. Provider failures are recorded, not returned.
func (e *Executor) fanOut(ctx context.Context, q types.SearchQuery, limit int) ([]types.SearchResult, []string) {
	maxConcurrent := e.cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}

	queryText := q.Text
	if q.Hints != "" {
		queryText = q.Text + " " + q.Hints
	}

	type providerResult struct {
		results []types.SearchResult
		err     error
		name    string
	}

	ch := make(chan providerResult, len(e.providers))
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for _, p := range e.providers {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results, err := p.Search(ctx, queryText, limit)
			ch <- providerResult{results: results, err: err, name: p.Name()}
		}(p)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var all []types.SearchResult
	var errs []string
	for pr := range ch {
		if pr.err != nil {
			msg := fmt.Sprintf("%s: %v", pr.name, pr.err)
			errs = append(errs, msg)
			fmt.Fprintf(e.w, "warning: provider %s failed: %v\n", pr.name, pr.err)
			continue
		}
		for _, r := range pr.results {
			if r.URL == "" {
				continue
			}
			r.Provider = pr.name
			r.Dimension = q.Dimension
			r.QueryID = q.ID
			all = append(all, r)
		}
	}

	// Deterministic merge order regardless of completion order.
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Provider != all[j].Provider {
			return all[i].Provider < all[j].Provider
		}
		return all[i].URL < all[j].URL
	})

	return all, errs
}
