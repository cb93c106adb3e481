// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich replaces short or placeholder search-result snippets with
// full page bodies fetched from a crawling service. Enrichment failure is
// per-URL and non-fatal: the original snippet is retained.
package enrich

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/meshintel/prodscout/pkg/types"
)

// placeholderPrefixes mark snippets that carry no real page content.
var placeholderPrefixes = []string{
	"related results:",
	"search results for",
}

// Summary holds counts from an enrichment run.
type Summary struct {
	Eligible int
	Enriched int
	Failed   int
}

// Enricher upgrades eligible result contents in place.
type Enricher struct {
	fetcher Fetcher
	cfg     types.EnrichConfig
	w       io.Writer
}

// New returns an Enricher over the given fetcher, which may be nil.
// Warnings are written to w.
func New(fetcher Fetcher, cfg types.EnrichConfig, w io.Writer) *Enricher {
	return &Enricher{fetcher: fetcher, cfg: cfg, w: w}
}

// Eligible reports whether a result's content should be replaced: empty,
// shorter than the configured minimum, or a known placeholder shape.
func (e *Enricher) Eligible(r types.SearchResult) bool {
	if r.Enriched {
		return false
	}
	minLen := e.cfg.MinContentLength
	if minLen <= 0 {
		minLen = 200
	}
	content := strings.TrimSpace(r.Content)
	if len(content) < minLen {
		return true
	}
	lower := strings.ToLower(content)
	for _, prefix := range placeholderPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// Enrich fetches full page bodies for eligible results and replaces their
// content in place, marking them enriched. The availability probe runs once;
// when the fetcher is absent or down the results are left untouched.
// Fetches run in batches with an inter-batch delay to respect rate limits.
func (e *Enricher) Enrich(ctx context.Context, results []types.SearchResult) (Summary, []types.SearchResult) {
	var summary Summary
	if e.fetcher == nil || len(results) == 0 {
		return summary, results
	}

	eligible := make(map[string]int) // url → index into results
	var urls []string
	for i, r := range results {
		if e.Eligible(r) {
			eligible[r.URL] = i
			urls = append(urls, r.URL)
		}
	}
	summary.Eligible = len(urls)
	if len(urls) == 0 {
		return summary, results
	}

	if !e.fetcher.IsAvailable(ctx) {
		fmt.Fprintf(e.w, "warning: crawl service unavailable, keeping %d snippet(s)\n", len(urls))
		return summary, results
	}

	batchSize := e.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 5
	}
	delay := e.cfg.BatchDelay
	if delay <= 0 {
		delay = time.Second
	}

	for start := 0; start < len(urls); start += batchSize {
		end := start + batchSize
		if end > len(urls) {
			end = len(urls)
		}
		batch := urls[start:end]

		if start > 0 {
			select {
			case <-ctx.Done():
				return summary, results
			case <-time.After(delay):
			}
		}

		contents, err := e.fetcher.Fetch(ctx, batch)
		if err != nil {
			// The whole batch failed; originals are retained.
			fmt.Fprintf(e.w, "warning: crawl batch failed: %v\n", err)
			summary.Failed += len(batch)
			continue
		}

		for _, u := range batch {
			content, ok := contents[u]
			if !ok || strings.TrimSpace(content) == "" {
				summary.Failed++
				continue
			}
			idx := eligible[u]
			results[idx].Content = content
			results[idx].Enriched = true
			summary.Enriched++
		}
	}

	fmt.Fprintf(e.w, "enriched %d/%d result(s)\n", summary.Enriched, summary.Eligible)
	return summary, results
}
