// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/meshintel/prodscout/pkg/types"
)

// SampleProvider returns a deterministic placeholder result set so the
// pipeline remains exercisable without live API keys. Results are derived
// from the query text alone: the same query always yields the same URLs.
type SampleProvider struct{}

// Name returns the provider identifier.
func (p *SampleProvider) Name() string { return "sample" }

// Search returns min(limit, 3) deterministic results for the query. The
// content is deliberately a short placeholder so the enrichment stage sees
// eligible results in keyless runs.
func (p *SampleProvider) Search(_ context.Context, query string, limit int) ([]types.SearchResult, error) {
	n := 3
	if limit > 0 && limit < n {
		n = limit
	}

	slug := querySlug(query)
	results := make([]types.SearchResult, 0, n)
	for i := 0; i < n; i++ {
		h := sha256.Sum256([]byte(fmt.Sprintf("%s#%d", query, i)))
		results = append(results, types.SearchResult{
			URL:     fmt.Sprintf("https://example.com/%s/%x", slug, h[:6]),
			Title:   fmt.Sprintf("%s — sample result %d", query, i+1),
			Content: "related results: " + query,
		})
	}
	return results, nil
}

// querySlug builds a URL path segment from the query text.
func querySlug(query string) string {
	fields := strings.Fields(strings.ToLower(query))
	if len(fields) > 4 {
		fields = fields[:4]
	}
	slug := strings.Join(fields, "-")
	var b strings.Builder
	for _, r := range slug {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "query"
	}
	return b.String()
}
