// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/meshintel/prodscout/internal/httputil"
	"github.com/meshintel/prodscout/pkg/types"
)

// braveAPIBase is the Brave Web Search endpoint. Declared as a var so tests
// can substitute an httptest server.
var braveAPIBase = "https://api.search.brave.com/res/v1/web/search"

// BraveProvider queries the Brave Web Search API.
type BraveProvider struct {
	Client    *http.Client
	APIKey    string
	UserAgent string
}

// Name returns the provider identifier.
func (p *BraveProvider) Name() string { return "brave" }

// Search queries the Brave Web Search API and returns snippet results.
func (p *BraveProvider) Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error) {
	if p.APIKey == "" {
		return nil, fmt.Errorf("brave API key not configured")
	}
	if limit <= 0 || limit > 20 {
		limit = 10
	}

	params := url.Values{
		"q":     {query},
		"count": {fmt.Sprintf("%d", limit)},
	}
	reqURL := braveAPIBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", p.APIKey)
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Brave API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Brave API returned HTTP %d", resp.StatusCode)
	}

	var br braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&br); err != nil {
		return nil, fmt.Errorf("parsing Brave response: %w", err)
	}

	var results []types.SearchResult
	for _, item := range br.Web.Results {
		if item.URL == "" {
			continue
		}
		results = append(results, types.SearchResult{
			URL:     item.URL,
			Title:   item.Title,
			Content: item.Description,
		})
	}
	return results, nil
}

// Brave Web Search API JSON structures.
type braveResponse struct {
	Web struct {
		Results []braveWebResult `json:"results"`
	} `json:"web"`
}

type braveWebResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}
