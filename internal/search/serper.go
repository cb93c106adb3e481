// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/meshintel/prodscout/internal/httputil"
	"github.com/meshintel/prodscout/pkg/types"
)

// serperAPIBase is the serper.dev search endpoint. Declared as a var so
// tests can substitute an httptest server.
var serperAPIBase = "https://google.serper.dev/search"

// SerperProvider queries the serper.dev Google search wrapper.
type SerperProvider struct {
	Client    *http.Client
	APIKey    string
	UserAgent string
}

// Name returns the provider identifier.
func (p *SerperProvider) Name() string { return "serper" }

// Search queries serper.dev and returns organic results.
func (p *SerperProvider) Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error) {
	if p.APIKey == "" {
		return nil, fmt.Errorf("serper API key not configured")
	}
	if limit <= 0 {
		limit = 10
	}

	body, err := json.Marshal(serperRequest{Q: query, Num: limit})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serperAPIBase, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", p.APIKey)
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("serper API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serper API returned HTTP %d", resp.StatusCode)
	}

	var sr serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing serper response: %w", err)
	}

	var results []types.SearchResult
	for _, item := range sr.Organic {
		if item.Link == "" {
			continue
		}
		results = append(results, types.SearchResult{
			URL:     item.Link,
			Title:   item.Title,
			Content: item.Snippet,
		})
	}
	return results, nil
}

// serper.dev API JSON structures.
type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
}

type serperResponse struct {
	Organic []serperOrganic `json:"organic"`
}

type serperOrganic struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}
