// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"k8s.io/klog/v2"

	"github.com/meshintel/prodscout/pkg/types"
)

// pollInterval is the delay between task status polls. Tests override this
// to avoid real sleeps.
var pollInterval = 2 * time.Second

const crawlPriority = 10

// Fetcher retrieves full page bodies for URLs. Implementations are
// batch-capable and expose an availability probe checked once per run.
type Fetcher interface {
	IsAvailable(ctx context.Context) bool
	Fetch(ctx context.Context, urls []string) (map[string]string, error)
}

// CrawlClient talks to a Crawl4AI service. Crawl jobs either return results
// inline or hand back a task id that is polled until completion.
type CrawlClient struct {
	baseURL string
	http    *http.Client
}

// NewCrawlClient returns a client for the Crawl4AI service at baseURL, or
// nil when baseURL is empty.
func NewCrawlClient(cfg types.EnrichConfig) *CrawlClient {
	if cfg.CrawlBaseURL == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CrawlClient{
		baseURL: strings.TrimRight(cfg.CrawlBaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// IsAvailable probes the service health endpoint.
func (c *CrawlClient) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		klog.V(2).Infof("crawl service unavailable: %v", err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Fetch submits a crawl job for urls and returns a map of URL to page body
// in Markdown. URLs that failed are absent from the map; a missing URL is
// not an error.
func (c *CrawlClient) Fetch(ctx context.Context, urls []string) (map[string]string, error) {
	if len(urls) == 0 {
		return map[string]string{}, nil
	}

	body, err := json.Marshal(crawlRequest{URLs: urls, Priority: crawlPriority})
	if err != nil {
		return nil, fmt.Errorf("marshaling crawl request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/crawl", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating crawl request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submitting crawl job: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("crawl job submission returned HTTP %d", resp.StatusCode)
	}

	var cr crawlResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("parsing crawl response: %w", err)
	}

	// Inline results: the job completed synchronously.
	if len(cr.Results) > 0 {
		return collectContents(cr.Results), nil
	}
	if cr.TaskID == "" {
		return map[string]string{}, nil
	}

	return c.poll(ctx, cr.TaskID)
}

// poll waits for an asynchronous crawl task to complete.
func (c *CrawlClient) poll(ctx context.Context, taskID string) (map[string]string, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/task/"+taskID, nil)
		if err != nil {
			return nil, fmt.Errorf("creating task status request: %w", err)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("polling crawl task %s: %w", taskID, err)
		}

		var tr crawlResponse
		decodeErr := json.NewDecoder(resp.Body).Decode(&tr)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("crawl task status returned HTTP %d", resp.StatusCode)
		}
		if decodeErr != nil {
			return nil, fmt.Errorf("parsing task status: %w", decodeErr)
		}

		switch tr.Status {
		case "completed":
			return collectContents(tr.Results), nil
		case "running", "pending", "":
			continue
		default:
			return nil, fmt.Errorf("crawl task %s ended with status %q", taskID, tr.Status)
		}
	}
}

// collectContents maps successful crawl results to their best content field.
func collectContents(results []crawlResult) map[string]string {
	contents := make(map[string]string, len(results))
	for _, r := range results {
		if r.URL == "" || (r.Success != nil && !*r.Success) {
			continue
		}
		if content := r.bestContent(); content != "" {
			contents[r.URL] = content
		}
	}
	return contents
}

// Crawl4AI wire structures.
type crawlRequest struct {
	URLs     []string `json:"urls"`
	Priority int      `json:"priority"`
}

type crawlResponse struct {
	TaskID  string        `json:"task_id"`
	Status  string        `json:"status"`
	Results []crawlResult `json:"results"`
}

type crawlResult struct {
	URL        string          `json:"url"`
	Success    *bool           `json:"success"`
	StatusCode int             `json:"status_code"`
	Markdown   json.RawMessage `json:"markdown"`
	Content    string          `json:"content"`
	Text       string          `json:"text"`
}

// bestContent picks the richest available content field. The markdown field
// is either a plain string or an object of markdown variants; fit_markdown
// is preferred over raw_markdown when present.
func (r crawlResult) bestContent() string {
	if len(r.Markdown) > 0 {
		var s string
		if err := json.Unmarshal(r.Markdown, &s); err == nil && s != "" {
			return s
		}
		var variants struct {
			RawMarkdown string `json:"raw_markdown"`
			FitMarkdown string `json:"fit_markdown"`
		}
		if err := json.Unmarshal(r.Markdown, &variants); err == nil {
			if variants.FitMarkdown != "" {
				return variants.FitMarkdown
			}
			if variants.RawMarkdown != "" {
				return variants.RawMarkdown
			}
		}
	}
	if r.Content != "" {
		return r.Content
	}
	return r.Text
}
