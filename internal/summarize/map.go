// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize turns search results into structured extractions (map
// phase) and merges them into a single comprehensive summary (reduce phase).
// The reduce phase's rule-based path is exactly idempotent: the same
// extraction list always yields the same summary.
package summarize

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/meshintel/prodscout/internal/llm"
	"github.com/meshintel/prodscout/pkg/types"
)

// retryBackoff is the delay before the single extraction retry. Tests
// override this to avoid real sleeps.
var retryBackoff = time.Second

const fallbackQualityScore = 1

// Summarizer runs the map and reduce phases. A nil generator selects the
// rule-based path for both.
type Summarizer struct {
	generator llm.Generator
	cfg       types.ExtractionConfig
	w         io.Writer
}

// New returns a Summarizer. The generator may be nil.
func New(generator llm.Generator, cfg types.ExtractionConfig, w io.Writer) *Summarizer {
	return &Summarizer{generator: generator, cfg: cfg, w: w}
}

// MapAll extracts structured facts from every result that does not yet have
// an extraction. Calls run in bounded batches; each result is attempted at
// most twice (initial call plus one retry after a fixed backoff) before
// falling back to an empty extraction with the minimum quality score.
// Extractions are returned in result order.
func (s *Summarizer) MapAll(ctx context.Context, results []types.SearchResult, existing []types.ExtractionResult) ([]types.ExtractionResult, error) {
	done := make(map[string]bool, len(existing))
	for _, ex := range existing {
		done[ex.URL] = true
	}

	var todo []types.SearchResult
	for _, r := range results {
		if !done[r.URL] {
			todo = append(todo, r)
		}
	}
	if len(todo) == 0 {
		return nil, nil
	}

	batchSize := s.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 5
	}

	extractions := make([]types.ExtractionResult, len(todo))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchSize)

	for i, r := range todo {
		i, r := i, r
		g.Go(func() error {
			extractions[i] = s.extractOne(gctx, r)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fmt.Fprintf(s.w, "extracted %d result(s)\n", len(extractions))
	return extractions, nil
}

// extractOne produces the extraction for a single result. Collaborator
// failures degrade first to a retry, then to the rule-based extraction.
func (s *Summarizer) extractOne(ctx context.Context, r types.SearchResult) types.ExtractionResult {
	if s.generator == nil {
		return ruleBasedExtraction(r)
	}

	ex, err := s.callExtract(ctx, r)
	if err == nil {
		return ex
	}

	select {
	case <-ctx.Done():
		return emptyExtraction(r.URL)
	case <-time.After(retryBackoff):
	}

	ex, retryErr := s.callExtract(ctx, r)
	if retryErr == nil {
		return ex
	}

	fmt.Fprintf(s.w, "warning: extraction failed for %s: %v\n", r.URL, retryErr)
	return emptyExtraction(r.URL)
}

// callExtract performs one collaborator extraction call.
func (s *Summarizer) callExtract(ctx context.Context, r types.SearchResult) (types.ExtractionResult, error) {
	text, err := s.generator.Generate(ctx, extractionPrompt(r), llm.Options{
		System:      extractionSystemPrompt,
		Temperature: 0.2,
		Role:        "extractor",
	})
	if err != nil {
		return types.ExtractionResult{}, err
	}

	var resp extractionResponse
	if err := llm.Decode(text, &resp); err != nil {
		return types.ExtractionResult{}, err
	}

	score := resp.QualityScore
	if score < 1 || score > 10 {
		score = 5
	}
	return types.ExtractionResult{
		URL:          r.URL,
		KeyPoints:    cleanList(resp.KeyPoints),
		Features:     cleanList(resp.Features),
		Competitors:  cleanList(resp.Competitors),
		TechStack:    cleanList(resp.TechStack),
		UseCases:     cleanList(resp.UseCases),
		MarketInfo:   cleanList(resp.MarketInfo),
		Limitations:  cleanList(resp.Limitations),
		QualityScore: score,
	}, nil
}

// emptyExtraction is the parse-failure fallback: the result stays in the
// pipeline with the minimum quality score rather than being dropped.
func emptyExtraction(url string) types.ExtractionResult {
	return types.ExtractionResult{URL: url, QualityScore: fallbackQualityScore}
}

// knownTech is the lexicon the rule-based extraction matches tech mentions
// against when no collaborator is configured.
var knownTech = []string{
	"Go", "Python", "Java", "TypeScript", "JavaScript", "Rust", "Ruby",
	"React", "Vue", "Angular", "Node.js", "Django", "Rails",
	"PostgreSQL", "MySQL", "SQLite", "MongoDB", "Redis", "Elasticsearch",
	"Kafka", "RabbitMQ", "gRPC", "GraphQL", "REST",
	"AWS", "Azure", "GCP", "Kubernetes", "Docker", "Terraform",
}

// ruleBasedExtraction derives a coarse extraction from the content text:
// leading sentences become key points, lexicon matches become tech stack,
// and lines naming use cases are carried over.
func ruleBasedExtraction(r types.SearchResult) types.ExtractionResult {
	content := strings.TrimSpace(r.Content)
	ex := types.ExtractionResult{URL: r.URL, QualityScore: 3}
	if content == "" {
		ex.QualityScore = fallbackQualityScore
		return ex
	}

	for i, sentence := range strings.SplitAfter(content, ". ") {
		if i >= 3 {
			break
		}
		sentence = strings.TrimSpace(sentence)
		if len(sentence) >= 20 {
			ex.KeyPoints = append(ex.KeyPoints, sentence)
		}
	}

	for _, tech := range knownTech {
		if containsWord(content, tech) {
			ex.TechStack = append(ex.TechStack, tech)
		}
	}

	lower := strings.ToLower(content)
	for _, line := range strings.Split(lower, "\n") {
		if strings.Contains(line, "use case") && len(ex.UseCases) < 3 {
			ex.UseCases = append(ex.UseCases, strings.TrimSpace(line))
		}
	}

	return ex
}

// containsWord reports whether text contains word with non-letter
// boundaries, so "Go" does not match "Google".
func containsWord(text, word string) bool {
	for start := 0; ; {
		idx := strings.Index(text[start:], word)
		if idx < 0 {
			return false
		}
		idx += start
		before := idx == 0 || !isWordByte(text[idx-1])
		afterIdx := idx + len(word)
		after := afterIdx >= len(text) || !isWordByte(text[afterIdx])
		if before && after {
			return true
		}
		start = idx + len(word)
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// cleanList trims entries and drops empties, preserving order.
func cleanList(items []string) []string {
	var out []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// sortedUnique returns a case-insensitively deduplicated copy of items,
// keeping the first spelling seen and sorting case-insensitively.
func sortedUnique(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(item))
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}
