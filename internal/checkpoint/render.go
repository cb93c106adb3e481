// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package checkpoint

import (
	"fmt"
	"strings"

	"github.com/meshintel/prodscout/pkg/types"
)

// renderSections writes the human-readable Markdown body of a checkpoint:
// search results, extracted content, analysis, and citations. The body is
// informational only; resumption reads the metadata block.
func renderSections(b *strings.Builder, snap *types.Snapshot) {
	fmt.Fprintf(b, "# Research Checkpoint: %s\n\n", snap.Task.Title)
	fmt.Fprintf(b, "Status: %s | Iterations: %d/%d | Results: %d | Extractions: %d\n\n",
		snap.Task.Status, snap.Task.IterationsUsed, snap.Task.MaxIterations,
		len(snap.Results), len(snap.Extractions))

	renderResults(b, snap.Results)
	renderExtractions(b, snap.Extractions)
	renderAnalysis(b, snap.Analysis, snap.Quality)
	renderCitations(b, snap.Results)
}

func renderResults(b *strings.Builder, results []types.SearchResult) {
	b.WriteString("## Search Results\n\n")
	if len(results) == 0 {
		b.WriteString("No results yet.\n\n")
		return
	}
	b.WriteString("| # | Title | Provider | Dimension | Enriched | URL |\n")
	b.WriteString("|---|-------|----------|-----------|----------|-----|\n")
	for i, r := range results {
		enriched := ""
		if r.Enriched {
			enriched = "yes"
		}
		fmt.Fprintf(b, "| %d | %s | %s | %s | %s | %s |\n",
			i+1, cell(r.Title, 60), r.Provider, r.Dimension, enriched, r.URL)
	}
	b.WriteString("\n")
}

func renderExtractions(b *strings.Builder, extractions []types.ExtractionResult) {
	b.WriteString("## Extracted Content\n\n")
	if len(extractions) == 0 {
		b.WriteString("No extractions yet.\n\n")
		return
	}
	for _, ex := range extractions {
		fmt.Fprintf(b, "### %s (quality %d/10)\n\n", ex.URL, ex.QualityScore)
		writeBullets(b, "Key points", ex.KeyPoints)
		writeBullets(b, "Features", ex.Features)
		writeBullets(b, "Competitors", ex.Competitors)
		writeBullets(b, "Tech stack", ex.TechStack)
		writeBullets(b, "Use cases", ex.UseCases)
		writeBullets(b, "Market info", ex.MarketInfo)
		writeBullets(b, "Limitations", ex.Limitations)
	}
}

func renderAnalysis(b *strings.Builder, analysis *types.AnalysisResult, quality *types.QualityCheck) {
	b.WriteString("## Analysis\n\n")
	if analysis == nil {
		b.WriteString("No analysis yet.\n\n")
		return
	}
	fmt.Fprintf(b, "Confidence: %d/100\n\n", analysis.ConfidenceScore)
	writeBullets(b, "Features", analysis.Features)
	if len(analysis.Competitors) > 0 {
		b.WriteString("Competitors:\n")
		for _, c := range analysis.Competitors {
			if len(c.Features) > 0 {
				fmt.Fprintf(b, "- %s (%s)\n", c.Name, strings.Join(c.Features, ", "))
			} else {
				fmt.Fprintf(b, "- %s\n", c.Name)
			}
		}
		b.WriteString("\n")
	}
	writeBullets(b, "Strengths", analysis.SWOT.Strengths)
	writeBullets(b, "Weaknesses", analysis.SWOT.Weaknesses)
	writeBullets(b, "Opportunities", analysis.SWOT.Opportunities)
	writeBullets(b, "Threats", analysis.SWOT.Threats)
	if analysis.HasMarketData() {
		b.WriteString("Market:\n")
		if analysis.Market.Size != "" {
			fmt.Fprintf(b, "- size: %s\n", analysis.Market.Size)
		}
		if analysis.Market.Growth != "" {
			fmt.Fprintf(b, "- growth: %s\n", analysis.Market.Growth)
		}
		for _, t := range analysis.Market.Trends {
			fmt.Fprintf(b, "- trend: %s\n", t)
		}
		b.WriteString("\n")
	}
	if quality != nil {
		fmt.Fprintf(b, "Quality score: %.1f (complete: %v)\n", quality.Score, quality.IsComplete)
		writeBullets(b, "Issues", quality.Issues)
	}
	b.WriteString("\n")
}

func renderCitations(b *strings.Builder, results []types.SearchResult) {
	b.WriteString("## Citations\n\n")
	for i, r := range results {
		fmt.Fprintf(b, "[%d] %s — %s\n", i+1, cell(r.Title, 80), r.URL)
	}
	b.WriteString("\n")
}

func writeBullets(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", cell(item, 200))
	}
	b.WriteString("\n")
}

// cell flattens and truncates a string for table/bullet rendering.
func cell(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", "\\|")
	if len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}
