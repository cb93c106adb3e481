// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders the final research report as a markdown document
// with numbered citations back to the underlying search results.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/meshintel/prodscout/pkg/types"
)

// Writer renders markdown reports into a directory.
type Writer struct {
	dir string
}

// NewWriter creates the report directory if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Path returns the report file path for a task.
func (w *Writer) Path(taskID string) string {
	return filepath.Join(w.dir, taskID+".md")
}

// Write renders the snapshot into a markdown report and returns its path.
// The write goes through a temp file and rename so readers never observe a
// partial report.
func (w *Writer) Write(snap *types.Snapshot) (string, error) {
	content := Render(snap)
	path := w.Path(snap.Task.ID)

	tmp, err := os.CreateTemp(w.dir, "report-*.md")
	if err != nil {
		return "", fmt.Errorf("creating temp report: %w", err)
	}
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("closing report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("renaming report: %w", err)
	}
	return path, nil
}

// Render produces the full markdown report for a snapshot.
func Render(snap *types.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Product Research Report: %s\n\n", snap.Task.Title)
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().UTC().Format("2006-01-02 15:04 UTC"))

	writeOverview(&b, snap)
	writeCaveat(&b, snap)
	writeSummary(&b, snap.Summary)
	writeAnalysis(&b, snap.Analysis)
	writeCitations(&b, snap.Results)

	return b.String()
}

func writeOverview(b *strings.Builder, snap *types.Snapshot) {
	b.WriteString("## Overview\n\n")
	if snap.Task.Description != "" {
		fmt.Fprintf(b, "%s\n\n", snap.Task.Description)
	}
	if len(snap.Task.Keywords) > 0 {
		fmt.Fprintf(b, "Keywords: %s\n\n", strings.Join(snap.Task.Keywords, ", "))
	}
	fmt.Fprintf(b, "- Sources analyzed: %d\n", len(snap.Results))
	fmt.Fprintf(b, "- Research iterations: %d of %d\n", snap.Task.IterationsUsed, snap.Task.MaxIterations)
	if snap.Quality != nil {
		fmt.Fprintf(b, "- Quality score: %.1f / 100\n", snap.Quality.Score)
	}
	b.WriteString("\n")
}

// writeCaveat flags reports produced after the iteration ceiling was hit
// without reaching the completion score.
func writeCaveat(b *strings.Builder, snap *types.Snapshot) {
	if snap.Quality == nil || snap.Quality.IsComplete {
		return
	}
	b.WriteString("> **Note:** research ended at the iteration limit before reaching the\n")
	b.WriteString("> target quality score. Coverage may be incomplete in the dimensions\n")
	b.WriteString("> listed below.\n\n")
	if len(snap.Quality.MissingDimensions) > 0 {
		for _, d := range snap.Quality.MissingDimensions {
			fmt.Fprintf(b, "- %s\n", d)
		}
		b.WriteString("\n")
	}
}

func writeSummary(b *strings.Builder, summary *types.ComprehensiveSummary) {
	if summary == nil {
		return
	}
	b.WriteString("## Key Findings\n\n")
	writeList(b, summary.KeyFindings)

	if len(summary.CoreThemes) > 0 {
		b.WriteString("## Core Themes\n\n")
		writeList(b, summary.CoreThemes)
	}
	if len(summary.Features) > 0 {
		b.WriteString("## Features\n\n")
		writeList(b, summary.Features)
	}
	if len(summary.UseCases) > 0 {
		b.WriteString("## Use Cases\n\n")
		writeList(b, summary.UseCases)
	}
	if len(summary.Limitations) > 0 {
		b.WriteString("## Limitations\n\n")
		writeList(b, summary.Limitations)
	}
	if len(summary.DataGaps) > 0 {
		b.WriteString("## Data Gaps\n\n")
		writeList(b, summary.DataGaps)
	}
}

func writeAnalysis(b *strings.Builder, analysis *types.AnalysisResult) {
	if analysis == nil {
		return
	}
	if len(analysis.Competitors) > 0 {
		b.WriteString("## Competitive Landscape\n\n")
		for _, c := range analysis.Competitors {
			fmt.Fprintf(b, "### %s\n\n", c.Name)
			if len(c.Features) > 0 {
				writeList(b, c.Features)
			} else {
				b.WriteString("No distinguishing features identified.\n\n")
			}
		}
	}

	b.WriteString("## SWOT\n\n")
	writeSWOTQuadrant(b, "Strengths", analysis.SWOT.Strengths)
	writeSWOTQuadrant(b, "Weaknesses", analysis.SWOT.Weaknesses)
	writeSWOTQuadrant(b, "Opportunities", analysis.SWOT.Opportunities)
	writeSWOTQuadrant(b, "Threats", analysis.SWOT.Threats)

	if analysis.HasMarketData() {
		b.WriteString("## Market\n\n")
		if analysis.Market.Size != "" {
			fmt.Fprintf(b, "- Size: %s\n", analysis.Market.Size)
		}
		if analysis.Market.Growth != "" {
			fmt.Fprintf(b, "- Growth: %s\n", analysis.Market.Growth)
		}
		for _, t := range analysis.Market.Trends {
			fmt.Fprintf(b, "- Trend: %s\n", t)
		}
		b.WriteString("\n")
	}

	if len(analysis.TechStack) > 0 {
		b.WriteString("## Technology Stack\n\n")
		writeList(b, analysis.TechStack)
	}

	fmt.Fprintf(b, "Analysis confidence: %d / 100\n\n", analysis.ConfidenceScore)
}

func writeSWOTQuadrant(b *strings.Builder, title string, items []string) {
	fmt.Fprintf(b, "### %s\n\n", title)
	if len(items) == 0 {
		b.WriteString("None identified.\n\n")
		return
	}
	writeList(b, items)
}

func writeCitations(b *strings.Builder, results []types.SearchResult) {
	if len(results) == 0 {
		return
	}
	b.WriteString("## Sources\n\n")
	for i, r := range results {
		title := r.Title
		if title == "" {
			title = r.URL
		}
		fmt.Fprintf(b, "[%d] %s (%s) %s\n", i+1, title, r.Provider, r.URL)
	}
	b.WriteString("\n")
}

func writeList(b *strings.Builder, items []string) {
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}
