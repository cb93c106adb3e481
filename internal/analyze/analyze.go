// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze turns a comprehensive summary into a structured deep
// analysis: assessed features, competitor profiles, SWOT, market data, and
// a confidence score. Collaborator absence or failure degrades to a
// deterministic derivation with a fixed low confidence score.
package analyze

import (
	"context"
	"fmt"
	"strings"

	"k8s.io/klog/v2"

	"github.com/meshintel/prodscout/internal/llm"
	"github.com/meshintel/prodscout/pkg/types"
)

// fallbackConfidence signals low trust in the rule-based derivation.
const fallbackConfidence = 30

const fallbackTopN = 10

// Analyzer produces AnalysisResults. A nil generator selects the rule-based
// path.
type Analyzer struct {
	generator llm.Generator
}

// New returns an Analyzer backed by the given generator, which may be nil.
func New(generator llm.Generator) *Analyzer {
	return &Analyzer{generator: generator}
}

// Analyze builds the AnalysisResult for the summary. The result replaces
// any previous analysis wholesale. Results are passed so the fallback can
// attribute competitor features from source text rather than guessing.
func (a *Analyzer) Analyze(ctx context.Context, topic string, summary *types.ComprehensiveSummary, results []types.SearchResult) *types.AnalysisResult {
	fallback := RuleBasedAnalysis(summary, results)
	if a.generator == nil {
		return fallback
	}

	text, err := a.generator.Generate(ctx, analysisPrompt(topic, summary), llm.Options{
		System:      analysisSystemPrompt,
		Temperature: 0.4,
		Role:        "analyzer",
	})
	if err != nil {
		klog.V(2).Infof("analyzer: generation failed, using rule-based analysis: %v", err)
		return fallback
	}

	var resp analysisResponse
	if err := llm.Decode(text, &resp); err != nil {
		klog.V(2).Infof("analyzer: undecodable response, using rule-based analysis: %v", err)
		return fallback
	}

	return mergeAnalysis(resp, fallback)
}

// RuleBasedAnalysis is the deterministic fallback: top-N features and
// competitors taken directly from the summary, competitor features
// attributed by co-occurrence in source text, SWOT opportunities seeded
// from the key findings, and a fixed low confidence score.
func RuleBasedAnalysis(summary *types.ComprehensiveSummary, results []types.SearchResult) *types.AnalysisResult {
	analysis := &types.AnalysisResult{
		Features:        topN(summary.Features, fallbackTopN),
		TechStack:       topN(summary.TechStack, fallbackTopN),
		ConfidenceScore: fallbackConfidence,
	}

	for _, name := range topN(summary.Competitors, fallbackTopN) {
		analysis.Competitors = append(analysis.Competitors, types.CompetitorProfile{
			Name:     name,
			Features: coOccurringFeatures(name, summary.Features, results),
		})
	}

	analysis.SWOT = types.SWOT{
		Strengths:     topN(summary.Features, 5),
		Weaknesses:    topN(summary.Limitations, 5),
		Opportunities: topN(summary.KeyFindings, 5),
	}
	for _, c := range analysis.Competitors {
		analysis.SWOT.Threats = append(analysis.SWOT.Threats, "competition from "+c.Name)
	}

	analysis.Market = marketFromInfo(summary.MarketInfo)
	return analysis
}

// coOccurringFeatures attributes a feature to a competitor only when both
// appear in the same result's content.
func coOccurringFeatures(competitor string, features []string, results []types.SearchResult) []string {
	var attributed []string
	for _, feature := range features {
		for _, r := range results {
			lower := strings.ToLower(r.Content)
			if strings.Contains(lower, strings.ToLower(competitor)) &&
				strings.Contains(lower, strings.ToLower(feature)) {
				attributed = append(attributed, feature)
				break
			}
		}
	}
	return attributed
}

// marketFromInfo splits market statements into size, growth, and trends by
// keyword.
func marketFromInfo(info []string) types.MarketData {
	var m types.MarketData
	for _, item := range info {
		lower := strings.ToLower(item)
		switch {
		case m.Size == "" && (strings.Contains(lower, "billion") || strings.Contains(lower, "million") || strings.Contains(lower, "market size")):
			m.Size = item
		case m.Growth == "" && (strings.Contains(lower, "cagr") || strings.Contains(lower, "growth")):
			m.Growth = item
		default:
			m.Trends = append(m.Trends, item)
		}
	}
	return m
}

func topN(items []string, n int) []string {
	if len(items) <= n {
		return append([]string(nil), items...)
	}
	return append([]string(nil), items[:n]...)
}

// analysisResponse is the collaborator's analysis shape.
type analysisResponse struct {
	Features    []string `json:"features"`
	Competitors []struct {
		Name     string   `json:"name"`
		Features []string `json:"features"`
	} `json:"competitors"`
	SWOT struct {
		Strengths     []string `json:"strengths"`
		Weaknesses    []string `json:"weaknesses"`
		Opportunities []string `json:"opportunities"`
		Threats       []string `json:"threats"`
	} `json:"swot"`
	Market struct {
		Size   string   `json:"size"`
		Growth string   `json:"growth"`
		Trends []string `json:"trends"`
	} `json:"market"`
	TechStack       []string `json:"tech_stack"`
	ConfidenceScore int      `json:"confidence_score"`
}

// mergeAnalysis converts a decoded response into an AnalysisResult, filling
// missing parts from the rule-based fallback.
func mergeAnalysis(resp analysisResponse, fallback *types.AnalysisResult) *types.AnalysisResult {
	analysis := &types.AnalysisResult{
		Features:  resp.Features,
		TechStack: resp.TechStack,
		SWOT: types.SWOT{
			Strengths:     resp.SWOT.Strengths,
			Weaknesses:    resp.SWOT.Weaknesses,
			Opportunities: resp.SWOT.Opportunities,
			Threats:       resp.SWOT.Threats,
		},
		Market: types.MarketData{
			Size:   resp.Market.Size,
			Growth: resp.Market.Growth,
			Trends: resp.Market.Trends,
		},
		ConfidenceScore: resp.ConfidenceScore,
	}

	for _, c := range resp.Competitors {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		analysis.Competitors = append(analysis.Competitors, types.CompetitorProfile{
			Name:     c.Name,
			Features: c.Features,
		})
	}

	if len(analysis.Features) == 0 {
		analysis.Features = fallback.Features
	}
	if len(analysis.Competitors) == 0 {
		analysis.Competitors = fallback.Competitors
	}
	if len(analysis.TechStack) == 0 {
		analysis.TechStack = fallback.TechStack
	}
	if !analysis.HasMarketData() {
		analysis.Market = fallback.Market
	}
	if analysis.ConfidenceScore < 0 || analysis.ConfidenceScore > 100 {
		analysis.ConfidenceScore = fallbackConfidence
	}
	if analysis.ConfidenceScore == 0 {
		analysis.ConfidenceScore = fallbackConfidence
	}
	return analysis
}

const analysisSystemPrompt = `You are a product research analyst. Produce a structured deep analysis of the evidence you are given.

Respond with a single JSON object and nothing else:
{
  "features": ["..."],
  "competitors": [{"name": "...", "features": ["features the evidence ties to this competitor"]}],
  "swot": {"strengths": ["..."], "weaknesses": ["..."], "opportunities": ["..."], "threats": ["..."]},
  "market": {"size": "...", "growth": "...", "trends": ["..."]},
  "tech_stack": ["..."],
  "confidence_score": 70
}
confidence_score rates your trust in the analysis from 0 to 100 given the evidence quality. Attribute a feature to a competitor only when the evidence supports it.`

// analysisPrompt renders the summary for the analysis call.
func analysisPrompt(topic string, summary *types.ComprehensiveSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n\n", topic)
	writeList(&b, "Features", summary.Features)
	writeList(&b, "Competitors", summary.Competitors)
	writeList(&b, "Tech stack", summary.TechStack)
	writeList(&b, "Use cases", summary.UseCases)
	writeList(&b, "Market info", summary.MarketInfo)
	writeList(&b, "Limitations", summary.Limitations)
	writeList(&b, "Key findings", summary.KeyFindings)
	writeList(&b, "Core themes", summary.CoreThemes)
	fmt.Fprintf(&b, "Summary quality: completeness=%d reliability=%d depth=%d\n",
		summary.Quality.Completeness, summary.Quality.Reliability, summary.Quality.Depth)
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}
