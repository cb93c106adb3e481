// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"fmt"
	"strings"

	"k8s.io/klog/v2"

	"github.com/meshintel/prodscout/internal/llm"
	"github.com/meshintel/prodscout/pkg/types"
)

// Reduce merges all extractions into one ComprehensiveSummary. The summary
// is rebuilt wholesale every call. The rule-based merge runs first; when a
// collaborator is available a synthesis pass layers core themes and refined
// key findings on top, falling back to the rule-based result on any failure.
func (s *Summarizer) Reduce(ctx context.Context, topic string, extractions []types.ExtractionResult) *types.ComprehensiveSummary {
	summary := ruleBasedReduce(extractions)
	if s.generator == nil || len(extractions) == 0 {
		return summary
	}

	text, err := s.generator.Generate(ctx, synthesisPrompt(topic, summary), llm.Options{
		System:      synthesisSystemPrompt,
		Temperature: 0.4,
		Role:        "synthesizer",
	})
	if err != nil {
		klog.V(2).Infof("reduce: synthesis failed, keeping rule-based summary: %v", err)
		return summary
	}

	var resp synthesisResponse
	if err := llm.Decode(text, &resp); err != nil {
		klog.V(2).Infof("reduce: undecodable synthesis, keeping rule-based summary: %v", err)
		return summary
	}

	if themes := cleanList(resp.CoreThemes); len(themes) > 0 {
		summary.CoreThemes = themes
	}
	if findings := cleanList(resp.KeyFindings); len(findings) > 0 {
		summary.KeyFindings = findings
	}
	if gaps := cleanList(resp.DataGaps); len(gaps) > 0 {
		summary.DataGaps = gaps
	}
	return summary
}

// ruleBasedReduce unions and deduplicates the map outputs deterministically
// and averages extraction quality scores into the summary quality axes.
func ruleBasedReduce(extractions []types.ExtractionResult) *types.ComprehensiveSummary {
	var features, competitors, techStack, useCases, marketInfo, limitations, keyPoints []string
	for _, ex := range extractions {
		features = append(features, ex.Features...)
		competitors = append(competitors, ex.Competitors...)
		techStack = append(techStack, ex.TechStack...)
		useCases = append(useCases, ex.UseCases...)
		marketInfo = append(marketInfo, ex.MarketInfo...)
		limitations = append(limitations, ex.Limitations...)
		keyPoints = append(keyPoints, ex.KeyPoints...)
	}

	summary := &types.ComprehensiveSummary{
		Features:    sortedUnique(features),
		Competitors: sortedUnique(competitors),
		TechStack:   sortedUnique(techStack),
		UseCases:    sortedUnique(useCases),
		MarketInfo:  sortedUnique(marketInfo),
		Limitations: sortedUnique(limitations),
		KeyFindings: sortedUnique(keyPoints),
		CoreThemes:  coreThemes(extractions),
		Quality:     summaryQuality(extractions),
	}
	summary.DataGaps = dataGaps(summary)
	return summary
}

// coreThemes picks items that recur across independent extractions; a theme
// needs support from at least two sources.
func coreThemes(extractions []types.ExtractionResult) []string {
	counts := make(map[string]int)
	spelling := make(map[string]string)
	for _, ex := range extractions {
		perSource := make(map[string]bool)
		for _, item := range append(append([]string{}, ex.Features...), ex.UseCases...) {
			key := strings.ToLower(strings.TrimSpace(item))
			if key == "" || perSource[key] {
				continue
			}
			perSource[key] = true
			counts[key]++
			if _, ok := spelling[key]; !ok {
				spelling[key] = strings.TrimSpace(item)
			}
		}
	}

	var themes []string
	for key, n := range counts {
		if n >= 2 {
			themes = append(themes, spelling[key])
		}
	}
	return sortedUnique(themes)
}

// dataGaps names facets with no evidence at all.
func dataGaps(summary *types.ComprehensiveSummary) []string {
	var gaps []string
	if len(summary.Features) == 0 {
		gaps = append(gaps, types.DimensionFeatures)
	}
	if len(summary.Competitors) == 0 {
		gaps = append(gaps, types.DimensionCompetitors)
	}
	if len(summary.TechStack) == 0 {
		gaps = append(gaps, types.DimensionTechnical)
	}
	if len(summary.MarketInfo) == 0 {
		gaps = append(gaps, types.DimensionMarket)
	}
	if len(summary.UseCases) == 0 {
		gaps = append(gaps, types.DimensionUseCases)
	}
	return gaps
}

// summaryQuality derives the three quality axes from the extractions.
// Reliability is the average extraction quality score scaled to 0-100;
// completeness counts populated facets; depth reflects evidence volume.
func summaryQuality(extractions []types.ExtractionResult) types.SummaryQuality {
	if len(extractions) == 0 {
		return types.SummaryQuality{}
	}

	total := 0
	items := 0
	populated := make(map[string]bool)
	for _, ex := range extractions {
		total += ex.QualityScore
		for facet, list := range map[string][]string{
			"features":    ex.Features,
			"competitors": ex.Competitors,
			"tech":        ex.TechStack,
			"useCases":    ex.UseCases,
			"market":      ex.MarketInfo,
			"limitations": ex.Limitations,
		} {
			items += len(list)
			if len(list) > 0 {
				populated[facet] = true
			}
		}
	}

	reliability := total * 10 / len(extractions)
	completeness := len(populated) * 100 / 6
	depth := items * 100 / (len(extractions) * 10)
	if depth > 100 {
		depth = 100
	}
	return types.SummaryQuality{
		Completeness: completeness,
		Reliability:  reliability,
		Depth:        depth,
	}
}

// synthesisResponse is the collaborator's synthesis shape.
type synthesisResponse struct {
	CoreThemes  []string `json:"core_themes"`
	KeyFindings []string `json:"key_findings"`
	DataGaps    []string `json:"data_gaps"`
}

const synthesisSystemPrompt = `You synthesize product research notes.
Respond with a single JSON object and nothing else:
{"core_themes": ["..."], "key_findings": ["..."], "data_gaps": ["..."]}`

// synthesisPrompt renders the merged evidence for the synthesis pass.
func synthesisPrompt(topic string, summary *types.ComprehensiveSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n\n", topic)
	writeListSection(&b, "Features", summary.Features)
	writeListSection(&b, "Competitors", summary.Competitors)
	writeListSection(&b, "Tech stack", summary.TechStack)
	writeListSection(&b, "Use cases", summary.UseCases)
	writeListSection(&b, "Market info", summary.MarketInfo)
	writeListSection(&b, "Limitations", summary.Limitations)
	writeListSection(&b, "Key points", summary.KeyFindings)
	b.WriteString("Identify the core themes, the most important findings, and any facets where evidence is missing.")
	return b.String()
}

func writeListSection(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}
