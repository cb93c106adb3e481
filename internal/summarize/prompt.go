// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"fmt"
	"strings"

	"github.com/meshintel/prodscout/pkg/types"
)

// maxContentChars caps the page content included in an extraction prompt.
const maxContentChars = 8000

// extractionResponse is the collaborator's per-result extraction shape.
type extractionResponse struct {
	KeyPoints    []string `json:"key_points"`
	Features     []string `json:"features"`
	Competitors  []string `json:"competitors"`
	TechStack    []string `json:"tech_stack"`
	UseCases     []string `json:"use_cases"`
	MarketInfo   []string `json:"market_info"`
	Limitations  []string `json:"limitations"`
	QualityScore int      `json:"quality_score"`
}

const extractionSystemPrompt = `You are a product research extraction system. Analyze one web page and extract structured facts.

Respond with a single JSON object and nothing else:
{
  "key_points": ["factual statements worth citing"],
  "features": ["product capabilities named in the text"],
  "competitors": ["competing products or vendors named in the text"],
  "tech_stack": ["technologies, languages, or platforms named in the text"],
  "use_cases": ["concrete applications described in the text"],
  "market_info": ["market size, growth, or trend statements"],
  "limitations": ["drawbacks or constraints named in the text"],
  "quality_score": 7
}
quality_score rates the page's evidence value from 1 (no usable facts) to 10 (rich primary source). Only report facts present in the text; leave lists empty rather than guessing.`

// extractionPrompt renders one search result for the extraction call.
func extractionPrompt(r types.SearchResult) string {
	content := r.Content
	if len(content) > maxContentChars {
		content = content[:maxContentChars]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "URL: %s\n", r.URL)
	fmt.Fprintf(&b, "Title: %s\n", r.Title)
	fmt.Fprintf(&b, "Research facet: %s\n\n", r.Dimension)
	fmt.Fprintf(&b, "Page content:\n%s\n", content)
	return b.String()
}
