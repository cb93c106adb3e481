// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// trailingCommaPattern matches a comma followed by a closing brace or bracket.
var trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)

// Decode unmarshals a collaborator response into v. It tries a strict parse
// first, then a normalized parse that strips code fences, surrounding prose,
// and trailing commas. Callers fall back to their rule-based path when both
// tiers fail.
func Decode(text string, v any) error {
	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}

	normalized := Normalize(text)
	if normalized == "" {
		return fmt.Errorf("no JSON value found in response")
	}
	if err := json.Unmarshal([]byte(normalized), v); err != nil {
		return fmt.Errorf("parsing normalized response: %w", err)
	}
	return nil
}

// Normalize extracts the first JSON object or array from near-valid
// collaborator output: it removes Markdown code fences, trims prose before
// and after the JSON value, and repairs trailing commas.
func Normalize(text string) string {
	text = stripFences(text)

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return ""
	}
	closer := byte('}')
	if text[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(text, closer)
	if end <= start {
		return ""
	}

	candidate := text[start : end+1]
	return trailingCommaPattern.ReplaceAllString(candidate, "$1")
}

// stripFences removes Markdown code fences (``` or ```json) around the body.
func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.Contains(trimmed, "```") {
		return trimmed
	}
	var b strings.Builder
	inFence := false
	for _, line := range strings.Split(trimmed, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	// No fenced body at all means the fences were unbalanced; fall back to
	// the raw text so the caller can still locate a JSON value.
	if b.Len() == 0 {
		return trimmed
	}
	return b.String()
}
