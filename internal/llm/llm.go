// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm provides the text-generation collaborator interface, an
// OpenAI-compatible HTTP client, and tolerant decoding of near-valid JSON
// responses. Every pipeline stage that uses a Generator must also work with
// a nil Generator by falling back to its rule-based path.
package llm

import "context"

// Options control a single generation call.
type Options struct {
	// System is the system prompt, empty for none.
	System string

	// Temperature controls sampling; zero means the client default (0.7).
	Temperature float64

	// MaxTokens caps the response length; zero means the client default.
	MaxTokens int

	// Role labels the call for diagnostics (e.g. "planner", "analyzer").
	Role string
}

// Generator produces text from a prompt. Implementations must honor the
// context deadline and return an error rather than blocking indefinitely.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}
