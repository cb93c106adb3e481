// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orchestrate

import (
	"fmt"
	"io"
)

// ProgressSink receives stage-transition notifications. Sinks are purely
// observational: they own their storage and must never block the pipeline.
type ProgressSink interface {
	UpdateProgress(taskID string, percent int, message string)
}

// NopSink discards progress updates.
type NopSink struct{}

func (NopSink) UpdateProgress(string, int, string) {}

// WriterSink writes one line per update to an io.Writer.
type WriterSink struct {
	W io.Writer
}

func (s WriterSink) UpdateProgress(taskID string, percent int, message string) {
	fmt.Fprintf(s.W, "[%3d%%] %s: %s\n", percent, taskID, message)
}
