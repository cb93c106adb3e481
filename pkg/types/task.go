// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the prodscout research
// pipeline: tasks, search plans, results, extraction and analysis records,
// and the pipeline configuration.
package types

import "time"

// TaskStatus identifies the pipeline stage a research task is in.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusPlanning   TaskStatus = "planning"
	StatusSearching  TaskStatus = "searching"
	StatusExtracting TaskStatus = "extracting"
	StatusAnalyzing  TaskStatus = "analyzing"
	StatusReporting  TaskStatus = "reporting"
	StatusCompleted  TaskStatus = "completed"
	StatusFailed     TaskStatus = "failed"
	StatusCancelled  TaskStatus = "cancelled"
)

// Terminal reports whether the status is an end state.
func (s TaskStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// ResearchTask is one topic under research. The orchestrator owns the record
// exclusively: it creates the task once and is the only mutator.
type ResearchTask struct {
	// ID is the task identifier (UUID).
	ID string `json:"id" yaml:"id"`

	// Title is the product topic under research.
	Title string `json:"title" yaml:"title"`

	// Description optionally narrows the topic.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Keywords optionally seed the query planner.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// Status is the current pipeline stage.
	Status TaskStatus `json:"status" yaml:"status"`

	// ResumeStatus preserves the stage a cancellation interrupted, so
	// resuming continues from that stage instead of restarting.
	ResumeStatus TaskStatus `json:"resume_status,omitempty" yaml:"resume_status,omitempty"`

	// IterationsUsed counts completed search-extract-analyze cycles.
	IterationsUsed int `json:"iterations_used" yaml:"iterations_used"`

	// MaxIterations is the absolute ceiling on cycles for this task.
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`

	// ProgressPercent is the last reported progress value (0-100).
	ProgressPercent int `json:"progress_percent" yaml:"progress_percent"`

	// ProgressMessage is the last human-readable progress or failure message.
	ProgressMessage string `json:"progress_message,omitempty" yaml:"progress_message,omitempty"`

	StartedAt   time.Time  `json:"started_at" yaml:"started_at"`
	UpdatedAt   time.Time  `json:"updated_at" yaml:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}
