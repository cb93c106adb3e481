package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "prodscout/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for stages that call the text-generation
// collaborator. An empty BaseURL means the collaborator is not configured
// and the stage uses its rule-based fallback.
type AIConfig struct {
	// BaseURL is the OpenAI-compatible chat completions endpoint base.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Model is the model identifier.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxTokens caps the response length (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// SearchConfig holds settings for the search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResultsPerQuery caps results requested per provider call (default 10).
	MaxResultsPerQuery int `json:"max_results_per_query" yaml:"max_results_per_query"`

	// MaxConcurrent bounds simultaneous provider calls per query (default 5).
	MaxConcurrent int `json:"max_concurrent" yaml:"max_concurrent"`

	// DimensionCap skips queries whose dimension already has this many
	// accumulated results (default 10).
	DimensionCap int `json:"dimension_cap" yaml:"dimension_cap"`

	// EnableBrave controls whether the Brave Web Search provider is used.
	EnableBrave bool `json:"enable_brave" yaml:"enable_brave"`

	// EnableSerper controls whether the Serper provider is used.
	EnableSerper bool `json:"enable_serper" yaml:"enable_serper"`

	// BraveAPIKey authenticates against the Brave Search API.
	BraveAPIKey string `json:"brave_api_key,omitempty" yaml:"brave_api_key,omitempty"`

	// SerperAPIKey authenticates against serper.dev.
	SerperAPIKey string `json:"serper_api_key,omitempty" yaml:"serper_api_key,omitempty"`
}

// EnrichConfig holds settings for the content enrichment stage.
type EnrichConfig struct {
	HTTPConfig `yaml:",inline"`

	// CrawlBaseURL is the Crawl4AI service base URL. Empty disables enrichment.
	CrawlBaseURL string `json:"crawl_base_url,omitempty" yaml:"crawl_base_url,omitempty"`

	// MinContentLength is the snippet length below which a result is
	// eligible for enrichment (default 200).
	MinContentLength int `json:"min_content_length" yaml:"min_content_length"`

	// BatchSize bounds concurrent fetches per batch (default 5).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// BatchDelay is the pause between batches (default 1s).
	BatchDelay time.Duration `json:"batch_delay" yaml:"batch_delay"`
}

// ExtractionConfig holds settings for the map-phase extraction stage.
type ExtractionConfig struct {
	AIConfig `yaml:",inline"`

	// BatchSize bounds concurrent extraction calls (default 5).
	BatchSize int `json:"batch_size" yaml:"batch_size"`
}

// OrchestratorConfig holds settings for the supervisor loop.
type OrchestratorConfig struct {
	// MaxIterations is the absolute ceiling on search-extract-analyze
	// cycles (default 3).
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`

	// CheckpointDir is the directory for task checkpoint files.
	CheckpointDir string `json:"checkpoint_dir" yaml:"checkpoint_dir"`

	// ReportDir is the directory for generated report files.
	ReportDir string `json:"report_dir" yaml:"report_dir"`

	// LeaseTTL is how long a worker's claim on a task remains valid
	// without renewal (default 5m).
	LeaseTTL time.Duration `json:"lease_ttl" yaml:"lease_ttl"`
}

// EvidenceConfig holds settings for the evidence index.
type EvidenceConfig struct {
	// IndexDir is the directory containing the SQLite evidence database.
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Search       SearchConfig       `json:"search" yaml:"search"`
	Enrich       EnrichConfig       `json:"enrich" yaml:"enrich"`
	Extraction   ExtractionConfig   `json:"extraction" yaml:"extraction"`
	Analysis     AIConfig           `json:"analysis" yaml:"analysis"`
	Planner      AIConfig           `json:"planner" yaml:"planner"`
	Orchestrator OrchestratorConfig `json:"orchestrator" yaml:"orchestrator"`
	Evidence     EvidenceConfig     `json:"evidence" yaml:"evidence"`
}
