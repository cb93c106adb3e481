// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meshintel/prodscout/internal/analyze"
	"github.com/meshintel/prodscout/internal/checkpoint"
	"github.com/meshintel/prodscout/internal/enrich"
	"github.com/meshintel/prodscout/internal/llm"
	"github.com/meshintel/prodscout/internal/orchestrate"
	"github.com/meshintel/prodscout/internal/plan"
	"github.com/meshintel/prodscout/internal/quality"
	"github.com/meshintel/prodscout/internal/report"
	"github.com/meshintel/prodscout/internal/search"
	"github.com/meshintel/prodscout/internal/summarize"
	"github.com/meshintel/prodscout/pkg/types"
)

const (
	checkpointSubdir = "checkpoints"
	reportSubdir     = "reports"
	indexSubdir      = "index"
)

func workDir(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString("workdir")
	if dir == "" {
		dir = ".prodscout"
	}
	return dir
}

func checkpointDir(cmd *cobra.Command) string {
	return filepath.Join(workDir(cmd), checkpointSubdir)
}

// pipelineConfig assembles the full configuration from viper keys, loaded
// secrets, and command flags.
func pipelineConfig(cmd *cobra.Command) types.PipelineConfig {
	base := workDir(cmd)
	maxIters, _ := cmd.Flags().GetInt("max-iterations")
	if maxIters <= 0 {
		maxIters = viper.GetInt("orchestrator.max_iterations")
	}

	cfg := types.PipelineConfig{
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("search.timeout"),
				UserAgent: "prodscout/" + version,
			},
			MaxResultsPerQuery: viper.GetInt("search.max_results_per_query"),
			MaxConcurrent:      viper.GetInt("search.max_concurrent"),
			DimensionCap:       viper.GetInt("search.dimension_cap"),
			BraveAPIKey:        secretDefault("brave-api-key", viper.GetString("search.brave_api_key")),
			SerperAPIKey:       secretDefault("serper-api-key", viper.GetString("search.serper_api_key")),
		},
		Enrich: types.EnrichConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout: viper.GetDuration("enrich.timeout"),
			},
			CrawlBaseURL:     secretDefault("crawl-base-url", viper.GetString("enrich.crawl_base_url")),
			MinContentLength: viper.GetInt("enrich.min_content_length"),
			BatchSize:        viper.GetInt("enrich.batch_size"),
			BatchDelay:       viper.GetDuration("enrich.batch_delay"),
		},
		Extraction: types.ExtractionConfig{
			AIConfig:  aiConfig(),
			BatchSize: viper.GetInt("extraction.batch_size"),
		},
		Orchestrator: types.OrchestratorConfig{
			MaxIterations: maxIters,
			CheckpointDir: filepath.Join(base, checkpointSubdir),
			ReportDir:     filepath.Join(base, reportSubdir),
		},
		Evidence: types.EvidenceConfig{
			IndexDir:   filepath.Join(base, indexSubdir),
			MaxResults: viper.GetInt("evidence.max_results"),
		},
	}
	cfg.Search.EnableBrave = cfg.Search.BraveAPIKey != ""
	cfg.Search.EnableSerper = cfg.Search.SerperAPIKey != ""
	return cfg
}

func aiConfig() types.AIConfig {
	return types.AIConfig{
		BaseURL:   viper.GetString("ai.base_url"),
		Model:     viper.GetString("ai.model"),
		APIKey:    secretDefault("openai-api-key", viper.GetString("ai.api_key")),
		MaxTokens: viper.GetInt("ai.max_tokens"),
	}
}

// buildProviders returns the enabled search providers. With no provider
// keys configured a deterministic sample provider keeps the pipeline
// runnable offline.
func buildProviders(cfg types.SearchConfig, w io.Writer) []search.Provider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	var providers []search.Provider
	if cfg.EnableBrave {
		providers = append(providers, &search.BraveProvider{Client: client, APIKey: cfg.BraveAPIKey, UserAgent: cfg.UserAgent})
	}
	if cfg.EnableSerper {
		providers = append(providers, &search.SerperProvider{Client: client, APIKey: cfg.SerperAPIKey, UserAgent: cfg.UserAgent})
	}
	if len(providers) == 0 {
		fmt.Fprintln(w, "warning: no search provider keys configured, using offline sample provider")
		providers = append(providers, &search.SampleProvider{})
	}
	return providers
}

// buildOrchestrator wires the full pipeline. The AI collaborator and crawl
// service are optional; when absent the rule-based paths carry each stage.
func buildOrchestrator(cmd *cobra.Command, out io.Writer) (*orchestrate.Orchestrator, error) {
	cfg := pipelineConfig(cmd)

	store, err := checkpoint.NewStore(cfg.Orchestrator.CheckpointDir)
	if err != nil {
		return nil, err
	}
	reporter, err := report.NewWriter(cfg.Orchestrator.ReportDir)
	if err != nil {
		return nil, err
	}

	var gen llm.Generator
	if c := llm.NewClient(cfg.Extraction.AIConfig); c != nil {
		gen = c
	}
	var fetcher enrich.Fetcher
	if c := enrich.NewCrawlClient(cfg.Enrich); c != nil {
		fetcher = c
	}

	deps := orchestrate.Deps{
		Planner:    plan.New(gen),
		Searcher:   search.NewExecutor(buildProviders(cfg.Search, out), cfg.Search, out),
		Enricher:   enrich.New(fetcher, cfg.Enrich, out),
		Summarizer: summarize.New(gen, cfg.Extraction, out),
		Analyzer:   analyze.New(gen),
		Gate:       quality.New(gen),
		Reporter:   reporter,
		Store:      store,
		Sink:       orchestrate.WriterSink{W: out},
		Out:        out,
	}
	return orchestrate.New(deps, cfg.Orchestrator), nil
}
