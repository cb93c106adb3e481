// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meshintel/prodscout/internal/checkpoint"
	"github.com/meshintel/prodscout/internal/evidence"
	"github.com/meshintel/prodscout/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the evidence index (ingest, query)",
	Long: `Index maintains a local SQLite database of sources and findings from
checkpointed tasks, with FTS5 full-text search. Use subcommands to ingest
task snapshots or query the accumulated evidence.`,
}

// --- ingest subcommand ---

var indexIngestCmd = &cobra.Command{
	Use:   "ingest [task-id...]",
	Short: "Ingest checkpointed tasks into the evidence index",
	Long: `Ingest indexes the named tasks' sources and findings. Without
arguments every checkpointed task is ingested. Re-ingesting a task
replaces its previous rows.`,
	RunE: runIndexIngest,
}

func runIndexIngest(cmd *cobra.Command, args []string) error {
	ckpt, err := checkpoint.NewStore(checkpointDir(cmd))
	if err != nil {
		return err
	}
	store, err := evidence.NewStore(evidenceConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	ids := args
	if len(ids) == 0 {
		if ids, err = ckpt.List(); err != nil {
			return err
		}
	}
	if len(ids) == 0 {
		fmt.Println("No checkpointed tasks to ingest.")
		return nil
	}

	ctx := context.Background()
	var failed int
	for _, id := range ids {
		snap, err := ckpt.Read(id)
		if err != nil {
			fmt.Fprintf(os.Stdout, "failed  %s: %v\n", id, err)
			failed++
			continue
		}
		summary, err := store.Ingest(ctx, snap)
		if err != nil {
			fmt.Fprintf(os.Stdout, "failed  %s: %v\n", id, err)
			failed++
			continue
		}
		fmt.Fprintf(os.Stdout, "indexed %s (%d sources, %d findings)\n", id, summary.Sources, summary.Findings)
	}

	if failed > 0 {
		return fmt.Errorf("%d task(s) failed indexing", failed)
	}
	return nil
}

// --- query subcommand ---

var indexQueryCmd = &cobra.Command{
	Use:   "query [terms]",
	Short: "Query the evidence index with full-text search and filters",
	RunE:  runIndexQuery,
}

func runIndexQuery(cmd *cobra.Command, args []string) error {
	store, err := evidence.NewStore(evidenceConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	taskID, _ := cmd.Flags().GetString("task")
	provider, _ := cmd.Flags().GetString("provider")
	dimension, _ := cmd.Flags().GetString("dimension")
	limit, _ := cmd.Flags().GetInt("limit")

	opts := evidence.QueryOptions{
		Query:      strings.Join(args, " "),
		TaskID:     taskID,
		Provider:   provider,
		Dimension:  dimension,
		MaxResults: limit,
	}
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide search terms, --task, --provider, or --dimension")
	}

	results, err := store.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(results, jsonOutput)
}

func formatQueryOutput(results []evidence.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-40s  %-8s  %-24s  %s\n", "Rank", "Title", "Provider", "Dimension", "URL")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))
	for i, r := range results {
		title := r.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-40s  %-8s  %-24s  %s\n", i+1, title, r.Provider, r.Dimension, r.URL)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- shared helpers ---

func evidenceConfig(cmd *cobra.Command) types.EvidenceConfig {
	maxResults, _ := cmd.Flags().GetInt("max-results")
	return types.EvidenceConfig{
		IndexDir:   filepath.Join(workDir(cmd), indexSubdir),
		MaxResults: maxResults,
	}
}

func init() {
	indexCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	indexQueryCmd.Flags().String("task", "", "filter by task ID")
	indexQueryCmd.Flags().String("provider", "", "filter by search provider: brave, serper, sample")
	indexQueryCmd.Flags().String("dimension", "", "filter by research dimension")
	indexQueryCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	indexQueryCmd.Flags().Bool("json", false, "output results as JSON")

	indexCmd.AddCommand(indexIngestCmd)
	indexCmd.AddCommand(indexQueryCmd)

	rootCmd.AddCommand(indexCmd)
}
