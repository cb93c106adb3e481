// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/meshintel/prodscout/internal/orchestrate"
	"github.com/meshintel/prodscout/internal/plan"
	"github.com/meshintel/prodscout/pkg/types"
)

var researchCmd = &cobra.Command{
	Use:   "research [title]",
	Short: "Start a new research task and run it to completion",
	Long: `Research starts a new task for the given topic and drives the full
pipeline: planning, search, enrichment, extraction, analysis, quality
gating, and report generation. The task checkpoints at every stage, so an
interrupted run can be continued with the resume subcommand.

Press Ctrl-C once to stop cooperatively at the next stage boundary; the
checkpoint stays resumable.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

func runResearch(cmd *cobra.Command, args []string) error {
	title := strings.Join(args, " ")
	description, _ := cmd.Flags().GetString("description")
	keywordsFlag, _ := cmd.Flags().GetString("keywords")

	var keywords []string
	for _, k := range strings.Split(keywordsFlag, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}

	orch, err := buildOrchestrator(cmd, os.Stdout)
	if err != nil {
		return err
	}

	ctx, stop := signalCancel(orch)
	defer stop()

	snap, err := orch.Run(ctx, plan.Request{
		Title:       title,
		Description: description,
		Keywords:    keywords,
	})
	return finishRun(cmd, snap, err)
}

// signalCancel requests cooperative cancellation on the first interrupt and
// cancels the context outright on the second.
func signalCancel(orch *orchestrate.Orchestrator) (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())

	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		fmt.Fprintln(os.Stderr, "interrupt received, stopping at next stage boundary (Ctrl-C again to abort)")
		orch.Cancel()
		<-sigs
		cancel()
	}()

	return ctx, func() {
		signal.Stop(sigs)
		cancel()
	}
}

// finishRun reports the terminal state and maps it to the process exit.
func finishRun(cmd *cobra.Command, snap *types.Snapshot, err error) error {
	if snap != nil && snap.Task.ID != "" {
		fmt.Fprintf(os.Stdout, "task %s: %s\n", snap.Task.ID, snap.Task.Status)
	}
	if err != nil {
		return err
	}
	if snap != nil && snap.Task.Status == types.StatusCancelled {
		fmt.Fprintf(os.Stdout, "resume with: prodscout resume %s\n", snap.Task.ID)
	}
	return nil
}

func init() {
	researchCmd.Flags().String("description", "", "free-text description of the research goal")
	researchCmd.Flags().String("keywords", "", "focus keywords (comma-separated)")
	researchCmd.Flags().Int("max-iterations", 0, "maximum search-analyze cycles (0 = config default)")

	rootCmd.AddCommand(researchCmd)
}
