// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meshintel/prodscout/internal/checkpoint"
)

var resumeCmd = &cobra.Command{
	Use:   "resume [task-id]",
	Short: "Resume an interrupted research task from its checkpoint",
	Long: `Resume continues a task from its last checkpoint. Completed work is
not repeated: executed queries, found results, and extracted findings all
carry over. Cancelled tasks pick up at the interrupted stage; completed and
failed tasks are reported as-is.`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func runResume(cmd *cobra.Command, args []string) error {
	taskID := args[0]

	orch, err := buildOrchestrator(cmd, os.Stdout)
	if err != nil {
		return err
	}

	ctx, stop := signalCancel(orch)
	defer stop()

	snap, err := orch.Resume(ctx, taskID)
	if errors.Is(err, checkpoint.ErrNotFound) {
		return fmt.Errorf("no checkpoint for task %s", taskID)
	}
	if errors.Is(err, checkpoint.ErrIntegrity) {
		return fmt.Errorf("checkpoint for task %s is corrupt; start a new task with the research subcommand", taskID)
	}
	return finishRun(cmd, snap, err)
}

func init() {
	resumeCmd.Flags().Int("max-iterations", 0, "maximum search-analyze cycles (0 = config default)")

	rootCmd.AddCommand(resumeCmd)
}
