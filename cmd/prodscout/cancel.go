// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/meshintel/prodscout/internal/checkpoint"
	"github.com/meshintel/prodscout/pkg/types"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel [task-id]",
	Short: "Mark a checkpointed task as cancelled",
	Long: `Cancel marks a task's checkpoint as cancelled. It operates on the
checkpoint only, for tasks whose process is no longer running; a live run is
cancelled with Ctrl-C instead. The interrupted stage is preserved, so the
task stays resumable.`,
	Args: cobra.ExactArgs(1),
	RunE: runCancel,
}

func runCancel(cmd *cobra.Command, args []string) error {
	taskID := args[0]

	store, err := checkpoint.NewStore(checkpointDir(cmd))
	if err != nil {
		return err
	}

	snap, err := store.Read(taskID)
	if errors.Is(err, checkpoint.ErrNotFound) {
		return fmt.Errorf("no checkpoint for task %s", taskID)
	}
	if err != nil {
		return err
	}

	if snap.Task.Status.Terminal() {
		fmt.Fprintf(cmd.OutOrStdout(), "task %s is already %s\n", taskID, snap.Task.Status)
		return nil
	}

	snap.Task.ResumeStatus = snap.Task.Status
	snap.Task.Status = types.StatusCancelled
	snap.Task.ProgressMessage = "cancelled"
	snap.Task.UpdatedAt = time.Now().UTC()
	if err := store.Write(snap); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "task %s cancelled; resume with: prodscout resume %s\n", taskID, taskID)
	return nil
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}
