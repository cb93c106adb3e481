// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meshintel/prodscout/internal/checkpoint"
)

var statusCmd = &cobra.Command{
	Use:   "status [task-id]",
	Short: "Show task progress from checkpoints",
	Long: `Status lists all checkpointed tasks, or shows one task in detail when
a task ID is given: its state, iteration count, result and finding counts,
and the latest quality verdict.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	store, err := checkpoint.NewStore(checkpointDir(cmd))
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return listTasks(store)
	}
	return showTask(cmd, store, args[0])
}

func listTasks(store *checkpoint.Store) error {
	ids, err := store.List()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Println("No checkpointed tasks.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-38s  %-11s  %-5s  %s\n", "Task", "Status", "Iter", "Title")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
	for _, id := range ids {
		snap, err := store.Read(id)
		if err != nil {
			status := "unreadable"
			if errors.Is(err, checkpoint.ErrIntegrity) {
				status = "corrupt"
			}
			fmt.Fprintf(os.Stdout, "%-38s  %-11s\n", id, status)
			continue
		}
		fmt.Fprintf(os.Stdout, "%-38s  %-11s  %d/%d    %s\n",
			snap.Task.ID, snap.Task.Status, snap.Task.IterationsUsed, snap.Task.MaxIterations, snap.Task.Title)
	}
	return nil
}

func showTask(cmd *cobra.Command, store *checkpoint.Store, taskID string) error {
	snap, err := store.Read(taskID)
	if errors.Is(err, checkpoint.ErrNotFound) {
		return fmt.Errorf("no checkpoint for task %s", taskID)
	}
	if err != nil {
		return err
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	fmt.Fprintf(os.Stdout, "Task:       %s\n", snap.Task.ID)
	fmt.Fprintf(os.Stdout, "Title:      %s\n", snap.Task.Title)
	fmt.Fprintf(os.Stdout, "Status:     %s [%d%%] %s\n", snap.Task.Status, snap.Task.ProgressPercent, snap.Task.ProgressMessage)
	fmt.Fprintf(os.Stdout, "Iterations: %d of %d\n", snap.Task.IterationsUsed, snap.Task.MaxIterations)
	if snap.Plan != nil {
		fmt.Fprintf(os.Stdout, "Queries:    %d planned, %d pending\n", len(snap.Plan.Queries), len(snap.Plan.PendingQueries()))
	}
	fmt.Fprintf(os.Stdout, "Results:    %d found, %d extracted\n", len(snap.Results), len(snap.Extractions))
	if snap.Quality != nil {
		fmt.Fprintf(os.Stdout, "Quality:    %.1f / 100 (complete: %t)\n", snap.Quality.Score, snap.Quality.IsComplete)
		for _, issue := range snap.Quality.Issues {
			fmt.Fprintf(os.Stdout, "  - %s\n", issue)
		}
	}
	return nil
}

func init() {
	statusCmd.Flags().Bool("json", false, "output the full snapshot as JSON")

	rootCmd.AddCommand(statusCmd)
}
