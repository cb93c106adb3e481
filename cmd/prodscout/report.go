// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/meshintel/prodscout/internal/checkpoint"
	"github.com/meshintel/prodscout/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report [task-id]",
	Short: "Render a report from a task's checkpoint",
	Long: `Report renders the markdown report for a checkpointed task. The report
is normally written by the pipeline itself; this subcommand regenerates it
on demand, including for tasks that stopped before completion.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
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

	if stdout, _ := cmd.Flags().GetBool("stdout"); stdout {
		fmt.Fprint(os.Stdout, report.Render(snap))
		return nil
	}

	writer, err := report.NewWriter(filepath.Join(workDir(cmd), reportSubdir))
	if err != nil {
		return err
	}
	path, err := writer.Write(snap)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "report written to %s\n", path)
	return nil
}

func init() {
	reportCmd.Flags().Bool("stdout", false, "print the report instead of writing a file")

	rootCmd.AddCommand(reportCmd)
}
