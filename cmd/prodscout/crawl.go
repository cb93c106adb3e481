// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meshintel/prodscout/internal/container"
)

const (
	crawlContainerName = "prodscout-crawl"
	crawlPort          = 11235
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Manage the local crawl service container",
	Long: `Crawl manages the container that backs content enrichment. The research
pipeline uses the service when enrich.crawl_base_url (or the crawl-base-url
secret) points at it; without the service, result snippets are used as-is.`,
}

var crawlUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Start the crawl service container",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := container.DetectRuntime()
		if err != nil {
			return err
		}

		running, err := rt.Running(crawlContainerName)
		if err != nil {
			return err
		}
		if running {
			fmt.Fprintf(cmd.OutOrStdout(), "crawl service already running on port %d\n", crawlPort)
			return nil
		}

		image := crawlImage()
		if err := rt.ImageExists(image); err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "pulling %s...\n", image)
			if err := rt.Pull(image); err != nil {
				return err
			}
		}

		if err := rt.StartDetached(crawlContainerName, image, crawlPort, crawlPort); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "crawl service started on http://localhost:%d (%s)\n", crawlPort, rt.Name())
		return nil
	},
}

var crawlDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Stop the crawl service container",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := container.DetectRuntime()
		if err != nil {
			return err
		}
		if err := rt.Stop(crawlContainerName); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "crawl service stopped")
		return nil
	},
}

var crawlStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the crawl service container is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := container.DetectRuntime()
		if err != nil {
			return err
		}
		running, err := rt.Running(crawlContainerName)
		if err != nil {
			return err
		}
		if running {
			fmt.Fprintf(cmd.OutOrStdout(), "running on http://localhost:%d (%s)\n", crawlPort, rt.Name())
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "not running")
		}
		return nil
	},
}

func crawlImage() string {
	if img := viper.GetString("enrich.crawl_image"); img != "" {
		return img
	}
	return "unclecode/crawl4ai:latest"
}

func init() {
	crawlCmd.AddCommand(crawlUpCmd, crawlDownCmd, crawlStatusCmd)
	rootCmd.AddCommand(crawlCmd)
}
