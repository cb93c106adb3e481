// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the prodscout CLI, an iterative
// product research orchestrator. Subcommands start, resume, inspect, index,
// and report on research tasks.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meshintel/prodscout/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the prodscout CLI.
var rootCmd = &cobra.Command{
	Use:   "prodscout",
	Short: "Iterative product research orchestrator",
	Long: `prodscout researches a product topic through an iterative pipeline:
it plans search queries across research dimensions, executes them against
web search providers, enriches thin results with full page content,
extracts structured findings, analyzes the competitive landscape, and
gates on evidence quality before producing a cited markdown report.

Every stage transition is checkpointed, so an interrupted run resumes
from where it left off with the resume subcommand.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./prodscout.yaml or ~/.config/prodscout/config.yaml)")
	rootCmd.PersistentFlags().String("workdir", ".prodscout", "base directory for checkpoints, reports, and the evidence index")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("prodscout")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "prodscout"))
		}
	}

	viper.SetEnvPrefix("PRODSCOUT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
