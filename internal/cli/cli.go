//-------------------------------------------------------------------------
//
// chessdash - chess game warehouse
//
// Copyright (c) 2025 - 2026, the chessdash authors
// This software is released under The MIT License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for chessdash.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/chessdash/chessdash/internal/config"
	"github.com/chessdash/chessdash/internal/logging"
	"github.com/chessdash/chessdash/internal/source"
	"github.com/chessdash/chessdash/pkg/version"
)

var (
	// Global flags
	cfgFile  string
	database string
	logLevel string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "chessdash",
		Short: "Personal chess game warehouse and statistics dashboard",
		Long: `chessdash fetches your games from Lichess and Chess.com, loads them
into an embedded DuckDB warehouse organized as a star schema, and keeps
a set of derived statistics tables up to date incrementally.

Fetched games are deduplicated per platform, so repeated runs only add
what is new. The dashboard command serves the derived statistics over
HTTP for local browsing.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./chessdash.yaml)")
	rootCmd.PersistentFlags().StringVar(&database, "database", "",
		"path to the DuckDB warehouse file (default: ~/.chessdash/games.duckdb)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(platformsCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(dashboardCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if database != "" {
		cfg.Database = database
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List supported chess platforms",
	Long: `List the chess platforms games can be fetched from. Each platform
has its own API shape and game identifier space; games are deduplicated
per platform.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("Supported platforms:")
		cmd.Println()
		for _, name := range source.List() {
			adapter, err := source.Get(name)
			if err != nil {
				continue
			}
			cmd.Printf("  %-10s %s\n", name, adapter.Description())
		}
		cmd.Println()
		cmd.Println("Use 'chessdash fetch --platform <name> --username <user>' to ingest games.")
	},
}
