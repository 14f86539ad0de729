//-------------------------------------------------------------------------
//
// chessdash - chess game warehouse
//
// Copyright (c) 2025 - 2026, the chessdash authors
// This software is released under The MIT License
//
//-------------------------------------------------------------------------

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chessdash/chessdash/internal/db"
	"github.com/chessdash/chessdash/internal/logging"
	"github.com/chessdash/chessdash/internal/source"
	"github.com/chessdash/chessdash/internal/transform"
	"github.com/chessdash/chessdash/internal/warehouse"
)

var (
	fetchPlatform string
	fetchUsername string
	fetchMaxGames int
	fetchTimeout  int
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch games from a platform into the warehouse",
	Long: `Fetch games for a user from the given platform and load them into
the warehouse. Games already present are skipped unless their content
changed, in which case the stored row is updated in place.

After loading, the derived statistics tables are refreshed
incrementally.

Example:
  chessdash fetch --platform lichess --username magnus
  chessdash fetch --platform chesscom --username hikaru --max-games 500`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchPlatform, "platform", "",
		"platform to fetch from (lichess, chesscom)")
	fetchCmd.Flags().StringVar(&fetchUsername, "username", "",
		"account whose games to fetch")
	fetchCmd.Flags().IntVar(&fetchMaxGames, "max-games", 0,
		"maximum number of games to fetch (0 = all)")
	fetchCmd.Flags().IntVar(&fetchTimeout, "timeout", 0,
		"HTTP request timeout in seconds")
}

func runFetch(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if fetchPlatform != "" {
		cfg.Fetch.Platform = fetchPlatform
	}
	if fetchMaxGames > 0 {
		cfg.Fetch.MaxGames = fetchMaxGames
	}
	if fetchTimeout > 0 {
		cfg.Fetch.TimeoutSeconds = fetchTimeout
	}

	if err := cfg.ValidateFetch(); err != nil {
		return err
	}

	username := fetchUsername
	if username == "" {
		switch cfg.Fetch.Platform {
		case "lichess":
			username = cfg.LichessUsername
		case "chesscom":
			username = cfg.ChesscomUsername
		}
	}
	if username == "" {
		return fmt.Errorf("username is required for fetch")
	}

	adapter, err := source.Get(cfg.Fetch.Platform)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logging.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
	}()

	conn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open warehouse: %w", err)
	}
	defer conn.Close()

	if err := warehouse.CreateSchema(ctx, conn); err != nil {
		return err
	}

	logging.Info().
		Str("platform", cfg.Fetch.Platform).
		Str("username", username).
		Int("max_games", cfg.Fetch.MaxGames).
		Msg("Starting fetch")

	start := time.Now()
	ingestor := warehouse.NewIngestor(conn)
	err = adapter.FetchGames(ctx, username, cfg.Fetch.MaxGames, func(g warehouse.RawGame) error {
		return ingestor.Consume(ctx, g)
	})
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	summary := ingestor.Summary()
	logging.Info().
		Int("inserted", summary.Inserted).
		Int("updated", summary.Updated).
		Int("skipped", summary.Skipped).
		Int("malformed", summary.Malformed).
		Dur("elapsed", time.Since(start)).
		Msg("Fetch complete")

	if err := transform.Refresh(ctx, conn); err != nil {
		return fmt.Errorf("failed to refresh derived tables: %w", err)
	}

	if err := db.SaveIngestMetadata(ctx, conn, cfg.Fetch.Platform, username); err != nil {
		return err
	}

	cmd.Printf("Fetched %d games: %d inserted, %d updated, %d skipped",
		summary.Total(), summary.Inserted, summary.Updated, summary.Skipped)
	if summary.Malformed > 0 {
		cmd.Printf(" (%d malformed records dropped)", summary.Malformed)
	}
	cmd.Println()
	return nil
}
