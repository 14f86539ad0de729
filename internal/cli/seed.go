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

	"github.com/spf13/cobra"

	"github.com/chessdash/chessdash/internal/datagen"
	"github.com/chessdash/chessdash/internal/db"
	"github.com/chessdash/chessdash/internal/logging"
	"github.com/chessdash/chessdash/internal/transform"
	"github.com/chessdash/chessdash/internal/warehouse"
)

var (
	seedGames    int
	seedUsername string
	seedRandSeed uint64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the warehouse with synthetic games",
	Long: `Generate synthetic games and load them through the same pipeline
real fetches use, so the dashboard can be explored without hitting any
platform API.

A fixed --seed value makes the generated data reproducible.

Example:
  chessdash seed --games 500 --username testuser
  chessdash seed --games 100 --seed 42`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedGames, "games", 0,
		"number of synthetic games to generate")
	seedCmd.Flags().StringVar(&seedUsername, "username", "seedplayer",
		"username appearing in every generated game")
	seedCmd.Flags().Uint64Var(&seedRandSeed, "seed", 0,
		"random seed for reproducible output (0 = random)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if seedGames > 0 {
		cfg.Seed.Games = seedGames
	}
	if seedRandSeed != 0 {
		cfg.Seed.Seed = seedRandSeed
	}

	if err := cfg.ValidateSeed(); err != nil {
		return err
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open warehouse: %w", err)
	}
	defer conn.Close()

	if err := warehouse.CreateSchema(ctx, conn); err != nil {
		return err
	}

	logging.Info().
		Int("games", cfg.Seed.Games).
		Str("username", seedUsername).
		Msg("Seeding warehouse")

	gen := datagen.NewGenerator(seedUsername, cfg.Seed.Seed)
	ingestor := warehouse.NewIngestor(conn)
	for i := 0; i < cfg.Seed.Games; i++ {
		if err := ingestor.Consume(ctx, gen.Next()); err != nil {
			return err
		}
	}

	if err := transform.Refresh(ctx, conn); err != nil {
		return fmt.Errorf("failed to refresh derived tables: %w", err)
	}

	summary := ingestor.Summary()
	cmd.Printf("Seeded %d games: %d inserted, %d skipped\n",
		summary.Total(), summary.Inserted, summary.Skipped)
	return nil
}
