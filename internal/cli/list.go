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

	"github.com/chessdash/chessdash/internal/db"
	"github.com/chessdash/chessdash/internal/warehouse"
)

var listPlatform string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored games",
	Long: `List the games currently stored in the warehouse, joined to their
dimension values, oldest first.

Example:
  chessdash list
  chessdash list --platform lichess`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listPlatform, "platform", "",
		"only list games from this platform")
}

func runList(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	conn, err := db.OpenReadOnly(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open warehouse: %w", err)
	}
	defer conn.Close()

	games, err := warehouse.ListGames(ctx, conn, listPlatform)
	if err != nil {
		return err
	}
	if len(games) == 0 {
		cmd.Println("No games stored. Run 'chessdash fetch' first.")
		return nil
	}

	cmd.Printf("%-8s %-10s %-20s %-20s %-10s %-7s %-5s %s\n",
		"ID", "DATE", "WHITE", "BLACK", "RESULT", "ECO", "TC", "SOURCE")
	for _, g := range games {
		cmd.Printf("%-8d %-10s %-20s %-20s %-10s %-7s %-5s %s\n",
			g.GameID, formatDate(g), truncate(g.White, 20), truncate(g.Black, 20),
			g.Result, g.ECO.String, g.TimeControl.String, g.Source)
	}
	cmd.Printf("\n%d games\n", len(games))
	return nil
}

// formatDate renders a dimension date, leaving unknown components blank.
func formatDate(g warehouse.GameRow) string {
	if !g.Year.Valid || !g.Month.Valid || !g.Day.Valid {
		return "-"
	}
	return fmt.Sprintf("%04d-%02d-%02d", g.Year.Int32, g.Month.Int32, g.Day.Int32)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
