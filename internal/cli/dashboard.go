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

	"github.com/spf13/cobra"

	"github.com/chessdash/chessdash/internal/dashboard"
	"github.com/chessdash/chessdash/internal/db"
	"github.com/chessdash/chessdash/internal/logging"
)

var dashboardPort int

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Serve warehouse statistics over HTTP",
	Long: `Serve the derived statistics tables as a local JSON API. The
warehouse is opened read-only, so a concurrent fetch can still write.

Example:
  chessdash dashboard
  chessdash dashboard --port 9000`,
	RunE: runDashboard,
}

func init() {
	dashboardCmd.Flags().IntVar(&dashboardPort, "port", 0,
		"HTTP listen port")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if dashboardPort > 0 {
		cfg.Dashboard.Port = dashboardPort
	}

	if err := cfg.ValidateDashboard(); err != nil {
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

	conn, err := db.OpenReadOnly(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open warehouse: %w", err)
	}
	defer conn.Close()

	return dashboard.New(conn, cfg.Dashboard.Port, cfg.TrackedUsernames()).Start(ctx)
}
