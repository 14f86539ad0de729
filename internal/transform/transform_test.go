//-------------------------------------------------------------------------
//
// chessdash - chess game warehouse
//
// Copyright (c) 2025 - 2026, the chessdash authors
// This software is released under The MIT License
//
//-------------------------------------------------------------------------

package transform_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/chessdash/chessdash/internal/db"
	"github.com/chessdash/chessdash/internal/transform"
	"github.com/chessdash/chessdash/internal/warehouse"
)

// newTestWarehouse opens an in-memory warehouse with the schema applied.
func newTestWarehouse(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	conn, err := db.OpenMemory(ctx)
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := warehouse.CreateSchema(ctx, conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// ingestGames loads games through the real pipeline.
func ingestGames(t *testing.T, conn *sql.DB, games ...warehouse.RawGame) {
	t.Helper()
	ctx := context.Background()
	ing := warehouse.NewIngestor(conn)
	for _, g := range games {
		if _, err := ing.Ingest(ctx, g); err != nil {
			t.Fatalf("Failed to ingest %s: %v", g.SourceGameID, err)
		}
	}
}

func game(id, white, black, result string) warehouse.RawGame {
	return warehouse.RawGame{
		Source:       "lichess",
		SourceGameID: id,
		White:        white,
		Black:        black,
		Year:         2024,
		Month:        5,
		Day:          17,
		Result:       result,
		TimeControl:  "180",
		Moves:        "e4 e5 Nf3 Nc6",
	}
}

func TestRefreshProjectsWinner(t *testing.T) {
	ctx := context.Background()
	conn := newTestWarehouse(t)

	ingestGames(t, conn,
		game("g1", "alice", "bob", "1-0"),
		game("g2", "alice", "bob", "0-1"),
		game("g3", "alice", "bob", "1/2-1/2"),
		game("g4", "alice", "bob", "*"),
	)
	if err := transform.Refresh(ctx, conn); err != nil {
		t.Fatalf("Failed to refresh: %v", err)
	}

	winners := map[string]string{}
	rows, err := conn.QueryContext(ctx,
		`SELECT result, winner FROM stg_games ORDER BY game_id`)
	if err != nil {
		t.Fatalf("Failed to query projection: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var result, winner string
		if err := rows.Scan(&result, &winner); err != nil {
			t.Fatalf("Failed to scan projection row: %v", err)
		}
		winners[result] = winner
	}

	expected := map[string]string{
		"1-0":     "alice",
		"0-1":     "bob",
		"1/2-1/2": "Draw",
		"*":       "Draw",
	}
	for result, want := range expected {
		if winners[result] != want {
			t.Errorf("Winner for %s: expected %q, got %q", result, want, winners[result])
		}
	}
}

func TestMonthlyStatsWinPct(t *testing.T) {
	ctx := context.Background()
	conn := newTestWarehouse(t)

	// alice wins one and loses one in the same month: exactly 50.0
	ingestGames(t, conn,
		game("g1", "alice", "bob", "1-0"),
		game("g2", "alice", "bob", "0-1"),
	)
	if err := transform.Refresh(ctx, conn); err != nil {
		t.Fatalf("Failed to refresh: %v", err)
	}

	var games, wins int
	var winPct float64
	err := conn.QueryRowContext(ctx, `
		SELECT games, wins, win_pct FROM monthly_player_stats
		WHERE player = 'alice' AND year = 2024 AND month = 5`).
		Scan(&games, &wins, &winPct)
	if err != nil {
		t.Fatalf("Failed to read monthly stats: %v", err)
	}
	if games != 2 || wins != 1 {
		t.Errorf("Expected 2 games 1 win, got %d games %d wins", games, wins)
	}
	if winPct != 50.0 {
		t.Errorf("Expected win_pct 50.0, got %v", winPct)
	}
}

func TestMonthlyStatsExcludesUnknownDates(t *testing.T) {
	ctx := context.Background()
	conn := newTestWarehouse(t)

	undated := game("g1", "alice", "bob", "1-0")
	undated.Year, undated.Month, undated.Day = 0, 0, 0
	ingestGames(t, conn, undated, game("g2", "alice", "bob", "1-0"))

	if err := transform.Refresh(ctx, conn); err != nil {
		t.Fatalf("Failed to refresh: %v", err)
	}

	var months int
	err := conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM monthly_player_stats WHERE player = 'alice'`).
		Scan(&months)
	if err != nil {
		t.Fatalf("Failed to count monthly rows: %v", err)
	}
	if months != 1 {
		t.Errorf("Undated game leaked into monthly stats: got %d rows", months)
	}
}

func TestTimeControlStatsExcludesNull(t *testing.T) {
	ctx := context.Background()
	conn := newTestWarehouse(t)

	untimed := game("g1", "alice", "bob", "1-0")
	untimed.TimeControl = ""
	ingestGames(t, conn, untimed, game("g2", "alice", "bob", "1-0"))

	if err := transform.Refresh(ctx, conn); err != nil {
		t.Fatalf("Failed to refresh: %v", err)
	}

	var rows int
	err := conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM time_control_stats WHERE player = 'alice'`).
		Scan(&rows)
	if err != nil {
		t.Fatalf("Failed to count time control rows: %v", err)
	}
	if rows != 1 {
		t.Errorf("NULL time control leaked into rollup: got %d rows", rows)
	}
}

func TestRefreshIncremental(t *testing.T) {
	ctx := context.Background()
	conn := newTestWarehouse(t)

	ingestGames(t, conn, game("g1", "alice", "bob", "1-0"))
	if err := transform.Refresh(ctx, conn); err != nil {
		t.Fatalf("Failed first refresh: %v", err)
	}

	wm, err := transform.Watermark(ctx, conn)
	if err != nil {
		t.Fatalf("Failed to read watermark: %v", err)
	}
	if wm != 1 {
		t.Errorf("Expected watermark 1, got %d", wm)
	}

	// A second refresh with no new facts must not duplicate rows
	if err := transform.Refresh(ctx, conn); err != nil {
		t.Fatalf("Failed idempotent refresh: %v", err)
	}
	var count int
	if err := conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM stg_games`).Scan(&count); err != nil {
		t.Fatalf("Failed to count projection rows: %v", err)
	}
	if count != 1 {
		t.Errorf("Idempotent refresh duplicated rows: got %d", count)
	}

	ingestGames(t, conn, game("g2", "alice", "bob", "0-1"))
	if err := transform.Refresh(ctx, conn); err != nil {
		t.Fatalf("Failed incremental refresh: %v", err)
	}

	wm, err = transform.Watermark(ctx, conn)
	if err != nil {
		t.Fatalf("Failed to re-read watermark: %v", err)
	}
	if wm != 2 {
		t.Errorf("Expected watermark 2, got %d", wm)
	}
	if err := conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM stg_games`).Scan(&count); err != nil {
		t.Fatalf("Failed to re-count projection rows: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 projection rows, got %d", count)
	}
}

func TestRefreshRebuildsOnUnreadableWatermark(t *testing.T) {
	ctx := context.Background()
	conn := newTestWarehouse(t)

	for i := 1; i <= 3; i++ {
		ingestGames(t, conn, game(fmt.Sprintf("g%d", i), "alice", "bob", "1-0"))
	}
	if err := transform.Refresh(ctx, conn); err != nil {
		t.Fatalf("Failed first refresh: %v", err)
	}

	// Replace the projection with a shape the watermark query cannot read
	_, err := conn.ExecContext(ctx,
		`CREATE OR REPLACE TABLE stg_games AS SELECT 'broken' AS junk`)
	if err != nil {
		t.Fatalf("Failed to corrupt projection: %v", err)
	}

	if err := transform.Refresh(ctx, conn); err != nil {
		t.Fatalf("Refresh did not recover from corrupted projection: %v", err)
	}

	var count int
	if err := conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM stg_games`).Scan(&count); err != nil {
		t.Fatalf("Failed to count rebuilt rows: %v", err)
	}
	if count != 3 {
		t.Errorf("Rebuild expected 3 rows, got %d", count)
	}
	wm, err := transform.Watermark(ctx, conn)
	if err != nil {
		t.Fatalf("Failed to read rebuilt watermark: %v", err)
	}
	if wm != 3 {
		t.Errorf("Rebuild expected watermark 3, got %d", wm)
	}
}

func TestOpeningStatsRequireECO(t *testing.T) {
	ctx := context.Background()
	conn := newTestWarehouse(t)

	withOpening := game("g1", "alice", "bob", "1-0")
	withOpening.ECO = "B90"
	withOpening.OpeningName = "Sicilian Defense"
	ingestGames(t, conn, withOpening, game("g2", "alice", "bob", "1-0"))

	if err := transform.Refresh(ctx, conn); err != nil {
		t.Fatalf("Failed to refresh: %v", err)
	}

	var rows, games int
	err := conn.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(total_games), 0) FROM opening_stats`).
		Scan(&rows, &games)
	if err != nil {
		t.Fatalf("Failed to read opening stats: %v", err)
	}
	if rows != 1 || games != 1 {
		t.Errorf("Opening rollup should hold only the ECO game: got %d rows, %d games", rows, games)
	}
}
