//-------------------------------------------------------------------------
//
// chessdash - chess game warehouse
//
// Copyright (c) 2025 - 2026, the chessdash authors
// This software is released under The MIT License
//
//-------------------------------------------------------------------------

// Package transform maintains the derived analytical tables: the
// denormalized stg_games projection (refreshed incrementally) and the
// aggregate rollups (recomputed in full; they stay small).
package transform

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chessdash/chessdash/internal/logging"
)

// Projection DDL. game_id mirrors the fact surrogate id and doubles as
// the incremental watermark.
const createProjectionSQL = `
CREATE TABLE IF NOT EXISTS stg_games (
    game_id      INTEGER PRIMARY KEY,
    date         TEXT,
    year         INTEGER,
    month        INTEGER,
    white_player TEXT NOT NULL,
    black_player TEXT NOT NULL,
    winner       TEXT NOT NULL,
    result       TEXT NOT NULL,
    eco          TEXT,
    time_control TEXT,
    move_count   INTEGER NOT NULL,
    source       TEXT NOT NULL,
    url          TEXT
)`

// projectSQL appends one projected row per fact above the watermark.
// The winner column substitutes usernames for decisive results and the
// literal Draw marker otherwise; move_count is derived from the move
// text, never stored on the fact.
const projectSQL = `
INSERT INTO stg_games
SELECT
    g.game_id,
    d.date,
    d.year,
    d.month,
    pw.username AS white_player,
    pb.username AS black_player,
    CASE
        WHEN r.result = '1-0' THEN pw.username
        WHEN r.result = '0-1' THEN pb.username
        ELSE 'Draw'
    END AS winner,
    r.result,
    g.eco,
    g.time_control,
    CASE
        WHEN g.moves IS NULL OR trim(g.moves) = '' THEN 0
        ELSE len(regexp_split_to_array(trim(g.moves), '\s+'))
    END AS move_count,
    s.source,
    g.url
FROM fact_games g
JOIN dim_player pw ON g.playing_white_id = pw.player_id
JOIN dim_player pb ON g.playing_black_id = pb.player_id
JOIN dim_date d ON g.date_id = d.date_id
JOIN dim_result r ON g.result_id = r.result_id
JOIN dim_source s ON g.source_id = s.source_id
WHERE g.game_id > ?`

// Monthly performance rollup. Each game counts once per side played, so
// the two sides are unioned before aggregation; games with unresolved
// dates are excluded.
const monthlyStatsSQL = `
CREATE OR REPLACE TABLE monthly_player_stats AS
WITH sides AS (
    SELECT
        pw.username AS player,
        s.source,
        d.year,
        d.month,
        CASE WHEN r.result = '1-0' THEN 1 ELSE 0 END AS won
    FROM fact_games g
    JOIN dim_player pw ON g.playing_white_id = pw.player_id
    JOIN dim_date d ON g.date_id = d.date_id
    JOIN dim_result r ON g.result_id = r.result_id
    JOIN dim_source s ON g.source_id = s.source_id
    UNION ALL
    SELECT
        pb.username,
        s.source,
        d.year,
        d.month,
        CASE WHEN r.result = '0-1' THEN 1 ELSE 0 END
    FROM fact_games g
    JOIN dim_player pb ON g.playing_black_id = pb.player_id
    JOIN dim_date d ON g.date_id = d.date_id
    JOIN dim_result r ON g.result_id = r.result_id
    JOIN dim_source s ON g.source_id = s.source_id
)
SELECT
    player,
    source,
    year,
    month,
    COUNT(*) AS games,
    SUM(won) AS wins,
    ROUND(SUM(won) * 100.0 / COUNT(*), 1) AS win_pct
FROM sides
WHERE year IS NOT NULL AND month IS NOT NULL
GROUP BY player, source, year, month`

// Time-control rollup; NULL time controls excluded, ordered for
// presentation.
const timeControlStatsSQL = `
CREATE OR REPLACE TABLE time_control_stats AS
WITH sides AS (
    SELECT pw.username AS player, s.source, g.time_control
    FROM fact_games g
    JOIN dim_player pw ON g.playing_white_id = pw.player_id
    JOIN dim_source s ON g.source_id = s.source_id
    UNION ALL
    SELECT pb.username, s.source, g.time_control
    FROM fact_games g
    JOIN dim_player pb ON g.playing_black_id = pb.player_id
    JOIN dim_source s ON g.source_id = s.source_id
)
SELECT player, source, time_control, COUNT(*) AS games
FROM sides
WHERE time_control IS NOT NULL
GROUP BY player, source, time_control
ORDER BY games DESC`

// Opening rollup. The inner join on opening_id keeps games without an
// ECO code out of every opening-keyed aggregate.
const openingStatsSQL = `
CREATE OR REPLACE TABLE opening_stats AS
SELECT
    o.eco,
    o.name,
    s.source,
    COUNT(*) AS total_games,
    SUM(CASE WHEN r.result = '1-0' THEN 1 ELSE 0 END) AS white_wins,
    ROUND(SUM(CASE WHEN r.result = '1-0' THEN 1 ELSE 0 END) * 100.0 / COUNT(*), 1)
        AS white_win_pct
FROM fact_games g
JOIN dim_opening o ON g.opening_id = o.opening_id
JOIN dim_result r ON g.result_id = r.result_id
JOIN dim_source s ON g.source_id = s.source_id
GROUP BY o.eco, o.name, s.source
ORDER BY total_games DESC`

// Refresh brings every derived table up to date: the projection
// incrementally, the rollups by full recompute.
func Refresh(ctx context.Context, conn *sql.DB) error {
	appended, err := refreshProjection(ctx, conn)
	if err != nil {
		return err
	}

	for name, query := range map[string]string{
		"monthly_player_stats": monthlyStatsSQL,
		"time_control_stats":   timeControlStatsSQL,
		"opening_stats":        openingStatsSQL,
	} {
		if _, err := conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to rebuild %s: %w", name, err)
		}
	}

	log := logging.Component("transform")
	log.Info().
		Int64("projected", appended).
		Msg("Refreshed derived tables")
	return nil
}

// refreshProjection appends facts above the projection watermark. A
// missing or unreadable watermark falls back to a full rebuild rather
// than silently skipping rows. Already-projected rows are not revised
// when their source fact later changes; see Watermark for the staleness
// trade-off.
func refreshProjection(ctx context.Context, conn *sql.DB) (int64, error) {
	if _, err := conn.ExecContext(ctx, createProjectionSQL); err != nil {
		return 0, fmt.Errorf("failed to create stg_games: %w", err)
	}

	watermark, err := Watermark(ctx, conn)
	if err != nil {
		logging.Warn().
			Err(err).
			Msg("Projection watermark unreadable; rebuilding stg_games in full")
		if _, err := conn.ExecContext(ctx, `DROP TABLE IF EXISTS stg_games`); err != nil {
			return 0, fmt.Errorf("failed to drop stg_games for rebuild: %w", err)
		}
		if _, err := conn.ExecContext(ctx, createProjectionSQL); err != nil {
			return 0, fmt.Errorf("failed to recreate stg_games: %w", err)
		}
		watermark = 0
	}

	res, err := conn.ExecContext(ctx, projectSQL, watermark)
	if err != nil {
		return 0, fmt.Errorf("failed to refresh stg_games: %w", err)
	}
	return res.RowsAffected()
}

// Watermark returns the highest fact surrogate id already projected.
// Fact ids increase monotonically, so everything above it is new. Facts
// mutated after projection are not re-projected under this scheme.
func Watermark(ctx context.Context, conn *sql.DB) (int64, error) {
	var watermark int64
	err := conn.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(game_id), 0) FROM stg_games`).Scan(&watermark)
	if err != nil {
		return 0, fmt.Errorf("failed to read projection watermark: %w", err)
	}
	return watermark, nil
}
