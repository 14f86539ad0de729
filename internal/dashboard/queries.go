//-------------------------------------------------------------------------
//
// chessdash - chess game warehouse
//
// Copyright (c) 2025 - 2026, the chessdash authors
// This software is released under The MIT License
//
//-------------------------------------------------------------------------

package dashboard

import (
	"context"
	"database/sql"
	"fmt"
	"math"
)

// Overview summarizes the whole warehouse for the landing panel.
type Overview struct {
	TotalGames      int64           `json:"total_games"`
	Openings        int64           `json:"openings"`
	FirstGame       *string         `json:"first_game"`
	LastGame        *string         `json:"last_game"`
	AverageMoves    float64         `json:"average_moves"`
	Players         []PlayerSummary `json:"players,omitempty"`
	LatestIngestRun *string         `json:"latest_ingest_run"`
}

// PlayerSummary is one tracked player's all-time record.
type PlayerSummary struct {
	Player string  `json:"player"`
	Games  int64   `json:"games"`
	Wins   int64   `json:"wins"`
	WinPct float64 `json:"win_pct"`
}

// MonthlyRow is one month of one player's results on one platform.
type MonthlyRow struct {
	Player string  `json:"player"`
	Source string  `json:"source"`
	Year   int     `json:"year"`
	Month  int     `json:"month"`
	Games  int64   `json:"games"`
	Wins   int64   `json:"wins"`
	WinPct float64 `json:"win_pct"`
}

// TimeControlRow is the aggregate for one player and time control.
type TimeControlRow struct {
	Player      string `json:"player"`
	Source      string `json:"source"`
	TimeControl string `json:"time_control"`
	Games       int64  `json:"games"`
}

// OpeningRow is the aggregate for one opening on one platform.
type OpeningRow struct {
	ECO         string  `json:"eco"`
	Name        *string `json:"name"`
	Source      string  `json:"source"`
	Games       int64   `json:"games"`
	WhiteWins   int64   `json:"white_wins"`
	WhiteWinPct float64 `json:"white_win_pct"`
}

// RecentRow is one row of the recent-games panel.
type RecentRow struct {
	GameID      int64   `json:"game_id"`
	Date        *string `json:"date"`
	White       string  `json:"white"`
	Black       string  `json:"black"`
	Winner      string  `json:"winner"`
	Result      string  `json:"result"`
	ECO         *string `json:"eco"`
	TimeControl *string `json:"time_control"`
	MoveCount   int     `json:"move_count"`
	Source      string  `json:"source"`
	URL         *string `json:"url"`
}

// sourceFilter renders an optional source predicate.
func sourceFilter(platform string) (clause string, args []any) {
	if platform == "" {
		return "", nil
	}
	return " WHERE source = ?", []any{platform}
}

// queryOverview builds the landing-panel summary from the projection
// and the monthly rollup.
func queryOverview(ctx context.Context, conn *sql.DB, platform string, players []string) (*Overview, error) {
	clause, args := sourceFilter(platform)

	var o Overview
	err := conn.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT COUNT(*),
		       COUNT(DISTINCT eco),
		       CAST(MIN(date) AS VARCHAR),
		       CAST(MAX(date) AS VARCHAR),
		       COALESCE(AVG(move_count), 0)
		FROM stg_games%s`, clause), args...).
		Scan(&o.TotalGames, &o.Openings, &o.FirstGame, &o.LastGame, &o.AverageMoves)
	if err != nil {
		return nil, fmt.Errorf("failed to query overview: %w", err)
	}

	for _, player := range players {
		summary, err := queryPlayerSummary(ctx, conn, platform, player)
		if err != nil {
			return nil, err
		}
		if summary.Games > 0 {
			o.Players = append(o.Players, summary)
		}
	}

	// Best-effort: the metadata table only exists once a fetch has run,
	// and this connection is read-only so it cannot be created here
	var lastRun sql.NullString
	err = conn.QueryRowContext(ctx,
		`SELECT value FROM warehouse_metadata WHERE key = 'last_ingest_at'`).
		Scan(&lastRun)
	if err == nil && lastRun.Valid {
		o.LatestIngestRun = &lastRun.String
	}
	return &o, nil
}

// queryPlayerSummary aggregates the monthly rollup into one tracked
// player's all-time record.
func queryPlayerSummary(ctx context.Context, conn *sql.DB, platform, player string) (PlayerSummary, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(games), 0), COALESCE(SUM(wins), 0)
		FROM monthly_player_stats
		WHERE player = ?`
	args := []any{player}
	if platform != "" {
		query += " AND source = ?"
		args = append(args, platform)
	}

	summary := PlayerSummary{Player: player}
	var months int64
	err := conn.QueryRowContext(ctx, query, args...).
		Scan(&months, &summary.Games, &summary.Wins)
	if err != nil {
		return summary, fmt.Errorf("failed to query player summary: %w", err)
	}
	if summary.Games > 0 {
		summary.WinPct = math.Round(float64(summary.Wins)/float64(summary.Games)*1000) / 10
	}
	return summary, nil
}

// queryMonthly reads the monthly performance rollup, newest months first.
func queryMonthly(ctx context.Context, conn *sql.DB, platform, player string) ([]MonthlyRow, error) {
	query := `
		SELECT player, source, year, month, games, wins, win_pct
		FROM monthly_player_stats
		WHERE 1 = 1`
	var args []any
	if platform != "" {
		query += " AND source = ?"
		args = append(args, platform)
	}
	if player != "" {
		query += " AND player = ?"
		args = append(args, player)
	}
	query += " ORDER BY year DESC, month DESC, player"

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly stats: %w", err)
	}
	defer rows.Close()

	var out []MonthlyRow
	for rows.Next() {
		var r MonthlyRow
		if err := rows.Scan(&r.Player, &r.Source, &r.Year, &r.Month,
			&r.Games, &r.Wins, &r.WinPct); err != nil {
			return nil, fmt.Errorf("failed to scan monthly row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// queryTimeControls reads the time-control rollup.
func queryTimeControls(ctx context.Context, conn *sql.DB, platform string) ([]TimeControlRow, error) {
	query := `
		SELECT player, source, time_control, games
		FROM time_control_stats`
	var args []any
	if platform != "" {
		query += " WHERE source = ?"
		args = append(args, platform)
	}
	query += " ORDER BY games DESC"

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query time control stats: %w", err)
	}
	defer rows.Close()

	var out []TimeControlRow
	for rows.Next() {
		var r TimeControlRow
		if err := rows.Scan(&r.Player, &r.Source, &r.TimeControl, &r.Games); err != nil {
			return nil, fmt.Errorf("failed to scan time control row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// queryOpenings reads the opening rollup.
func queryOpenings(ctx context.Context, conn *sql.DB, platform string, limit int) ([]OpeningRow, error) {
	query := `
		SELECT eco, name, source, total_games, white_wins, white_win_pct
		FROM opening_stats`
	var args []any
	if platform != "" {
		query += " WHERE source = ?"
		args = append(args, platform)
	}
	query += " ORDER BY total_games DESC LIMIT ?"
	args = append(args, limit)

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query opening stats: %w", err)
	}
	defer rows.Close()

	var out []OpeningRow
	for rows.Next() {
		var r OpeningRow
		if err := rows.Scan(&r.ECO, &r.Name, &r.Source, &r.Games,
			&r.WhiteWins, &r.WhiteWinPct); err != nil {
			return nil, fmt.Errorf("failed to scan opening row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// queryRecent reads the newest games from the projection.
func queryRecent(ctx context.Context, conn *sql.DB, platform string, limit int) ([]RecentRow, error) {
	clause, args := sourceFilter(platform)
	args = append(args, limit)

	rows, err := conn.QueryContext(ctx, fmt.Sprintf(`
		SELECT game_id, CAST(date AS VARCHAR), white_player, black_player,
		       winner, result, eco, time_control, move_count, source, url
		FROM stg_games%s
		ORDER BY game_id DESC
		LIMIT ?`, clause), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent games: %w", err)
	}
	defer rows.Close()

	var out []RecentRow
	for rows.Next() {
		var r RecentRow
		if err := rows.Scan(&r.GameID, &r.Date, &r.White, &r.Black,
			&r.Winner, &r.Result, &r.ECO, &r.TimeControl,
			&r.MoveCount, &r.Source, &r.URL); err != nil {
			return nil, fmt.Errorf("failed to scan recent row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
