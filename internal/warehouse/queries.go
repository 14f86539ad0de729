package warehouse

import (
	"context"
	"database/sql"
	"fmt"
)

// GameRow is one stored game with human-readable dimension values, as
// returned by ListGames.
type GameRow struct {
	GameID      int64
	White       string
	Black       string
	Year        sql.NullInt32
	Month       sql.NullInt32
	Day         sql.NullInt32
	Result      string
	ECO         sql.NullString
	TimeControl sql.NullString
	Source      string
}

// ListGames returns all stored games joined to their dimensions,
// optionally filtered by source platform, ordered by game_id.
func ListGames(ctx context.Context, conn *sql.DB, platform string) ([]GameRow, error) {
	query := `
        SELECT
            g.game_id,
            pw.username AS white,
            pb.username AS black,
            d.year,
            d.month,
            d.day,
            r.result,
            g.eco,
            g.time_control,
            s.source
        FROM fact_games g
        JOIN dim_player pw ON g.playing_white_id = pw.player_id
        JOIN dim_player pb ON g.playing_black_id = pb.player_id
        JOIN dim_date d ON g.date_id = d.date_id
        JOIN dim_result r ON g.result_id = r.result_id
        JOIN dim_source s ON g.source_id = s.source_id
    `
	var args []any
	if platform != "" {
		query += " WHERE s.source = ?"
		args = append(args, platform)
	}
	query += " ORDER BY g.game_id ASC"

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var games []GameRow
	for rows.Next() {
		var g GameRow
		if err := rows.Scan(&g.GameID, &g.White, &g.Black,
			&g.Year, &g.Month, &g.Day,
			&g.Result, &g.ECO, &g.TimeControl, &g.Source); err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}
