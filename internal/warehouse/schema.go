// Package warehouse implements the dimensional ingestion engine: the
// star schema DDL, dimension resolution with stable surrogate keys, and
// the dedup-aware fact loader.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema SQL for the star schema. Dimensions are created before the fact
// table so its foreign keys resolve.
const createSchemaSQL = `
-- Players, keyed by username
CREATE TABLE IF NOT EXISTS dim_player (
    player_id    INTEGER PRIMARY KEY,
    username     TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL
);

-- Calendar dates; one row per distinct (year, month, day) seen,
-- including the all-NULL unknown-date row
CREATE TABLE IF NOT EXISTS dim_date (
    date_id INTEGER PRIMARY KEY,
    date    TEXT,
    year    INTEGER,
    month   INTEGER,
    day     INTEGER
);

-- Events as they appear in source metadata
CREATE TABLE IF NOT EXISTS dim_event (
    event_id INTEGER PRIMARY KEY,
    name     TEXT,
    site     TEXT,
    round    TEXT
);

-- PGN result codes: 1-0, 0-1, 1/2-1/2, *
CREATE TABLE IF NOT EXISTS dim_result (
    result_id INTEGER PRIMARY KEY,
    result    TEXT NOT NULL UNIQUE
);

-- Source platforms, seeded at init
CREATE TABLE IF NOT EXISTS dim_source (
    source_id INTEGER PRIMARY KEY,
    source    TEXT NOT NULL UNIQUE
);

-- Openings by ECO code; name/variation may be enriched after first sight
CREATE TABLE IF NOT EXISTS dim_opening (
    opening_id INTEGER PRIMARY KEY,
    eco        TEXT NOT NULL UNIQUE,
    name       TEXT,
    variation  TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
    updated_at TIMESTAMP NOT NULL DEFAULT current_timestamp
);

-- One row per game; (source_id, source_game_id) is the external identity
CREATE TABLE IF NOT EXISTS fact_games (
    game_id          INTEGER PRIMARY KEY,
    source_id        INTEGER NOT NULL,
    source_game_id   TEXT NOT NULL,
    playing_white_id INTEGER NOT NULL,
    playing_black_id INTEGER NOT NULL,
    date_id          INTEGER NOT NULL,
    event_id         INTEGER NOT NULL,
    result_id        INTEGER NOT NULL,
    opening_id       INTEGER,
    eco              TEXT,
    time_control     TEXT,
    url              TEXT,
    moves            TEXT,
    UNIQUE (source_id, source_game_id),
    FOREIGN KEY (source_id) REFERENCES dim_source(source_id),
    FOREIGN KEY (playing_white_id) REFERENCES dim_player(player_id),
    FOREIGN KEY (playing_black_id) REFERENCES dim_player(player_id),
    FOREIGN KEY (date_id) REFERENCES dim_date(date_id),
    FOREIGN KEY (event_id) REFERENCES dim_event(event_id),
    FOREIGN KEY (result_id) REFERENCES dim_result(result_id),
    FOREIGN KEY (opening_id) REFERENCES dim_opening(opening_id)
);
`

// Platforms supported as fact sources.
var KnownSources = []string{"lichess", "chesscom"}

// CreateSchema creates the star schema and seeds dim_source with the
// known platforms.
func CreateSchema(ctx context.Context, conn *sql.DB) error {
	if _, err := conn.ExecContext(ctx, createSchemaSQL); err != nil {
		return fmt.Errorf("failed to create warehouse schema: %w", err)
	}

	res := NewResolver()
	for _, source := range KnownSources {
		if _, err := res.ResolveSource(ctx, conn, source); err != nil {
			return fmt.Errorf("failed to seed dim_source: %w", err)
		}
	}
	return nil
}
