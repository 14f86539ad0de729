//-------------------------------------------------------------------------
//
// chessdash - chess game warehouse
//
// Copyright (c) 2025 - 2026, the chessdash authors
// This software is released under The MIT License
//
//-------------------------------------------------------------------------

package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Loader inserts or updates fact rows. It only reads dimension surrogate
// ids resolved by the Resolver; it never writes dimension tables.
type Loader struct{}

// NewLoader creates a Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// factFields is the mutable portion of a fact row, compared on reload to
// decide between updated and skipped.
type factFields struct {
	WhiteID     int64
	BlackID     int64
	DateID      int64
	EventID     int64
	ResultID    int64
	OpeningID   sql.NullInt64
	ECO         sql.NullString
	TimeControl sql.NullString
	URL         sql.NullString
	Moves       sql.NullString
}

// Load stores one game under its natural key (source_id, source_game_id).
// A game never seen before is inserted with a fresh sequential game_id.
// A game already stored is compared field by field: any difference is
// written back in place (updated); an identical record is left alone
// (skipped). Reprocessing therefore never duplicates facts.
func (l *Loader) Load(ctx context.Context, q Querier, g RawGame, ids DimensionIDs) (Outcome, error) {
	next := factFields{
		WhiteID:     ids.WhiteID,
		BlackID:     ids.BlackID,
		DateID:      ids.DateID,
		EventID:     ids.EventID,
		ResultID:    ids.ResultID,
		OpeningID:   ids.OpeningID,
		ECO:         nullStr(g.ECO),
		TimeControl: nullStr(g.TimeControl),
		URL:         nullStr(g.URL),
		Moves:       nullStr(g.Moves),
	}

	var gameID int64
	var cur factFields
	err := q.QueryRowContext(ctx, `
        SELECT game_id, playing_white_id, playing_black_id, date_id,
               event_id, result_id, opening_id, eco, time_control, url, moves
        FROM fact_games
        WHERE source_id = ? AND source_game_id = ?
    `, ids.SourceID, g.SourceGameID).Scan(
		&gameID, &cur.WhiteID, &cur.BlackID, &cur.DateID,
		&cur.EventID, &cur.ResultID, &cur.OpeningID,
		&cur.ECO, &cur.TimeControl, &cur.URL, &cur.Moves)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return l.insert(ctx, q, g.SourceGameID, ids, next)
	case err != nil:
		return OutcomeSkipped, fmt.Errorf("failed to look up fact: %w", err)
	}

	if cur == next {
		return OutcomeSkipped, nil
	}
	return l.update(ctx, q, gameID, next)
}

func (l *Loader) insert(ctx context.Context, q Querier, sourceGameID string, ids DimensionIDs, f factFields) (Outcome, error) {
	_, err := q.ExecContext(ctx, `
        INSERT INTO fact_games (game_id, source_id, source_game_id,
                                playing_white_id, playing_black_id, date_id,
                                event_id, result_id, opening_id,
                                eco, time_control, url, moves)
        VALUES ((SELECT COALESCE(MAX(game_id), 0) + 1 FROM fact_games),
                ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, ids.SourceID, sourceGameID,
		f.WhiteID, f.BlackID, f.DateID, f.EventID, f.ResultID,
		f.OpeningID, f.ECO, f.TimeControl, f.URL, f.Moves)
	if err != nil {
		return OutcomeSkipped, fmt.Errorf("failed to insert fact: %w", err)
	}
	return OutcomeInserted, nil
}

func (l *Loader) update(ctx context.Context, q Querier, gameID int64, f factFields) (Outcome, error) {
	_, err := q.ExecContext(ctx, `
        UPDATE fact_games
        SET playing_white_id = ?, playing_black_id = ?, date_id = ?,
            event_id = ?, result_id = ?, opening_id = ?,
            eco = ?, time_control = ?, url = ?, moves = ?
        WHERE game_id = ?
    `, f.WhiteID, f.BlackID, f.DateID, f.EventID, f.ResultID,
		f.OpeningID, f.ECO, f.TimeControl, f.URL, f.Moves, gameID)
	if err != nil {
		return OutcomeSkipped, fmt.Errorf("failed to update fact: %w", err)
	}
	return OutcomeUpdated, nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
