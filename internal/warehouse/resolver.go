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
	"fmt"

	"github.com/chessdash/chessdash/internal/logging"
)

// SentinelEventName is the name of the single well-known dim_event row
// that games without event metadata resolve to.
const SentinelEventName = "Unknown Event"

// Resolver maps natural keys to surrogate ids, creating dimension rows
// on first sight and reusing existing ones otherwise. It is the only
// component that writes dimension tables.
//
// Every resolution is a guarded conditional insert followed by the
// natural-key lookup; there is no unguarded check-then-insert window, so
// repeated resolution of the same key inside one batch cannot produce
// duplicate rows.
type Resolver struct{}

// NewResolver creates a Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// getOrCreate runs the guarded insert, then returns the surrogate id for
// the natural key. Finding more than one row for the key is a
// DimensionConflict.
func (r *Resolver) getOrCreate(
	ctx context.Context,
	q Querier,
	dimension string,
	insertSQL string, insertArgs []any,
	selectSQL string, selectArgs []any,
) (int64, error) {
	if _, err := q.ExecContext(ctx, insertSQL, insertArgs...); err != nil {
		return 0, fmt.Errorf("failed to resolve %s: %w", dimension, err)
	}
	return r.lookupID(ctx, q, dimension, selectSQL, selectArgs)
}

// lookupID returns the surrogate id for a natural key, detecting
// duplicate rows.
func (r *Resolver) lookupID(
	ctx context.Context,
	q Querier,
	dimension string,
	selectSQL string, selectArgs []any,
) (int64, error) {
	rows, err := q.QueryContext(ctx, selectSQL, selectArgs...)
	if err != nil {
		return 0, fmt.Errorf("failed to look up %s: %w", dimension, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to scan %s id: %w", dimension, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to look up %s: %w", dimension, err)
	}

	switch len(ids) {
	case 1:
		return ids[0], nil
	case 0:
		return 0, fmt.Errorf("%s row missing after conditional insert", dimension)
	default:
		logging.Error().
			Str("dimension", dimension).
			Int("rows", len(ids)).
			Msg("Duplicate rows for one natural key")
		return 0, fmt.Errorf("%w: %s has %d rows for one natural key",
			ErrDimensionConflict, dimension, len(ids))
	}
}

// ResolvePlayer resolves a username to its player_id. The display name
// defaults to the username on first sight.
func (r *Resolver) ResolvePlayer(ctx context.Context, q Querier, username string) (int64, error) {
	return r.getOrCreate(ctx, q, "dim_player",
		`INSERT INTO dim_player (player_id, username, display_name)
         SELECT (SELECT COALESCE(MAX(player_id), 0) + 1 FROM dim_player), ?, ?
         WHERE NOT EXISTS (SELECT 1 FROM dim_player WHERE username = ?)`,
		[]any{username, username, username},
		`SELECT player_id FROM dim_player WHERE username = ?`,
		[]any{username},
	)
}

// ResolveDate resolves calendar date components to a date_id. Zero
// components are stored as NULL; a fully unknown date resolves to the
// single all-NULL row.
func (r *Resolver) ResolveDate(ctx context.Context, q Querier, year, month, day int) (int64, error) {
	var dateStr any
	if year > 0 && month > 0 && day > 0 {
		dateStr = fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	}
	y, m, d := nullInt(year), nullInt(month), nullInt(day)

	return r.getOrCreate(ctx, q, "dim_date",
		`INSERT INTO dim_date (date_id, date, year, month, day)
         SELECT (SELECT COALESCE(MAX(date_id), 0) + 1 FROM dim_date), ?, ?, ?, ?
         WHERE NOT EXISTS (
             SELECT 1 FROM dim_date
             WHERE year IS NOT DISTINCT FROM ?
               AND month IS NOT DISTINCT FROM ?
               AND day IS NOT DISTINCT FROM ?
         )`,
		[]any{dateStr, y, m, d, y, m, d},
		`SELECT date_id FROM dim_date
         WHERE year IS NOT DISTINCT FROM ?
           AND month IS NOT DISTINCT FROM ?
           AND day IS NOT DISTINCT FROM ?`,
		[]any{y, m, d},
	)
}

// ResolveEvent resolves an event descriptor to an event_id. An entirely
// empty descriptor resolves to the sentinel row, created once and reused,
// so the fact-to-dimension join stays total without growing the dimension
// per missing-event game.
func (r *Resolver) ResolveEvent(ctx context.Context, q Querier, name, site, round string) (int64, error) {
	if name == "" && site == "" && round == "" {
		name = SentinelEventName
	}
	n, s, rd := nullString(name), nullString(site), nullString(round)

	return r.getOrCreate(ctx, q, "dim_event",
		`INSERT INTO dim_event (event_id, name, site, round)
         SELECT (SELECT COALESCE(MAX(event_id), 0) + 1 FROM dim_event), ?, ?, ?
         WHERE NOT EXISTS (
             SELECT 1 FROM dim_event
             WHERE name IS NOT DISTINCT FROM ?
               AND site IS NOT DISTINCT FROM ?
               AND round IS NOT DISTINCT FROM ?
         )`,
		[]any{n, s, rd, n, s, rd},
		`SELECT event_id FROM dim_event
         WHERE name IS NOT DISTINCT FROM ?
           AND site IS NOT DISTINCT FROM ?
           AND round IS NOT DISTINCT FROM ?`,
		[]any{n, s, rd},
	)
}

// ResolveResult resolves a PGN result code to a result_id. An empty code
// maps to "*" (ongoing/unknown).
func (r *Resolver) ResolveResult(ctx context.Context, q Querier, result string) (int64, error) {
	if result == "" {
		result = "*"
	}
	return r.getOrCreate(ctx, q, "dim_result",
		`INSERT INTO dim_result (result_id, result)
         SELECT (SELECT COALESCE(MAX(result_id), 0) + 1 FROM dim_result), ?
         WHERE NOT EXISTS (SELECT 1 FROM dim_result WHERE result = ?)`,
		[]any{result, result},
		`SELECT result_id FROM dim_result WHERE result = ?`,
		[]any{result},
	)
}

// ResolveSource resolves a platform identifier to a source_id.
func (r *Resolver) ResolveSource(ctx context.Context, q Querier, source string) (int64, error) {
	return r.getOrCreate(ctx, q, "dim_source",
		`INSERT INTO dim_source (source_id, source)
         SELECT (SELECT COALESCE(MAX(source_id), 0) + 1 FROM dim_source), ?
         WHERE NOT EXISTS (SELECT 1 FROM dim_source WHERE source = ?)`,
		[]any{source, source},
		`SELECT source_id FROM dim_source WHERE source = ?`,
		[]any{source},
	)
}

// ResolveOpening resolves an ECO code to an opening_id, merging name and
// variation into an existing row when they arrive later. The merge keeps
// existing values when the new ones are empty, bumps updated_at, and
// leaves created_at fixed at first insertion. This is the only dimension
// whose non-key attributes change post-creation.
func (r *Resolver) ResolveOpening(ctx context.Context, q Querier, eco, name, variation string) (int64, error) {
	res, err := q.ExecContext(ctx,
		`INSERT INTO dim_opening (opening_id, eco, name, variation)
         SELECT (SELECT COALESCE(MAX(opening_id), 0) + 1 FROM dim_opening), ?, ?, ?
         WHERE NOT EXISTS (SELECT 1 FROM dim_opening WHERE eco = ?)`,
		eco, nullString(name), nullString(variation), eco)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve dim_opening: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to resolve dim_opening: %w", err)
	}
	if inserted == 0 {
		_, err := q.ExecContext(ctx,
			`UPDATE dim_opening
             SET name       = COALESCE(?, name),
                 variation  = COALESCE(?, variation),
                 updated_at = current_timestamp
             WHERE eco = ?`,
			nullString(name), nullString(variation), eco)
		if err != nil {
			return 0, fmt.Errorf("failed to merge dim_opening: %w", err)
		}
	}

	return r.lookupID(ctx, q, "dim_opening",
		`SELECT opening_id FROM dim_opening WHERE eco = ?`,
		[]any{eco},
	)
}

// ResolveAll resolves every dimension a raw game references. The opening
// id is left unset when the game carries no ECO code; that absence is
// deliberate and distinct from the event sentinel.
func (r *Resolver) ResolveAll(ctx context.Context, q Querier, g RawGame) (DimensionIDs, error) {
	var ids DimensionIDs
	var err error

	if ids.SourceID, err = r.ResolveSource(ctx, q, g.Source); err != nil {
		return ids, err
	}
	if ids.WhiteID, err = r.ResolvePlayer(ctx, q, g.White); err != nil {
		return ids, err
	}
	if ids.BlackID, err = r.ResolvePlayer(ctx, q, g.Black); err != nil {
		return ids, err
	}
	if ids.DateID, err = r.ResolveDate(ctx, q, g.Year, g.Month, g.Day); err != nil {
		return ids, err
	}
	if ids.EventID, err = r.ResolveEvent(ctx, q, g.Event, g.EventSite, g.EventRound); err != nil {
		return ids, err
	}
	if ids.ResultID, err = r.ResolveResult(ctx, q, g.Result); err != nil {
		return ids, err
	}
	if g.ECO != "" {
		openingID, err := r.ResolveOpening(ctx, q, g.ECO, g.OpeningName, g.OpeningVariation)
		if err != nil {
			return ids, err
		}
		ids.OpeningID.Int64 = openingID
		ids.OpeningID.Valid = true
	}
	return ids, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(i int) any {
	if i == 0 {
		return nil
	}
	return i
}
