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

	"github.com/chessdash/chessdash/internal/logging"
)

// Summary reports what happened to each record of a fetch run.
type Summary struct {
	Inserted  int
	Updated   int
	Skipped   int
	Malformed int
}

// Total returns the number of records seen, malformed included.
func (s Summary) Total() int {
	return s.Inserted + s.Updated + s.Skipped + s.Malformed
}

// Ingestor drives one ingestion batch: it validates each raw game,
// resolves its dimensions, and loads the fact, all inside a single
// transaction per game so a failure partway through leaves no fact
// referencing a missing dimension row. Committed games survive
// cancellation; re-running is safe because the natural-key dedup makes
// the whole pipeline idempotent.
type Ingestor struct {
	conn     *sql.DB
	resolver *Resolver
	loader   *Loader
	summary  Summary
}

// NewIngestor creates an Ingestor over an open warehouse handle. The
// schema must already exist.
func NewIngestor(conn *sql.DB) *Ingestor {
	return &Ingestor{
		conn:     conn,
		resolver: NewResolver(),
		loader:   NewLoader(),
	}
}

// Ingest processes a single raw game and reports the load outcome.
// A validation failure returns ErrMalformedRecord.
func (i *Ingestor) Ingest(ctx context.Context, g RawGame) (Outcome, error) {
	if err := g.Validate(); err != nil {
		return OutcomeSkipped, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	tx, err := i.conn.BeginTx(ctx, nil)
	if err != nil {
		return OutcomeSkipped, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			logging.Error().Err(err).Msg("Failed to roll back game transaction")
		}
	}()

	ids, err := i.resolver.ResolveAll(ctx, tx, g)
	if err != nil {
		return OutcomeSkipped, err
	}

	outcome, err := i.loader.Load(ctx, tx, g, ids)
	if err != nil {
		return OutcomeSkipped, err
	}

	if err := tx.Commit(); err != nil {
		return OutcomeSkipped, fmt.Errorf("failed to commit game: %w", err)
	}
	return outcome, nil
}

// Consume is the adapter-facing entry point: it ingests one game,
// recovers malformed records locally (logged and counted, batch
// continues), and propagates everything else. It honours context
// cancellation between games.
func (i *Ingestor) Consume(ctx context.Context, g RawGame) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	outcome, err := i.Ingest(ctx, g)
	if err != nil {
		if errors.Is(err, ErrMalformedRecord) {
			i.summary.Malformed++
			logging.Warn().
				Str("source", g.Source).
				Str("url", g.URL).
				Err(err).
				Msg("Rejected malformed game record")
			return nil
		}
		return err
	}

	switch outcome {
	case OutcomeInserted:
		i.summary.Inserted++
	case OutcomeUpdated:
		i.summary.Updated++
	case OutcomeSkipped:
		i.summary.Skipped++
	}

	logging.Debug().
		Str("source", g.Source).
		Str("game", g.SourceGameID).
		Str("outcome", outcome.String()).
		Msg("Ingested game")
	return nil
}

// Summary returns the counts accumulated so far.
func (i *Ingestor) Summary() Summary {
	return i.summary
}
