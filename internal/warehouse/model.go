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
	"strings"
)

// Querier is satisfied by both *sql.DB and *sql.Tx. Resolver and Loader
// run against whichever transactional scope the caller provides.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	// ErrMalformedRecord marks a raw game missing a required field. The
	// record is rejected; the batch continues.
	ErrMalformedRecord = errors.New("malformed game record")

	// ErrDimensionConflict marks two dimension rows sharing one natural
	// key. This is a data-integrity fault requiring manual reconciliation,
	// never silently resolved.
	ErrDimensionConflict = errors.New("dimension natural key conflict")
)

// RawGame is the common record shape produced by all source adapters.
type RawGame struct {
	// Source is the platform identifier (lichess, chesscom).
	Source string

	// SourceGameID is the platform-native game identifier. Together with
	// Source it forms the natural key of the fact.
	SourceGameID string

	White string
	Black string

	// Date components; zero means unknown.
	Year  int
	Month int
	Day   int

	// Event descriptor as it appears in source metadata; all three may
	// be empty.
	Event      string
	EventSite  string
	EventRound string

	// Result is a PGN result code: 1-0, 0-1, 1/2-1/2, *.
	Result string

	// ECO and the opening enrichment fields; all optional.
	ECO              string
	OpeningName      string
	OpeningVariation string

	TimeControl string
	URL         string
	Moves       string
}

// Validate reports whether the record carries the fields the fact's
// natural key and mandatory dimensions need.
func (g RawGame) Validate() error {
	if g.Source == "" {
		return errors.New("missing source platform")
	}
	if g.SourceGameID == "" {
		return errors.New("missing source-native game id")
	}
	if g.Result == "" {
		return errors.New("missing result code")
	}
	return nil
}

// MoveCount derives the number of half-moves from the move text. It is
// never stored; consumers compute it at read time.
func (g RawGame) MoveCount() int {
	if strings.TrimSpace(g.Moves) == "" {
		return 0
	}
	return len(strings.Fields(g.Moves))
}

// Outcome reports what the fact loader did with a game.
type Outcome int

const (
	OutcomeInserted Outcome = iota
	OutcomeUpdated
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeUpdated:
		return "updated"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// DimensionIDs carries the surrogate keys resolved for one game.
type DimensionIDs struct {
	SourceID  int64
	WhiteID   int64
	BlackID   int64
	DateID    int64
	EventID   int64
	ResultID  int64
	OpeningID sql.NullInt64
}
