//-------------------------------------------------------------------------
//
// chessdash - chess game warehouse
//
// Copyright (c) 2025 - 2026, the chessdash authors
// This software is released under The MIT License
//
//-------------------------------------------------------------------------

package warehouse_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/chessdash/chessdash/internal/db"
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

func TestResolvePlayerIdempotent(t *testing.T) {
	ctx := context.Background()
	conn := newTestWarehouse(t)
	r := warehouse.NewResolver()

	first, err := r.ResolvePlayer(ctx, conn, "magnus")
	if err != nil {
		t.Fatalf("Failed to resolve player: %v", err)
	}
	again, err := r.ResolvePlayer(ctx, conn, "magnus")
	if err != nil {
		t.Fatalf("Failed to re-resolve player: %v", err)
	}
	if first != again {
		t.Errorf("Same username resolved to different ids: %d != %d", first, again)
	}

	other, err := r.ResolvePlayer(ctx, conn, "hikaru")
	if err != nil {
		t.Fatalf("Failed to resolve second player: %v", err)
	}
	if other == first {
		t.Errorf("Different usernames share id %d", first)
	}
}

func TestResolveDatePartialComponents(t *testing.T) {
	ctx := context.Background()
	conn := newTestWarehouse(t)
	r := warehouse.NewResolver()

	full, err := r.ResolveDate(ctx, conn, 2024, 5, 17)
	if err != nil {
		t.Fatalf("Failed to resolve full date: %v", err)
	}
	fullAgain, err := r.ResolveDate(ctx, conn, 2024, 5, 17)
	if err != nil {
		t.Fatalf("Failed to re-resolve full date: %v", err)
	}
	if full != fullAgain {
		t.Errorf("Same date resolved to different ids: %d != %d", full, fullAgain)
	}

	// Year+month without a day is a distinct row from the full date
	partial, err := r.ResolveDate(ctx, conn, 2024, 5, 0)
	if err != nil {
		t.Fatalf("Failed to resolve partial date: %v", err)
	}
	if partial == full {
		t.Error("Partial date shares id with full date")
	}
	partialAgain, err := r.ResolveDate(ctx, conn, 2024, 5, 0)
	if err != nil {
		t.Fatalf("Failed to re-resolve partial date: %v", err)
	}
	if partial != partialAgain {
		t.Errorf("Same partial date resolved to different ids: %d != %d", partial, partialAgain)
	}
}

func TestResolveDateFullyUnknown(t *testing.T) {
	ctx := context.Background()
	conn := newTestWarehouse(t)
	r := warehouse.NewResolver()

	unknown, err := r.ResolveDate(ctx, conn, 0, 0, 0)
	if err != nil {
		t.Fatalf("Failed to resolve unknown date: %v", err)
	}
	again, err := r.ResolveDate(ctx, conn, 0, 0, 0)
	if err != nil {
		t.Fatalf("Failed to re-resolve unknown date: %v", err)
	}
	if unknown != again {
		t.Errorf("Unknown date row duplicated: %d != %d", unknown, again)
	}
}

func TestResolveEventSentinel(t *testing.T) {
	ctx := context.Background()
	conn := newTestWarehouse(t)
	r := warehouse.NewResolver()

	blank, err := r.ResolveEvent(ctx, conn, "", "", "")
	if err != nil {
		t.Fatalf("Failed to resolve blank event: %v", err)
	}
	sentinel, err := r.ResolveEvent(ctx, conn, warehouse.SentinelEventName, "", "")
	if err != nil {
		t.Fatalf("Failed to resolve sentinel event: %v", err)
	}
	if blank != sentinel {
		t.Errorf("Blank event did not map to the sentinel row: %d != %d", blank, sentinel)
	}

	named, err := r.ResolveEvent(ctx, conn, "Titled Tuesday", "chess.com", "3")
	if err != nil {
		t.Fatalf("Failed to resolve named event: %v", err)
	}
	if named == sentinel {
		t.Error("Named event shares id with the sentinel row")
	}
}

func TestResolveDuplicateNaturalKeyConflict(t *testing.T) {
	ctx := context.Background()
	conn := newTestWarehouse(t)
	r := warehouse.NewResolver()

	// Plant two rows sharing one natural key, as a corrupted warehouse
	// would hold
	_, err := conn.ExecContext(ctx, `
		INSERT INTO dim_event (event_id, name, site, round) VALUES
			(1, 'Doubled Event', NULL, NULL),
			(2, 'Doubled Event', NULL, NULL)`)
	if err != nil {
		t.Fatalf("Failed to plant duplicate rows: %v", err)
	}

	_, err = r.ResolveEvent(ctx, conn, "Doubled Event", "", "")
	if err == nil {
		t.Fatal("Expected error for duplicated natural key, got nil")
	}
	if !errors.Is(err, warehouse.ErrDimensionConflict) {
		t.Errorf("Expected ErrDimensionConflict, got %v", err)
	}
}

func TestResolveResultDefaultsToUnknown(t *testing.T) {
	ctx := context.Background()
	conn := newTestWarehouse(t)
	r := warehouse.NewResolver()

	blank, err := r.ResolveResult(ctx, conn, "")
	if err != nil {
		t.Fatalf("Failed to resolve blank result: %v", err)
	}
	star, err := r.ResolveResult(ctx, conn, "*")
	if err != nil {
		t.Fatalf("Failed to resolve '*' result: %v", err)
	}
	if blank != star {
		t.Errorf("Blank result did not map to '*': %d != %d", blank, star)
	}
}

func TestResolveOpeningMergesDescriptors(t *testing.T) {
	ctx := context.Background()
	conn := newTestWarehouse(t)
	r := warehouse.NewResolver()

	bare, err := r.ResolveOpening(ctx, conn, "B90", "", "")
	if err != nil {
		t.Fatalf("Failed to resolve bare opening: %v", err)
	}

	enriched, err := r.ResolveOpening(ctx, conn, "B90", "Sicilian Defense", "Najdorf Variation")
	if err != nil {
		t.Fatalf("Failed to resolve enriched opening: %v", err)
	}
	if bare != enriched {
		t.Errorf("Same ECO resolved to different ids: %d != %d", bare, enriched)
	}

	var name, variation sql.NullString
	err = conn.QueryRowContext(ctx,
		`SELECT name, variation FROM dim_opening WHERE eco = 'B90'`).
		Scan(&name, &variation)
	if err != nil {
		t.Fatalf("Failed to read opening row: %v", err)
	}
	if name.String != "Sicilian Defense" {
		t.Errorf("Opening name not merged: got %q", name.String)
	}
	if variation.String != "Najdorf Variation" {
		t.Errorf("Opening variation not merged: got %q", variation.String)
	}

	// A later record without descriptors must not blank the merged ones
	if _, err := r.ResolveOpening(ctx, conn, "B90", "", ""); err != nil {
		t.Fatalf("Failed to re-resolve opening: %v", err)
	}
	err = conn.QueryRowContext(ctx,
		`SELECT name FROM dim_opening WHERE eco = 'B90'`).Scan(&name)
	if err != nil {
		t.Fatalf("Failed to re-read opening row: %v", err)
	}
	if name.String != "Sicilian Defense" {
		t.Errorf("Opening name lost on descriptor-free re-resolve: got %q", name.String)
	}
}

func TestResolveAllWithoutECO(t *testing.T) {
	ctx := context.Background()
	conn := newTestWarehouse(t)
	r := warehouse.NewResolver()

	g := warehouse.RawGame{
		Source:       "lichess",
		SourceGameID: "abcd1234",
		White:        "magnus",
		Black:        "hikaru",
		Result:       "1-0",
	}
	ids, err := r.ResolveAll(ctx, conn, g)
	if err != nil {
		t.Fatalf("Failed to resolve dimensions: %v", err)
	}
	if ids.OpeningID.Valid {
		t.Error("Game without ECO resolved an opening id")
	}

	var openings int
	if err := conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM dim_opening`).Scan(&openings); err != nil {
		t.Fatalf("Failed to count openings: %v", err)
	}
	if openings != 0 {
		t.Errorf("Expected no opening rows, got %d", openings)
	}
}
