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
	"testing"

	"github.com/chessdash/chessdash/internal/warehouse"
)

func testGame() warehouse.RawGame {
	return warehouse.RawGame{
		Source:       "lichess",
		SourceGameID: "abcd1234",
		White:        "magnus",
		Black:        "hikaru",
		Year:         2024,
		Month:        5,
		Day:          17,
		Event:        "blitz",
		Result:       "1-0",
		ECO:          "B90",
		OpeningName:  "Sicilian Defense",
		TimeControl:  "180",
		URL:          "https://lichess.org/abcd1234",
		Moves:        "e4 c5 Nf3 d6 d4 cxd4 Nxd4 Nf6",
	}
}

func TestIngestInsertThenSkip(t *testing.T) {
	ctx := context.Background()
	conn := newTestWarehouse(t)
	ing := warehouse.NewIngestor(conn)

	outcome, err := ing.Ingest(ctx, testGame())
	if err != nil {
		t.Fatalf("Failed to ingest game: %v", err)
	}
	if outcome != warehouse.OutcomeInserted {
		t.Errorf("First ingest outcome: expected inserted, got %s", outcome)
	}

	outcome, err = ing.Ingest(ctx, testGame())
	if err != nil {
		t.Fatalf("Failed to re-ingest game: %v", err)
	}
	if outcome != warehouse.OutcomeSkipped {
		t.Errorf("Identical re-ingest outcome: expected skipped, got %s", outcome)
	}

	var count int
	if err := conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM fact_games`).Scan(&count); err != nil {
		t.Fatalf("Failed to count facts: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 fact row, got %d", count)
	}
}

func TestIngestUpdateOnChangedContent(t *testing.T) {
	ctx := context.Background()
	conn := newTestWarehouse(t)
	ing := warehouse.NewIngestor(conn)

	if _, err := ing.Ingest(ctx, testGame()); err != nil {
		t.Fatalf("Failed to ingest game: %v", err)
	}

	changed := testGame()
	changed.Moves = changed.Moves + " a6"
	outcome, err := ing.Ingest(ctx, changed)
	if err != nil {
		t.Fatalf("Failed to ingest changed game: %v", err)
	}
	if outcome != warehouse.OutcomeUpdated {
		t.Errorf("Changed re-ingest outcome: expected updated, got %s", outcome)
	}

	var gameID int64
	var moves string
	err = conn.QueryRowContext(ctx,
		`SELECT game_id, moves FROM fact_games WHERE source_game_id = 'abcd1234'`).
		Scan(&gameID, &moves)
	if err != nil {
		t.Fatalf("Failed to read fact row: %v", err)
	}
	if moves != changed.Moves {
		t.Errorf("Moves not updated in place: got %q", moves)
	}

	// The surrogate key must survive the update
	if gameID != 1 {
		t.Errorf("Update changed the surrogate key: got %d", gameID)
	}
}

func TestIngestSharedDimensions(t *testing.T) {
	ctx := context.Background()
	conn := newTestWarehouse(t)
	ing := warehouse.NewIngestor(conn)

	first := testGame()
	second := testGame()
	second.SourceGameID = "efgh5678"
	second.White, second.Black = first.Black, first.White
	second.Result = "0-1"

	for _, g := range []warehouse.RawGame{first, second} {
		if _, err := ing.Ingest(ctx, g); err != nil {
			t.Fatalf("Failed to ingest %s: %v", g.SourceGameID, err)
		}
	}

	var players, facts int
	if err := conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM dim_player`).Scan(&players); err != nil {
		t.Fatalf("Failed to count players: %v", err)
	}
	if err := conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM fact_games`).Scan(&facts); err != nil {
		t.Fatalf("Failed to count facts: %v", err)
	}
	if players != 2 {
		t.Errorf("Two games between the same players: expected 2 dim_player rows, got %d", players)
	}
	if facts != 2 {
		t.Errorf("Expected 2 fact rows, got %d", facts)
	}
}

func TestIngestSameIDAcrossSources(t *testing.T) {
	ctx := context.Background()
	conn := newTestWarehouse(t)
	ing := warehouse.NewIngestor(conn)

	lichess := testGame()
	chesscom := testGame()
	chesscom.Source = "chesscom"

	for _, g := range []warehouse.RawGame{lichess, chesscom} {
		outcome, err := ing.Ingest(ctx, g)
		if err != nil {
			t.Fatalf("Failed to ingest %s game: %v", g.Source, err)
		}
		if outcome != warehouse.OutcomeInserted {
			t.Errorf("%s ingest outcome: expected inserted, got %s", g.Source, outcome)
		}
	}

	var facts int
	if err := conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM fact_games`).Scan(&facts); err != nil {
		t.Fatalf("Failed to count facts: %v", err)
	}
	if facts != 2 {
		t.Errorf("Same game id on two platforms: expected 2 fact rows, got %d", facts)
	}
}

func TestConsumeCountsMalformed(t *testing.T) {
	ctx := context.Background()
	conn := newTestWarehouse(t)
	ing := warehouse.NewIngestor(conn)

	missingResult := testGame()
	missingResult.Result = ""
	missingResult.SourceGameID = "" // also missing its id

	if err := ing.Consume(ctx, missingResult); err != nil {
		t.Fatalf("Consume returned error for malformed record: %v", err)
	}
	if err := ing.Consume(ctx, testGame()); err != nil {
		t.Fatalf("Consume returned error for valid record: %v", err)
	}

	summary := ing.Summary()
	if summary.Malformed != 1 {
		t.Errorf("Expected 1 malformed record, got %d", summary.Malformed)
	}
	if summary.Inserted != 1 {
		t.Errorf("Expected 1 inserted record, got %d", summary.Inserted)
	}
	if summary.Total() != 2 {
		t.Errorf("Expected total 2, got %d", summary.Total())
	}
}

func TestListGames(t *testing.T) {
	ctx := context.Background()
	conn := newTestWarehouse(t)
	ing := warehouse.NewIngestor(conn)

	first := testGame()
	second := testGame()
	second.Source = "chesscom"
	second.SourceGameID = "99881177"
	for _, g := range []warehouse.RawGame{first, second} {
		if _, err := ing.Ingest(ctx, g); err != nil {
			t.Fatalf("Failed to ingest game: %v", err)
		}
	}

	all, err := warehouse.ListGames(ctx, conn, "")
	if err != nil {
		t.Fatalf("Failed to list games: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 games, got %d", len(all))
	}
	if all[0].White != "magnus" || all[0].Result != "1-0" {
		t.Errorf("Unexpected first row: %+v", all[0])
	}

	filtered, err := warehouse.ListGames(ctx, conn, "chesscom")
	if err != nil {
		t.Fatalf("Failed to list filtered games: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Source != "chesscom" {
		t.Errorf("Platform filter failed: %+v", filtered)
	}
}
