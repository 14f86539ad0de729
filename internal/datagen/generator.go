//-------------------------------------------------------------------------
//
// chessdash - chess game warehouse
//
// Copyright (c) 2025 - 2026, the chessdash authors
// This software is released under The MIT License
//
//-------------------------------------------------------------------------

package datagen

import (
	"fmt"

	"github.com/chessdash/chessdash/internal/warehouse"
)

// Generator produces synthetic games for seeding a warehouse.
type Generator struct {
	faker    *Faker
	username string
	seq      int
}

// NewGenerator creates a generator whose games all involve username.
// A zero seed selects a random one.
func NewGenerator(username string, seed uint64) *Generator {
	f := NewFaker()
	if seed != 0 {
		f = NewFakerWithSeed(seed)
	}
	return &Generator{faker: f, username: username}
}

// Next returns the next synthetic game. The tracked username plays one
// side of every game so that rollups have a subject to report on.
func (g *Generator) Next() warehouse.RawGame {
	g.seq++
	f := g.faker

	white, black := g.username, f.Username()
	if f.Bool() {
		white, black = black, white
	}

	source := "lichess"
	if f.Bool() {
		source = "chesscom"
	}

	date := f.GameDate()
	raw := warehouse.RawGame{
		Source:       source,
		SourceGameID: fmt.Sprintf("seed-%08d", g.seq),
		White:        white,
		Black:        black,
		Year:         date.Year(),
		Month:        int(date.Month()),
		Day:          date.Day(),
		Event:        f.Perf(),
		Result:       f.Result(),
		TimeControl:  f.TimeControl(),
		Moves:        f.Moves(f.Int(20, 120)),
	}
	raw.URL = fmt.Sprintf("https://example.invalid/%s/%s", source, raw.SourceGameID)

	// Leave roughly one game in five without opening data, matching
	// what real exports look like
	if f.Int(0, 4) > 0 {
		raw.ECO = f.ECO()
		raw.OpeningName, raw.OpeningVariation = f.Opening()
	}

	return raw
}
