//-------------------------------------------------------------------------
//
// chessdash - chess game warehouse
//
// Copyright (c) 2025 - 2026, the chessdash authors
// This software is released under The MIT License
//
//-------------------------------------------------------------------------

// Package datagen provides synthetic game generation utilities.
package datagen

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// Faker provides fake chess data generation using gofakeit.
type Faker struct {
	faker *gofakeit.Faker
}

// NewFaker creates a new Faker with a random seed.
func NewFaker() *Faker {
	return &Faker{
		faker: gofakeit.New(uint64(time.Now().UnixNano())),
	}
}

// NewFakerWithSeed creates a new Faker with a specific seed for reproducibility.
func NewFakerWithSeed(seed uint64) *Faker {
	return &Faker{
		faker: gofakeit.New(seed),
	}
}

// Username generates a plausible online chess handle. Word sources can
// yield multi-word values ("guinea pig"), so spaces are squeezed out.
func (f *Faker) Username() string {
	var name string
	switch f.Int(0, 2) {
	case 0:
		name = f.faker.Username()
	case 1:
		name = fmt.Sprintf("%s%d", strings.ToLower(f.faker.NounConcrete()), f.Int(1, 9999))
	default:
		name = fmt.Sprintf("%s_%s", strings.ToLower(f.faker.AdjectiveDescriptive()),
			strings.ToLower(f.faker.Animal()))
	}
	return strings.ReplaceAll(name, " ", "")
}

// ECO generates a random ECO code such as "B90".
func (f *Faker) ECO() string {
	return fmt.Sprintf("%c%02d", 'A'+rune(f.Int(0, 4)), f.Int(0, 99))
}

// Result generates a PGN result code, weighted away from draws.
func (f *Faker) Result() string {
	switch f.Int(0, 9) {
	case 0, 1:
		return "1/2-1/2"
	case 2, 3, 4, 5:
		return "1-0"
	default:
		return "0-1"
	}
}

// TimeControl generates a common online time control, in seconds.
func (f *Faker) TimeControl() string {
	return Choose(f, []string{"60", "180", "300", "600", "900", "1800"})
}

// Perf generates a rating pool name.
func (f *Faker) Perf() string {
	return Choose(f, []string{"bullet", "blitz", "rapid", "classical"})
}

// Opening generates an opening name and variation pair.
func (f *Faker) Opening() (name, variation string) {
	name = Choose(f, []string{
		"Sicilian Defense", "Ruy Lopez", "Italian Game", "French Defense",
		"Caro-Kann Defense", "Queen's Gambit", "King's Indian Defense",
		"English Opening", "Scandinavian Defense", "Nimzo-Indian Defense",
	})
	if f.Bool() {
		variation = Choose(f, []string{
			"Main Line", "Exchange Variation", "Classical Variation",
			"Advance Variation", "Najdorf Variation", "Closed Variation",
		})
	}
	return name, variation
}

// Moves generates a SAN-looking move list of the given length.
func (f *Faker) Moves(count int) string {
	openers := []string{"e4", "d4", "Nf3", "c4", "e5", "d5", "Nf6", "c5", "g6", "e6"}
	middle := []string{
		"Nc3", "Bb5", "Bc4", "O-O", "Re1", "Qd2", "Bg5", "h3", "a4",
		"Nxd4", "Bxf6", "exd5", "cxd5", "Rad1", "Qe7", "b5", "Bb7", "Rc8",
	}

	parts := make([]string, 0, count)
	for i := 0; i < count; i++ {
		if i < 4 {
			parts = append(parts, Choose(f, openers))
		} else {
			parts = append(parts, Choose(f, middle))
		}
	}
	return strings.Join(parts, " ")
}

// GameDate generates a date within the past two years.
func (f *Faker) GameDate() time.Time {
	return f.faker.DateRange(
		time.Now().AddDate(-2, 0, 0),
		time.Now(),
	).UTC()
}

// Int generates a random integer between min and max (inclusive).
func (f *Faker) Int(min, max int) int {
	return f.faker.IntRange(min, max)
}

// Bool generates a random boolean.
func (f *Faker) Bool() bool {
	return f.faker.Bool()
}

// Choose returns a random element from the given slice.
func Choose[T any](f *Faker, items []T) T {
	if len(items) == 0 {
		var zero T
		return zero
	}
	return items[f.Int(0, len(items)-1)]
}
