// Package source defines the source-adapter interface and registry.
// Adapters turn platform-specific wire formats into the common RawGame
// shape the ingestion engine consumes.
package source

import (
	"context"

	"github.com/chessdash/chessdash/internal/warehouse"
)

// Adapter produces a finite, restartable sequence of raw game records
// for one platform. Emission stops when emit returns an error.
type Adapter interface {
	// Name returns the platform identifier (matches dim_source).
	Name() string

	// Description returns a human-readable description.
	Description() string

	// FetchGames streams games for a username into emit, newest first
	// where the platform allows it. maxGames of 0 means no cap.
	FetchGames(ctx context.Context, username string, maxGames int, emit func(warehouse.RawGame) error) error
}
