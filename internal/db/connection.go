// Package db provides access to the embedded DuckDB warehouse file.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/chessdash/chessdash/internal/logging"
)

// ErrStorageUnavailable indicates that the warehouse file could not be
// opened or locked, e.g. because another process holds it. It is fatal
// for the whole invocation.
var ErrStorageUnavailable = errors.New("warehouse storage unavailable")

// Open opens (creating if necessary) the warehouse file at path and
// verifies the connection. DuckDB allows a single writer at a time, which
// also serializes surrogate id allocation.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create warehouse directory: %w", err)
	}

	logging.Debug().
		Str("path", path).
		Msg("Opening warehouse")

	conn, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	// Verify the file can actually be locked
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	// A single connection keeps all transactional writes on one writer
	conn.SetMaxOpenConns(1)

	logging.Info().
		Str("path", path).
		Msg("Opened warehouse")

	return conn, nil
}

// OpenReadOnly opens the warehouse file without taking the writer lock,
// for consumers such as the dashboard.
func OpenReadOnly(ctx context.Context, path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	conn, err := sql.Open("duckdb", path+"?access_mode=read_only")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	logging.Debug().
		Str("path", path).
		Msg("Opened warehouse read-only")

	return conn, nil
}

// OpenMemory opens an in-memory DuckDB instance. Used by tests and
// throwaway runs.
func OpenMemory(ctx context.Context) (*sql.DB, error) {
	conn, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	conn.SetMaxOpenConns(1)
	return conn, nil
}
