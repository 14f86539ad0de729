//-------------------------------------------------------------------------
//
// chessdash - chess game warehouse
//
// Copyright (c) 2025 - 2026, the chessdash authors
// This software is released under The MIT License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/chessdash/chessdash/internal/logging"
	"github.com/chessdash/chessdash/pkg/version"
)

const metadataTable = "warehouse_metadata"

// createMetadataTableSQL creates the metadata table if it doesn't exist.
const createMetadataTableSQL = `
CREATE TABLE IF NOT EXISTS warehouse_metadata (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

// SaveIngestMetadata records the last-ingest bookkeeping after a fetch run.
func SaveIngestMetadata(ctx context.Context, conn *sql.DB, platform, username string) error {
	_, err := conn.ExecContext(ctx, createMetadataTableSQL)
	if err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}

	metadata := map[string]string{
		"version":        version.Short(),
		"last_ingest_at": time.Now().UTC().Format(time.RFC3339),
		"last_platform":  platform,
		"last_username":  username,
	}

	for key, value := range metadata {
		_, err := conn.ExecContext(ctx, `
            INSERT INTO warehouse_metadata (key, value) VALUES (?, ?)
            ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
        `, key, value)
		if err != nil {
			return fmt.Errorf("failed to save metadata %s: %w", key, err)
		}
	}

	logging.Debug().
		Str("platform", platform).
		Str("username", username).
		Msg("Saved metadata")

	return nil
}

// GetMetadataValue retrieves a single metadata value by key.
func GetMetadataValue(ctx context.Context, conn *sql.DB, key string) (string, error) {
	var value string
	err := conn.QueryRowContext(ctx, `
        SELECT value FROM warehouse_metadata WHERE key = ?
    `, key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

// GetAllMetadata retrieves all metadata as a map.
func GetAllMetadata(ctx context.Context, conn *sql.DB) (map[string]string, error) {
	rows, err := conn.QueryContext(ctx, `SELECT key, value FROM warehouse_metadata`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metadata := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		metadata[key] = value
	}

	return metadata, rows.Err()
}

// DropMetadata drops the metadata table.
func DropMetadata(ctx context.Context, conn *sql.DB) error {
	_, err := conn.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", metadataTable))
	return err
}
