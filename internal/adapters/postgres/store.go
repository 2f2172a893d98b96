package postgres

import (
	"context"
	"fmt"
)

// Get implements ports.KVStore over the kv_store table. Keys with no row are
// absent from the result.
func (db *DB) Get(ctx context.Context, keys ...string) (map[string][]byte, error) {
	if len(keys) == 0 {
		return map[string][]byte{}, nil
	}
	rows, err := db.Pool.Query(ctx, `
		SELECT key, value FROM kv_store WHERE key = ANY($1)
	`, keys)
	if err != nil {
		return nil, fmt.Errorf("postgres: get: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]byte, len(keys))
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("postgres: scan: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: get: %w", err)
	}
	return out, nil
}

// Set upserts every entry in a single transaction so partial writes never
// become visible.
func (db *DB) Set(ctx context.Context, values map[string][]byte) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for key, value := range values {
		if _, err := tx.Exec(ctx, `
			INSERT INTO kv_store (key, value, updated_at)
			VALUES ($1, $2::jsonb, now())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
		`, key, string(value)); err != nil {
			return fmt.Errorf("postgres: set %s: %w", key, err)
		}
	}
	return tx.Commit(ctx)
}
