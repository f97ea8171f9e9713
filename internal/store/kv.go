package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// historyDepth is how many replaced values are kept per key.
const historyDepth = 10

// Get returns the value stored under key. ok is false when the key is absent.
func (db *DB) Get(ctx context.Context, key string) (value []byte, ok bool, err error) {
	var s string
	err = db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&s)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(s), true, nil
}

// Put stores value under key. The value it replaces is copied to kv_history,
// which keeps the most recent historyDepth entries per key.
func (db *DB) Put(ctx context.Context, key string, value []byte) error {
	now := time.Now().UnixMilli()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put %s: begin: %w", key, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO kv_history (key, value, replaced_at)
		SELECT key, value, ? FROM kv WHERE key = ? AND value != ?
	`, now, key, string(value)); err != nil {
		return fmt.Errorf("put %s: archive: %w", key, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(value), now); err != nil {
		return fmt.Errorf("put %s: upsert: %w", key, err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM kv_history WHERE key = ? AND id NOT IN (
			SELECT id FROM kv_history WHERE key = ? ORDER BY replaced_at DESC, id DESC LIMIT ?
		)
	`, key, key, historyDepth); err != nil {
		return fmt.Errorf("put %s: prune history: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("put %s: commit: %w", key, err)
	}
	return nil
}

// HistoryEntry is a value that was replaced by a later Put.
type HistoryEntry struct {
	Value      []byte
	ReplacedAt int64
}

// History returns replaced values for key, newest first.
func (db *DB) History(ctx context.Context, key string) ([]HistoryEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT value, replaced_at FROM kv_history WHERE key = ? ORDER BY replaced_at DESC, id DESC
	`, key)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", key, err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var v string
		var e HistoryEntry
		if err := rows.Scan(&v, &e.ReplacedAt); err != nil {
			return nil, fmt.Errorf("history %s: scan: %w", key, err)
		}
		e.Value = []byte(v)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
