package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const syncKeyAllFetched = "conversations_all_fetched"

type SyncStateRepo struct {
	db *sql.DB
}

func NewSyncStateRepo(db *sql.DB) *SyncStateRepo {
	return &SyncStateRepo{db: db}
}

// AllFetched reports whether history paging already reached the oldest
// conversation. A missing row means paging never completed.
func (r *SyncStateRepo) AllFetched(ctx context.Context) (bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM sync_state WHERE key = ?`, syncKeyAllFetched).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read sync state: %w", err)
	}

	return value == "1", nil
}

func (r *SyncStateRepo) SetAllFetched(ctx context.Context, fetched bool) error {
	value := "0"
	if fetched {
		value = "1"
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_state(key, value) VALUES(?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, syncKeyAllFetched, value)
	if err != nil {
		return fmt.Errorf("write sync state: %w", err)
	}

	return nil
}
