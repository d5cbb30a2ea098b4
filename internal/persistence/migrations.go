package persistence

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaVersion = 2

// migrate walks the schema from the stored PRAGMA user_version up to
// schemaVersion, one version per step, all inside a single transaction.
func migrate(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version >= schemaVersion {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if version < 1 {
		stmts := []string{
			`CREATE TABLE IF NOT EXISTS conversations (
				thread_key TEXT PRIMARY KEY,
				message_key TEXT NOT NULL DEFAULT '',
				group_id TEXT NOT NULL DEFAULT '',
				contact_id TEXT NOT NULL DEFAULT '',
				is_group INTEGER NOT NULL DEFAULT 0,
				title TEXT NOT NULL DEFAULT '',
				preview TEXT NOT NULL DEFAULT '',
				direction INTEGER NOT NULL DEFAULT 0,
				unread INTEGER NOT NULL DEFAULT 0,
				created_at INTEGER NOT NULL DEFAULT 0
			);`,
			`CREATE INDEX IF NOT EXISTS conversations_created_at_idx ON conversations(created_at DESC);`,
			`CREATE TABLE IF NOT EXISTS sync_state (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL
			);`,
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("apply schema v1: %w", err)
			}
		}
	}

	if version < 2 {
		if _, err := tx.ExecContext(ctx, `ALTER TABLE conversations ADD COLUMN muted_until INTEGER NOT NULL DEFAULT 0;`); err != nil {
			return fmt.Errorf("apply schema v2: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d;`, schemaVersion)); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration tx: %w", err)
	}

	return nil
}
