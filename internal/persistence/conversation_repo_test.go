package persistence

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"parley/internal/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestConversationRepoUpsertAndList_RoundTrips(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepo(openTestDB(t))
	now := time.Now().UTC().Truncate(time.Millisecond)

	if err := repo.Upsert(ctx, domain.Conversation{
		Key:        "msg-100",
		ContactID:  "alice",
		Title:      "Alice",
		Preview:    "see you tomorrow",
		Direction:  domain.DirectionOut,
		MutedUntil: now.Add(30 * time.Minute),
		CreatedAt:  now,
	}); err != nil {
		t.Fatalf("upsert dm: %v", err)
	}
	if err := repo.Upsert(ctx, domain.Conversation{
		Key:       "msg-101",
		GroupID:   "grp-general",
		IsGroup:   true,
		Title:     "general",
		Preview:   "standup in five",
		Direction: domain.DirectionIn,
		Unread:    2,
		CreatedAt: now.Add(-time.Hour),
	}); err != nil {
		t.Fatalf("upsert group: %v", err)
	}

	rows, err := repo.ListRecent(ctx, 0)
	if err != nil {
		t.Fatalf("list conversations: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	dm := rows[0]
	if dm.Key != "msg-100" || dm.ContactID != "alice" || dm.IsGroup {
		t.Fatalf("expected the dm row first, got %+v", dm)
	}
	if dm.Direction != domain.DirectionOut {
		t.Fatalf("expected direction out, got %v", dm.Direction)
	}
	if !dm.CreatedAt.Equal(now) {
		t.Fatalf("expected created at %v, got %v", now, dm.CreatedAt)
	}
	if !dm.MutedUntil.Equal(now.Add(30 * time.Minute)) {
		t.Fatalf("expected muted until %v, got %v", now.Add(30*time.Minute), dm.MutedUntil)
	}

	group := rows[1]
	if group.GroupID != "grp-general" || !group.IsGroup || group.Unread != 2 {
		t.Fatalf("expected the group row, got %+v", group)
	}
	if !group.MutedUntil.IsZero() {
		t.Fatalf("expected an unmuted group row, got %v", group.MutedUntil)
	}
}

func TestConversationRepoUpsert_ReplacesWholeRowOnConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepo(openTestDB(t))
	now := time.Now().UTC().Truncate(time.Millisecond)

	if err := repo.Upsert(ctx, domain.Conversation{
		Key:        "msg-1",
		ContactID:  "alice",
		Title:      "Alice",
		Preview:    "older",
		Unread:     5,
		MutedUntil: now.Add(time.Hour),
		CreatedAt:  now.Add(-time.Hour),
	}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := repo.Upsert(ctx, domain.Conversation{
		Key:       "msg-2",
		ContactID: "alice",
		Title:     "Alice",
		Preview:   "newer",
		CreatedAt: now,
	}); err != nil {
		t.Fatalf("replacing upsert: %v", err)
	}

	rows, err := repo.ListRecent(ctx, 0)
	if err != nil {
		t.Fatalf("list conversations: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected the thread to stay a single row, got %d", len(rows))
	}
	got := rows[0]
	if got.Key != "msg-2" || got.Preview != "newer" || got.Unread != 0 {
		t.Fatalf("expected the replacement record, got %+v", got)
	}
	if !got.MutedUntil.IsZero() {
		t.Fatalf("expected the stale mute to be replaced, got %v", got.MutedUntil)
	}
}

func TestConversationRepoListRecent_OrdersAndLimits(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepo(openTestDB(t))
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	seed := []domain.Conversation{
		{ContactID: "bob", Title: "Bob", CreatedAt: base.Add(-time.Hour)},
		{ContactID: "alice", Title: "Alice", CreatedAt: base},
		{ContactID: "pending", Title: "Pending"},
		{ContactID: "carol", Title: "Carol", CreatedAt: base.Add(-2 * time.Hour)},
	}
	for _, conv := range seed {
		if err := repo.Upsert(ctx, conv); err != nil {
			t.Fatalf("seed %s: %v", conv.ContactID, err)
		}
	}

	rows, err := repo.ListRecent(ctx, 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	wantOrder := []string{"alice", "bob", "carol", "pending"}
	if len(rows) != len(wantOrder) {
		t.Fatalf("expected %d rows, got %d", len(wantOrder), len(rows))
	}
	for i, want := range wantOrder {
		if rows[i].ContactID != want {
			t.Fatalf("row %d: expected %s, got %s", i, want, rows[i].ContactID)
		}
	}
	if !rows[3].CreatedAt.IsZero() {
		t.Fatalf("expected the timestamp-less row to read back zero, got %v", rows[3].CreatedAt)
	}

	limited, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 2 || limited[0].ContactID != "alice" || limited[1].ContactID != "bob" {
		t.Fatalf("expected the 2 newest rows, got %+v", limited)
	}
}

func TestConversationRepoDelete_RemovesRow(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepo(openTestDB(t))
	now := time.Now().UTC().Truncate(time.Millisecond)

	for _, conv := range []domain.Conversation{
		{ContactID: "alice", CreatedAt: now},
		{GroupID: "grp-general", IsGroup: true, CreatedAt: now},
	} {
		if err := repo.Upsert(ctx, conv); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	if err := repo.Delete(ctx, domain.ThreadKeyForContact("alice")); err != nil {
		t.Fatalf("delete dm: %v", err)
	}
	if err := repo.Delete(ctx, "dm:nobody"); err != nil {
		t.Fatalf("delete absent row: %v", err)
	}

	rows, err := repo.ListRecent(ctx, 0)
	if err != nil {
		t.Fatalf("list conversations: %v", err)
	}
	if len(rows) != 1 || rows[0].GroupID != "grp-general" {
		t.Fatalf("expected only the group row to remain, got %+v", rows)
	}
}

func TestConversationRepoUpsert_RejectsRecordWithoutIdentity(t *testing.T) {
	repo := NewConversationRepo(openTestDB(t))

	if err := repo.Upsert(context.Background(), domain.Conversation{Key: "msg-1", Title: "ghost"}); err == nil {
		t.Fatal("expected an identity-less record to be rejected")
	}
}

func TestOpen_MigratesV1DatabaseToV2(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "app.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	stmts := []string{
		`CREATE TABLE conversations (
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
		`CREATE INDEX conversations_created_at_idx ON conversations(created_at DESC);`,
		`CREATE TABLE sync_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`INSERT INTO conversations(thread_key, contact_id, title, created_at)
			VALUES('dm:alice', 'alice', 'Alice', 1714000000000);`,
		`PRAGMA user_version = 1;`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			t.Fatalf("seed v1 schema: %v", err)
		}
	}
	_ = db.Close()

	migrated, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("open migrated db: %v", err)
	}
	defer func() { _ = migrated.Close() }()

	var version int
	if err := migrated.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&version); err != nil {
		t.Fatalf("read user_version: %v", err)
	}
	if version != 2 {
		t.Fatalf("expected schema version 2, got %d", version)
	}

	columns := make(map[string]bool)
	rows, err := migrated.QueryContext(ctx, `PRAGMA table_info(conversations);`)
	if err != nil {
		t.Fatalf("read table info: %v", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			cid       int
			name      string
			typ       string
			notNull   int
			defaultV  sql.NullString
			primaryID int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultV, &primaryID); err != nil {
			t.Fatalf("scan table info: %v", err)
		}
		columns[name] = true
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("iterate table info: %v", err)
	}
	if !columns["muted_until"] {
		t.Fatalf("expected muted_until column after migration")
	}

	listed, err := NewConversationRepo(migrated).ListRecent(ctx, 0)
	if err != nil {
		t.Fatalf("list migrated rows: %v", err)
	}
	if len(listed) != 1 || listed[0].ContactID != "alice" {
		t.Fatalf("expected the seeded row to survive the migration, got %+v", listed)
	}
	if !listed[0].MutedUntil.IsZero() {
		t.Fatalf("expected the migrated row to be unmuted, got %v", listed[0].MutedUntil)
	}
}
