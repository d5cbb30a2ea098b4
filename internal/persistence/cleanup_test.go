package persistence

import (
	"context"
	"testing"
	"time"

	"parley/internal/domain"
)

func TestClearDatabase_ClearsAllTables(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	convRepo := NewConversationRepo(db)
	if err := convRepo.Upsert(ctx, domain.Conversation{
		ContactID: "alice",
		Title:     "Alice",
		CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("seed conversations: %v", err)
	}
	if err := NewSyncStateRepo(db).SetAllFetched(ctx, true); err != nil {
		t.Fatalf("seed sync state: %v", err)
	}

	if err := ClearDatabase(ctx, db); err != nil {
		t.Fatalf("clear database: %v", err)
	}

	tableChecks := []struct {
		name  string
		query string
	}{
		{name: "conversations", query: "SELECT COUNT(*) FROM conversations;"},
		{name: "sync_state", query: "SELECT COUNT(*) FROM sync_state;"},
	}
	for _, table := range tableChecks {
		var count int
		if err := db.QueryRowContext(ctx, table.query).Scan(&count); err != nil {
			t.Fatalf("count rows in %s: %v", table.name, err)
		}
		if count != 0 {
			t.Fatalf("expected %s to be empty after clear, got %d rows", table.name, count)
		}
	}
}

func TestClearDatabase_RejectsNilHandle(t *testing.T) {
	if err := ClearDatabase(context.Background(), nil); err == nil {
		t.Fatal("expected a nil handle to be rejected")
	}
}
