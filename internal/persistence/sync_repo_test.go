package persistence

import (
	"context"
	"testing"
)

func TestSyncStateRepoAllFetched_DefaultsToFalse(t *testing.T) {
	repo := NewSyncStateRepo(openTestDB(t))

	fetched, err := repo.AllFetched(context.Background())
	if err != nil {
		t.Fatalf("read flag: %v", err)
	}
	if fetched {
		t.Fatal("expected a fresh cache to report incomplete history")
	}
}

func TestSyncStateRepoSetAllFetched_RoundTrips(t *testing.T) {
	ctx := context.Background()
	repo := NewSyncStateRepo(openTestDB(t))

	if err := repo.SetAllFetched(ctx, true); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	fetched, err := repo.AllFetched(ctx)
	if err != nil {
		t.Fatalf("read flag: %v", err)
	}
	if !fetched {
		t.Fatal("expected the flag to read back true")
	}

	if err := repo.SetAllFetched(ctx, false); err != nil {
		t.Fatalf("clear flag: %v", err)
	}
	fetched, err = repo.AllFetched(ctx)
	if err != nil {
		t.Fatalf("read cleared flag: %v", err)
	}
	if fetched {
		t.Fatal("expected the flag to read back false")
	}
}
