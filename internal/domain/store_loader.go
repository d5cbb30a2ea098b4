package domain

import (
	"context"
	"fmt"
)

const defaultRecentConversationsLoad = 200

// LoadListFromRepository bootstraps the list store from the local cache.
func LoadListFromRepository(ctx context.Context, list *ListStore, repo ConversationRepository) error {
	items, err := repo.ListRecent(ctx, defaultRecentConversationsLoad)
	if err != nil {
		return fmt.Errorf("load conversations from db: %w", err)
	}

	list.ReplaceAll(items)

	return nil
}
