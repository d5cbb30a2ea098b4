package domain

import "context"

type ConversationRepository interface {
	Upsert(ctx context.Context, c Conversation) error
	ListRecent(ctx context.Context, limit int) ([]Conversation, error)
	Delete(ctx context.Context, threadKey string) error
}

type SyncStateRepository interface {
	AllFetched(ctx context.Context) (bool, error)
	SetAllFetched(ctx context.Context, fetched bool) error
}
