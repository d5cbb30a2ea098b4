package backend

import (
	"context"
	"time"

	"parley/internal/domain"
)

// ChannelService resolves and mutes group channels.
type ChannelService interface {
	ChannelByGroupID(ctx context.Context, groupID string) (Channel, bool, error)
	MuteChannel(ctx context.Context, req ChannelMuteRequest) error
}

// ContactService resolves and mutes one-to-one peers.
type ContactService interface {
	ContactByID(ctx context.Context, contactID string) (Contact, bool, error)
	MuteUser(ctx context.Context, req UserMuteRequest) error
}

// ConversationService pages conversation history from the server.
// Fetches return records whose latest message predates before, newest
// first, at most limit of them.
type ConversationService interface {
	FetchConversations(ctx context.Context, before time.Time, limit int) ([]domain.Conversation, error)
}

// TypingService publishes the local user's typing state to a thread.
type TypingService interface {
	SetTyping(ctx context.Context, threadKey string, typing bool) error
}

// Stream is the live event feed. Next blocks until an event arrives, the
// context ends, or the stream fails.
type Stream interface {
	Name() string
	Connect(ctx context.Context) error
	Next(ctx context.Context) (Event, error)
	Close() error
}

// Services bundles the platform ports a runtime needs.
type Services struct {
	Channels      ChannelService
	Contacts      ContactService
	Conversations ConversationService
	Typing        TypingService
}
