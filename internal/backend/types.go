package backend

import (
	"time"

	"parley/internal/domain"
)

// Channel is a group-conversation endpoint in the platform directory.
// Key is the opaque handle mute calls address the channel by.
type Channel struct {
	Key     string
	GroupID string
	Title   string
}

// Contact is a one-to-one peer in the platform directory.
type Contact struct {
	ID            string
	DisplayName   string
	BlockedByMe   bool
	BlockedByPeer bool
}

type ChannelMuteRequest struct {
	ChannelKey string
	Until      time.Time
}

type UserMuteRequest struct {
	UserID string
	Until  time.Time
}

// Event is one decoded feed frame. The non-nil fields carry the payload;
// a frame with no recognized payload is skipped.
type Event struct {
	Conversations *domain.ConversationBatch
	Removed       *domain.ConversationRemoved
	Typing        *domain.TypingEvent
	Receipt       *domain.DeliveryReceipt
	Contact       *domain.ContactUpdate
}
