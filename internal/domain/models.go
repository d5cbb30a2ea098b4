package domain

import "time"

type Direction int

const (
	DirectionIn Direction = iota + 1
	DirectionOut
)

type DeliveryState int

const (
	DeliveryStateDelivered DeliveryState = iota + 1
	DeliveryStateRead
)

// Conversation is one conversation-list entry carrying the latest known
// state of a thread. GroupID is set for group threads, ContactID for
// one-to-one threads. A zero CreatedAt means the platform did not supply
// a timestamp for the latest message.
type Conversation struct {
	Key        string
	GroupID    string
	ContactID  string
	IsGroup    bool
	Title      string
	Preview    string
	Direction  Direction
	Unread     int
	MutedUntil time.Time
	CreatedAt  time.Time
}

// ConversationBatch is a group of records delivered together, in arrival
// order.
type ConversationBatch struct {
	Items []Conversation
}

type ConversationRemoved struct {
	ThreadKey string
}

type TypingEvent struct {
	ContactID string
	Typing    bool
}

type DeliveryReceipt struct {
	MessageKey string
	ContactID  string
	Status     DeliveryState
}

type ContactUpdate struct {
	ContactID string
}
