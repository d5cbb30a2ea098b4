package convlist

import "parley/internal/domain"

// Observer receives re-render signals for the conversation list. Calls
// are one-way and best-effort; with no observer registered they are
// dropped silently.
type Observer interface {
	StartedLoading()
	ListUpdated()
	RowUpdated(position int)
}

// ChatSurface receives typing and delivery signals for the open chat
// screen.
type ChatSurface interface {
	TypingStatus(contactID string, typing bool)
	DeliveryStatus(receipt domain.DeliveryReceipt)
}
