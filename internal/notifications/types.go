package notifications

// Payload is what ends up in a desktop notification.
type Payload struct {
	Title   string
	Content string
}

// Sender delivers notifications through a platform backend.
type Sender interface {
	Send(payload Payload)
}
