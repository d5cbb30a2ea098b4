package events

import "time"

type ConnectionState string

const (
	ConnectionStateDisconnected ConnectionState = "disconnected"
	ConnectionStateConnecting   ConnectionState = "connecting"
	ConnectionStateConnected    ConnectionState = "connected"
	ConnectionStateReconnecting ConnectionState = "reconnecting"
)

// ConnStatus describes a feed connection transition.
type ConnStatus struct {
	State      ConnectionState
	Err        string
	StreamName string
	Timestamp  time.Time
}
