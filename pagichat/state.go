package pagichat

// ConnectionState represents the current state of the chat connection.
// Exactly one instance exists per Client, mutated only by the client itself.
type ConnectionState int

const (
	// StateDisconnected means the client has no live connection.
	StateDisconnected ConnectionState = iota

	// StateConnecting means a dial is in flight.
	StateConnecting

	// StateConnected means envelopes can be sent and received.
	StateConnected
)

// String returns the string representation of a ConnectionState.
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// StateEvent describes one connection state transition.
type StateEvent struct {
	OldState ConnectionState
	NewState ConnectionState
	Error    error // cause of the transition, if any
}
