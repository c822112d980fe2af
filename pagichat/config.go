package pagichat

import "time"

// Config controls how the client connects and recovers.
type Config struct {
	URL  string // websocket endpoint, e.g. ws://localhost:8080/ws/chat
	Name string // display name; falls back to the persisted one when empty

	// ReconnectDelay is the fixed wait between a disconnect and the next
	// dial. There is no backoff: every retry uses the same delay.
	ReconnectDelay time.Duration

	// MaxReconnects bounds consecutive reconnect attempts. 0 retries forever.
	MaxReconnects int

	StatsURL      string        // optional read-only stats endpoint
	StatsInterval time.Duration // poll period for StatsURL

	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ReconnectDelay:   2 * time.Second,
		StatsInterval:    10 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
	}
}
