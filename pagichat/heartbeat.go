package pagichat

// Sender is the outbound half of the connection manager. Sends are
// best-effort: an envelope submitted while not connected is dropped.
type Sender interface {
	Send(env Envelope)
}

// HeartbeatResponder answers server liveness probes. A ping carrying ts must
// be answered with a pong carrying the same ts, through the gated send path,
// so a probe received while disconnected produces nothing.
type HeartbeatResponder struct {
	sender Sender
}

// NewHeartbeatResponder returns a responder replying through sender.
func NewHeartbeatResponder(sender Sender) *HeartbeatResponder {
	return &HeartbeatResponder{sender: sender}
}

// Pong echoes the probe timestamp back to the server.
func (h *HeartbeatResponder) Pong(ts int64) {
	h.sender.Send(Envelope{Type: outboundPong, TS: ts})
}
