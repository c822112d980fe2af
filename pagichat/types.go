package pagichat

const (
	// client -> server
	outboundJoin    = "join"
	outboundMessage = "message"
	outboundPong    = "pong"

	// server -> client
	inboundConnected  = "connected"
	inboundResumed    = "resumed"
	inboundJoined     = "joined"
	inboundLeft       = "left"
	inboundMessage    = "message"
	inboundAction     = "action"
	inboundSystem     = "system"
	inboundUserJoined = "user_joined"
	inboundUserLeft   = "user_left"
	inboundRoomList   = "room_list"
	inboundUserList   = "user_list"
	inboundError      = "error"
	inboundPing       = "ping"
)

// Message kinds as rendered by a sink.
const (
	KindChat   = "message"
	KindAction = "action"
	KindSystem = "system"
)

// Envelope is one discrete JSON message on the chat socket, discriminated by
// Type. The protocol is flat: every type reads its own subset of the fields
// and leaves the rest empty.
type Envelope struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	Name      string    `json:"name,omitempty"`
	Room      string    `json:"room,omitempty"`
	Rooms     []string  `json:"rooms,omitempty"`
	Text      string    `json:"text,omitempty"`
	From      string    `json:"from,omitempty"`
	Message   string    `json:"message,omitempty"`
	User      string    `json:"user,omitempty"`
	Users     []Member  `json:"users,omitempty"`
	History   []Message `json:"history,omitempty"`
	TS        int64     `json:"ts,omitempty"`
}

// Message is one rendered chat entry. History replay uses the same shape.
type Message struct {
	Kind string `json:"type,omitempty"`
	From string `json:"from,omitempty"`
	Text string `json:"text"`
	TS   int64  `json:"ts,omitempty"`
	Room string `json:"room,omitempty"`
}

// Member is one entry of a room's presence list, ordered by the server.
type Member struct {
	Name string `json:"name"`
}
