package pagichat

// RenderSink receives typed render commands from the dispatcher. It is the
// only surface the core pushes visual state through; implementations decide
// what "rendering" means (terminal, TUI, test recorder).
//
// Calls arrive from the client's read goroutine; implementations that share
// state with other goroutines must synchronize themselves.
type RenderSink interface {
	// ShowChatView switches from the login view to the chat view.
	ShowChatView()

	// SetIdentity reports the display name confirmed by the server.
	SetIdentity(name string)

	// SetStatus reports every connection state transition.
	SetStatus(state ConnectionState)

	// SetActiveRoom reports a confirmed room switch.
	SetActiveRoom(room string)

	// AppendMessage appends one entry to the render buffer.
	AppendMessage(msg Message)

	// ClearMessages empties the render buffer before a history replay.
	ClearMessages()

	// SetRoomList replaces the displayed room list wholesale.
	SetRoomList(names []string)

	// SetPresence replaces the displayed member list wholesale.
	SetPresence(members []Member)

	// SetStats reports the latest aggregate server counters.
	SetStats(usersOnline, roomsCount int)
}

// NopSink discards every render call. Embed it to implement RenderSink
// partially.
type NopSink struct{}

func (NopSink) ShowChatView()             {}
func (NopSink) SetIdentity(string)        {}
func (NopSink) SetStatus(ConnectionState) {}
func (NopSink) SetActiveRoom(string)      {}
func (NopSink) AppendMessage(Message)     {}
func (NopSink) ClearMessages()            {}
func (NopSink) SetRoomList([]string)      {}
func (NopSink) SetPresence([]Member)      {}
func (NopSink) SetStats(int, int)         {}

var _ RenderSink = NopSink{}
