package pagichat

import (
	"testing"

	"github.com/pagihq/pagichat-go/pagichat/store"
)

// recordSink records every render command for assertions.
type recordSink struct {
	NopSink
	chatShown bool
	identity  string
	active    string
	clears    int
	messages  []Message
	roomLists [][]string
	presences [][]Member
	statuses  []ConnectionState
}

func (s *recordSink) SetStatus(state ConnectionState) { s.statuses = append(s.statuses, state) }

func (s *recordSink) ShowChatView()              { s.chatShown = true }
func (s *recordSink) SetIdentity(name string)    { s.identity = name }
func (s *recordSink) SetActiveRoom(room string)  { s.active = room }
func (s *recordSink) ClearMessages()             { s.clears++; s.messages = nil }
func (s *recordSink) AppendMessage(msg Message)  { s.messages = append(s.messages, msg) }
func (s *recordSink) SetRoomList(names []string) { s.roomLists = append(s.roomLists, names) }
func (s *recordSink) SetPresence(list []Member)  { s.presences = append(s.presences, list) }

func (s *recordSink) lastPresence() []Member {
	if len(s.presences) == 0 {
		return nil
	}
	return s.presences[len(s.presences)-1]
}

// recordSender records outbound envelopes.
type recordSender struct {
	sent []Envelope
}

func (r *recordSender) Send(env Envelope) { r.sent = append(r.sent, env) }

func newTestDispatcher() (*Dispatcher, *recordSink, *recordSender, *store.Memory) {
	sink := &recordSink{}
	sender := &recordSender{}
	st := store.NewMemory()
	d := &Dispatcher{
		Rooms:     NewRoomState(),
		Presence:  NewPresenceTracker(),
		Heartbeat: NewHeartbeatResponder(sender),
		Sender:    sender,
		Sink:      sink,
		Store:     st,
	}
	return d, sink, sender, st
}

func TestConnectedEstablishesSession(t *testing.T) {
	d, sink, _, st := newTestDispatcher()
	var adopted Identity
	d.OnSession = func(id Identity) { adopted = id }

	d.Dispatch(Envelope{Type: "connected", SessionID: "abc", Name: "alice", Rooms: []string{"general"}})

	if adopted.SessionID != "abc" || adopted.Name != "alice" {
		t.Fatalf("unexpected adopted identity: %+v", adopted)
	}
	persisted, err := LoadIdentity(st)
	if err != nil {
		t.Fatalf("load identity: %v", err)
	}
	if persisted.SessionID != "abc" || persisted.Name != "alice" {
		t.Fatalf("unexpected persisted identity: %+v", persisted)
	}
	if !sink.chatShown {
		t.Fatalf("expected chat view")
	}
	if !d.Rooms.Contains("general") || len(d.Rooms.Known()) != 1 {
		t.Fatalf("unexpected known rooms: %v", d.Rooms.Known())
	}
}

func TestJoinedReplaysHistoryAndPresence(t *testing.T) {
	d, sink, _, _ := newTestDispatcher()
	sink.messages = []Message{{Kind: KindSystem, Text: "stale"}}

	d.Dispatch(Envelope{
		Type:    "joined",
		Room:    "dev",
		History: []Message{{From: "bob", Text: "hi", TS: 100}},
		Users:   []Member{{Name: "bob"}},
	})

	if d.Rooms.Active() != "dev" {
		t.Fatalf("active room = %q, want dev", d.Rooms.Active())
	}
	if sink.active != "dev" {
		t.Fatalf("sink active room = %q", sink.active)
	}
	if sink.clears != 1 {
		t.Fatalf("clears = %d, want 1", sink.clears)
	}
	if len(sink.messages) != 1 {
		t.Fatalf("messages = %+v, want exactly the history entry", sink.messages)
	}
	got := sink.messages[0]
	if got.From != "bob" || got.Text != "hi" || got.TS != 100 || got.Room != "dev" || got.Kind != KindChat {
		t.Fatalf("unexpected history entry: %+v", got)
	}
	if members := sink.lastPresence(); len(members) != 1 || members[0].Name != "bob" {
		t.Fatalf("unexpected presence: %+v", members)
	}
}

func TestPingAnswersPongWithSameTimestamp(t *testing.T) {
	d, _, sender, _ := newTestDispatcher()

	d.Dispatch(Envelope{Type: "ping", TS: 555})

	if len(sender.sent) != 1 {
		t.Fatalf("sent = %+v, want exactly one pong", sender.sent)
	}
	if sender.sent[0].Type != "pong" || sender.sent[0].TS != 555 {
		t.Fatalf("unexpected pong: %+v", sender.sent[0])
	}
}

func TestChatForInactiveRoomIsDropped(t *testing.T) {
	d, sink, _, _ := newTestDispatcher()
	d.Rooms.Activate("general")

	d.Dispatch(Envelope{Type: "message", Room: "dev", From: "bob", Text: "psst"})

	if len(sink.messages) != 0 {
		t.Fatalf("expected no render effect, got %+v", sink.messages)
	}
	if d.Presence.CurrentCount() != 0 {
		t.Fatalf("expected no state mutation")
	}
}

func TestChatAndActionRenderForActiveRoom(t *testing.T) {
	d, sink, _, _ := newTestDispatcher()
	d.Rooms.Activate("general")

	d.Dispatch(Envelope{Type: "message", Room: "general", From: "bob", Text: "hi", TS: 7})
	d.Dispatch(Envelope{Type: "action", Room: "general", From: "bob", Text: "waves"})

	if len(sink.messages) != 2 {
		t.Fatalf("messages = %+v", sink.messages)
	}
	if sink.messages[0].Kind != KindChat || sink.messages[0].From != "bob" || sink.messages[0].TS != 7 {
		t.Fatalf("unexpected chat message: %+v", sink.messages[0])
	}
	if sink.messages[1].Kind != KindAction || sink.messages[1].Text != "waves" {
		t.Fatalf("unexpected action message: %+v", sink.messages[1])
	}
}

func TestSystemAndErrorRenderAsNotices(t *testing.T) {
	d, sink, _, _ := newTestDispatcher()

	d.Dispatch(Envelope{Type: "system", Text: "server restarting"})
	d.Dispatch(Envelope{Type: "error", Message: "room is full"})

	if len(sink.messages) != 2 {
		t.Fatalf("messages = %+v", sink.messages)
	}
	if sink.messages[0].Kind != KindSystem || sink.messages[0].Text != "server restarting" {
		t.Fatalf("unexpected system notice: %+v", sink.messages[0])
	}
	if sink.messages[1].Kind != KindSystem || sink.messages[1].Text != "Error: room is full" {
		t.Fatalf("unexpected error notice: %+v", sink.messages[1])
	}
}

func TestUserJoinedUpdatesActiveRoomPresence(t *testing.T) {
	d, sink, _, _ := newTestDispatcher()
	d.Rooms.Activate("dev")

	d.Dispatch(Envelope{
		Type:  "user_joined",
		Room:  "dev",
		User:  "carl",
		Users: []Member{{Name: "bob"}, {Name: "carl"}},
	})

	if len(sink.messages) != 1 || sink.messages[0].Text != "carl joined" || sink.messages[0].Kind != KindSystem {
		t.Fatalf("unexpected notice: %+v", sink.messages)
	}
	if d.Presence.CurrentCount() != 2 {
		t.Fatalf("presence count = %d, want 2", d.Presence.CurrentCount())
	}

	d.Dispatch(Envelope{Type: "user_left", Room: "dev", User: "bob", Users: []Member{{Name: "carl"}}})

	if sink.messages[1].Text != "bob left" {
		t.Fatalf("unexpected notice: %+v", sink.messages[1])
	}
	if members := sink.lastPresence(); len(members) != 1 || members[0].Name != "carl" {
		t.Fatalf("unexpected presence: %+v", members)
	}
}

func TestUserJoinedInOtherRoomIsInert(t *testing.T) {
	d, sink, _, _ := newTestDispatcher()
	d.Rooms.Activate("general")
	d.Presence.Replace([]Member{{Name: "alice"}})

	d.Dispatch(Envelope{Type: "user_joined", Room: "dev", User: "carl", Users: []Member{{Name: "carl"}}})

	if len(sink.messages) != 0 {
		t.Fatalf("expected no notice, got %+v", sink.messages)
	}
	if d.Presence.CurrentCount() != 1 {
		t.Fatalf("presence must stay scoped to the active room")
	}
}

func TestRoomListReplacesWholesale(t *testing.T) {
	d, _, _, _ := newTestDispatcher()
	d.Rooms.Add("stale")

	d.Dispatch(Envelope{Type: "room_list", Rooms: []string{"general", "dev"}})
	first := d.Rooms.Known()
	d.Dispatch(Envelope{Type: "room_list", Rooms: []string{"general", "dev"}})
	second := d.Rooms.Known()

	if len(first) != 2 || first[0] != "dev" || first[1] != "general" {
		t.Fatalf("unexpected rooms: %v", first)
	}
	if len(second) != len(first) || second[0] != first[0] || second[1] != first[1] {
		t.Fatalf("room_list must be idempotent: %v vs %v", first, second)
	}
	if d.Rooms.Contains("stale") {
		t.Fatalf("stale room survived the replace")
	}
}

func TestLeftRemovesRoomMembership(t *testing.T) {
	d, _, _, _ := newTestDispatcher()
	d.Rooms.Activate("general")
	d.Rooms.Add("dev")

	d.Dispatch(Envelope{Type: "left", Room: "dev"})

	if d.Rooms.Contains("dev") {
		t.Fatalf("dev should have been removed")
	}
	if d.Rooms.Active() != "general" {
		t.Fatalf("active room must not change on left")
	}
}

func TestUserListScopedToActiveRoom(t *testing.T) {
	d, sink, _, _ := newTestDispatcher()
	d.Rooms.Activate("general")

	d.Dispatch(Envelope{Type: "user_list", Room: "dev", Users: []Member{{Name: "carl"}}})
	if d.Presence.CurrentCount() != 0 {
		t.Fatalf("user_list for another room must be inert")
	}

	d.Dispatch(Envelope{Type: "user_list", Room: "general", Users: []Member{{Name: "alice"}, {Name: "bob"}}})
	if d.Presence.CurrentCount() != 2 {
		t.Fatalf("presence count = %d, want 2", d.Presence.CurrentCount())
	}
	if members := sink.lastPresence(); len(members) != 2 || members[0].Name != "alice" {
		t.Fatalf("unexpected presence: %+v", members)
	}
}

func TestUnknownTypeIsIgnored(t *testing.T) {
	d, sink, sender, _ := newTestDispatcher()

	d.Dispatch(Envelope{Type: "telemetry", Text: "whatever"})

	if len(sink.messages) != 0 || len(sender.sent) != 0 {
		t.Fatalf("unknown type must have no effect")
	}
}

func TestResumedRejoinsActiveRoom(t *testing.T) {
	d, sink, sender, _ := newTestDispatcher()
	d.Rooms.Activate("dev")

	d.Dispatch(Envelope{Type: "resumed", SessionID: "abc", Name: "alice"})

	if !sink.chatShown || sink.identity != "alice" {
		t.Fatalf("expected chat view for alice")
	}
	if sink.clears != 0 {
		t.Fatalf("resumed must not reset the render buffer")
	}
	if len(sender.sent) != 1 || sender.sent[0].Type != "join" || sender.sent[0].Room != "dev" {
		t.Fatalf("expected a rejoin for dev, got %+v", sender.sent)
	}
}

func TestResumedWithoutActiveRoomSendsNothing(t *testing.T) {
	d, _, sender, _ := newTestDispatcher()

	d.Dispatch(Envelope{Type: "resumed", SessionID: "abc", Name: "alice"})

	if len(sender.sent) != 0 {
		t.Fatalf("no active room, nothing to rejoin: %+v", sender.sent)
	}
}
