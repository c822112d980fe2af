package pagichat

import "github.com/rs/zerolog"

// Dispatcher routes one decoded inbound envelope to exactly one handler.
// Handlers mutate RoomState/PresenceTracker and push render commands to the
// sink; no handler can affect another type's rendering. Unknown types are
// ignored without error.
//
// Dispatch is called from a single goroutine (the client's read loop), so
// envelope processing is strictly in arrival order.
type Dispatcher struct {
	Rooms     *RoomState
	Presence  *PresenceTracker
	Heartbeat *HeartbeatResponder
	Sender    Sender
	Sink      RenderSink
	Store     Store
	Logger    zerolog.Logger

	// OnSession is invoked when the server assigns or restores a session,
	// so the owner can use it for the next reconnect.
	OnSession func(Identity)
}

// Dispatch routes env by its type tag.
func (d *Dispatcher) Dispatch(env Envelope) {
	switch env.Type {
	case inboundConnected:
		d.handleConnected(env)
	case inboundResumed:
		d.handleResumed(env)
	case inboundJoined:
		d.handleJoined(env)
	case inboundLeft:
		d.Rooms.Remove(env.Room)
		d.Sink.SetRoomList(d.Rooms.Known())
	case inboundMessage, inboundAction:
		d.handleChat(env)
	case inboundSystem:
		d.Sink.AppendMessage(Message{Kind: KindSystem, Text: env.Text})
	case inboundUserJoined, inboundUserLeft:
		d.handlePresenceChange(env)
	case inboundRoomList:
		d.Rooms.ReplaceAll(env.Rooms)
		d.Sink.SetRoomList(d.Rooms.Known())
	case inboundUserList:
		if env.Room == d.Rooms.Active() {
			d.Presence.Replace(env.Users)
			d.Sink.SetPresence(d.Presence.CurrentMembers())
		}
	case inboundError:
		d.Sink.AppendMessage(Message{Kind: KindSystem, Text: "Error: " + env.Message})
	case inboundPing:
		d.Heartbeat.Pong(env.TS)
	default:
		d.Logger.Debug().Str("type", env.Type).Msg("ignoring unknown envelope type")
	}
}

// handleConnected completes the first handshake: the server assigned a fresh
// session id, which must be persisted for resumption, and reported the rooms
// the session is a member of.
func (d *Dispatcher) handleConnected(env Envelope) {
	id := Identity{Name: env.Name, SessionID: env.SessionID}
	if err := SaveIdentity(d.Store, id); err != nil {
		d.Logger.Warn().Err(err).Msg("failed to persist session")
	}
	if d.OnSession != nil {
		d.OnSession(id)
	}
	d.Rooms.ReplaceAll(env.Rooms)
	d.Sink.SetRoomList(d.Rooms.Known())
	d.Sink.SetIdentity(env.Name)
	d.Sink.ShowChatView()
	d.Logger.Info().Str("session", env.SessionID).Str("name", env.Name).Msg("session established")
}

// handleResumed restores a prior session. The server does not replay room
// state after a resume, so if a room was active before the disconnect the
// client re-requests it instead of rendering against stale membership.
func (d *Dispatcher) handleResumed(env Envelope) {
	id := Identity{Name: env.Name, SessionID: env.SessionID}
	if err := SaveIdentity(d.Store, id); err != nil {
		d.Logger.Warn().Err(err).Msg("failed to persist session")
	}
	if d.OnSession != nil {
		d.OnSession(id)
	}
	d.Sink.SetIdentity(env.Name)
	d.Sink.ShowChatView()
	if room := d.Rooms.Active(); room != "" {
		d.Logger.Debug().Str("room", room).Msg("rejoining active room after resume")
		d.Sender.Send(Envelope{Type: outboundJoin, Room: room})
	}
	d.Logger.Info().Str("session", env.SessionID).Msg("session resumed")
}

// handleJoined confirms a room switch: reset the render buffer, replay the
// server-given history in order, and replace presence wholesale.
func (d *Dispatcher) handleJoined(env Envelope) {
	d.Rooms.Activate(env.Room)
	d.Sink.SetActiveRoom(env.Room)
	d.Sink.SetRoomList(d.Rooms.Known())
	d.Sink.ClearMessages()
	for _, msg := range env.History {
		if msg.Kind == "" {
			msg.Kind = KindChat
		}
		msg.Room = env.Room
		d.Sink.AppendMessage(msg)
	}
	d.Presence.Replace(env.Users)
	d.Sink.SetPresence(d.Presence.CurrentMembers())
}

// handleChat renders a chat or action message, but only for the active room.
// Messages for other rooms are dropped, not buffered.
func (d *Dispatcher) handleChat(env Envelope) {
	if env.Room != d.Rooms.Active() {
		d.Logger.Debug().Str("room", env.Room).Msg("dropping message for inactive room")
		return
	}
	d.Sink.AppendMessage(Message{
		Kind: env.Type,
		From: env.From,
		Text: env.Text,
		TS:   env.TS,
		Room: env.Room,
	})
}

// handlePresenceChange renders a synthesized notice for a member joining or
// leaving the active room and replaces the presence list. Changes in other
// rooms are inert.
func (d *Dispatcher) handlePresenceChange(env Envelope) {
	if env.Room != d.Rooms.Active() {
		return
	}
	verb := "joined"
	if env.Type == inboundUserLeft {
		verb = "left"
	}
	d.Sink.AppendMessage(Message{Kind: KindSystem, Text: env.User + " " + verb, Room: env.Room})
	d.Presence.Replace(env.Users)
	d.Sink.SetPresence(d.Presence.CurrentMembers())
}
