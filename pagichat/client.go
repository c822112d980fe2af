package pagichat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/pagihq/pagichat-go/pagichat/internal"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"
)

// Client owns the transport and the Disconnected -> Connecting -> Connected
// state machine. It is the sole sender of outbound envelopes; inbound ones
// flow through its Dispatcher. Every transition into Disconnected schedules a
// reconnect after a fixed delay, with no backoff and no distinction between a
// clean close and a transport error.
type Client struct {
	cfg    Config
	logger zerolog.Logger
	store  Store
	sink   RenderSink
	sched  Scheduler

	rooms      *RoomState
	presence   *PresenceTracker
	dispatcher *Dispatcher

	mu              sync.Mutex
	state           ConnectionState
	identity        Identity
	conn            *internal.Conn
	writeCh         chan Envelope
	cancelLoops     context.CancelFunc
	cancelReconnect func()
	attempts        int
	closed          bool
	onState         func(StateEvent)
}

// NewClient constructs a client with the provided config.
// Use DefaultConfig() as a starting point and modify as needed.
func NewClient(cfg Config) *Client {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 2 * time.Second
	}
	c := &Client{
		cfg:      cfg,
		logger:   zerolog.Nop(),
		sink:     NopSink{},
		sched:    timerScheduler{},
		rooms:    NewRoomState(),
		presence: NewPresenceTracker(),
		state:    StateDisconnected,
	}
	c.dispatcher = &Dispatcher{
		Rooms:     c.rooms,
		Presence:  c.presence,
		Heartbeat: NewHeartbeatResponder(c),
		Sender:    c,
		Sink:      c.sink,
		Logger:    c.logger,
		OnSession: c.adoptIdentity,
	}
	return c
}

// SetLogger overrides the no-op default logger. Call before Connect.
func (c *Client) SetLogger(l zerolog.Logger) {
	c.logger = l
	c.dispatcher.Logger = l
}

// SetSink installs the render sink. Call before Connect.
func (c *Client) SetSink(s RenderSink) {
	if s == nil {
		return
	}
	c.sink = s
	c.dispatcher.Sink = s
}

// SetStore installs the persistent identity store. Call before Connect.
func (c *Client) SetStore(s Store) {
	c.store = s
	c.dispatcher.Store = s
}

// SetScheduler overrides the timer-backed scheduler, used by tests.
func (c *Client) SetScheduler(s Scheduler) {
	if s == nil {
		return
	}
	c.sched = s
}

// OnStateChanged registers a callback for connection state transitions.
func (c *Client) OnStateChanged(fn func(StateEvent)) {
	c.mu.Lock()
	c.onState = fn
	c.mu.Unlock()
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Identity returns the identity used for the next dial.
func (c *Client) Identity() Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

// Rooms exposes the room state shared with the dispatcher.
func (c *Client) Rooms() *RoomState { return c.rooms }

// Presence exposes the presence tracker shared with the dispatcher.
func (c *Client) Presence() *PresenceTracker { return c.presence }

// Connect loads the persisted identity and dials the server. On dial failure
// the error is returned and a reconnect is still scheduled: the retry policy
// is unconditional from the first attempt on.
func (c *Client) Connect(ctx context.Context) error {
	if c.cfg.URL == "" {
		return NewError(ErrorInvalidConfig, "empty server URL")
	}
	id, err := LoadIdentity(c.store)
	if err != nil {
		return WrapError(ErrorUnknown, "load persisted identity", err)
	}
	if c.cfg.Name != "" {
		id.Name = c.cfg.Name
	}
	if id.Name == "" {
		return NewError(ErrorInvalidConfig, "display name required")
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return NewError(ErrorNotConnected, "client closed")
	}
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return NewError(ErrorConnection, "already connected")
	}
	c.identity = id
	c.mu.Unlock()

	return c.dial(ctx)
}

// JoinRoom normalizes name and requests membership. The room becomes active
// only when the server confirms with a joined envelope; until then rendering
// stays on the previous room.
func (c *Client) JoinRoom(name string) {
	room := NormalizeRoomName(name)
	if room == "" {
		return
	}
	c.logger.Debug().Str("room", room).Msg("join requested")
	c.Send(Envelope{Type: outboundJoin, Room: room})
}

// SendMessage publishes text to the active room. A no-op before the first
// confirmed join.
func (c *Client) SendMessage(text string) {
	room := c.rooms.Active()
	if room == "" || text == "" {
		return
	}
	c.Send(Envelope{Type: outboundMessage, Room: room, Text: text})
}

// Send transmits env if currently Connected; in any other state the envelope
// is silently discarded. There is no queue across disconnects and no delivery
// confirmation.
func (c *Client) Send(env Envelope) {
	c.mu.Lock()
	ch := c.writeCh
	open := c.state == StateConnected
	c.mu.Unlock()
	if !open || ch == nil {
		c.logger.Debug().Str("type", env.Type).Msg("dropping envelope while not connected")
		return
	}
	select {
	case ch <- env:
	default:
		c.logger.Warn().Str("type", env.Type).Msg("write buffer full, dropping envelope")
	}
}

// Close stops the reconnect loop and closes the connection. The client cannot
// be reused afterwards.
func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	if c.cancelReconnect != nil {
		c.cancelReconnect()
	}
	if c.cancelLoops != nil {
		c.cancelLoops()
	}
	conn := c.conn
	c.conn = nil
	c.state = StateDisconnected
	c.mu.Unlock()

	c.sink.SetStatus(StateDisconnected)
	if conn != nil {
		return conn.Close(websocket.StatusNormalClosure, "client close")
	}
	return nil
}

func (c *Client) dial(ctx context.Context) error {
	if c.isClosed() {
		return NewError(ErrorNotConnected, "client closed")
	}
	c.setState(StateConnecting, nil)

	endpoint, err := c.dialURL()
	if err != nil {
		c.setState(StateDisconnected, err)
		return WrapError(ErrorInvalidConfig, "bad server URL", err)
	}

	dialCtx := ctx
	if c.cfg.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, c.cfg.HandshakeTimeout)
		defer cancel()
	}

	ws, _, err := websocket.Dial(dialCtx, endpoint, nil)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", c.cfg.URL).Msg("dial failed")
		c.onDisconnect(err)
		return WrapError(ErrorConnection, "dial failed", err)
	}

	conn := internal.NewConn(ws, c.cfg.WriteTimeout)
	runCtx, cancel := context.WithCancel(context.Background())
	writeCh := make(chan Envelope, 16)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		cancel()
		_ = conn.Close(websocket.StatusNormalClosure, "client close")
		return NewError(ErrorNotConnected, "client closed")
	}
	c.conn = conn
	c.writeCh = writeCh
	c.cancelLoops = cancel
	c.attempts = 0
	c.mu.Unlock()

	c.setState(StateConnected, nil)

	go c.readLoop(runCtx, conn)
	go c.writeLoop(runCtx, conn, writeCh)
	return nil
}

// dialURL encodes the identity as query parameters: name always, session only
// once the server has issued one.
func (c *Client) dialURL() (string, error) {
	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	id := c.identity
	c.mu.Unlock()

	q := u.Query()
	q.Set("name", id.Name)
	if id.SessionID != "" {
		q.Set("session", id.SessionID)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// readLoop is the single consumer of inbound frames, so envelopes are
// dispatched strictly in arrival order. A frame that fails to decode is
// dropped and logged; the connection stays up.
func (c *Client) readLoop(ctx context.Context, conn *internal.Conn) {
	for {
		data, err := conn.Read(ctx)
		if err != nil {
			if c.isClosed() || ctx.Err() != nil {
				return
			}
			if !isExpectedDisconnect(err) {
				c.logger.Warn().Err(err).Msg("connection lost")
			}
			c.onDisconnect(err)
			return
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.logger.Warn().Err(err).Msg("dropping malformed envelope")
			continue
		}
		c.dispatcher.Dispatch(env)
	}
}

// writeLoop drains the send buffer. On a write error it closes the socket and
// lets the read loop drive the disconnect, so one close schedules exactly one
// reconnect.
func (c *Client) writeLoop(ctx context.Context, conn *internal.Conn, ch <-chan Envelope) {
	for {
		select {
		case env := <-ch:
			if err := conn.Write(ctx, env); err != nil {
				c.logger.Warn().Err(err).Msg("write failed")
				_ = conn.Close(websocket.StatusInternalError, "write error")
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// onDisconnect records the transition into Disconnected and schedules the
// next dial after the fixed delay. Clean closes and transport errors take the
// same path.
func (c *Client) onDisconnect(cause error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.cancelLoops != nil {
		c.cancelLoops()
		c.cancelLoops = nil
	}
	c.conn = nil
	c.writeCh = nil
	c.attempts++
	attempt := c.attempts
	c.mu.Unlock()

	c.setState(StateDisconnected, cause)

	if c.cfg.MaxReconnects > 0 && attempt > c.cfg.MaxReconnects {
		c.logger.Error().Int("attempts", attempt-1).Msg("reconnect limit reached, giving up")
		return
	}

	c.logger.Info().Dur("delay", c.cfg.ReconnectDelay).Int("attempt", attempt).Msg("scheduling reconnect")
	cancel := c.sched.After(c.cfg.ReconnectDelay, func() {
		_ = c.dial(context.Background())
	})

	c.mu.Lock()
	c.cancelReconnect = cancel
	c.mu.Unlock()
}

func (c *Client) setState(next ConnectionState, cause error) {
	c.mu.Lock()
	prev := c.state
	c.state = next
	hook := c.onState
	c.mu.Unlock()

	c.sink.SetStatus(next)
	if hook != nil {
		hook(StateEvent{OldState: prev, NewState: next, Error: cause})
	}
}

func (c *Client) adoptIdentity(id Identity) {
	c.mu.Lock()
	c.identity = id
	c.mu.Unlock()
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func isExpectedDisconnect(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	default:
		return false
	}
}
