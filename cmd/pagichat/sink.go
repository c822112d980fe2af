package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/pagihq/pagichat-go/pagichat"
)

// terminalSink renders the chat as plain lines on a writer. It is the CLI's
// implementation of pagichat.RenderSink; calls arrive from the client's read
// goroutine and the stats poller, hence the mutex.
type terminalSink struct {
	mu   sync.Mutex
	w    io.Writer
	name string
	room string
}

func newTerminalSink(w io.Writer) *terminalSink {
	return &terminalSink{w: w}
}

func (s *terminalSink) ShowChatView() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, "* type a message, or /join <room>, /rooms, /who, /quit")
}

func (s *terminalSink) SetIdentity(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
	fmt.Fprintf(s.w, "* signed in as %s\n", name)
}

func (s *terminalSink) SetStatus(state pagichat.ConnectionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "* connection %s\n", state)
}

func (s *terminalSink) SetActiveRoom(room string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.room = room
	fmt.Fprintf(s.w, "* now talking in #%s\n", room)
}

func (s *terminalSink) AppendMessage(msg pagichat.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch msg.Kind {
	case pagichat.KindSystem:
		fmt.Fprintf(s.w, "* %s\n", msg.Text)
	case pagichat.KindAction:
		fmt.Fprintf(s.w, "%s* %s %s\n", timestamp(msg.TS), msg.From, msg.Text)
	default:
		author := msg.From
		if author == s.name {
			author += " (you)"
		}
		fmt.Fprintf(s.w, "%s%s: %s\n", timestamp(msg.TS), author, msg.Text)
	}
}

func (s *terminalSink) ClearMessages() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, strings.Repeat("-", 40))
}

func (s *terminalSink) SetRoomList(names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(s.w, "* rooms: #%s\n", strings.Join(names, " #"))
}

func (s *terminalSink) SetPresence(members []pagichat.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}
	fmt.Fprintf(s.w, "* here now: %s\n", strings.Join(names, ", "))
}

func (s *terminalSink) SetStats(usersOnline, roomsCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "* server: %d users online across %d rooms\n", usersOnline, roomsCount)
}

// timestamp formats a unix-seconds wire timestamp, or "" when absent.
func timestamp(ts int64) string {
	if ts == 0 {
		return ""
	}
	return time.Unix(ts, 0).Format("[15:04:05] ")
}
