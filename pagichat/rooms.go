package pagichat

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

var roomNamePattern = regexp.MustCompile(`[^a-z0-9_-]+`)

// NormalizeRoomName lowercases the name and strips every character outside
// [a-z0-9_-]. The normalized form is what goes on the wire; the server is
// trusted to echo it back unchanged.
func NormalizeRoomName(name string) string {
	return roomNamePattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "")
}

// RoomState tracks the single active room and the set of rooms the session
// currently has membership in. A room becomes active only on a server joined
// confirmation; there is no optimistic switch.
type RoomState struct {
	mu     sync.Mutex
	active string
	known  map[string]struct{}
}

// NewRoomState returns an empty room state with no active room.
func NewRoomState() *RoomState {
	return &RoomState{known: make(map[string]struct{})}
}

// Active returns the active room name, or "" before the first join.
func (r *RoomState) Active() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Activate marks room as the active one and adds it to the known set.
// Switching away does not remove the previous room's membership.
func (r *RoomState) Activate(room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = room
	r.known[room] = struct{}{}
}

// Add records membership without changing the active room.
func (r *RoomState) Add(room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.known[room] = struct{}{}
}

// Remove drops membership. The active room stays as-is even if removed from
// the set; only a joined confirmation moves it.
func (r *RoomState) Remove(room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.known, room)
}

// ReplaceAll swaps the whole known set for the given names. Idempotent.
func (r *RoomState) ReplaceAll(rooms []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.known = make(map[string]struct{}, len(rooms))
	for _, room := range rooms {
		r.known[room] = struct{}{}
	}
}

// Contains reports membership in room.
func (r *RoomState) Contains(room string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.known[room]
	return ok
}

// Known returns the member rooms sorted by name.
func (r *RoomState) Known() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.known))
	for room := range r.known {
		names = append(names, room)
	}
	sort.Strings(names)
	return names
}
