package pagichat

import "sync"

// PresenceTracker holds the member list of the active room, in server order.
// Every update is a wholesale replace; the list is never patched in place.
type PresenceTracker struct {
	mu      sync.Mutex
	members []Member
}

// NewPresenceTracker returns an empty tracker.
func NewPresenceTracker() *PresenceTracker {
	return &PresenceTracker{}
}

// Replace swaps the member list for the given one.
func (p *PresenceTracker) Replace(members []Member) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.members = make([]Member, len(members))
	copy(p.members, members)
}

// CurrentCount returns the number of members.
func (p *PresenceTracker) CurrentCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.members)
}

// CurrentMembers returns a copy of the member list in server order.
func (p *PresenceTracker) CurrentMembers() []Member {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Member, len(p.members))
	copy(out, p.members)
	return out
}
