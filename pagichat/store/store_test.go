package store

import "testing"

func TestMemoryAbsentKey(t *testing.T) {
	m := NewMemory()
	got, err := m.Get("session_id")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "" {
		t.Fatalf("absent key = %q, want empty", got)
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	m := NewMemory()
	if err := m.Set("name", "alice"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := m.Get("name")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "alice" {
		t.Fatalf("got %q, want alice", got)
	}
}

func TestPebbleSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	p, err := OpenPebble(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got, err := p.Get("session_id"); err != nil || got != "" {
		t.Fatalf("absent key = %q, %v", got, err)
	}
	if err := p.Set("session_id", "abc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	p, err = OpenPebble(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer p.Close()
	got, err := p.Get("session_id")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "abc" {
		t.Fatalf("got %q, want abc", got)
	}
}
