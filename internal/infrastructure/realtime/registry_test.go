package realtime

import (
	"sort"
	"sync"
	"testing"
)

type recordingSender struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (s *recordingSender) Send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, payload)
	return nil
}

func TestRegistry(t *testing.T) {
	t.Run("attach and user lookup", func(t *testing.T) {
		r := NewRegistry()
		r.Attach("c1", "u1", "alice", &recordingSender{})

		userID, username, ok := r.UserOf("c1")
		if !ok {
			t.Fatal("expected connection to be attached")
		}
		if userID != "u1" || username != "alice" {
			t.Errorf("UserOf = (%q, %q), want (u1, alice)", userID, username)
		}

		if _, _, ok := r.UserOf("unknown"); ok {
			t.Error("expected unknown connection to be unattached")
		}
	})

	t.Run("join requires attachment", func(t *testing.T) {
		r := NewRegistry()
		if r.Join("ghost", "lobby") {
			t.Error("expected join for unattached connection to fail")
		}
	})

	t.Run("multiple sockets per user in the same room", func(t *testing.T) {
		r := NewRegistry()
		r.Attach("c1", "u1", "alice", &recordingSender{})
		r.Attach("c2", "u1", "alice", &recordingSender{})
		r.Join("c1", "lobby")
		r.Join("c2", "lobby")

		removed, remaining := r.Leave("c1", "lobby")
		if !removed {
			t.Fatal("expected c1 to have been in lobby")
		}
		if remaining != 1 {
			t.Errorf("remaining = %d, want 1 (c2 still in lobby)", remaining)
		}

		removed, remaining = r.Leave("c2", "lobby")
		if !removed || remaining != 0 {
			t.Errorf("Leave(c2) = (%v, %d), want (true, 0)", removed, remaining)
		}
	})

	t.Run("leave of a room never joined is a no-op", func(t *testing.T) {
		r := NewRegistry()
		r.Attach("c1", "u1", "alice", &recordingSender{})

		removed, _ := r.Leave("c1", "lobby")
		if removed {
			t.Error("expected leave of unjoined room to report removed=false")
		}
	})

	t.Run("rooms snapshot", func(t *testing.T) {
		r := NewRegistry()
		r.Attach("c1", "u1", "alice", &recordingSender{})
		r.Join("c1", "lobby")
		r.Join("c1", "audit-7")

		rooms := r.Rooms("c1")
		sort.Strings(rooms)
		if len(rooms) != 2 || rooms[0] != "audit-7" || rooms[1] != "lobby" {
			t.Errorf("Rooms = %v, want [audit-7 lobby]", rooms)
		}
	})

	t.Run("room senders with exclusion", func(t *testing.T) {
		r := NewRegistry()
		r.Attach("c1", "u1", "alice", &recordingSender{})
		r.Attach("c2", "u2", "bob", &recordingSender{})
		r.Join("c1", "lobby")
		r.Join("c2", "lobby")

		if got := len(r.RoomSenders("lobby", "")); got != 2 {
			t.Errorf("RoomSenders without exclusion = %d, want 2", got)
		}
		if got := len(r.RoomSenders("lobby", "u1")); got != 1 {
			t.Errorf("RoomSenders excluding u1 = %d, want 1", got)
		}
		if got := r.RoomSenders("empty-room", ""); got != nil {
			t.Errorf("RoomSenders for empty room = %v, want nil", got)
		}
	})

	t.Run("user senders span connections", func(t *testing.T) {
		r := NewRegistry()
		r.Attach("c1", "u1", "alice", &recordingSender{})
		r.Attach("c2", "u1", "alice", &recordingSender{})

		if got := len(r.UserSenders("u1")); got != 2 {
			t.Errorf("UserSenders = %d, want 2", got)
		}
	})

	t.Run("detach clears rooms and is idempotent", func(t *testing.T) {
		r := NewRegistry()
		r.Attach("c1", "u1", "alice", &recordingSender{})
		r.Join("c1", "lobby")

		r.Detach("c1")
		if got := r.Rooms("c1"); got != nil {
			t.Errorf("Rooms after detach = %v, want nil", got)
		}
		if got := len(r.RoomSenders("lobby", "")); got != 0 {
			t.Errorf("RoomSenders after detach = %d, want 0", got)
		}

		// second detach must be a no-op
		r.Detach("c1")
	})

	t.Run("reattach replaces entry in place", func(t *testing.T) {
		r := NewRegistry()
		r.Attach("c1", "u1", "alice", &recordingSender{})
		r.Join("c1", "lobby")
		r.Attach("c1", "u1", "alice", &recordingSender{})

		if got := r.Rooms("c1"); len(got) != 0 {
			t.Errorf("Rooms after reattach = %v, want empty", got)
		}
		if got := len(r.UserSenders("u1")); got != 1 {
			t.Errorf("UserSenders after reattach = %d, want 1", got)
		}
	})
}
