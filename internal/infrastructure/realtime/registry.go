package realtime

import "sync"

// Registry is the per-process, in-memory map from connection identity to
// {user, set of joined rooms}. It is purely local state, owned exclusively by
// this process, discarded on disconnect and rebuilt by reconnecting clients.
// It is never reconstructed from durable presence, which reflects logical
// membership rather than live socket state.
//
// Forward and reverse indexes are kept so room fan-out, per-user delivery and
// last-local-connection detection are all map lookups. The lock only guards
// map mutation; callers must never hold it across storage I/O.
type Registry struct {
	mu        sync.RWMutex
	entries   map[string]*entry              // connID -> entry
	userConns map[string]map[string]struct{} // userID -> set of connIDs
	roomConns map[string]map[string]struct{} // roomID -> set of connIDs
}

type entry struct {
	userID   string
	username string
	sender   Sender
	rooms    map[string]struct{}
}

// NewRegistry constructs an initialized Registry.
func NewRegistry() *Registry {
	return &Registry{
		entries:   make(map[string]*entry),
		userConns: make(map[string]map[string]struct{}),
		roomConns: make(map[string]map[string]struct{}),
	}
}

// Attach registers a connection for the given user. Unlike a session map,
// multiple live connections per user are expected; an existing connID is
// replaced in place.
func (r *Registry) Attach(connID, userID, username string, s Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.entries[connID]; ok {
		r.detachLocked(connID, old)
	}
	r.entries[connID] = &entry{userID: userID, username: username, sender: s, rooms: make(map[string]struct{})}
	conns := r.userConns[userID]
	if conns == nil {
		conns = make(map[string]struct{})
		r.userConns[userID] = conns
	}
	conns[connID] = struct{}{}
}

// Detach discards the entry for connID. Safe to call for an unknown or
// already-detached connection.
func (r *Registry) Detach(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[connID]; ok {
		r.detachLocked(connID, e)
	}
}

// Join adds roomID to the connection's room set. It reports false when the
// connection is not attached.
func (r *Registry) Join(connID, roomID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[connID]
	if !ok {
		return false
	}
	e.rooms[roomID] = struct{}{}

	conns := r.roomConns[roomID]
	if conns == nil {
		conns = make(map[string]struct{})
		r.roomConns[roomID] = conns
	}
	conns[connID] = struct{}{}
	return true
}

// Leave removes roomID from the connection's room set. removed reports
// whether the connection actually listed the room; remaining is the number of
// other local connections of the same user still in that room, which is what
// last-local-leaver detection keys on.
func (r *Registry) Leave(connID, roomID string) (removed bool, remaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaveLocked(connID, roomID)
}

// UserOf returns the user and username a connection is attached for.
func (r *Registry) UserOf(connID string) (userID, username string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[connID]
	if !ok {
		return "", "", false
	}
	return e.userID, e.username, true
}

// Rooms returns a snapshot of the rooms the connection has joined.
func (r *Registry) Rooms(connID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[connID]
	if !ok {
		return nil
	}
	rooms := make([]string, 0, len(e.rooms))
	for roomID := range e.rooms {
		rooms = append(rooms, roomID)
	}
	return rooms
}

// RoomSenders returns the senders of every local connection in roomID,
// excluding connections of excludeUserID when non-empty.
func (r *Registry) RoomSenders(roomID string, excludeUserID string) []Sender {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conns := r.roomConns[roomID]
	if len(conns) == 0 {
		return nil
	}
	senders := make([]Sender, 0, len(conns))
	for connID := range conns {
		e := r.entries[connID]
		if e == nil {
			continue
		}
		if excludeUserID != "" && e.userID == excludeUserID {
			continue
		}
		senders = append(senders, e.sender)
	}
	return senders
}

// UserSenders returns the senders of every local connection for userID.
func (r *Registry) UserSenders(userID string) []Sender {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conns := r.userConns[userID]
	if len(conns) == 0 {
		return nil
	}
	senders := make([]Sender, 0, len(conns))
	for connID := range conns {
		if e := r.entries[connID]; e != nil {
			senders = append(senders, e.sender)
		}
	}
	return senders
}

func (r *Registry) leaveLocked(connID, roomID string) (removed bool, remaining int) {
	e, ok := r.entries[connID]
	if !ok {
		return false, 0
	}
	if _, ok := e.rooms[roomID]; !ok {
		return false, r.userCountInRoomLocked(e.userID, roomID, connID)
	}
	delete(e.rooms, roomID)

	if conns := r.roomConns[roomID]; conns != nil {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(r.roomConns, roomID)
		}
	}
	return true, r.userCountInRoomLocked(e.userID, roomID, connID)
}

// userCountInRoomLocked counts connections of userID still in roomID, not
// counting exceptConnID.
func (r *Registry) userCountInRoomLocked(userID, roomID, exceptConnID string) int {
	n := 0
	for connID := range r.roomConns[roomID] {
		if connID == exceptConnID {
			continue
		}
		if e := r.entries[connID]; e != nil && e.userID == userID {
			n++
		}
	}
	return n
}

func (r *Registry) detachLocked(connID string, e *entry) {
	for roomID := range e.rooms {
		if conns := r.roomConns[roomID]; conns != nil {
			delete(conns, connID)
			if len(conns) == 0 {
				delete(r.roomConns, roomID)
			}
		}
	}
	delete(r.entries, connID)
	if conns := r.userConns[e.userID]; conns != nil {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(r.userConns, e.userID)
		}
	}
}
