package presence

import "time"

// RoomMembership is the durable (user, room, join/leave interval) record.
// Rows are append-only history: LeftAt is set on leave or forced disconnect,
// rows are never deleted.
// Invariant: at most one row per (UserID, RoomID) has LeftAt == nil.
type RoomMembership struct {
	ID       string         `db:"id"`
	RoomID   string         `db:"room_id"`
	UserID   string         `db:"user_id"`
	JoinedAt time.Time      `db:"joined_at"`
	LeftAt   *time.Time     `db:"left_at"`
	Role     *string        `db:"role"`
	Metadata map[string]any `db:"metadata"` // opaque, stored as JSON
}

// IsActive reports whether the membership has no recorded leave time.
func (m RoomMembership) IsActive() bool {
	return m.LeftAt == nil
}
