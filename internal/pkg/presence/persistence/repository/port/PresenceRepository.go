package repository

import (
	"context"

	presence "go-roomcast/internal/pkg/presence/application/domain"
)

// PresenceRepository is the durable Presence Store: rooms plus append-only
// membership intervals. All operations are atomic at the single-row level;
// the single-active-membership invariant is enforced per (userId, roomId)
// pair, so no cross-row transaction is required.
type PresenceRepository interface {
	CreateRoom(ctx context.Context, name string) (*presence.Room, error)

	// GetRoom resolves a room id. Unknown ids yield presence.ErrRoomNotFound.
	GetRoom(ctx context.Context, id string) (*presence.Room, error)

	// OpenMembership records a join. If an active membership already exists
	// for (userId, roomId) it is returned unchanged, so joins are idempotent
	// and never produce a duplicate active row.
	OpenMembership(ctx context.Context, m presence.RoomMembership) (*presence.RoomMembership, error)

	// CloseMembership sets leftAt on the active row for (userId, roomId).
	// Closing when no active row exists is a no-op.
	CloseMembership(ctx context.Context, userID, roomID string) error

	// FindActiveMembership returns the active row for (userId, roomId), or
	// nil when there is none.
	FindActiveMembership(ctx context.Context, userID, roomID string) (*presence.RoomMembership, error)

	// ListActiveMembers returns the set of userIds with an active membership
	// in the room.
	ListActiveMembers(ctx context.Context, roomID string) ([]string, error)
}
