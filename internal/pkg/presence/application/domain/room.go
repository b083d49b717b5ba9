package presence

import "time"

// Room is a logical channel that connections join to receive and send
// notification events. Identity is stable; Name is a human-facing label,
// unique per creation scope, not system-wide.
type Room struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}
