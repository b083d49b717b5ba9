package presence

import "errors"

// ErrRoomNotFound is returned when a referenced roomId does not resolve to a
// known Room.
var ErrRoomNotFound = errors.New("room not found")

// ErrNotificationNotFound is returned when a notification does not exist or
// does not belong to the requesting user.
var ErrNotificationNotFound = errors.New("notification not found")
