package gateway

import "time"

// One bridge channel per logical event class. Payloads are flat JSON
// mappings; decoders ignore unknown fields, so new fields can be added
// without breaking older instances.
const (
	ChannelUserJoined   = "roomcast:user-joined"
	ChannelUserLeft     = "roomcast:user-left"
	ChannelNotification = "roomcast:notification"
)

// userEvent is broadcast on the user-joined and user-left channels.
type userEvent struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// notificationEvent mirrors the ledger record it was created from. The
// record is durably appended before this event is published, so a client
// catching up via the ledger never sees an event without a backing record.
type notificationEvent struct {
	ID              string         `json:"id"`
	RecipientUserID string         `json:"recipientUserId"`
	Title           string         `json:"title"`
	Message         string         `json:"message"`
	Kind            string         `json:"kind"`
	RoomID          *string        `json:"roomId,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// Outbound socket frames wrap the event payload with a type discriminator.
type userFrame struct {
	Type string `json:"type"`
	userEvent
}

type notificationFrame struct {
	Type string `json:"type"`
	notificationEvent
}
