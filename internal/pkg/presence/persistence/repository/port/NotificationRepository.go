package repository

import (
	"context"

	presence "go-roomcast/internal/pkg/presence/application/domain"
)

// NotificationRepository is the durable Notification Ledger used for
// read/unread tracking and catch-up delivery after reconnect.
type NotificationRepository interface {
	// Append durably creates a record and returns it with its generated id.
	Append(ctx context.Context, n presence.NotificationRecord) (*presence.NotificationRecord, error)

	// MarkRead sets readAt on the recipient's record. Idempotent: an already
	// read record keeps its original readAt. A record that does not exist or
	// belongs to another user yields presence.ErrNotificationNotFound.
	MarkRead(ctx context.Context, recipientUserID, id string) (*presence.NotificationRecord, error)

	// ListUnread returns the user's unread records ordered by createdAt
	// ascending. Re-querying returns a superset reflecting new arrivals.
	ListUnread(ctx context.Context, userID string) ([]presence.NotificationRecord, error)
}
