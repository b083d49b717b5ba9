package presence

import (
	"errors"
	"strings"
	"time"
)

// NotificationKind classifies a notification for client-side rendering.
type NotificationKind string

const (
	NotificationKindInfo    NotificationKind = "info"
	NotificationKindWarning NotificationKind = "warning"
	NotificationKindAlert   NotificationKind = "alert"
	NotificationKindSystem  NotificationKind = "system"
)

// Valid reports whether the kind is one of the enumerated values.
func (k NotificationKind) Valid() bool {
	switch k {
	case NotificationKindInfo, NotificationKindWarning, NotificationKindAlert, NotificationKindSystem:
		return true
	}
	return false
}

// NotificationRecord is the durable per-recipient notification row.
// ReadAt, once set, is never cleared. Rows are never deleted by this core;
// retention is an external policy.
type NotificationRecord struct {
	ID              string           `db:"id"`
	RecipientUserID string           `db:"recipient_user_id"`
	Title           string           `db:"title"`
	Message         string           `db:"message"`
	Kind            NotificationKind `db:"kind"`
	RoomID          *string          `db:"room_id"`
	Metadata        map[string]any   `db:"metadata"`
	CreatedAt       time.Time        `db:"created_at"`
	ReadAt          *time.Time       `db:"read_at"`
}

// IsRead reports whether the recipient has marked the notification read.
func (n NotificationRecord) IsRead() bool {
	return n.ReadAt != nil
}

// NewNotificationRecord validates and normalizes a record before persistence.
func NewNotificationRecord(n NotificationRecord) (*NotificationRecord, error) {
	if n.RecipientUserID == "" {
		return nil, errors.New("recipient_user_id is required")
	}

	n.Title = strings.TrimSpace(n.Title)
	n.Message = strings.TrimSpace(n.Message)
	if n.Title == "" {
		return nil, errors.New("notification title is required")
	}
	if n.Message == "" {
		return nil, errors.New("notification message is required")
	}

	if n.Kind == "" {
		n.Kind = NotificationKindInfo
	}
	if !n.Kind.Valid() {
		return nil, errors.New("unknown notification kind")
	}

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	return &n, nil
}
