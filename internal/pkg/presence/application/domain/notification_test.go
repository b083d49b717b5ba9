package presence

import (
	"testing"
	"time"
)

func TestNewNotificationRecord(t *testing.T) {
	base := NotificationRecord{
		RecipientUserID: "u1",
		Title:           "title",
		Message:         "message",
	}

	t.Run("defaults kind and createdAt", func(t *testing.T) {
		n, err := NewNotificationRecord(base)
		if err != nil {
			t.Fatalf("NewNotificationRecord failed: %v", err)
		}
		if n.Kind != NotificationKindInfo {
			t.Errorf("kind = %q, want info", n.Kind)
		}
		if n.CreatedAt.IsZero() {
			t.Error("expected createdAt to be stamped")
		}
	})

	t.Run("keeps an explicit createdAt", func(t *testing.T) {
		in := base
		in.CreatedAt = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		n, err := NewNotificationRecord(in)
		if err != nil {
			t.Fatalf("NewNotificationRecord failed: %v", err)
		}
		if !n.CreatedAt.Equal(in.CreatedAt) {
			t.Errorf("createdAt = %v, want %v", n.CreatedAt, in.CreatedAt)
		}
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		for name, mutate := range map[string]func(n *NotificationRecord){
			"recipient": func(n *NotificationRecord) { n.RecipientUserID = "" },
			"title":     func(n *NotificationRecord) { n.Title = "   " },
			"message":   func(n *NotificationRecord) { n.Message = "" },
		} {
			in := base
			mutate(&in)
			if _, err := NewNotificationRecord(in); err == nil {
				t.Errorf("expected error for missing %s", name)
			}
		}
	})

	t.Run("rejects unknown kinds", func(t *testing.T) {
		in := base
		in.Kind = "loud"
		if _, err := NewNotificationRecord(in); err == nil {
			t.Error("expected error for unknown kind")
		}
	})
}

func TestMembershipIsActive(t *testing.T) {
	m := RoomMembership{UserID: "u1", RoomID: "r1", JoinedAt: time.Now()}
	if !m.IsActive() {
		t.Error("membership without leftAt should be active")
	}
	now := time.Now()
	m.LeftAt = &now
	if m.IsActive() {
		t.Error("membership with leftAt should not be active")
	}
}
