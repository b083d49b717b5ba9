package usecase

import (
	"context"
	"fmt"

	presence "go-roomcast/internal/pkg/presence/application/domain"
	repository "go-roomcast/internal/pkg/presence/persistence/repository/port"
)

// SendNotificationInput targets either a single user or a room. Exactly one
// of TargetUserID / TargetRoomID must be set.
type SendNotificationInput struct {
	SenderID     string
	TargetUserID string
	TargetRoomID string
	Title        string
	Message      string
	Kind         presence.NotificationKind
	Metadata     map[string]any
}

// SendNotificationUseCase resolves the recipient set and appends one ledger
// record per recipient. Room targeting is a snapshot of active memberships at
// resolution time: users joining afterwards do not retroactively receive it.
// Records are durably created before the caller publishes any event, so a
// client catching up via the ledger never sees an event without a backing
// record.
type SendNotificationUseCase struct {
	Presence repository.PresenceRepository
	Ledger   repository.NotificationRepository
}

func NewSendNotificationUseCase(pr repository.PresenceRepository, nr repository.NotificationRepository) *SendNotificationUseCase {
	return &SendNotificationUseCase{Presence: pr, Ledger: nr}
}

func (uc *SendNotificationUseCase) Execute(ctx context.Context, in SendNotificationInput) ([]presence.NotificationRecord, error) {
	if in.SenderID == "" {
		return nil, fmt.Errorf("sender_id is required")
	}
	if (in.TargetUserID == "") == (in.TargetRoomID == "") {
		return nil, fmt.Errorf("exactly one of user_id or room_id must be targeted")
	}

	recipients, err := uc.resolveRecipients(ctx, in)
	if err != nil {
		return nil, err
	}

	var roomID *string
	if in.TargetRoomID != "" {
		roomID = &in.TargetRoomID
	}

	records := make([]presence.NotificationRecord, 0, len(recipients))
	for _, userID := range recipients {
		record, err := presence.NewNotificationRecord(presence.NotificationRecord{
			RecipientUserID: userID,
			Title:           in.Title,
			Message:         in.Message,
			Kind:            in.Kind,
			RoomID:          roomID,
			Metadata:        in.Metadata,
		})
		if err != nil {
			return nil, err
		}
		appended, err := uc.Ledger.Append(ctx, *record)
		if err != nil {
			// Records already appended stay: catch-up via the unread list
			// will still deliver them (at-least-once).
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		records = append(records, *appended)
	}
	return records, nil
}

func (uc *SendNotificationUseCase) resolveRecipients(ctx context.Context, in SendNotificationInput) ([]string, error) {
	if in.TargetUserID != "" {
		return []string{in.TargetUserID}, nil
	}
	members, err := uc.Presence.ListActiveMembers(ctx, in.TargetRoomID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return members, nil
}
