package usecase

import (
	"context"
	"errors"
	"fmt"

	presence "go-roomcast/internal/pkg/presence/application/domain"
	repository "go-roomcast/internal/pkg/presence/persistence/repository/port"
)

// MarkAsReadInput identifies the notification to mark for its recipient.
type MarkAsReadInput struct {
	UserID         string
	NotificationID string
}

// MarkAsReadUseCase sets readAt on the recipient's record. Idempotent:
// marking an already-read notification succeeds without changing readAt.
type MarkAsReadUseCase struct {
	Ledger repository.NotificationRepository
}

func NewMarkAsReadUseCase(nr repository.NotificationRepository) *MarkAsReadUseCase {
	return &MarkAsReadUseCase{Ledger: nr}
}

func (uc *MarkAsReadUseCase) Execute(ctx context.Context, in MarkAsReadInput) (*presence.NotificationRecord, error) {
	if in.UserID == "" || in.NotificationID == "" {
		return nil, fmt.Errorf("user_id and notification_id are required")
	}

	record, err := uc.Ledger.MarkRead(ctx, in.UserID, in.NotificationID)
	if err != nil {
		if errors.Is(err, presence.ErrNotificationNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return record, nil
}
