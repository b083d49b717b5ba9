package usecase

import (
	"context"
	"fmt"

	presence "go-roomcast/internal/pkg/presence/application/domain"
	repository "go-roomcast/internal/pkg/presence/persistence/repository/port"
)

// ListUnreadInput wraps the user whose unread notifications to fetch.
type ListUnreadInput struct {
	UserID string
}

// ListUnreadUseCase returns the user's unread notifications ordered by
// createdAt ascending, used by reconnecting clients to reconcile live events
// missed while offline.
type ListUnreadUseCase struct {
	Ledger repository.NotificationRepository
}

func NewListUnreadUseCase(nr repository.NotificationRepository) *ListUnreadUseCase {
	return &ListUnreadUseCase{Ledger: nr}
}

func (uc *ListUnreadUseCase) Execute(ctx context.Context, in ListUnreadInput) ([]presence.NotificationRecord, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	records, err := uc.Ledger.ListUnread(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return records, nil
}
