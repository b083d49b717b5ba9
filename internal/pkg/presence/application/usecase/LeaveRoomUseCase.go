package usecase

import (
	"context"
	"fmt"

	repository "go-roomcast/internal/pkg/presence/persistence/repository/port"
)

// LeaveRoomInput identifies the membership to close.
type LeaveRoomInput struct {
	UserID string
	RoomID string
}

// LeaveRoomUseCase sets leftAt on the user's active membership. Closing a
// membership that is not active is a no-op, so the operation is idempotent.
type LeaveRoomUseCase struct {
	Repo   repository.PresenceRepository
	Atomic Atomic
}

func NewLeaveRoomUseCase(repo repository.PresenceRepository, atomic Atomic) *LeaveRoomUseCase {
	if atomic == nil {
		atomic = Passthrough
	}
	return &LeaveRoomUseCase{Repo: repo, Atomic: atomic}
}

func (uc *LeaveRoomUseCase) Execute(ctx context.Context, in LeaveRoomInput) error {
	if in.UserID == "" || in.RoomID == "" {
		return fmt.Errorf("user_id and room_id are required")
	}

	return uc.Atomic(ctx, func(ctx context.Context) error {
		if err := uc.Repo.CloseMembership(ctx, in.UserID, in.RoomID); err != nil {
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		return nil
	})
}
