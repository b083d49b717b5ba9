package usecase

import (
	"context"
	"errors"
	"fmt"

	presence "go-roomcast/internal/pkg/presence/application/domain"
	repository "go-roomcast/internal/pkg/presence/persistence/repository/port"
)

// ListRoomMembersInput wraps the room whose active members to fetch.
type ListRoomMembersInput struct {
	RoomID string
}

// ListRoomMembersUseCase returns the userIds with an active membership in
// the room, straight from the Presence Store. The result is independent of
// any process's Connection Registry, which may lag during reconnect storms.
type ListRoomMembersUseCase struct {
	Repo repository.PresenceRepository
}

func NewListRoomMembersUseCase(repo repository.PresenceRepository) *ListRoomMembersUseCase {
	return &ListRoomMembersUseCase{Repo: repo}
}

func (uc *ListRoomMembersUseCase) Execute(ctx context.Context, in ListRoomMembersInput) ([]string, error) {
	if in.RoomID == "" {
		return nil, fmt.Errorf("room_id is required")
	}

	if _, err := uc.Repo.GetRoom(ctx, in.RoomID); err != nil {
		if errors.Is(err, presence.ErrRoomNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	members, err := uc.Repo.ListActiveMembers(ctx, in.RoomID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return members, nil
}
