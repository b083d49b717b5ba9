package usecase

import (
	"context"
	"fmt"
	"strings"

	presence "go-roomcast/internal/pkg/presence/application/domain"
	repository "go-roomcast/internal/pkg/presence/persistence/repository/port"
)

// CreateRoomInput carries the data to open a new room.
type CreateRoomInput struct {
	Name string
}

// CreateRoomUseCase registers a room so connections can join it.
type CreateRoomUseCase struct {
	Repo repository.PresenceRepository
}

func NewCreateRoomUseCase(repo repository.PresenceRepository) *CreateRoomUseCase {
	return &CreateRoomUseCase{Repo: repo}
}

func (uc *CreateRoomUseCase) Execute(ctx context.Context, in CreateRoomInput) (*presence.Room, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("room name is required")
	}

	room, err := uc.Repo.CreateRoom(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return room, nil
}
