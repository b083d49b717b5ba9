package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	cacheport "go-roomcast/internal/infrastructure/cache/port"
	presence "go-roomcast/internal/pkg/presence/application/domain"
	repository "go-roomcast/internal/pkg/presence/persistence/repository/port"
)

const roomCacheTTL = 5 * time.Minute

// JoinRoomInput carries a request to open (or reuse) the durable membership
// for (user, room).
type JoinRoomInput struct {
	UserID   string
	RoomID   string
	Role     *string
	Metadata map[string]any
}

// JoinRoomUseCase resolves the room, then opens the membership inside the
// atomic unit. Joins are idempotent: an existing active membership is reused,
// never duplicated.
type JoinRoomUseCase struct {
	Repo   repository.PresenceRepository
	Cache  cacheport.Cache // optional; room rows are immutable so cached existence never goes stale
	Atomic Atomic
}

func NewJoinRoomUseCase(repo repository.PresenceRepository, cache cacheport.Cache, atomic Atomic) *JoinRoomUseCase {
	if atomic == nil {
		atomic = Passthrough
	}
	return &JoinRoomUseCase{Repo: repo, Cache: cache, Atomic: atomic}
}

func (uc *JoinRoomUseCase) Execute(ctx context.Context, in JoinRoomInput) (*presence.RoomMembership, error) {
	if in.UserID == "" || in.RoomID == "" {
		return nil, fmt.Errorf("user_id and room_id are required")
	}

	if err := uc.resolveRoom(ctx, in.RoomID); err != nil {
		return nil, err
	}

	var membership *presence.RoomMembership
	err := uc.Atomic(ctx, func(ctx context.Context) error {
		m, err := uc.Repo.OpenMembership(ctx, presence.RoomMembership{
			RoomID:   in.RoomID,
			UserID:   in.UserID,
			Role:     in.Role,
			Metadata: in.Metadata,
		})
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		membership = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

func (uc *JoinRoomUseCase) resolveRoom(ctx context.Context, roomID string) error {
	key := "room:" + roomID
	if uc.Cache != nil {
		if _, err := uc.Cache.Get(ctx, key); err == nil {
			return nil
		}
		// Misses and cache transport errors both fall through to the store.
	}

	if _, err := uc.Repo.GetRoom(ctx, roomID); err != nil {
		if errors.Is(err, presence.ErrRoomNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if uc.Cache != nil {
		_ = uc.Cache.Set(ctx, key, "1", roomCacheTTL)
	}
	return nil
}
