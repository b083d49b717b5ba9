package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-roomcast/internal/infrastructure/database"
	presence "go-roomcast/internal/pkg/presence/application/domain"
)

type PgPresenceRepository struct {
	pool *pgxpool.Pool
}

func NewPgPresenceRepository(pool *pgxpool.Pool) *PgPresenceRepository {
	return &PgPresenceRepository{pool: pool}
}

func (r *PgPresenceRepository) CreateRoom(ctx context.Context, name string) (*presence.Room, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgPresenceRepository: nil pool")
	}
	room := presence.Room{Name: name, CreatedAt: time.Now().UTC()}
	err := database.QuerierFrom(ctx, r.pool).QueryRow(ctx,
		"INSERT INTO presence.room (name, created_at) VALUES ($1, $2) RETURNING id::text",
		room.Name, room.CreatedAt,
	).Scan(&room.ID)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *PgPresenceRepository) GetRoom(ctx context.Context, id string) (*presence.Room, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgPresenceRepository: nil pool")
	}
	var room presence.Room
	err := database.QuerierFrom(ctx, r.pool).QueryRow(ctx,
		"SELECT id::text, name, created_at FROM presence.room WHERE id = $1::uuid",
		id,
	).Scan(&room.ID, &room.Name, &room.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, presence.ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *PgPresenceRepository) OpenMembership(ctx context.Context, m presence.RoomMembership) (*presence.RoomMembership, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgPresenceRepository: nil pool")
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	// The partial unique index on (user_id, room_id) WHERE left_at IS NULL
	// makes this a reuse-or-create in one statement: on conflict the no-op
	// update lets RETURNING hand back the existing active row.
	err := database.QuerierFrom(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO presence.room_membership (room_id, user_id, joined_at, role, metadata)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5)
		ON CONFLICT (user_id, room_id) WHERE left_at IS NULL
		DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id::text, joined_at, role, metadata
	`, m.RoomID, m.UserID, m.JoinedAt, m.Role, m.Metadata).Scan(&m.ID, &m.JoinedAt, &m.Role, &m.Metadata)
	if err != nil {
		return nil, err
	}
	m.LeftAt = nil
	return &m, nil
}

func (r *PgPresenceRepository) CloseMembership(ctx context.Context, userID, roomID string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgPresenceRepository: nil pool")
	}
	// No active row means nothing to close; the leave path treats that as a
	// no-op, not an error.
	_, err := database.QuerierFrom(ctx, r.pool).Exec(ctx, `
		UPDATE presence.room_membership
		SET left_at = $3
		WHERE user_id = $1::uuid AND room_id = $2::uuid AND left_at IS NULL
	`, userID, roomID, time.Now().UTC())
	return err
}

func (r *PgPresenceRepository) FindActiveMembership(ctx context.Context, userID, roomID string) (*presence.RoomMembership, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgPresenceRepository: nil pool")
	}
	var m presence.RoomMembership
	err := database.QuerierFrom(ctx, r.pool).QueryRow(ctx, `
		SELECT id::text, room_id::text, user_id::text, joined_at, left_at, role, metadata
		FROM presence.room_membership
		WHERE user_id = $1::uuid AND room_id = $2::uuid AND left_at IS NULL
	`, userID, roomID).Scan(&m.ID, &m.RoomID, &m.UserID, &m.JoinedAt, &m.LeftAt, &m.Role, &m.Metadata)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgPresenceRepository) ListActiveMembers(ctx context.Context, roomID string) ([]string, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgPresenceRepository: nil pool")
	}
	rows, err := database.QuerierFrom(ctx, r.pool).Query(ctx, `
		SELECT DISTINCT user_id::text
		FROM presence.room_membership
		WHERE room_id = $1::uuid AND left_at IS NULL
	`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		userIDs = append(userIDs, id)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return userIDs, nil
}
