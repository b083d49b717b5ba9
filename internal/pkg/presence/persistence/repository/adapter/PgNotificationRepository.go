package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-roomcast/internal/infrastructure/database"
	presence "go-roomcast/internal/pkg/presence/application/domain"
)

type PgNotificationRepository struct {
	pool *pgxpool.Pool
}

func NewPgNotificationRepository(pool *pgxpool.Pool) *PgNotificationRepository {
	return &PgNotificationRepository{pool: pool}
}

func (r *PgNotificationRepository) Append(ctx context.Context, n presence.NotificationRecord) (*presence.NotificationRecord, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgNotificationRepository: nil pool")
	}
	err := database.QuerierFrom(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO presence.notification (
			recipient_user_id, title, message, kind, room_id, metadata, created_at
		) VALUES ($1::uuid, $2, $3, $4, $5::uuid, $6, $7)
		RETURNING id::text, created_at
	`, n.RecipientUserID, n.Title, n.Message, n.Kind, n.RoomID, n.Metadata, n.CreatedAt).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *PgNotificationRepository) MarkRead(ctx context.Context, recipientUserID, id string) (*presence.NotificationRecord, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgNotificationRepository: nil pool")
	}
	// COALESCE keeps the original read_at on repeat calls: readAt is set once
	// and never changed afterwards.
	var n presence.NotificationRecord
	err := database.QuerierFrom(ctx, r.pool).QueryRow(ctx, `
		UPDATE presence.notification
		SET read_at = COALESCE(read_at, now())
		WHERE id = $2::uuid AND recipient_user_id = $1::uuid
		RETURNING id::text, recipient_user_id::text, title, message, kind, room_id::text, metadata, created_at, read_at
	`, recipientUserID, id).Scan(
		&n.ID, &n.RecipientUserID, &n.Title, &n.Message, &n.Kind, &n.RoomID, &n.Metadata, &n.CreatedAt, &n.ReadAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, presence.ErrNotificationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *PgNotificationRepository) ListUnread(ctx context.Context, userID string) ([]presence.NotificationRecord, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgNotificationRepository: nil pool")
	}
	rows, err := database.QuerierFrom(ctx, r.pool).Query(ctx, `
		SELECT id::text, recipient_user_id::text, title, message, kind, room_id::text, metadata, created_at, read_at
		FROM presence.notification
		WHERE recipient_user_id = $1::uuid AND read_at IS NULL
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []presence.NotificationRecord
	for rows.Next() {
		var n presence.NotificationRecord
		if err := rows.Scan(&n.ID, &n.RecipientUserID, &n.Title, &n.Message, &n.Kind, &n.RoomID, &n.Metadata, &n.CreatedAt, &n.ReadAt); err != nil {
			return nil, err
		}
		records = append(records, n)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}
