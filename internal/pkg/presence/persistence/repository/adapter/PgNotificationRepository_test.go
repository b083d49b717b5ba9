package adapter

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-roomcast/internal/infrastructure/database"
	presence "go-roomcast/internal/pkg/presence/application/domain"
)

// testPool connects to the database named by TEST_DB_URL and applies the
// schema migration. Tests are skipped when the variable is unset so the suite
// stays runnable without infrastructure.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DB_URL")
	if dsn == "" {
		t.Skip("TEST_DB_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	t.Cleanup(pool.Close)

	ddl, err := os.ReadFile("../../../../../../migrations/001_presence.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if _, err := pool.Exec(ctx, string(ddl)); err != nil {
		t.Fatalf("apply migration: %v", err)
	}
	return pool
}

func TestPgNotificationRepositoryMarkRead(t *testing.T) {
	ctx := context.Background()
	repo := NewPgNotificationRepository(testPool(t))

	recipient := uuid.NewString()
	record, err := repo.Append(ctx, presence.NotificationRecord{
		RecipientUserID: recipient,
		Title:           "report ready",
		Message:         "the export finished",
		Kind:            presence.NotificationKindInfo,
		CreatedAt:       time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	t.Run("marking twice keeps the first readAt", func(t *testing.T) {
		first, err := repo.MarkRead(ctx, recipient, record.ID)
		if err != nil {
			t.Fatalf("MarkRead failed: %v", err)
		}
		if first.ReadAt == nil {
			t.Fatal("expected readAt to be set")
		}

		second, err := repo.MarkRead(ctx, recipient, record.ID)
		if err != nil {
			t.Fatalf("second MarkRead failed: %v", err)
		}
		if !second.ReadAt.Equal(*first.ReadAt) {
			t.Errorf("readAt changed from %v to %v", first.ReadAt, second.ReadAt)
		}
	})

	t.Run("foreign recipient is not found", func(t *testing.T) {
		if _, err := repo.MarkRead(ctx, uuid.NewString(), record.ID); !errors.Is(err, presence.ErrNotificationNotFound) {
			t.Errorf("MarkRead for wrong user = %v, want ErrNotificationNotFound", err)
		}
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		if _, err := repo.MarkRead(ctx, recipient, uuid.NewString()); !errors.Is(err, presence.ErrNotificationNotFound) {
			t.Errorf("MarkRead unknown id = %v, want ErrNotificationNotFound", err)
		}
	})
}

func TestPgNotificationRepositoryListUnread(t *testing.T) {
	ctx := context.Background()
	repo := NewPgNotificationRepository(testPool(t))

	recipient := uuid.NewString()
	base := time.Now().UTC().Truncate(time.Microsecond)

	// Appended out of chronological order on purpose; ListUnread must sort by
	// createdAt, not by insertion order.
	var ids []string
	for _, offset := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		record, err := repo.Append(ctx, presence.NotificationRecord{
			RecipientUserID: recipient,
			Title:           "t",
			Message:         "m",
			Kind:            presence.NotificationKindInfo,
			CreatedAt:       base.Add(offset),
		})
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		ids = append(ids, record.ID)
	}

	records, err := repo.ListUnread(ctx, recipient)
	if err != nil {
		t.Fatalf("ListUnread failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].CreatedAt.Before(records[i-1].CreatedAt) {
			t.Fatalf("records not in createdAt order: %v after %v", records[i].CreatedAt, records[i-1].CreatedAt)
		}
	}
	if records[0].ID != ids[1] || records[1].ID != ids[2] || records[2].ID != ids[0] {
		t.Errorf("order = %v %v %v, want oldest first", records[0].ID, records[1].ID, records[2].ID)
	}

	if _, err := repo.MarkRead(ctx, recipient, ids[1]); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	records, err = repo.ListUnread(ctx, recipient)
	if err != nil {
		t.Fatalf("ListUnread after MarkRead failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("records after MarkRead = %d, want 2", len(records))
	}
}
