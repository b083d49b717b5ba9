package task

import (
	"context"
	"encoding/json"
	"time"

	qport "go-roomcast/internal/infrastructure/queue/port"
	presence "go-roomcast/internal/pkg/presence/application/domain"
	"go-roomcast/internal/pkg/presence/application/gateway"
	"go-roomcast/internal/pkg/presence/application/usecase"
)

// SendNotificationTaskType is the queue task name for fanning out a
// notification within the presence domain.
const SendNotificationTaskType = "notify:send"

// SendNotificationTaskPayload is the JSON payload transported via the queue.
// Kept decoupled from domain types to avoid coupling to their tags. Exactly
// one of UserID / RoomID should be set.
type SendNotificationTaskPayload struct {
	SenderID string         `json:"senderId"`
	UserID   string         `json:"userId,omitempty"`
	RoomID   string         `json:"roomId,omitempty"`
	Title    string         `json:"title"`
	Message  string         `json:"message"`
	Kind     string         `json:"kind"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// RegisterSendNotificationTask binds the task handler to the provided server.
// The handler runs the gateway send path, so queued notifications get the
// same append-before-publish guarantees as socket-initiated ones.
func RegisterSendNotificationTask(srv qport.Server, gw *gateway.Gateway) {
	srv.Register(SendNotificationTaskType, func(ctx context.Context, t qport.Task) error {
		var p SendNotificationTaskPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: retrying cannot help
			return err
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		_, err := gw.SendNotification(ctx, usecase.SendNotificationInput{
			SenderID:     p.SenderID,
			TargetUserID: p.UserID,
			TargetRoomID: p.RoomID,
			Title:        p.Title,
			Message:      p.Message,
			Kind:         presence.NotificationKind(p.Kind),
			Metadata:     p.Metadata,
		})
		return err
	})
}
