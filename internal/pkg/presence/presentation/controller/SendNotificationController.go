package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	queueport "go-roomcast/internal/infrastructure/queue/port"
	"go-roomcast/internal/pkg/presence/application/task"
)

// SendNotificationController handles the HTTP send-notification endpoint by
// enqueueing a background task; fan-out happens in the worker through the
// gateway, identical to socket-initiated sends.
type SendNotificationController struct {
	Q queueport.Client
}

func NewSendNotificationController(client queueport.Client) *SendNotificationController {
	return &SendNotificationController{Q: client}
}

// sendNotificationRequest is the DTO for the HTTP request body. Exactly one
// of user_id / room_id must be set.
type sendNotificationRequest struct {
	SenderID string         `json:"sender_id" binding:"required"`
	UserID   string         `json:"user_id"`
	RoomID   string         `json:"room_id"`
	Title    string         `json:"title" binding:"required"`
	Message  string         `json:"message" binding:"required"`
	Kind     string         `json:"kind"`
	Metadata map[string]any `json:"metadata"`
}

// Handle returns a gin handler that enqueues a background task to fan out a
// notification.
func (h *SendNotificationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sendNotificationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if (req.UserID == "") == (req.RoomID == "") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "exactly one of user_id or room_id must be set"})
			return
		}

		payload := task.SendNotificationTaskPayload{
			SenderID: req.SenderID,
			UserID:   req.UserID,
			RoomID:   req.RoomID,
			Title:    req.Title,
			Message:  req.Message,
			Kind:     req.Kind,
			Metadata: req.Metadata,
		}
		b, err := json.Marshal(payload)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode task payload"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		opts := queueport.EnqueueOption{Queue: "notify", MaxRetry: 20}
		id, err := h.Q.Enqueue(ctx, queueport.Task{Type: task.SendNotificationTaskType, Payload: b}, opts)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to enqueue notification"})
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"status":    "queued",
			"task_id":   id,
			"sender_id": req.SenderID,
		})
	}
}
