package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-roomcast/internal/pkg/presence/application/usecase"
	"go-roomcast/internal/pkg/presence/persistence/repository/adapter"
)

// GetUnreadNotificationsController serves the catch-up read used by
// reconnecting clients to reconcile missed live events.
type GetUnreadNotificationsController struct {
	UC *usecase.ListUnreadUseCase
}

func NewGetUnreadNotificationsController(pool *pgxpool.Pool) *GetUnreadNotificationsController {
	repo := adapter.NewPgNotificationRepository(pool)
	return &GetUnreadNotificationsController{UC: usecase.NewListUnreadUseCase(repo)}
}

func (h *GetUnreadNotificationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		records, err := h.UC.Execute(ctx, usecase.ListUnreadInput{UserID: userID})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrStorageUnavailable) {
				status = http.StatusServiceUnavailable
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		out := make([]gin.H, 0, len(records))
		for _, n := range records {
			out = append(out, gin.H{
				"id":                n.ID,
				"recipient_user_id": n.RecipientUserID,
				"title":             n.Title,
				"message":           n.Message,
				"kind":              n.Kind,
				"room_id":           n.RoomID,
				"metadata":          n.Metadata,
				"created_at":        n.CreatedAt,
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"notifications": out,
			"count":         len(out),
		})
	}
}
