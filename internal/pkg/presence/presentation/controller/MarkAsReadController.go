package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	presence "go-roomcast/internal/pkg/presence/application/domain"
	"go-roomcast/internal/pkg/presence/application/usecase"
	"go-roomcast/internal/pkg/presence/persistence/repository/adapter"
)

// MarkAsReadController handles the mark-as-read endpoint (one controller per
// endpoint).
type MarkAsReadController struct {
	UC *usecase.MarkAsReadUseCase
}

func NewMarkAsReadController(pool *pgxpool.Pool) *MarkAsReadController {
	repo := adapter.NewPgNotificationRepository(pool)
	return &MarkAsReadController{UC: usecase.NewMarkAsReadUseCase(repo)}
}

type markAsReadRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

func (h *MarkAsReadController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		notificationID := c.Param("notificationId")
		if notificationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "notificationId is required"})
			return
		}

		var req markAsReadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		record, err := h.UC.Execute(ctx, usecase.MarkAsReadInput{UserID: req.UserID, NotificationID: notificationID})
		if err != nil {
			switch {
			case errors.Is(err, presence.ErrNotificationNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			case errors.Is(err, usecase.ErrStorageUnavailable):
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":      record.ID,
			"read_at": record.ReadAt,
		})
	}
}
