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

// CreateRoomController handles the room creation endpoint (one controller
// per endpoint).
type CreateRoomController struct {
	UC *usecase.CreateRoomUseCase
}

func NewCreateRoomController(pool *pgxpool.Pool) *CreateRoomController {
	repo := adapter.NewPgPresenceRepository(pool)
	return &CreateRoomController{UC: usecase.NewCreateRoomUseCase(repo)}
}

type createRoomRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *CreateRoomController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createRoomRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		room, err := h.UC.Execute(ctx, usecase.CreateRoomInput{Name: req.Name})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrStorageUnavailable) {
				status = http.StatusServiceUnavailable
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":         room.ID,
			"name":       room.Name,
			"created_at": room.CreatedAt,
		})
	}
}
