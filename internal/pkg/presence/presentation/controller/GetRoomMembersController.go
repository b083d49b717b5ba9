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

// GetRoomMembersController exposes the Presence Store's active-member
// snapshot for a room.
type GetRoomMembersController struct {
	UC *usecase.ListRoomMembersUseCase
}

func NewGetRoomMembersController(pool *pgxpool.Pool) *GetRoomMembersController {
	repo := adapter.NewPgPresenceRepository(pool)
	return &GetRoomMembersController{UC: usecase.NewListRoomMembersUseCase(repo)}
}

func (h *GetRoomMembersController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID := c.Param("roomId")
		if roomID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "roomId is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		members, err := h.UC.Execute(ctx, usecase.ListRoomMembersInput{RoomID: roomID})
		if err != nil {
			switch {
			case errors.Is(err, presence.ErrRoomNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			case errors.Is(err, usecase.ErrStorageUnavailable):
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"room_id": roomID,
			"members": members,
			"count":   len(members),
		})
	}
}
