package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	qport "go-roomcast/internal/infrastructure/queue/port"
	"go-roomcast/internal/infrastructure/realtime"
	"go-roomcast/internal/pkg/presence/application/gateway"
	"go-roomcast/internal/pkg/presence/presentation/controller"
)

// RegisterRoutes registers presence-related HTTP endpoints under the given
// router group. It constructs per-endpoint controllers and binds them
// directly to routes.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, client qport.Client, registry *realtime.Registry, gw *gateway.Gateway) {
	createRoomCtl := controller.NewCreateRoomController(pool)
	roomMembersCtl := controller.NewGetRoomMembersController(pool)
	sendCtl := controller.NewSendNotificationController(client)
	unreadCtl := controller.NewGetUnreadNotificationsController(pool)
	markReadCtl := controller.NewMarkAsReadController(pool)
	socketCtl := controller.NewRoomSocketController(registry, gw)

	// POST /api/v1/rooms -> create a room
	g.POST("/rooms", createRoomCtl.Handle())

	// GET /api/v1/rooms/:roomId/members -> active-member snapshot
	g.GET("/rooms/:roomId/members", roomMembersCtl.Handle())

	// POST /api/v1/notifications -> enqueue a notification fan-out
	g.POST("/notifications", sendCtl.Handle())

	// GET /api/v1/notifications/unread -> catch-up list for a user
	g.GET("/notifications/unread", unreadCtl.Handle())

	// POST /api/v1/notifications/:notificationId/read -> mark as read
	g.POST("/notifications/:notificationId/read", markReadCtl.Handle())

	// GET /api/v1/rooms/ws -> websocket endpoint for realtime traffic
	g.GET("/rooms/ws", socketCtl.Handle())
}
