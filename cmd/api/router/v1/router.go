package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	qport "go-roomcast/internal/infrastructure/queue/port"
	"go-roomcast/internal/infrastructure/realtime"
	"go-roomcast/internal/pkg/presence/application/gateway"
	httpHandler "go-roomcast/internal/pkg/presence/presentation/http"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1
func RegisterRoutes(r *gin.Engine, pool *pgxpool.Pool, client qport.Client, registry *realtime.Registry, gw *gateway.Gateway) {
	v1 := r.Group("/api/v1")
	httpHandler.RegisterRoutes(v1, pool, client, registry, gw)
}
