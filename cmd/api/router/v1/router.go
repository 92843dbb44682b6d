package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	cacheport "mobelhaus/internal/infrastructure/cache/port"
	qport "mobelhaus/internal/infrastructure/queue/port"
	"mobelhaus/internal/infrastructure/realtime"
	httpHandler "mobelhaus/internal/pkg/chat/presentation/http"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1
func RegisterRoutes(r *gin.Engine, pool *pgxpool.Pool, cache cacheport.Cache, queue qport.Client, registry *realtime.Registry, logger zerolog.Logger, historyLimit int, devIdentity bool) {
	v1 := r.Group("/api/v1")
	httpHandler.RegisterRoutes(v1, pool, cache, queue, registry, logger, historyLimit, devIdentity)
}
