package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	cacheport "mobelhaus/internal/infrastructure/cache/port"
	qport "mobelhaus/internal/infrastructure/queue/port"
	"mobelhaus/internal/infrastructure/realtime"
	"mobelhaus/internal/pkg/chat/persistence/repository/adapter"
	"mobelhaus/internal/pkg/chat/presentation/controller"
)

// RegisterRoutes registers chat-related HTTP endpoints under the given router
// group. It constructs per-endpoint controllers and binds them directly to
// routes. devIdentity allows the query-parameter identity fallback and must
// only be set in development.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, cache cacheport.Cache, queue qport.Client, registry *realtime.Registry, logger zerolog.Logger, historyLimit int, devIdentity bool) {
	repo := adapter.NewPgMessageRepository(pool)

	getMsgCtl := controller.NewGetMessagesController(repo, historyLimit)
	deleteCtl := controller.NewDeleteMessageController(repo, devIdentity)
	socketCtl := controller.NewChatSocketController(repo, registry, queue, logger, devIdentity)
	presenceCtl := controller.NewPresenceController(registry)
	mentionsCtl := controller.NewMentionsController(cache)

	// GET /api/v1/messages -> initial history page, oldest-first
	g.GET("/messages", getMsgCtl.Handle())

	// DELETE /api/v1/messages/:id -> privileged moderation, not broadcast
	g.DELETE("/messages/:id", deleteCtl.Handle())

	// GET /api/v1/chat/ws -> websocket endpoint for the chatroom relay
	g.GET("/chat/ws", socketCtl.Handle())

	// GET /api/v1/chat/presence -> currently open connection count
	g.GET("/chat/presence", presenceCtl.Handle())

	// GET /api/v1/mentions/:userId/unread -> unread mention counter
	g.GET("/mentions/:userId/unread", mentionsCtl.Handle())
}
