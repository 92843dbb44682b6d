package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mobelhaus/internal/infrastructure/realtime"
)

// PresenceController reports how many chatroom connections are currently
// open. The chatroom UI shows this as the online count.
type PresenceController struct {
	registry *realtime.Registry
}

func NewPresenceController(registry *realtime.Registry) *PresenceController {
	return &PresenceController{registry: registry}
}

func (h *PresenceController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"online": h.registry.Count()})
	}
}
