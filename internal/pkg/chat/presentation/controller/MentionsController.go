package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	cacheport "mobelhaus/internal/infrastructure/cache/port"
	"mobelhaus/internal/pkg/chat/application/task"
)

// MentionsController serves a user's unread-mention counter, maintained by
// the background mention recorder. Passing clear=true resets the counter
// after reading it.
type MentionsController struct {
	cache cacheport.Cache
}

func NewMentionsController(cache cacheport.Cache) *MentionsController {
	return &MentionsController{cache: cache}
}

func (h *MentionsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.Param("userId")
		if username == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		key := task.UnreadMentionsKey(username)

		// clear=true must read and reset in one step: a mention recorded
		// between a separate read and delete would be lost.
		var (
			raw string
			err error
		)
		if c.Query("clear") == "true" {
			raw, err = h.cache.GetDel(ctx, key)
		} else {
			raw, err = h.cache.Get(ctx, key)
		}

		count := int64(0)
		switch {
		case errors.Is(err, cacheport.ErrMiss):
			// no mentions recorded yet
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch mentions"})
			return
		default:
			count, _ = strconv.ParseInt(raw, 10, 64)
		}

		c.JSON(http.StatusOK, gin.H{"userId": username, "unread": count})
	}
}
