package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"mobelhaus/internal/pkg/chat/application/usecase"
	repository "mobelhaus/internal/pkg/chat/persistence/repository/port"
)

// GetMessagesController serves the initial history page (one controller per
// endpoint). The store returns the page newest-first; clients receive it
// oldest-first, ready to render append-only.
type GetMessagesController struct {
	UC           *usecase.GetHistoryUseCase
	DefaultLimit int
}

func NewGetMessagesController(repo repository.MessageRepository, defaultLimit int) *GetMessagesController {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	return &GetMessagesController{
		UC:           usecase.NewGetHistoryUseCase(repo),
		DefaultLimit: defaultLimit,
	}
}

func (h *GetMessagesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := h.DefaultLimit
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msgs, err := h.UC.Execute(ctx, usecase.GetHistoryInput{Limit: limit})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		out := make([]gin.H, 0, len(msgs))
		for _, m := range msgs {
			tags := m.TaggedUsers
			if tags == nil {
				tags = []string{}
			}
			out = append(out, gin.H{
				"id":          m.ID,
				"senderId":    m.SenderID,
				"senderRole":  m.SenderRole,
				"senderName":  m.SenderName,
				"message":     m.Body,
				"taggedUsers": tags,
				"createdAt":   m.CreatedAt,
			})
		}

		c.JSON(http.StatusOK, out)
	}
}
