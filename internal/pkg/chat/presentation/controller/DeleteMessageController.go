package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"mobelhaus/internal/metrics"
	"mobelhaus/internal/pkg/chat/application/usecase"
	repository "mobelhaus/internal/pkg/chat/persistence/repository/port"
)

// DeleteMessageController removes a message on behalf of an admin or
// superadmin. Deletion is deliberately not pushed over the chat transport:
// connected clients keep the message in view until they re-fetch history.
type DeleteMessageController struct {
	UC          *usecase.DeleteMessageUseCase
	devIdentity bool
}

func NewDeleteMessageController(repo repository.MessageRepository, devIdentity bool) *DeleteMessageController {
	return &DeleteMessageController{
		UC:          usecase.NewDeleteMessageUseCase(repo),
		devIdentity: devIdentity,
	}
}

func (h *DeleteMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message id must be numeric"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		err = h.UC.Execute(ctx, usecase.DeleteMessageInput{
			MessageID: id,
			ActorRole: principalRole(c, h.devIdentity),
		})
		switch {
		case err == nil:
			metrics.MessagesDeleted.Inc()
			c.JSON(http.StatusOK, gin.H{"message": "Message deleted successfully"})
		case errors.Is(err, usecase.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		case errors.Is(err, usecase.ErrMessageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete message"})
		}
	}
}
