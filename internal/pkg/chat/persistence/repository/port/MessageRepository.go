package repository

import (
	"context"
	"errors"

	chat "mobelhaus/internal/pkg/chat/application/domain"
)

// ErrNotFound is returned by DeleteMessage when no row matches the id.
var ErrNotFound = errors.New("message repository: message not found")

// MessageRepository defines persistence operations for the chatroom log.
//
// CreateMessage lets the store assign the id and timestamp and returns the
// persisted row. GetAllMessages returns the newest `limit` rows in
// reverse-chronological order with sender identity joined; callers that want
// the page oldest-first reverse it themselves.
type MessageRepository interface {
	CreateMessage(ctx context.Context, m chat.Message) (*chat.Message, error)
	GetAllMessages(ctx context.Context, limit int) ([]chat.Message, error)
	DeleteMessage(ctx context.Context, id int64) error
}
