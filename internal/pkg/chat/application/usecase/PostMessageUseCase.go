package usecase

import (
	"context"
	"fmt"

	"mobelhaus/mention"

	chat "mobelhaus/internal/pkg/chat/application/domain"
	repository "mobelhaus/internal/pkg/chat/persistence/repository/port"
)

// PostMessageInput carries the data needed to persist one chatroom message.
// SenderID and SenderRole come from the already-authenticated connection;
// no further signature check happens here.
type PostMessageInput struct {
	SenderID   string
	SenderRole chat.SenderRole
	Content    string
}

// PostMessageUseCase validates an inbound message, re-derives its mention
// tags from the raw content, and persists it. The store assigns id and
// timestamp; the returned message is the persisted form ready to broadcast.
type PostMessageUseCase struct {
	Repo repository.MessageRepository
}

func NewPostMessageUseCase(repo repository.MessageRepository) *PostMessageUseCase {
	return &PostMessageUseCase{Repo: repo}
}

func (uc *PostMessageUseCase) Execute(ctx context.Context, in PostMessageInput) (*chat.Message, error) {
	msg, err := chat.NewMessage(in.SenderID, in.SenderRole, in.Content)
	if err != nil {
		return nil, err
	}

	// Tags are never trusted from client input; they are always exactly the
	// @token matches in the content at persistence time.
	msg.TaggedUsers = mention.Extract(msg.Body)

	saved, err := uc.Repo.CreateMessage(ctx, *msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return saved, nil
}
