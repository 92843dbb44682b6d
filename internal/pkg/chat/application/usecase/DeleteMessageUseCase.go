package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "mobelhaus/internal/pkg/chat/application/domain"
	repository "mobelhaus/internal/pkg/chat/persistence/repository/port"
)

// ErrMessageNotFound is surfaced when the target message no longer exists.
var ErrMessageNotFound = fmt.Errorf("chat use case message not found")

// DeleteMessageInput identifies the message and the acting principal.
type DeleteMessageInput struct {
	MessageID int64
	ActorRole chat.SenderRole
}

// DeleteMessageUseCase removes a message on behalf of a privileged actor.
// Deletion is out-of-band: nothing is pushed over the live transport, so
// connected clients keep showing the message until they re-fetch history.
type DeleteMessageUseCase struct {
	Repo repository.MessageRepository
}

func NewDeleteMessageUseCase(repo repository.MessageRepository) *DeleteMessageUseCase {
	return &DeleteMessageUseCase{Repo: repo}
}

func (uc *DeleteMessageUseCase) Execute(ctx context.Context, in DeleteMessageInput) error {
	if !in.ActorRole.CanModerate() {
		return ErrForbidden
	}
	if err := uc.Repo.DeleteMessage(ctx, in.MessageID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
