package usecase

import (
	"context"
	"fmt"

	chat "mobelhaus/internal/pkg/chat/application/domain"
	repository "mobelhaus/internal/pkg/chat/persistence/repository/port"
)

// GetHistoryInput bounds the initial history page. Limit <= 0 falls back to
// the repository default.
type GetHistoryInput struct {
	Limit int
}

// GetHistoryUseCase fetches the newest page of chatroom messages and returns
// it oldest-first, the order the client renders. The store serves the page
// newest-first; the reversal happens here so every caller sees one order.
type GetHistoryUseCase struct {
	Repo repository.MessageRepository
}

func NewGetHistoryUseCase(repo repository.MessageRepository) *GetHistoryUseCase {
	return &GetHistoryUseCase{Repo: repo}
}

func (uc *GetHistoryUseCase) Execute(ctx context.Context, in GetHistoryInput) ([]chat.Message, error) {
	msgs, err := uc.Repo.GetAllMessages(ctx, in.Limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
