package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chat "mobelhaus/internal/pkg/chat/application/domain"
	repository "mobelhaus/internal/pkg/chat/persistence/repository/port"
)

// fakeRepo is an in-memory MessageRepository for use case tests.
type fakeRepo struct {
	messages  []chat.Message
	nextID    int64
	createErr error
	listErr   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{nextID: 1}
}

func (f *fakeRepo) CreateMessage(_ context.Context, m chat.Message) (*chat.Message, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	m.ID = f.nextID
	f.nextID++
	m.CreatedAt = time.Now().UTC()
	f.messages = append(f.messages, m)
	return &m, nil
}

func (f *fakeRepo) GetAllMessages(_ context.Context, limit int) ([]chat.Message, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if limit <= 0 {
		limit = 50
	}
	// Newest first, as the store serves it.
	out := make([]chat.Message, 0, limit)
	for i := len(f.messages) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.messages[i])
	}
	return out, nil
}

func (f *fakeRepo) DeleteMessage(_ context.Context, id int64) error {
	for i, m := range f.messages {
		if m.ID == id {
			f.messages = append(f.messages[:i], f.messages[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func TestPostMessageDerivesTags(t *testing.T) {
	repo := newFakeRepo()
	uc := NewPostMessageUseCase(repo)

	msg, err := uc.Execute(context.Background(), PostMessageInput{
		SenderID:   "u1",
		SenderRole: chat.RoleCustomer,
		Content:    "hello @admin1 and @admin1 again",
	})
	require.NoError(t, err)

	// Repeated mentions are kept once per occurrence, in order.
	assert.Equal(t, []string{"admin1", "admin1"}, msg.TaggedUsers)
	assert.Equal(t, int64(1), msg.ID)
	assert.False(t, msg.CreatedAt.IsZero())
}

func TestPostMessageRejectsInvalidInput(t *testing.T) {
	repo := newFakeRepo()
	uc := NewPostMessageUseCase(repo)

	tests := []struct {
		name    string
		in      PostMessageInput
		wantErr error
	}{
		{
			name:    "blank content",
			in:      PostMessageInput{SenderID: "u1", SenderRole: chat.RoleCustomer, Content: "  "},
			wantErr: chat.ErrEmptyMessage,
		},
		{
			name:    "missing sender",
			in:      PostMessageInput{SenderRole: chat.RoleCustomer, Content: "hi"},
			wantErr: chat.ErrMissingSender,
		},
		{
			name:    "unknown role",
			in:      PostMessageInput{SenderID: "u1", SenderRole: "root", Content: "hi"},
			wantErr: chat.ErrInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, repo.messages, "nothing may be persisted on validation failure")
		})
	}
}

func TestPostMessageWrapsRepositoryFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.createErr = errors.New("connection refused")
	uc := NewPostMessageUseCase(repo)

	_, err := uc.Execute(context.Background(), PostMessageInput{
		SenderID:   "u1",
		SenderRole: chat.RoleCustomer,
		Content:    "hello",
	})
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestGetHistoryReturnsOldestFirst(t *testing.T) {
	repo := newFakeRepo()
	post := NewPostMessageUseCase(repo)
	for _, body := range []string{"first", "second", "third"} {
		_, err := post.Execute(context.Background(), PostMessageInput{
			SenderID:   "u1",
			SenderRole: chat.RoleCustomer,
			Content:    body,
		})
		require.NoError(t, err)
	}

	uc := NewGetHistoryUseCase(repo)
	msgs, err := uc.Execute(context.Background(), GetHistoryInput{Limit: 50})
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Body)
	assert.Equal(t, "third", msgs[2].Body)
}

func TestGetHistoryHonorsLimitKeepingNewest(t *testing.T) {
	repo := newFakeRepo()
	post := NewPostMessageUseCase(repo)
	for _, body := range []string{"first", "second", "third"} {
		_, err := post.Execute(context.Background(), PostMessageInput{
			SenderID:   "u1",
			SenderRole: chat.RoleCustomer,
			Content:    body,
		})
		require.NoError(t, err)
	}

	uc := NewGetHistoryUseCase(repo)
	msgs, err := uc.Execute(context.Background(), GetHistoryInput{Limit: 2})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	// The page is newest-bounded but presented oldest-first.
	assert.Equal(t, "second", msgs[0].Body)
	assert.Equal(t, "third", msgs[1].Body)
}

func TestDeleteMessage(t *testing.T) {
	repo := newFakeRepo()
	post := NewPostMessageUseCase(repo)
	msg, err := post.Execute(context.Background(), PostMessageInput{
		SenderID:   "u1",
		SenderRole: chat.RoleCustomer,
		Content:    "delete me",
	})
	require.NoError(t, err)

	uc := NewDeleteMessageUseCase(repo)

	t.Run("customer is refused", func(t *testing.T) {
		err := uc.Execute(context.Background(), DeleteMessageInput{MessageID: msg.ID, ActorRole: chat.RoleCustomer})
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Len(t, repo.messages, 1)
	})

	t.Run("admin deletes", func(t *testing.T) {
		err := uc.Execute(context.Background(), DeleteMessageInput{MessageID: msg.ID, ActorRole: chat.RoleAdmin})
		require.NoError(t, err)
		assert.Empty(t, repo.messages)
	})

	t.Run("missing message", func(t *testing.T) {
		err := uc.Execute(context.Background(), DeleteMessageInput{MessageID: 404, ActorRole: chat.RoleSuperadmin})
		assert.ErrorIs(t, err, ErrMessageNotFound)
	})
}
