package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	chat "mobelhaus/internal/pkg/chat/application/domain"
	repository "mobelhaus/internal/pkg/chat/persistence/repository/port"
)

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

func (r *PgMessageRepository) CreateMessage(ctx context.Context, m chat.Message) (*chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessageRepository: nil pool")
	}
	saved := m
	err := r.pool.QueryRow(ctx, `
		INSERT INTO messages (sender_id, sender_role, message, tagged_users)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, m.SenderID, string(m.SenderRole), m.Body, m.TaggedUsers).Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *PgMessageRepository) GetAllMessages(ctx context.Context, limit int) ([]chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessageRepository: nil pool")
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.sender_id, m.sender_role, m.message, m.tagged_users, m.created_at,
		       COALESCE(NULLIF(TRIM(COALESCE(u.first_name, '') || ' ' || COALESCE(u.last_name, '')), ''), m.sender_id)
		FROM messages m
		LEFT JOIN users u ON u.id = m.sender_id
		ORDER BY m.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		var (
			msg  chat.Message
			role string
			tags []string
		)
		if err := rows.Scan(&msg.ID, &msg.SenderID, &role, &msg.Body, &tags, &msg.CreatedAt, &msg.SenderName); err != nil {
			return nil, err
		}
		msg.SenderRole = chat.SenderRole(role)
		if tags == nil {
			tags = []string{}
		}
		msg.TaggedUsers = tags
		msgs = append(msgs, msg)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return msgs, nil
}

func (r *PgMessageRepository) DeleteMessage(ctx context.Context, id int64) error {
	if r == nil || r.pool == nil {
		return errors.New("PgMessageRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
