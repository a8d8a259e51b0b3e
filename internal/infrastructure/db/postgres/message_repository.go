package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neonchat/chat-server/internal/core/domain"
)

// MessageRepository stores the append-only message log.
type MessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// Insert persists msg and fills in the store-assigned ID and CreatedAt.
func (r *MessageRepository) Insert(ctx context.Context, msg *domain.Message) error {
	const q = `INSERT INTO messages (content, sender_id, created_at) VALUES ($1, $2, NOW()) RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, q, msg.Content, msg.SenderID).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListRecent returns up to limit messages, newest first, joined with the
// sender's directory entry for the display name.
func (r *MessageRepository) ListRecent(ctx context.Context, limit int) ([]domain.Message, error) {
	const q = `
		SELECT m.id, m.content, m.sender_id, COALESCE(u.username, ''), m.created_at
		FROM messages m
		LEFT JOIN users u ON u.user_id = m.sender_id
		ORDER BY m.id DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.Content, &m.SenderID, &m.Username, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return out, nil
}
