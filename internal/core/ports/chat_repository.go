package ports

import (
	"context"

	"github.com/neonchat/chat-server/internal/core/domain"
)

// UserRepository persists the chat directory (one row per subject that ever
// connected).
type UserRepository interface {
	FindByID(ctx context.Context, userID string) (*domain.User, error)
	// Create inserts a new directory entry. Returns domain.ErrUserExists when
	// the user_id is already present (uniqueness race between two handshakes).
	Create(ctx context.Context, user *domain.User) error
}

// MessageRepository persists the append-only message log.
type MessageRepository interface {
	// Insert stores the message and fills in the store-assigned ID and
	// CreatedAt on the passed value.
	Insert(ctx context.Context, msg *domain.Message) error
	// ListRecent returns up to limit messages, newest first.
	ListRecent(ctx context.Context, limit int) ([]domain.Message, error)
}
