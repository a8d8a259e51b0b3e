package ports

import (
	"context"

	"github.com/neonchat/chat-server/internal/core/domain"
)

// AccountRepository defines the interface for login-credential persistence.
type AccountRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
}
