package ports

import (
	"context"

	"github.com/neonchat/chat-server/internal/core/domain"
)

// AuthService issues bearer credentials.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.Account, error)
	Login(ctx context.Context, username, password string) (string, *domain.Account, error)
}

// TokenVerifier validates a bearer token and extracts its claims. The chat
// handshake and the HTTP auth middleware share one implementation so there is
// a single trust boundary.
type TokenVerifier interface {
	Verify(token string) (*domain.Claims, error)
}
