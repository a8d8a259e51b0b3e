package ports

import (
	"context"

	"github.com/neonchat/chat-server/internal/core/domain"
)

// ChatService is the message pipeline plus presence fan-out consumed by the
// WebSocket gateway.
type ChatService interface {
	// EnsureUser guarantees a chat-directory row exists for the subject.
	// Runs once per successful handshake, before admission.
	EnsureUser(ctx context.Context, userID, username string) error

	// HandleMessage validates, persists, and broadcasts one inbound message.
	// The returned message carries the store-assigned ID and timestamp.
	HandleMessage(ctx context.Context, connectionID, content string) (*domain.Message, error)

	// History returns up to limit recent messages, newest first.
	History(ctx context.Context, limit int) ([]domain.Message, error)

	// AnnounceJoin notifies every session except the subject's own connection.
	AnnounceJoin(connectionID, userID string)
	// AnnounceLeave notifies every remaining session.
	AnnounceLeave(userID string)
}
