package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/neonchat/chat-server/internal/core/domain"
	"github.com/neonchat/chat-server/internal/core/ports"
)

// HistoryCache abstracts the recent-message cache (Redis). Best-effort: the
// pipeline never fails because of it.
type HistoryCache interface {
	Push(ctx context.Context, msg domain.Message) error
	Recent(ctx context.Context, limit int) ([]domain.Message, error)
}

type chatService struct {
	registry *Registry
	users    ports.UserRepository
	messages ports.MessageRepository
	history  HistoryCache
	log      zerolog.Logger
}

// NewChatService returns the message pipeline and presence broadcaster.
// history may be nil when no cache is configured.
func NewChatService(
	registry *Registry,
	users ports.UserRepository,
	messages ports.MessageRepository,
	history HistoryCache,
	log zerolog.Logger,
) ports.ChatService {
	return &chatService{
		registry: registry,
		users:    users,
		messages: messages,
		history:  history,
		log:      log,
	}
}

// EnsureUser makes sure a directory row exists for the subject. The
// read-then-insert pair is not atomic: two handshakes for the same subject
// can race, and the second insert trips the store's uniqueness constraint.
// That outcome means the row exists, which is exactly what we wanted.
func (s *chatService) EnsureUser(ctx context.Context, userID, username string) error {
	_, err := s.users.FindByID(ctx, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("ensure user: %w", err)
	}

	err = s.users.Create(ctx, &domain.User{UserID: userID, Username: username})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil
		}
		return fmt.Errorf("ensure user: %w", err)
	}

	s.log.Info().Str("user_id", userID).Str("username", username).Msg("new user registered in directory")
	return nil
}

// HandleMessage runs one inbound message through the pipeline:
// authorize → validate → persist → broadcast. A message is only broadcast
// after it has been durably persisted.
func (s *chatService) HandleMessage(ctx context.Context, connectionID, content string) (*domain.Message, error) {
	session, ok := s.registry.Lookup(connectionID)
	if !ok || !session.Authenticated {
		return nil, domain.ErrUnauthenticated
	}

	if content == "" {
		return nil, domain.ErrInvalidContent
	}

	msg := &domain.Message{
		Content:  content,
		SenderID: session.UserID,
		Username: session.Username,
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}

	if s.history != nil {
		if err := s.history.Push(ctx, *msg); err != nil {
			s.log.Warn().Err(err).Msg("failed to push message to history cache")
		}
	}

	// Everyone receives the message, sender included, so all clients render
	// from one code path.
	s.broadcast(domain.NewMessageEvent(msg), "")

	s.log.Debug().
		Int64("message_id", msg.ID).
		Str("sender_id", msg.SenderID).
		Msg("message persisted and broadcast")

	return msg, nil
}

// History serves recent messages, preferring the cache and falling back to
// the store when the cache is cold or unavailable.
func (s *chatService) History(ctx context.Context, limit int) ([]domain.Message, error) {
	if s.history != nil {
		msgs, err := s.history.Recent(ctx, limit)
		if err != nil {
			s.log.Warn().Err(err).Msg("history cache read failed, falling back to store")
		} else if len(msgs) >= limit {
			return msgs, nil
		}
		// A short cache read is not authoritative: the cache is capped below
		// the largest allowed request, so the store may hold more.
	}

	msgs, err := s.messages.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// AnnounceJoin emits user-joined to everyone except the joining connection.
func (s *chatService) AnnounceJoin(connectionID, userID string) {
	s.broadcast(domain.Event{
		Name: domain.EventUserJoined,
		Data: domain.PresencePayload{Message: fmt.Sprintf("New user joined the chat: %s", userID)},
	}, connectionID)
}

// AnnounceLeave emits user-left to every remaining session.
func (s *chatService) AnnounceLeave(userID string) {
	s.broadcast(domain.Event{
		Name: domain.EventUserLeft,
		Data: domain.PresencePayload{Message: fmt.Sprintf("User left the chat: %s", userID)},
	}, "")
}

// broadcast fans an event out to every current session except exclude.
// Delivery is fire-and-forget: a recipient that cannot accept the event is
// skipped and never blocks or fails the others.
func (s *chatService) broadcast(evt domain.Event, exclude string) {
	for _, session := range s.registry.All(exclude) {
		if session.Sink == nil {
			continue
		}
		if err := session.Sink.Send(evt); err != nil {
			s.log.Warn().
				Err(err).
				Str("event", evt.Name).
				Str("connection_id", session.ConnectionID).
				Msg("dropping event for unreachable recipient")
		}
	}
}
