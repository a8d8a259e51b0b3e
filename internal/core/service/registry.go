package service

import (
	"sync"

	"github.com/neonchat/chat-server/internal/core/domain"
)

// Registry tracks the set of currently connected, authenticated sessions.
// It is the single source of truth for "who is connected" and must be
// consulted before any broadcast. Instantiated once in main and passed by
// handle to the chat service and the gateway; all methods are safe for
// concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*domain.Session)}
}

// Admit records a new authenticated session. A second admit for the same
// connection ID without an intervening evict is a transport bug; it is
// rejected with domain.ErrDuplicateConnection.
func (r *Registry) Admit(connectionID, userID, username string, sink domain.EventSink) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[connectionID]; exists {
		return nil, domain.ErrDuplicateConnection
	}

	s := &domain.Session{
		ConnectionID:  connectionID,
		UserID:        userID,
		Username:      username,
		Authenticated: true,
		Sink:          sink,
	}
	r.sessions[connectionID] = s
	return s, nil
}

// Evict removes and returns the session for connectionID. Returns nil when
// no such session exists: disconnect notifications may race, so a second
// evict of the same ID is a no-op rather than an error.
func (r *Registry) Evict(connectionID string) *domain.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connectionID]
	if !ok {
		return nil
	}
	delete(r.sessions, connectionID)
	return s
}

// Lookup returns the session for connectionID, if any.
func (r *Registry) Lookup(connectionID string) (*domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[connectionID]
	return s, ok
}

// All returns a snapshot of every session except excludeConnectionID.
// Pass "" to include everyone. The snapshot is safe to iterate while
// admits and evicts continue concurrently.
func (r *Registry) All(excludeConnectionID string) []*domain.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		if id == excludeConnectionID {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Len reports the current number of connected sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
