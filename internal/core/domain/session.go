package domain

import "errors"

var ErrMissingToken = errors.New("missing token")
var ErrInvalidToken = errors.New("invalid token")
var ErrUnauthenticated = errors.New("user not authenticated")
var ErrDuplicateConnection = errors.New("connection already registered")

// EventSink delivers outbound events to one connected client. Implemented by
// the transport layer; a sink that cannot accept an event returns an error
// and the event is dropped for that recipient only.
type EventSink interface {
	Send(Event) error
}

// Session is the in-memory record of one authenticated, currently-connected
// participant. It is owned exclusively by the connection registry; other
// components read it by connection ID and never mutate it.
type Session struct {
	ConnectionID  string
	UserID        string
	Username      string
	Authenticated bool
	Sink          EventSink
}
