package domain

import (
	"errors"
	"time"
)

var ErrInvalidContent = errors.New("invalid message content")

// Message is a persisted chat message. ID and CreatedAt are assigned by the
// store on insert; a Message without an ID has not been persisted yet.
type Message struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	SenderID  string    `json:"sender_id"`
	Username  string    `json:"username,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
