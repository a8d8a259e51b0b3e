package domain

import (
	"errors"
	"time"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")

// Account is a registered login identity. It is what /auth/register creates
// and what /auth/login checks a password against.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// User is an entry in the chat directory: every subject that has ever
// completed a chat handshake. Created on first connect, never mutated.
type User struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Claims is the verified content of a bearer token.
type Claims struct {
	UserID   string
	Username string
}
