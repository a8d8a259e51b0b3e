package service

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/neonchat/chat-server/internal/core/domain"
)

// TokenService verifies bearer tokens against the shared HS256 secret.
// Pure validation, no side effects.
type TokenService struct {
	secret []byte
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// Verify checks signature and expiry and returns the typed claims. An empty
// token is domain.ErrMissingToken; anything tampered, expired, or signed with
// the wrong algorithm is domain.ErrInvalidToken.
func (s *TokenService) Verify(token string) (*domain.Claims, error) {
	if token == "" {
		return nil, domain.ErrMissingToken
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, domain.ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	username, _ := claims["username"].(string)
	if sub == "" || username == "" {
		return nil, domain.ErrInvalidToken
	}

	return &domain.Claims{UserID: sub, Username: username}, nil
}
