package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/intecsystems/nda-survey/internal/storage"
)

var (
	// ErrInvalidCredentials is returned for unknown users, bad passwords,
	// and deactivated accounts alike.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is returned for malformed, expired, or revoked tokens
	ErrInvalidToken = errors.New("invalid token")
)

// Service issues and verifies admin access tokens. Tokens are HS256 JWTs;
// each carries a session id that must still be present in the session
// store, so logout revokes a token before its expiry.
type Service struct {
	repo     storage.Repository
	sessions SessionStore
	secret   []byte
	tokenTTL time.Duration
}

// NewService creates an auth service
func NewService(repo storage.Repository, sessions SessionStore, secret string, tokenTTL time.Duration) *Service {
	return &Service{
		repo:     repo,
		sessions: sessions,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

type claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Token is an issued admin session token
type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login checks credentials and issues a token backed by a live session
func (s *Service) Login(ctx context.Context, username, password string) (*Token, error) {
	user, err := s.repo.GetAdminByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up admin user: %w", err)
	}

	if user == nil || !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	sessionID := uuid.NewString()
	expiresAt := time.Now().Add(s.tokenTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	if err := s.sessions.Save(ctx, sessionID, username, s.tokenTTL); err != nil {
		return nil, fmt.Errorf("failed to record session: %w", err)
	}

	if err := s.repo.TouchAdminLogin(ctx, username); err != nil {
		slog.Warn("failed to record admin login time", "username", username, "error", err)
	}

	return &Token{Value: signed, ExpiresAt: expiresAt}, nil
}

// Verify parses a token and checks its session is still live. Returns the
// username the token was issued to.
func (s *Service) Verify(ctx context.Context, tokenString string) (string, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	active, err := s.sessions.IsActive(ctx, c.ID)
	if err != nil {
		return "", fmt.Errorf("failed to check session: %w", err)
	}
	if !active {
		return "", ErrInvalidToken
	}

	return c.Username, nil
}

// Logout revokes the session behind a token. Revoking an already-revoked
// or unknown token is not an error.
func (s *Service) Logout(ctx context.Context, tokenString string) error {
	var c claims
	_, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || c.ID == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, c.ID)
}
