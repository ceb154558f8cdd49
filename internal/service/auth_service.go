package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/google/uuid"

	"martapp/kiosk/internal/config"
	"martapp/kiosk/internal/repository"
)

// AuthService is the kiosk's cosmetic admin gate. It checks the configured
// credentials and issues opaque session IDs; it is deliberately not a
// security boundary.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, error)
	Validate(ctx context.Context, sessionID string) (bool, error)
	Logout(ctx context.Context, sessionID string) error
}

type authService struct {
	cfg      config.AuthConfig
	sessions repository.SessionStore
	ttl      time.Duration
}

func NewAuthService(cfg config.AuthConfig, sessions repository.SessionStore, ttl time.Duration) AuthService {
	return &authService{cfg: cfg, sessions: sessions, ttl: ttl}
}

func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.AdminUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.AdminPassword)) == 1
	if !userOK || !passOK {
		return "", ErrInvalidCredentials
	}

	sessionID := uuid.NewString()
	if err := s.sessions.Put(ctx, sessionID, s.ttl); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return sessionID, nil
}

func (s *authService) Validate(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	return s.sessions.Valid(ctx, sessionID)
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}
