package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"marketpulse/internal/crypto"
	"marketpulse/internal/domain"
	"marketpulse/internal/platform/angelone"
)

// Credentials holds the brokerage login configuration.
type Credentials struct {
	ClientCode string
	PIN        string
	TOTPSecret string
}

// AuthService owns the brokerage session lifecycle. The session handle is
// process-wide state shared by the refresher and the market service, so all
// access goes through the service rather than ambient globals.
type AuthService struct {
	client *angelone.Client
	creds  Credentials
	logger *slog.Logger

	mu         sync.Mutex
	session    angelone.Session
	loggedInAt time.Time
}

// NewAuthService creates an AuthService around the SmartAPI client.
func NewAuthService(client *angelone.Client, creds Credentials, logger *slog.Logger) *AuthService {
	return &AuthService{
		client: client,
		creds:  creds,
		logger: logger.With(slog.String("component", "auth")),
	}
}

// Login generates the current TOTP and establishes a SmartAPI session.
// Missing credentials are a configuration error and surface as an
// authentication failure, never as a crash.
func (s *AuthService) Login(ctx context.Context) (angelone.Session, error) {
	if s.creds.ClientCode == "" || s.creds.PIN == "" || s.creds.TOTPSecret == "" {
		return angelone.Session{}, fmt.Errorf("auth: missing brokerage credentials: %w", domain.ErrUnauthorized)
	}

	code, err := crypto.TOTP(s.creds.TOTPSecret)
	if err != nil {
		return angelone.Session{}, fmt.Errorf("auth: generate totp: %w", domain.ErrUnauthorized)
	}

	sess, err := s.client.Login(ctx, s.creds.ClientCode, s.creds.PIN, code)
	if err != nil {
		return angelone.Session{}, fmt.Errorf("auth: %w", err)
	}

	s.mu.Lock()
	s.session = sess
	s.loggedInAt = time.Now()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "brokerage session established",
		slog.String("client_code", s.creds.ClientCode),
	)
	return sess, nil
}

// Connected reports whether a live session is installed on the client.
func (s *AuthService) Connected() bool {
	return s.client.Connected()
}

// Session returns the current session tokens and whether a login succeeded.
func (s *AuthService) Session() (angelone.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, s.session.JWTToken != ""
}
