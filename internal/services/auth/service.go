package auth

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/cardsagainstentropy/internal/dependencies/clock"
	"github.com/mcoot/cardsagainstentropy/internal/dependencies/random"
	"github.com/mcoot/cardsagainstentropy/internal/model"
	"github.com/mcoot/cardsagainstentropy/internal/storage"
)

// MinPassphraseLength is the shortest passphrase accepted for a new identity
const MinPassphraseLength = 8

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrWeakPassphrase     = errors.New("passphrase is too short")
)

// Session represents an authenticated session
type Session struct {
	Token     string
	Identity  model.Identity
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Service issues identities and manages bearer sessions for them
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	sessionDuration time.Duration
	bcryptCost      int
}

// Config holds configuration for the auth service
type Config struct {
	SessionDuration time.Duration
	BcryptCost      int
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
		BcryptCost:      bcrypt.DefaultCost,
	}
}

// New creates a new AuthService
func New(storage storage.Storage, clock clock.Clock, random random.Random, cfg Config, logger *slog.Logger) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = DefaultConfig().BcryptCost
	}
	return &Service{
		storage:         storage,
		clock:           clock,
		random:          random,
		logger:          logger.With(slog.String("component", "auth")),
		sessions:        make(map[string]*Session),
		sessionDuration: cfg.SessionDuration,
		bcryptCost:      cfg.BcryptCost,
	}
}

// CreateIdentity mints a fresh identity protected by passphrase and opens a session for it
func (s *Service) CreateIdentity(ctx context.Context, passphrase string) (*Session, error) {
	if len(passphrase) < MinPassphraseLength {
		return nil, ErrWeakPassphrase
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	identity := s.generateIdentity()
	cred := &model.Credential{
		Identity:       identity,
		PassphraseHash: string(hash),
		CreatedAt:      s.clock.Now(),
	}
	if err := s.storage.SaveCredential(ctx, cred); err != nil {
		return nil, err
	}

	s.logger.Info("identity created", slog.String("identity", string(identity)))
	return s.createSession(identity), nil
}

// Login authenticates an identity and creates a session
func (s *Service) Login(ctx context.Context, identity model.Identity, passphrase string) (*Session, error) {
	cred, err := s.storage.GetCredential(ctx, model.NormalizeIdentity(string(identity)))
	if err != nil {
		if errors.Is(err, model.ErrCredentialMissing) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PassphraseHash), []byte(passphrase)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.createSession(cred.Identity), nil
}

// ValidateSession checks if a session token is valid and returns the session
func (s *Service) ValidateSession(token string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidSession
	}

	if s.clock.Now().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, ErrInvalidSession
	}

	return session, nil
}

// InvalidateSession removes a session
func (s *Service) InvalidateSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// createSession creates a new session for an identity
func (s *Service) createSession(identity model.Identity) *Session {
	b := make([]byte, 16)
	s.random.Read(b)
	now := s.clock.Now()

	session := &Session{
		Token:     "sess_" + base64.RawURLEncoding.EncodeToString(b),
		Identity:  identity,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	return session
}

// generateIdentity returns an address-shaped handle: 0x and 40 hex characters
func (s *Service) generateIdentity() model.Identity {
	b := make([]byte, 20)
	s.random.Read(b)
	return model.Identity("0x" + hex.EncodeToString(b))
}

// CleanExpiredSessions removes expired sessions (call periodically)
func (s *Service) CleanExpiredSessions() int {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}
