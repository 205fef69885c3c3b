package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sumire/tracker/internal/domain"
)

// UserStore defines the user data access interface consumed by services.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	ListSummaries(ctx context.Context) ([]domain.UserSummary, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, user domain.User) (*domain.User, error)
	Update(ctx context.Context, user domain.User) (*domain.User, error)
}

// SessionStore defines the session data access interface consumed by AuthService.
type SessionStore interface {
	Create(ctx context.Context, session domain.Session) error
	FindByID(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}

// AuthService handles credential verification and session lifecycle.
type AuthService struct {
	users      UserStore
	sessions   SessionStore
	sessionTTL time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, sessions SessionStore, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
	}
}

// Login verifies the credentials and issues a fresh session. Any session
// presented by the caller is invalidated first so a successful login always
// changes the session id (fixation defense) and rotates the anti-forgery
// token. Unknown emails and wrong passwords both map to
// domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password, priorSessionID string) (*domain.Session, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login lookup: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if priorSessionID != "" {
		if err := s.sessions.Delete(ctx, priorSessionID); err != nil {
			return nil, fmt.Errorf("invalidate prior session: %w", err)
		}
	}

	sessionID, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}
	csrfToken, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate csrf token: %w", err)
	}

	session := domain.Session{
		ID:        sessionID,
		UserID:    user.ID,
		CSRFToken: csrfToken,
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	return &session, nil
}

// Logout invalidates the session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// Authenticate resolves a session id to its user. Missing, expired, or
// orphaned sessions map to domain.ErrUnauthenticated; expired rows are
// deleted on sight.
func (s *AuthService) Authenticate(ctx context.Context, sessionID string) (*domain.User, *domain.Session, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrUnauthenticated
		}
		return nil, nil, fmt.Errorf("authenticate: %w", err)
	}

	if session.Expired(time.Now()) {
		if err := s.sessions.Delete(ctx, session.ID); err != nil {
			return nil, nil, fmt.Errorf("delete expired session: %w", err)
		}
		return nil, nil, domain.ErrUnauthenticated
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrUnauthenticated
		}
		return nil, nil, fmt.Errorf("authenticate user lookup: %w", err)
	}

	return user, session, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
