package services

import (
	"chat-relay/auth"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/repositories"
	"context"
	"fmt"
	"log/slog"
	"time"
)

type IIdentityService interface {
	Register(username, password string) (Token, error)
	Login(username, password string) (Token, error)
	ResolveSession(ctx context.Context, credential string) (domain.Identity, bool)
	LookupUserByUsername(ctx context.Context, username string) (domain.Identity, error)
}

type Token string

// IdentityService issues session tokens and resolves them back to
// identities. It is the hub's identity gateway: the websocket
// lifecycle and the stream workers only see ResolveSession and
// LookupUserByUsername.
type IdentityService struct {
	log             *slog.Logger
	users           repositories.IUserRepository
	sessionDuration time.Duration
}

func NewIdentityService(log *slog.Logger, users repositories.IUserRepository, sessionDuration time.Duration) *IdentityService {
	return &IdentityService{log: log, users: users, sessionDuration: sessionDuration}
}

func (s *IdentityService) Register(username, password string) (Token, error) {
	// Business rules first, before any expensive cryptographic work.
	if err := auth.ValidateRegister(auth.RegisterRequest{Username: username, Password: password}); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	// Hashing happens in the service layer so the repository never
	// sees a plain password.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	if err := s.users.CreateUser(username, hashedPassword); err != nil {
		return "", err
	}

	token, err := auth.GenerateToken(username, s.sessionDuration)
	if err != nil {
		return "", err
	}
	return Token(token), nil
}

func (s *IdentityService) Login(username, password string) (Token, error) {
	user, err := s.users.GetUser(username)
	if err != nil {
		// Do not leak whether the username exists.
		return "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(username, s.sessionDuration)
	if err != nil {
		return "", err
	}
	return Token(token), nil
}

// ResolveSession maps a session credential to the identity it was
// issued for. Forged, expired, or orphaned tokens (user deleted after
// issuance) all resolve to false; the caller treats that as a normal
// rejection, not a fault.
func (s *IdentityService) ResolveSession(_ context.Context, credential string) (domain.Identity, bool) {
	claims, err := auth.ValidateToken(credential)
	if err != nil {
		return "", false
	}
	if _, err := s.users.GetUser(claims.Username); err != nil {
		return "", false
	}
	return domain.Identity(claims.Username), true
}

// LookupUserByUsername returns ErrUnknownUser when no such user
// exists.
func (s *IdentityService) LookupUserByUsername(_ context.Context, username string) (domain.Identity, error) {
	user, err := s.users.GetUser(username)
	if err != nil {
		return "", err
	}
	return domain.Identity(user.Username), nil
}
