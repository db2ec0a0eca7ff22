package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/vitrine-commerce/vitrine/internal/platform/httpx"
	"github.com/vitrine-commerce/vitrine/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	tokens   *TokenService
	throttle *LoginThrottle
}

// NewService constructs a new Service. The throttle may be nil, which
// disables login rate limiting.
func NewService(repo Repository, tokens *TokenService, throttle *LoginThrottle) *Service {
	return &Service{repo: repo, tokens: tokens, throttle: throttle}
}

// Register stores a new user with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, username, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	return s.repo.Create(ctx, username, string(hash))
}

// Login validates username/password credentials and issues a bearer token.
// Unknown usernames and password mismatches produce the same error.
func (s *Service) Login(ctx context.Context, remoteIP, username, password string) (string, error) {
	if err := s.throttle.Allow(ctx, remoteIP, username); err != nil {
		return "", err
	}
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return "", shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", shared.ErrInvalidCredentials
	}
	return s.tokens.Issue(user.Username)
}

// Refresh issues a new token for an already-authenticated subject. The
// previous token is not invalidated; it expires naturally.
func (s *Service) Refresh(ctx context.Context, username string) (string, error) {
	return s.tokens.Issue(username)
}

// ResolveUser validates a bearer token and loads the subject user.
func (s *Service) ResolveUser(ctx context.Context, raw string) (*User, error) {
	subject, err := s.tokens.Validate(raw)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByUsername(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown token subject", httpx.ErrUnauthorized)
	}
	return user, nil
}
