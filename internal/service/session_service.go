package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"userdir/internal/auth"
	apperrors "userdir/internal/errors"
	"userdir/internal/repository"
)

// SessionService authenticates credentials and issues session tokens.
type SessionService interface {
	Login(ctx context.Context, email, password string) (string, error)
}

type sessionService struct {
	repo   repository.UserRepository
	tokens *auth.TokenService
}

// NewSessionService creates a session service over the given repository and
// token issuer.
func NewSessionService(repo repository.UserRepository, tokens *auth.TokenService) SessionService {
	return &sessionService{repo: repo, tokens: tokens}
}

// Login verifies the email/password pair and returns a signed session token
// whose subject is the user's UUID. An unknown email and a wrong password
// produce the same error so the caller cannot tell which check failed.
func (s *sessionService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrInvalidCredentials
		}
		return "", storeError("find user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperrors.ErrInvalidCredentials
	}

	return s.tokens.Issue(user.UUID.String())
}
