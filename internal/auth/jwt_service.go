package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v4"

	apperrors "userdir/internal/errors"
)

// SessionTokenExpiry is the duration for which session tokens are valid.
const SessionTokenExpiry = 24 * time.Hour

// TokenService issues and verifies HS256 session tokens. A token binds only a
// subject (the user's UUID) and an expiry; no other claims are embedded.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a token service with the given signing secret.
func NewTokenService(secret string) *TokenService {
	return &TokenService{
		secret: []byte(secret),
	}
}

// Issue produces a signed token for the given subject, expiring in 24 hours.
func (s *TokenService) Issue(subject string) (string, error) {
	now := time.Now()
	claims := &jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(SessionTokenExpiry)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks a token in two explicit steps, signature first and expiry
// second, so each failure mode carries its own error kind. It returns the
// subject on success and never panics on malformed input.
func (s *TokenService) Verify(tokenString string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	claims := &jwt.RegisteredClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", apperrors.ErrTokenInvalid
	}

	if claims.ExpiresAt == nil || time.Now().After(claims.ExpiresAt.Time) {
		return "", apperrors.ErrTokenExpired
	}

	if claims.Subject == "" {
		return "", apperrors.ErrTokenInvalid
	}
	return claims.Subject, nil
}
