package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"

	apperrors "userdir/internal/errors"
)

const testSecret = "test-secret"

func signClaims(t *testing.T, secret string, claims *jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	assert.NoError(t, err)
	return token
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := NewTokenService(testSecret)

	token, err := svc.Issue("7f9c24e5-2b8a-4f9e-9c1d-3e5a1b2c3d4e")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	subject, err := svc.Verify(token)
	assert.NoError(t, err)
	assert.Equal(t, "7f9c24e5-2b8a-4f9e-9c1d-3e5a1b2c3d4e", subject)
}

func TestTokenService_Verify_Failures(t *testing.T) {
	svc := NewTokenService(testSecret)

	tests := []struct {
		name        string
		token       string
		expectedErr error
	}{
		{
			name:        "malformed token",
			token:       "not-a-jwt",
			expectedErr: apperrors.ErrTokenInvalid,
		},
		{
			name:        "empty token",
			token:       "",
			expectedErr: apperrors.ErrTokenInvalid,
		},
		{
			name: "wrong secret",
			token: signClaims(t, "other-secret", &jwt.RegisteredClaims{
				Subject:   "subject",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			}),
			expectedErr: apperrors.ErrTokenInvalid,
		},
		{
			name: "expired token",
			token: signClaims(t, testSecret, &jwt.RegisteredClaims{
				Subject:   "subject",
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-25 * time.Hour)),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			}),
			expectedErr: apperrors.ErrTokenExpired,
		},
		{
			name: "missing expiry",
			token: signClaims(t, testSecret, &jwt.RegisteredClaims{
				Subject: "subject",
			}),
			expectedErr: apperrors.ErrTokenExpired,
		},
		{
			name: "missing subject",
			token: signClaims(t, testSecret, &jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			}),
			expectedErr: apperrors.ErrTokenInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, err := svc.Verify(tt.token)
			assert.Empty(t, subject)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

// An expired token with a bad signature must read as invalid, not expired: the
// signature step runs first and short-circuits.
func TestTokenService_Verify_SignatureBeforeExpiry(t *testing.T) {
	svc := NewTokenService(testSecret)

	token := signClaims(t, "other-secret", &jwt.RegisteredClaims{
		Subject:   "subject",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})

	_, err := svc.Verify(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestTokenService_Issue_ExpirySetTo24h(t *testing.T) {
	svc := NewTokenService(testSecret)

	token, err := svc.Issue("subject")
	assert.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	assert.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(SessionTokenExpiry), claims.ExpiresAt.Time, time.Minute)
}
