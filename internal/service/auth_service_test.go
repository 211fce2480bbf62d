package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"challan-service/internal/auth"
	"challan-service/internal/config"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()

	hash, err := auth.HashSecret("admin123")
	require.NoError(t, err)

	return NewAuthService(config.AuthConfig{
		AccessSecret:      "test-jwt-secret",
		AdminEmail:        "admin@highbeam.gov",
		AdminPasswordHash: hash,
	}, auth.NewIssuer("test-jwt-secret"))
}

func TestReviewerLogin(t *testing.T) {
	svc := newAuthService(t)

	result, err := svc.ReviewerLogin("admin@highbeam.gov", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin@highbeam.gov", result.AdminID)

	claims, err := auth.NewParser("test-jwt-secret").Parse(result.Token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "admin@highbeam.gov", claims.AdminID)
}

func TestReviewerLoginBadCredentials(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.ReviewerLogin("admin@highbeam.gov", "wrong")
	assert.ErrorIs(t, err, ErrAuthFailed)

	_, err = svc.ReviewerLogin("someone@else.gov", "admin123")
	assert.ErrorIs(t, err, ErrAuthFailed)
}

func TestReviewerLoginUnconfigured(t *testing.T) {
	svc := NewAuthService(config.AuthConfig{}, auth.NewIssuer("test-jwt-secret"))

	_, err := svc.ReviewerLogin("admin@highbeam.gov", "admin123")
	assert.ErrorIs(t, err, ErrAuthFailed)
}
