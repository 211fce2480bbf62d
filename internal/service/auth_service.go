package service

import (
	"crypto/subtle"
	"fmt"

	"challan-service/internal/auth"
	"challan-service/internal/config"
)

// AuthService issues reviewer sessions. Owner sessions are issued by
// OwnerService as part of the plate/DOB login flow.
type AuthService struct {
	cfg    config.AuthConfig
	issuer *auth.Issuer
}

func NewAuthService(cfg config.AuthConfig, issuer *auth.Issuer) *AuthService {
	return &AuthService{cfg: cfg, issuer: issuer}
}

type ReviewerLoginResult struct {
	Token   string `json:"token"`
	AdminID string `json:"admin_id"`
}

// ReviewerLogin authenticates the reviewer account configured in the
// environment. All failure modes collapse into ErrAuthFailed so the response
// never reveals whether the account exists.
func (s *AuthService) ReviewerLogin(email, password string) (*ReviewerLoginResult, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}
	if s.cfg.AdminEmail == "" || s.cfg.AdminPasswordHash == "" {
		return nil, ErrAuthFailed
	}
	if subtle.ConstantTimeCompare([]byte(email), []byte(s.cfg.AdminEmail)) != 1 {
		return nil, ErrAuthFailed
	}
	if err := auth.VerifySecret(password, s.cfg.AdminPasswordHash); err != nil {
		return nil, ErrAuthFailed
	}

	token, err := s.issuer.IssueReviewerToken(email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &ReviewerLoginResult{Token: token, AdminID: email}, nil
}
