package dto

import (
	"time"

	"github.com/spec-kit/darshan-pass-service/internal/domain"
)

// LoginRequest payload for either role. Empty fields are left to the credential check.
type LoginRequest struct {
	Identity   string `json:"identity" validate:"max=254"`
	Credential string `json:"credential" validate:"max=128"`
	Role       string `json:"role" validate:"max=32"`
}

// SessionResponse mirrors domain.Session.
type SessionResponse struct {
	Authenticated bool    `json:"authenticated"`
	Role          *string `json:"role"`
	Identity      string  `json:"identity"`
}

// AuthResponse standard response for login.
type AuthResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Session   SessionResponse `json:"session"`
}

// NewSessionResponse renders a session.
func NewSessionResponse(s domain.Session) SessionResponse {
	resp := SessionResponse{Authenticated: s.Authenticated, Identity: s.Identity}
	if s.Role != nil {
		role := string(*s.Role)
		resp.Role = &role
	}
	return resp
}
