package domain

import "strings"

// Role enumerates the two actors of the pass workflow.
type Role string

const (
	RoleTrustee Role = "TRUSTEE"
	RoleProTeam Role = "PRO_TEAM"
)

// ParseRole accepts the canonical role names and the short forms used by the login form.
func ParseRole(raw string) (Role, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "TRUSTEE":
		return RoleTrustee, true
	case "PRO_TEAM", "PRO", "PROTEAM", "PRO-TEAM":
		return RoleProTeam, true
	default:
		return "", false
	}
}

// Session is the outcome of a credential check. It is a cache, never a source of truth.
type Session struct {
	Authenticated bool   `json:"authenticated"`
	Role          *Role  `json:"role"`
	Identity      string `json:"identity"`
}

// NewSession builds an authenticated session for the given role.
func NewSession(role Role, identity string) Session {
	r := role
	return Session{Authenticated: true, Role: &r, Identity: identity}
}

// UnauthenticatedSession is the session after logout or before login.
func UnauthenticatedSession() Session {
	return Session{}
}

// HasRole reports whether the session is authenticated as role.
func (s Session) HasRole(role Role) bool {
	return s.Authenticated && s.Role != nil && *s.Role == role
}

// RoleName returns the role as a string, empty when unauthenticated.
func (s Session) RoleName() string {
	if s.Role == nil {
		return ""
	}
	return string(*s.Role)
}
