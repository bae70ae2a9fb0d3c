package auth

import (
	"errors"
	"fmt"

	"github.com/spec-kit/darshan-pass-service/internal/domain"
)

// ErrInvalidCredentials is matched by every failed credential check.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Credential is one fixed (identity, secret, role) triple.
type Credential struct {
	Identity string
	Secret   string
	Role     domain.Role
}

// InvalidCredentialsError names the expected pair for the claimed role when echo is enabled.
type InvalidCredentialsError struct {
	Role             domain.Role
	ExpectedIdentity string
	ExpectedSecret   string
	echo             bool
}

func (e *InvalidCredentialsError) Error() string {
	if !e.echo || e.ExpectedIdentity == "" {
		return "invalid credentials"
	}
	return fmt.Sprintf("invalid credentials. Use %s and password %s.", e.ExpectedIdentity, e.ExpectedSecret)
}

func (e *InvalidCredentialsError) Is(target error) bool {
	return target == ErrInvalidCredentials
}

type gateEntry struct {
	identity string
	hash     string
	secret   string
}

// Gate checks a presented credential pair against the fixed role triples.
type Gate struct {
	entries map[domain.Role]gateEntry
	echo    bool
}

// NewGate hashes each credential's secret with bcrypt at the given cost.
// Plain secrets are only retained when echo is on.
func NewGate(creds []Credential, cost int, echo bool) (*Gate, error) {
	g := &Gate{entries: make(map[domain.Role]gateEntry, len(creds)), echo: echo}
	for _, c := range creds {
		if c.Identity == "" || c.Secret == "" {
			return nil, fmt.Errorf("credential for role %s is incomplete", c.Role)
		}
		if _, dup := g.entries[c.Role]; dup {
			return nil, fmt.Errorf("duplicate credential for role %s", c.Role)
		}
		hash, err := HashPassword(c.Secret, cost)
		if err != nil {
			return nil, fmt.Errorf("hash credential for role %s: %w", c.Role, err)
		}
		entry := gateEntry{identity: c.Identity, hash: hash}
		if echo {
			entry.secret = c.Secret
		}
		g.entries[c.Role] = entry
	}
	return g, nil
}

// Authenticate returns an authenticated session when identity and credential exactly match
// the triple registered for role.
func (g *Gate) Authenticate(identity, credential string, role domain.Role) (domain.Session, error) {
	entry, ok := g.entries[role]
	if !ok {
		return domain.UnauthenticatedSession(), &InvalidCredentialsError{Role: role}
	}
	if identity != entry.identity || ComparePassword(entry.hash, credential) != nil {
		return domain.UnauthenticatedSession(), &InvalidCredentialsError{
			Role:             role,
			ExpectedIdentity: entry.identity,
			ExpectedSecret:   entry.secret,
			echo:             g.echo,
		}
	}
	return domain.NewSession(role, identity), nil
}

// Logout always yields the unauthenticated session.
func (g *Gate) Logout() domain.Session {
	return domain.UnauthenticatedSession()
}
