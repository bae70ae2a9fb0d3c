package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/darshan-pass-service/internal/domain"
)

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttlMinutes int) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	return &TokenManager{secret: []byte(secret), ttl: time.Duration(ttlMinutes) * time.Minute, now: time.Now}
}

// Claims describes JWT payload.
type Claims struct {
	Identity string      `json:"identity"`
	Role     domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Session rebuilds the session the token was issued for.
func (c *Claims) Session() (domain.Session, error) {
	role, ok := domain.ParseRole(string(c.Role))
	if !ok || c.Identity == "" {
		return domain.UnauthenticatedSession(), errors.New("token carries no usable role")
	}
	return domain.NewSession(role, c.Identity), nil
}

// GenerateToken builds and signs a JWT for an authenticated session.
func (tm *TokenManager) GenerateToken(session domain.Session) (string, time.Time, error) {
	if !session.Authenticated || session.Role == nil {
		return "", time.Time{}, errors.New("cannot issue token for unauthenticated session")
	}
	issuedAt := tm.now()
	expiresAt := issuedAt.Add(tm.ttl)
	claims := &Claims{
		Identity: session.Identity,
		Role:     *session.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.Identity,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now))
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
