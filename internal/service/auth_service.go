package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/darshan-pass-service/internal/auth"
	"github.com/spec-kit/darshan-pass-service/internal/domain"
	"github.com/spec-kit/darshan-pass-service/internal/repository"
	apperrors "github.com/spec-kit/darshan-pass-service/pkg/util/errorutil"
)

// LoginResult is a successful credential check with its bearer token.
type LoginResult struct {
	Session   domain.Session
	Token     string
	ExpiresAt time.Time
}

// AuthService coordinates login and logout flows.
type AuthService struct {
	gate     *auth.Gate
	tokenMgr *auth.TokenManager
	sessions repository.SessionRepository
	logger   *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	Gate        *auth.Gate
	Tokens      *auth.TokenManager
	SessionRepo repository.SessionRepository
	Logger      *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		gate:     deps.Gate,
		tokenMgr: deps.Tokens,
		sessions: deps.SessionRepo,
		logger:   logger,
	}
}

// Login checks the credential pair against the claimed role and issues a token.
func (s *AuthService) Login(ctx context.Context, identity, credential, claimedRole string) (*LoginResult, error) {
	role, ok := domain.ParseRole(claimedRole)
	if !ok {
		role = domain.Role(strings.ToUpper(strings.TrimSpace(claimedRole)))
	}

	session, err := s.gate.Authenticate(strings.TrimSpace(identity), credential, role)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.Info("login rejected", zap.String("claimed_role", string(role)))
			return nil, apperrors.NewInvalidCredentials(err)
		}
		return nil, apperrors.NewInternalError(err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(session)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.remember(ctx, session)
	return &LoginResult{Session: session, Token: token, ExpiresAt: exp}, nil
}

// Logout clears the cached session. Issued tokens stay valid until they expire.
func (s *AuthService) Logout(ctx context.Context) domain.Session {
	session := s.gate.Logout()
	s.remember(ctx, session)
	return session
}

// LastSession returns the most recently cached session.
func (s *AuthService) LastSession(ctx context.Context) (domain.Session, error) {
	if s.sessions == nil {
		return domain.UnauthenticatedSession(), nil
	}
	return s.sessions.Load(ctx)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// remember caches session; a failed write only costs the cache.
func (s *AuthService) remember(ctx context.Context, session domain.Session) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		s.logger.Warn("session cache write failed", zap.Error(err))
	}
}
