package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spec-kit/darshan-pass-service/internal/domain"
	"github.com/spec-kit/darshan-pass-service/internal/persistence"
)

// SessionKey is the well-known key holding the last session.
const SessionKey = "appAuth"

// SessionRepository caches the most recent session. It is never consulted for authorization.
type SessionRepository interface {
	Save(ctx context.Context, session domain.Session) error
	Load(ctx context.Context) (domain.Session, error)
}

type sessionRepository struct {
	kv  persistence.KeyValue
	key string
}

// NewSessionRepository builds a repository over kv.
func NewSessionRepository(kv persistence.KeyValue, keyPrefix string) SessionRepository {
	return &sessionRepository{kv: kv, key: keyPrefix + SessionKey}
}

func (r *sessionRepository) Save(ctx context.Context, session domain.Session) error {
	blob, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.key, err)
	}
	if err := r.kv.Save(ctx, r.key, blob); err != nil {
		return fmt.Errorf("save %s: %w", r.key, err)
	}
	return nil
}

// Load returns the unauthenticated session when nothing was saved yet.
func (r *sessionRepository) Load(ctx context.Context) (domain.Session, error) {
	blob, found, err := r.kv.Load(ctx, r.key)
	if err != nil {
		return domain.Session{}, fmt.Errorf("load %s: %w", r.key, err)
	}
	if !found || len(blob) == 0 {
		return domain.UnauthenticatedSession(), nil
	}
	var session domain.Session
	if err := json.Unmarshal(blob, &session); err != nil {
		return domain.Session{}, fmt.Errorf("decode %s: %w", r.key, err)
	}
	return session, nil
}
