package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/spec-kit/darshan-pass-service/internal/domain"
	"github.com/spec-kit/darshan-pass-service/internal/persistence"
)

// RequestsKey is the well-known key holding the request collection.
const RequestsKey = "appRequests"

var (
	ErrNotFound          = errors.New("request not found")
	ErrDuplicateID       = errors.New("duplicate request id")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// RequestRepository encapsulates request persistence.
type RequestRepository interface {
	Insert(ctx context.Context, req *domain.Request) error
	ListBySubmitter(ctx context.Context, identity string) ([]domain.Request, error)
	GetByID(ctx context.Context, id string) (*domain.Request, error)
	// UpdateStatus reports whether the stored status changed. Setting the current status
	// again is a no-op.
	UpdateStatus(ctx context.Context, id string, status domain.RequestStatus) (*domain.Request, bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// requestRepository holds the whole collection in memory and writes it back through the
// KeyValue surface after every mutation, before returning.
type requestRepository struct {
	mu       sync.RWMutex
	kv       persistence.KeyValue
	key      string
	requests []domain.Request
	index    map[string]int
}

// NewRequestRepository loads the persisted collection and returns a repository over it.
func NewRequestRepository(ctx context.Context, kv persistence.KeyValue, keyPrefix string) (RequestRepository, error) {
	r := &requestRepository{
		kv:    kv,
		key:   keyPrefix + RequestsKey,
		index: make(map[string]int),
	}
	if err := r.load(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *requestRepository) load(ctx context.Context) error {
	blob, found, err := r.kv.Load(ctx, r.key)
	if err != nil {
		return fmt.Errorf("load %s: %w", r.key, err)
	}
	if !found || len(blob) == 0 {
		return nil
	}

	var records []requestRecord
	if err := json.Unmarshal(blob, &records); err != nil {
		return fmt.Errorf("decode %s: %w", r.key, err)
	}
	for _, rec := range records {
		req, err := rec.toDomain()
		if err != nil {
			return fmt.Errorf("decode %s: %w", r.key, err)
		}
		if _, exists := r.index[req.ID]; exists {
			return fmt.Errorf("decode %s: %w: %s", r.key, ErrDuplicateID, req.ID)
		}
		r.index[req.ID] = len(r.requests)
		r.requests = append(r.requests, req)
	}
	return nil
}

// persist writes candidate; the in-memory slice is only swapped after the write succeeds.
func (r *requestRepository) persist(ctx context.Context, candidate []domain.Request) error {
	records := make([]requestRecord, 0, len(candidate))
	for i := range candidate {
		records = append(records, toRecord(&candidate[i]))
	}
	blob, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.key, err)
	}
	if err := r.kv.Save(ctx, r.key, blob); err != nil {
		return fmt.Errorf("save %s: %w", r.key, err)
	}
	r.requests = candidate
	r.reindex()
	return nil
}

func (r *requestRepository) reindex() {
	r.index = make(map[string]int, len(r.requests))
	for i := range r.requests {
		r.index[r.requests[i].ID] = i
	}
}

func (r *requestRepository) snapshot() []domain.Request {
	out := make([]domain.Request, len(r.requests))
	copy(out, r.requests)
	return out
}

func (r *requestRepository) Insert(ctx context.Context, req *domain.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[req.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, req.ID)
	}
	candidate := append(r.snapshot(), req.Clone())
	return r.persist(ctx, candidate)
}

func (r *requestRepository) ListBySubmitter(_ context.Context, identity string) ([]domain.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []domain.Request{}
	// Walk newest-inserted first so equal timestamps keep the latest submission on top.
	for i := len(r.requests) - 1; i >= 0; i-- {
		if r.requests[i].SubmitterIdentity == identity {
			result = append(result, r.requests[i].Clone())
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].SubmittedAt.After(result[j].SubmittedAt)
	})
	return result, nil
}

func (r *requestRepository) GetByID(_ context.Context, id string) (*domain.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return nil, ErrNotFound
	}
	req := r.requests[i].Clone()
	return &req, nil
}

func (r *requestRepository) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus) (*domain.Request, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return nil, false, ErrNotFound
	}
	current := r.requests[i]
	if current.Status == status {
		req := current.Clone()
		return &req, false, nil
	}
	if !current.Status.CanTransitionTo(status) {
		return nil, false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, status)
	}

	candidate := r.snapshot()
	candidate[i].Status = status
	if err := r.persist(ctx, candidate); err != nil {
		return nil, false, err
	}
	req := r.requests[i].Clone()
	return &req, true, nil
}

func (r *requestRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return false, nil
	}
	candidate := make([]domain.Request, 0, len(r.requests)-1)
	candidate = append(candidate, r.requests[:i]...)
	candidate = append(candidate, r.requests[i+1:]...)
	if err := r.persist(ctx, candidate); err != nil {
		return false, err
	}
	return true, nil
}
