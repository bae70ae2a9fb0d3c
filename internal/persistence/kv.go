package persistence

import (
	"context"
	"errors"
	"sync"
)

// ErrBackendUnavailable is returned when a backend was configured without a live connection.
var ErrBackendUnavailable = errors.New("persistence backend not configured")

// KeyValue is the durable blob surface the stores are built on. Save must be durable
// before it returns.
type KeyValue interface {
	Save(ctx context.Context, key string, blob []byte) error
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Ping(ctx context.Context) error
	Name() string
}

// MemoryKV keeps blobs in process memory. It is durable only for the process lifetime.
type MemoryKV struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryKV builds an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{blobs: make(map[string][]byte)}
}

func (m *MemoryKV) Save(_ context.Context, key string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = append([]byte(nil), blob...)
	return nil
}

func (m *MemoryKV) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.blobs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), blob...), true, nil
}

func (m *MemoryKV) Ping(context.Context) error { return nil }

func (m *MemoryKV) Name() string { return "memory" }
