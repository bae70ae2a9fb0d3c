package service_test

import (
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/darshan-pass-service/internal/service"
)

func TestRequestIDGenerator_ShapeAndUniqueness(t *testing.T) {
	at := time.UnixMilli(1760500000123)
	gen := service.NewRequestIDGenerator(func() time.Time { return at })
	shape := regexp.MustCompile(`^REQ-\d{13}-[0-9A-F]{7}$`)

	first := gen.Generate()
	require.Regexp(t, regexp.MustCompile(`^REQ-1760500000123-`), first)

	seen := map[string]struct{}{first: {}}
	for i := 0; i < 5000; i++ {
		id := gen.Generate()
		require.Regexp(t, shape, id)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestRequestIDGenerator_Concurrent(t *testing.T) {
	gen := service.NewRequestIDGenerator(nil)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]struct{})
	)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				id := gen.Generate()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Len(t, seen, 2000)
}

func TestIsRequestID(t *testing.T) {
	require.True(t, service.IsRequestID("REQ-1-ABCDEFG"))
	require.False(t, service.IsRequestID("REQ-"))
	require.False(t, service.IsRequestID("req-1-ABCDEFG"))
	require.False(t, service.IsRequestID("1234"))
}
