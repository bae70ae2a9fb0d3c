package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RequestIDPrefix starts every request token.
const RequestIDPrefix = "REQ-"

const idSuffixLength = 7

// IDGenerator produces request tokens.
type IDGenerator interface {
	Generate() string
}

type requestIDGenerator struct {
	now func() time.Time

	mu   sync.Mutex
	last int64
}

// NewRequestIDGenerator returns a generator of REQ-<unixmillis>-<suffix> tokens. The suffix is
// drawn from a random UUID and the millisecond component never repeats within one generator,
// so two tokens from the same process cannot collide even when the clock stalls.
func NewRequestIDGenerator(now func() time.Time) IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &requestIDGenerator{now: now}
}

func (g *requestIDGenerator) Generate() string {
	g.mu.Lock()
	millis := g.now().UnixMilli()
	if millis <= g.last {
		millis = g.last + 1
	}
	g.last = millis
	g.mu.Unlock()

	random := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("%s%d-%s", RequestIDPrefix, millis, random[:idSuffixLength])
}

// IsRequestID reports whether raw has the shape of a request token.
func IsRequestID(raw string) bool {
	return strings.HasPrefix(raw, RequestIDPrefix) && len(raw) > len(RequestIDPrefix)
}
