package kv

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// IDGenerator mints opaque record identifiers: a millisecond timestamp plus
// a random payload, lexically sortable by creation time.
type IDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

func (g *IDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), g.entropy).String()
}

// NewReceiptNumber returns the display code printed on receipts: REC followed
// by the last six digits of the unix millisecond timestamp.
func (g *IDGenerator) NewReceiptNumber() string {
	millis := time.Now().UTC().UnixMilli()
	return fmt.Sprintf("REC%06d", millis%1_000_000)
}
