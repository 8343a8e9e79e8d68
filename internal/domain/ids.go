package domain

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator mints entity identifiers. Implemented by UUIDv7Generator
// (production) and SequentialGenerator (tests and replay).
//
// All id minting happens in glue code; the reducer only ever receives ids in
// action payloads, which keeps transitions replayable.
type IDGenerator interface {
	NewID() string
}

// UUIDv7Generator mints time-sortable UUIDv7 identifiers.
//
// UUIDv7 embeds a timestamp in the most significant bits, so entity ids sort
// by creation time. Stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// NewID returns a new hyphenated UUIDv7 string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SequentialGenerator mints "<prefix>-1", "<prefix>-2", ... identifiers.
//
// Deterministic ids make scenario runs reproducible and golden snapshots
// byte-stable. Safe for concurrent use via internal mutex.
type SequentialGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialGenerator creates a generator with the given id prefix.
// An empty prefix defaults to "id".
func NewSequentialGenerator(prefix string) *SequentialGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &SequentialGenerator{prefix: prefix}
}

// NewID returns the next identifier in the sequence.
func (g *SequentialGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
