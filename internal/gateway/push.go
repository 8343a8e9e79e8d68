package gateway

import (
	"context"
	"sync"
)

// PushScheduler delivers countdown alerts to a device identified by an
// opaque subscription handle. Scheduling is keyed by source id so arming
// the same task or reminder twice replaces the earlier delivery.
type PushScheduler interface {
	Schedule(ctx context.Context, handle, sourceID, title string, at int64) error
	Cancel(ctx context.Context, handle, sourceID string) error
}

// ScheduledPush is one pending delivery in the simulated scheduler.
type ScheduledPush struct {
	Handle   string
	SourceID string
	Title    string
	At       int64
}

// SimulatedScheduler is an in-memory PushScheduler for tests and local
// runs.
type SimulatedScheduler struct {
	mu      sync.Mutex
	pending map[string]ScheduledPush
}

// NewSimulatedScheduler creates an empty scheduler.
func NewSimulatedScheduler() *SimulatedScheduler {
	return &SimulatedScheduler{pending: make(map[string]ScheduledPush)}
}

// Schedule records a pending delivery, replacing any earlier one for the
// same source.
func (s *SimulatedScheduler) Schedule(ctx context.Context, handle, sourceID, title string, at int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[sourceID] = ScheduledPush{Handle: handle, SourceID: sourceID, Title: title, At: at}
	return nil
}

// Cancel drops a pending delivery. Cancelling an absent source is a no-op.
func (s *SimulatedScheduler) Cancel(ctx context.Context, handle, sourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, sourceID)
	return nil
}

// Pending returns the delivery scheduled for a source, if any.
func (s *SimulatedScheduler) Pending(sourceID string) (ScheduledPush, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[sourceID]
	return p, ok
}

// PendingCount returns the number of scheduled deliveries.
func (s *SimulatedScheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
