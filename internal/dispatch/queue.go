package dispatch

import (
	"sync"

	"github.com/binderhq/binderd/internal/state"
)

// actionQueue is a thread-safe FIFO of pending actions.
//
// The queue is unbounded so producers never block; the Run loop drains it.
// A buffered signal channel of size 1 coalesces wakeups and lets the loop
// wait with context awareness.
type actionQueue struct {
	mu      sync.Mutex
	actions []state.Action
	closed  bool
	signal  chan struct{}
}

func newActionQueue() *actionQueue {
	return &actionQueue{
		actions: make([]state.Action, 0, 16),
		signal:  make(chan struct{}, 1),
	}
}

// Enqueue appends an action. Returns false if the queue is closed.
func (q *actionQueue) Enqueue(a state.Action) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.actions = append(q.actions, a)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue pops the front action without blocking.
func (q *actionQueue) TryDequeue() (state.Action, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.actions) == 0 {
		return state.Action{}, false
	}
	a := q.actions[0]

	// Zero the slot so the backing array does not pin payload pointers.
	q.actions[0] = state.Action{}
	if len(q.actions) == 1 {
		q.actions = q.actions[:0]
	} else {
		q.actions = q.actions[1:]
	}
	return a, true
}

// Wait returns the wakeup channel for context-aware waiting. The channel is
// closed when the queue closes.
func (q *actionQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of pending actions.
func (q *actionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.actions)
}

// Close marks the queue closed and wakes all waiters.
func (q *actionQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
