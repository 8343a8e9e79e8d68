package dispatch

import "sync/atomic"

// Clock is the monotonic logical clock that orders actions. Every dispatched
// action is stamped with a strictly increasing seq, so the journal has a
// total order independent of wall-clock time.
//
// Safe for concurrent use, though the single-writer dispatch path means one
// goroutine normally calls Next.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0; the first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock resumed at a specific sequence number. Used
// after journal replay so new actions continue the numbering.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next increments and returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the clock's position without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
