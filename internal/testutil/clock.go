// Package testutil provides deterministic stand-ins for the process's
// nondeterministic inputs: wall-clock time, identifier generation, and the
// persistence seam.
package testutil

import "sync"

// FixedNow returns a time source pinned to one instant (unix
// milliseconds).
func FixedNow(at int64) func() int64 {
	return func() int64 { return at }
}

// SteppingNow returns a time source that starts at start and advances by
// step on every call. Scenarios that arm and then expire countdowns use
// this to move time forward without sleeping.
func SteppingNow(start, step int64) func() int64 {
	var mu sync.Mutex
	now := start - step
	return func() int64 {
		mu.Lock()
		defer mu.Unlock()
		now += step
		return now
	}
}
