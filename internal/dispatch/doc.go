// Package dispatch owns the single-writer action loop. It stamps every
// action with a sequence number and a wall-clock time, appends it to the
// journal, runs the reducer, installs the new state, and applies the
// resulting persistence effects.
//
// All state transitions flow through one Dispatcher. External callers either
// Dispatch synchronously or Enqueue for the Run loop; both paths serialize on
// the same lock, so observers always see a state produced by a whole
// transition.
package dispatch
