// Package state is the application core: a single pure reducer that owns
// every domain transition.
//
// The sole entry point is Reduce(state, action), which returns the next
// state plus the persistence effects the transition requires. Nothing else
// in the repository mutates domain state.
//
// Contract:
//   - Reduce never mutates its inputs. Changed collections are rebuilt;
//     unchanged ones are shared structurally.
//   - Invalid transitions are identity transitions. Authorization failures
//     return the state unchanged and no error (callers pre-check; the
//     reducer is defense-in-depth). Validation failures return the state
//     unchanged plus a *RejectionError.
//   - All wall-clock comparisons use the action's stamped Time, never
//     time.Now(), so a journaled action sequence replays deterministically.
//   - Effects are descriptions, not calls. The dispatcher applies them
//     fire-and-forget after the transition; a failed write is logged and
//     never rolls the in-memory state back.
package state
