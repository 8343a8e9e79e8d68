package dispatch

import (
	"log/slog"

	"github.com/binderhq/binderd/internal/state"
)

// Replay folds a journaled action sequence over the initial state and
// returns the result. Effects are not re-applied: the stored records already
// reflect them, and replay exists to rebuild the in-memory state.
//
// Actions come pre-stamped from the journal, so every time-guarded decision
// resolves exactly as it did live. Rejected actions replay as identity
// transitions and are skipped silently.
func Replay(actions []state.Action) state.AppState {
	return ReplayFrom(state.Initial(), actions)
}

// ReplayFrom folds actions over an explicit starting state.
func ReplayFrom(s state.AppState, actions []state.Action) state.AppState {
	for _, a := range actions {
		next, _, err := state.Reduce(s, a)
		if err != nil {
			slog.Debug("replay: action rejected",
				"type", a.Type,
				"seq", a.Seq,
				"error", err,
			)
			continue
		}
		s = next
	}
	return s
}
