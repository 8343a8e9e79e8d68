package cli

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/binderhq/binderd/internal/state"
	"github.com/binderhq/binderd/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// ReplayResult holds the replay statistics and verification outcome.
type ReplayResult struct {
	Actions       int   `json:"actions"`
	Applied       int   `json:"applied"`
	Rejected      int   `json:"rejected"`
	LastSeq       int64 `json:"last_seq"`
	Deterministic bool  `json:"deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay the action journal and verify determinism",
		Long: `Fold the action journal over the initial state twice and verify both
passes produce byte-identical state snapshots.

Reports how many journaled actions applied and how many were recorded
rejections.

Exit codes:
  0 - Replay is deterministic
  1 - Determinism verification failed
  2 - Command error (database not found, etc.)

Examples:
  binderd replay --db ./binderd.db
  binderd replay --db ./binderd.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	actions, err := st.ReadJournal(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}
	lastSeq, err := st.LastSeq(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	first, applied, rejected := fold(actions)
	second, _, _ := fold(actions)

	firstSnap, err := first.Snapshot()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to snapshot first pass", err)
	}
	secondSnap, err := second.Snapshot()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to snapshot second pass", err)
	}

	result := ReplayResult{
		Actions:       len(actions),
		Applied:       applied,
		Rejected:      rejected,
		LastSeq:       lastSeq,
		Deterministic: bytes.Equal(firstSnap, secondSnap),
	}

	if opts.Format == "json" {
		if !result.Deterministic {
			return writeFailure(cmd.OutOrStdout(), result, "E_DETERMINISM", "determinism verification failed")
		}
		return writeOK(cmd.OutOrStdout(), result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Replayed %d action(s) to seq %d: %d applied, %d rejected\n",
		result.Actions, result.LastSeq, result.Applied, result.Rejected)
	if !result.Deterministic {
		fmt.Fprintln(w, "✗ Determinism verification failed")
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	fmt.Fprintln(w, "✓ Replay verified deterministic")
	return nil
}

// fold replays the journal over the initial state, counting applied
// transitions and recorded rejections.
func fold(actions []state.Action) (state.AppState, int, int) {
	s := state.Initial()
	applied, rejected := 0, 0
	for _, a := range actions {
		next, _, err := state.Reduce(s, a)
		if err != nil {
			rejected++
			continue
		}
		s = next
		applied++
	}
	return s, applied, rejected
}
