package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/binderhq/binderd/internal/bootstrap"
	"github.com/binderhq/binderd/internal/store"
)

// StateOptions holds flags for the state command.
type StateOptions struct {
	*RootOptions
	Database string
}

// NewStateCommand creates the state command.
func NewStateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Print the current application state",
		Long: `Replay the journal, restore the persisted session, and print the
resulting state.

With --format json the full canonical state snapshot is printed. The text
form prints a one-screen summary.

Examples:
  binderd state --db ./binderd.db
  binderd state --db ./binderd.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runState(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runState(opts *StateOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	d, err := bootstrap.Resume(ctx, st)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to resume journal", err)
	}

	s, _, err := bootstrap.Restore(ctx, st, d)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to restore session", err)
	}

	if opts.Format == "json" {
		snapshot, err := s.Snapshot()
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to snapshot state", err)
		}
		return writeOK(cmd.OutOrStdout(), json.RawMessage(snapshot))
	}

	w := cmd.OutOrStdout()
	if s.Authenticated && s.User != nil {
		fmt.Fprintf(w, "Session: %s (%s)\n", s.User.Email, s.EffectiveRole())
	} else {
		fmt.Fprintln(w, "Session: none")
	}
	fmt.Fprintf(w, "View: %s\n", s.CurrentView)
	if s.SelectedBinderID != "" {
		fmt.Fprintf(w, "Selected: binder %s", s.SelectedBinderID)
		if s.SelectedPageID != "" {
			fmt.Fprintf(w, ", page %s", s.SelectedPageID)
		}
		fmt.Fprintln(w)
	}
	if s.SimulatedRole != "" {
		fmt.Fprintf(w, "Simulating: %s\n", s.SimulatedRole)
	}
	fmt.Fprintf(w, "Binders: %d\n", len(s.Binders))
	fmt.Fprintf(w, "Catalog: %d bundle(s), %d plan(s)\n", len(s.Bundles), len(s.Plans))
	fmt.Fprintf(w, "Directory: %d account(s)\n", len(s.Users))
	return nil
}
