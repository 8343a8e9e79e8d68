package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/binderhq/binderd/internal/bootstrap"
	"github.com/binderhq/binderd/internal/store"
)

// LogoutOptions holds flags for the logout command.
type LogoutOptions struct {
	*RootOptions
	Database string
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogoutOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "End the persisted session",
		Long: `End the session, clearing the persisted session record. A no-op when
no session exists.

Examples:
  binderd logout --db ./binderd.db`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runLogout(opts *LogoutOptions, cmd *cobra.Command) error {
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

	s, err := bootstrap.Logout(ctx, d)
	if err != nil {
		return WrapExitError(ExitCommandError, "logout failed", err)
	}

	if opts.Format == "json" {
		return writeOK(cmd.OutOrStdout(), SessionInfo{
			Authenticated: s.Authenticated,
			View:          string(s.CurrentView),
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
	return nil
}
