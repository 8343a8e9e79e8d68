package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/binderhq/binderd/internal/bootstrap"
	"github.com/binderhq/binderd/internal/store"
)

// LoginOptions holds flags for the login command.
type LoginOptions struct {
	*RootOptions
	Database string
	Password string
}

// SessionInfo reports the session after a login or logout.
type SessionInfo struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"user_id,omitempty"`
	Email         string `json:"email,omitempty"`
	Role          string `json:"role,omitempty"`
	Binders       int    `json:"binders"`
	View          string `json:"view"`
}

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoginOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Authenticate against a seeded database",
		Long: `Authenticate with an email and password from the account directory.

On success the session is persisted and subsequent commands see the
authenticated state.

Exit codes:
  0 - Authenticated
  1 - Invalid credentials
  2 - Command error (database not found, etc.)

Examples:
  binderd login alex.doe@example.com --db ./binderd.db --password secret
  binderd login c.admin@acme.corp --db ./binderd.db --password secret --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Password, "password", "", "account password (required)")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func runLogin(opts *LoginOptions, email string, cmd *cobra.Command) error {
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

	s, err := bootstrap.Login(ctx, st, d, email, opts.Password)
	if err != nil {
		if errors.Is(err, bootstrap.ErrInvalidCredentials) {
			if opts.Format == "json" {
				return writeFailure(cmd.OutOrStdout(), nil, "E_CREDENTIALS", "invalid credentials")
			}
			return NewExitError(ExitFailure, "invalid credentials")
		}
		return WrapExitError(ExitCommandError, "login failed", err)
	}

	info := SessionInfo{
		Authenticated: s.Authenticated,
		Binders:       len(s.Binders),
		View:          string(s.CurrentView),
	}
	if s.User != nil {
		info.UserID = s.User.ID
		info.Email = s.User.Email
		info.Role = string(s.EffectiveRole())
	}

	if opts.Format == "json" {
		return writeOK(cmd.OutOrStdout(), info)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s), %d binder(s)\n", info.Email, info.Role, info.Binders)
	return nil
}
