package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/binderhq/binderd/internal/bootstrap"
	"github.com/binderhq/binderd/internal/dispatch"
	"github.com/binderhq/binderd/internal/state"
	"github.com/binderhq/binderd/internal/store"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Database string
}

// SeedSummary reports what the seed installed.
type SeedSummary struct {
	Users   int `json:"users"`
	Binders int `json:"binders"`
	Bundles int `json:"bundles"`
	Plans   int `json:"plans"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Initialize a database with the built-in fixture data",
		Long: `Initialize a database with the built-in accounts, binders, shop
bundles, and subscription plans.

The seed writes the durable records and journals the bootstrap actions, so
a seeded database replays from an empty state. Seeding an already-journaled
database is refused; use a fresh file.

Exit codes:
  0 - Database seeded
  2 - Command error (database already seeded, invalid path, etc.)

Examples:
  binderd seed --db ./binderd.db
  binderd seed --db ./binderd.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runSeed(opts *SeedOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	last, err := st.LastSeq(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}
	if last > 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("database already seeded (journal at seq %d)", last))
	}

	seed, err := bootstrap.Load()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load seed", err)
	}

	d := dispatch.New(state.Initial(), st)
	if err := bootstrap.Apply(ctx, st, d, seed); err != nil {
		return WrapExitError(ExitCommandError, "failed to apply seed", err)
	}

	binders := 0
	for _, bs := range seed.Binders {
		binders += len(bs)
	}
	summary := SeedSummary{
		Users:   len(seed.Users),
		Binders: binders,
		Bundles: len(seed.Bundles),
		Plans:   len(seed.Plans),
	}

	if opts.Format == "json" {
		return writeOK(cmd.OutOrStdout(), summary)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s: %d users, %d binders, %d bundles, %d plans\n",
		opts.Database, summary.Users, summary.Binders, summary.Bundles, summary.Plans)
	return nil
}
