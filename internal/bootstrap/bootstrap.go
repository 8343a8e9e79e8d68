package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/binderhq/binderd/internal/dispatch"
	"github.com/binderhq/binderd/internal/domain"
	"github.com/binderhq/binderd/internal/state"
	"github.com/binderhq/binderd/internal/store"
)

// Apply seeds the durable records and dispatches the catalog actions so the
// journal can rebuild the same state from Initial. Idempotent over records:
// re-seeding rewrites them; the catalog actions are insert-or-replace.
func Apply(ctx context.Context, st *store.Store, d *dispatch.Dispatcher, seed *Seed) error {
	directory, err := seed.Directory()
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	if err := st.SaveDirectory(ctx, directory); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	userIDs := make([]string, 0, len(seed.Binders))
	for id := range seed.Binders {
		userIDs = append(userIDs, id)
	}
	sort.Strings(userIDs)
	for _, userID := range userIDs {
		if err := st.SaveBinders(ctx, userID, seed.Binders[userID]); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	if _, err := d.Dispatch(ctx, state.SetDirectory(directory)); err != nil {
		return fmt.Errorf("seed: set directory: %w", err)
	}
	if _, err := d.Dispatch(ctx, state.SetPlans(seed.Plans)); err != nil {
		return fmt.Errorf("seed: set plans: %w", err)
	}
	for _, b := range seed.Bundles {
		if _, err := d.Dispatch(ctx, state.AddBundle(b)); err != nil {
			return fmt.Errorf("seed: add bundle %s: %w", b.ID, err)
		}
	}

	slog.Info("seed applied",
		"users", len(directory),
		"collections", len(seed.Binders),
		"bundles", len(seed.Bundles),
		"plans", len(seed.Plans),
	)
	return nil
}

// RebuildCatalog scans every stored collection for publishing binders and
// dispatches their bundle projections. Used when the journal has been
// truncated and the catalog must be re-derived from records.
func RebuildCatalog(ctx context.Context, st *store.Store, d *dispatch.Dispatcher) error {
	collections, err := st.ReadAllCollections(ctx)
	if err != nil {
		return fmt.Errorf("rebuild catalog: %w", err)
	}

	userIDs := make([]string, 0, len(collections))
	for id := range collections {
		userIDs = append(userIDs, id)
	}
	sort.Strings(userIDs)

	count := 0
	for _, userID := range userIDs {
		binders := collections[userID]
		for i := range binders {
			bundle, ok := domain.ProjectBundle(&binders[i])
			if !ok {
				continue
			}
			if _, err := d.Dispatch(ctx, state.AddBundle(bundle)); err != nil {
				return fmt.Errorf("rebuild catalog: bundle %s: %w", bundle.ID, err)
			}
			count++
		}
	}

	slog.Info("catalog rebuilt", "bundles", count)
	return nil
}

// Resume replays the stored journal into a dispatcher whose clock continues
// from the journal's last sequence number.
func Resume(ctx context.Context, st *store.Store, opts ...dispatch.Option) (*dispatch.Dispatcher, error) {
	actions, err := st.ReadJournal(ctx)
	if err != nil {
		return nil, fmt.Errorf("resume: %w", err)
	}
	lastSeq, err := st.LastSeq(ctx)
	if err != nil {
		return nil, fmt.Errorf("resume: %w", err)
	}

	current := dispatch.Replay(actions)

	opts = append([]dispatch.Option{dispatch.WithClock(dispatch.NewClockAt(lastSeq))}, opts...)
	d := dispatch.New(current, st, opts...)

	slog.Info("journal replayed", "actions", len(actions), "seq", lastSeq)
	return d, nil
}
