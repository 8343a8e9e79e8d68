package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/binderhq/binderd/internal/domain"
	"github.com/binderhq/binderd/internal/state"
)

// Persister applies journal appends and persistence effects. Implemented by
// store.Store (production) and testutil.MemoryPersister (tests).
type Persister interface {
	AppendAction(ctx context.Context, a state.Action) error

	SaveDirectory(ctx context.Context, users []domain.User) error
	UpsertBinder(ctx context.Context, ownerID string, b domain.Binder) error
	RemoveBinder(ctx context.Context, ownerID, binderID string) error
	SaveBinders(ctx context.Context, userID string, binders []domain.Binder) error
	DeleteBinders(ctx context.Context, userID string) error
	SaveSession(ctx context.Context, u domain.User) error
	ClearSession(ctx context.Context) error
}

// NowFunc supplies wall-clock time in unix milliseconds. Swapped for a fixed
// function in tests and replays so time-guarded transitions are
// deterministic.
type NowFunc func() int64

// SystemNow is the production time source.
func SystemNow() int64 {
	return time.Now().UnixMilli()
}

// Dispatcher is the single writer over the application state.
//
// Every transition follows the same sequence: stamp the action from the
// logical clock and the time source, append it to the journal, reduce,
// install the new state, then apply effects. Effects are fire-and-forget:
// a failed write is logged and does not roll back the installed state.
//
// A failed journal append DOES abort the transition. The journal is the
// source of truth for replay; a state the journal cannot reproduce must not
// be installed.
type Dispatcher struct {
	mu      sync.Mutex
	current state.AppState

	clock     *Clock
	now       NowFunc
	persister Persister
	queue     *actionQueue
	logger    *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithNow replaces the wall-clock source.
func WithNow(now NowFunc) Option {
	return func(d *Dispatcher) { d.now = now }
}

// WithClock replaces the logical clock, typically resumed at the journal's
// last sequence number via NewClockAt.
func WithClock(c *Clock) Option {
	return func(d *Dispatcher) { d.clock = c }
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// New creates a Dispatcher over the given starting state and persister.
func New(initial state.AppState, p Persister, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		current:   initial,
		clock:     NewClock(),
		now:       SystemNow,
		persister: p,
		queue:     newActionQueue(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the current state. The value shares slices with the live
// state; callers must treat it as read-only, which the reducer's
// never-mutate contract makes safe.
func (d *Dispatcher) State() state.AppState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Clock returns the dispatcher's logical clock.
func (d *Dispatcher) Clock() *Clock {
	return d.clock
}

// Dispatch runs one action synchronously and returns the resulting state.
//
// A RejectionError reports a validated no-op: the returned state equals the
// input state and nothing was persisted beyond the journal entry. Any other
// error means the journal append failed and the action was discarded.
func (d *Dispatcher) Dispatch(ctx context.Context, a state.Action) (state.AppState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.apply(ctx, a)
}

// Enqueue submits an action for the Run loop. Thread-safe.
// Returns false after Stop.
func (d *Dispatcher) Enqueue(a state.Action) bool {
	return d.queue.Enqueue(a)
}

// QueueLen returns the number of pending enqueued actions.
func (d *Dispatcher) QueueLen() int {
	return d.queue.Len()
}

// Run drains the queue until the context is cancelled or Stop is called.
// Must be called from exactly one goroutine.
//
// Rejections and effect failures are logged and the loop continues; stopping
// on a validation error would wedge every action behind it.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("dispatcher starting")

	for {
		a, ok := d.queue.TryDequeue()
		if ok {
			d.mu.Lock()
			_, err := d.apply(ctx, a)
			d.mu.Unlock()
			if err != nil {
				d.logger.Error("action failed",
					"type", a.Type,
					"seq", a.Seq,
					"error", err,
				)
			}
			continue
		}

		select {
		case <-ctx.Done():
			d.logger.Info("dispatcher stopping: context cancelled")
			d.queue.Close()
			return ctx.Err()

		case <-d.queue.Wait():
			if d.queue.Len() == 0 {
				d.logger.Info("dispatcher stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the queue, which makes Run return once drained.
func (d *Dispatcher) Stop() {
	d.queue.Close()
}

// apply runs one stamped transition under d.mu.
func (d *Dispatcher) apply(ctx context.Context, a state.Action) (state.AppState, error) {
	a.Seq = d.clock.Next()
	if a.Time == 0 {
		a.Time = d.now()
	}

	if err := d.persister.AppendAction(ctx, a); err != nil {
		return d.current, fmt.Errorf("journal append %s seq=%d: %w", a.Type, a.Seq, err)
	}

	next, effects, err := state.Reduce(d.current, a)
	if err != nil {
		// Journaled but rejected: replay reproduces the same identity
		// transition.
		d.logger.Debug("action rejected",
			"type", a.Type,
			"seq", a.Seq,
			"error", err,
		)
		return d.current, err
	}

	d.current = next

	for _, eff := range effects {
		if effErr := d.applyEffect(ctx, eff); effErr != nil {
			d.logger.Error("effect failed",
				"kind", eff.Kind,
				"user", eff.UserID,
				"action", a.Type,
				"seq", a.Seq,
				"error", effErr,
			)
		}
	}

	d.logger.Debug("action applied",
		"type", a.Type,
		"seq", a.Seq,
		"effects", len(effects),
	)
	return d.current, nil
}

func (d *Dispatcher) applyEffect(ctx context.Context, eff state.Effect) error {
	switch eff.Kind {
	case state.EffectSaveDirectory:
		return d.persister.SaveDirectory(ctx, eff.Users)
	case state.EffectUpsertBinder:
		return d.persister.UpsertBinder(ctx, eff.UserID, *eff.Binder)
	case state.EffectRemoveBinder:
		return d.persister.RemoveBinder(ctx, eff.UserID, eff.BinderID)
	case state.EffectSaveBinders:
		return d.persister.SaveBinders(ctx, eff.UserID, eff.Binders)
	case state.EffectDeleteBinders:
		return d.persister.DeleteBinders(ctx, eff.UserID)
	case state.EffectSaveSession:
		return d.persister.SaveSession(ctx, *eff.User)
	case state.EffectClearSession:
		return d.persister.ClearSession(ctx)
	default:
		return fmt.Errorf("unknown effect kind %q", eff.Kind)
	}
}
