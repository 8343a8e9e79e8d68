package dispatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binderhq/binderd/internal/domain"
	"github.com/binderhq/binderd/internal/state"
	"github.com/binderhq/binderd/internal/testutil"
)

const testTime = int64(1_700_000_000_000)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDispatcher(p Persister) *Dispatcher {
	return New(state.Initial(), p,
		WithNow(testutil.FixedNow(testTime)),
		WithLogger(quietLogger()),
	)
}

func login(t *testing.T, d *Dispatcher, role domain.UserRole, binders []domain.Binder) state.AppState {
	t.Helper()
	u := domain.User{ID: "user-1", Email: "u@example.com", Role: role}
	s, err := d.Dispatch(context.Background(), state.Authenticate(u, binders, []domain.User{u}, nil))
	require.NoError(t, err)
	return s
}

func TestDispatchStampsActions(t *testing.T) {
	p := testutil.NewMemoryPersister()
	d := newTestDispatcher(p)

	_, err := d.Dispatch(context.Background(), state.SetView(domain.ViewShop))
	require.NoError(t, err)
	_, err = d.Dispatch(context.Background(), state.SetView(domain.ViewSettings))
	require.NoError(t, err)

	require.Len(t, p.Journal, 2)
	assert.Equal(t, int64(1), p.Journal[0].Seq)
	assert.Equal(t, int64(2), p.Journal[1].Seq)
	assert.Equal(t, testTime, p.Journal[0].Time)
	assert.Equal(t, int64(2), d.Clock().Current())
}

func TestDispatchKeepsExplicitTime(t *testing.T) {
	p := testutil.NewMemoryPersister()
	d := newTestDispatcher(p)

	a := state.SetView(domain.ViewShop)
	a.Time = 42
	_, err := d.Dispatch(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.Journal[0].Time)
}

func TestDispatchAppliesEffects(t *testing.T) {
	p := testutil.NewMemoryPersister()
	d := newTestDispatcher(p)

	s := login(t, d, domain.RoleFree, nil)
	require.True(t, s.Authenticated)

	// authenticate persisted the session
	require.NotNil(t, p.Session)
	assert.Equal(t, "user-1", p.Session.ID)

	// a binder write lands in the owner's stored collection
	b := domain.Binder{ID: "binder-1", OwnerID: "user-1", Name: "Notes"}
	_, err := d.Dispatch(context.Background(), state.AddBinder(b))
	require.NoError(t, err)
	require.Len(t, p.Binders("user-1"), 1)
	assert.Equal(t, "Notes", p.Binders("user-1")[0].Name)

	// logout clears the session record
	_, err = d.Dispatch(context.Background(), state.Logout())
	require.NoError(t, err)
	assert.Nil(t, p.Session)
}

func TestDispatchJournalAppendFailureAborts(t *testing.T) {
	p := testutil.NewMemoryPersister()
	d := newTestDispatcher(p)
	login(t, d, domain.RoleFree, nil)

	p.FailAppend = errors.New("disk full")
	before := d.State()

	_, err := d.Dispatch(context.Background(), state.SetView(domain.ViewShop))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "journal append")

	// nothing was installed and nothing persisted
	after := d.State()
	assert.Equal(t, before.CurrentView, after.CurrentView)
	assert.Len(t, p.Journal, 1)
}

func TestDispatchRejectionIsJournaled(t *testing.T) {
	p := testutil.NewMemoryPersister()
	d := newTestDispatcher(p)
	login(t, d, domain.RoleFree, nil)

	before := d.State()
	_, err := d.Dispatch(context.Background(), state.DeletePage("binder-nope", "page-1"))
	require.Error(t, err)
	assert.True(t, state.IsRejection(err, state.CodeNotFound))

	// the rejection is part of the journal; state is unchanged
	assert.Len(t, p.Journal, 2)
	assert.Equal(t, before, d.State())
}

func TestReplayReproducesDispatchedState(t *testing.T) {
	p := testutil.NewMemoryPersister()
	d := newTestDispatcher(p)

	login(t, d, domain.RoleVIP, nil)
	ctx := context.Background()

	b := domain.Binder{ID: "binder-1", OwnerID: "user-1", Name: "Notes",
		Pages: []domain.Page{{ID: "page-1", Tasks: []domain.Task{{ID: "task-1", DueAt: testTime + 60_000}}}}}
	_, err := d.Dispatch(ctx, state.AddBinder(b))
	require.NoError(t, err)
	_, err = d.Dispatch(ctx, state.StartTaskTimer("binder-1", "page-1", "task-1"))
	require.NoError(t, err)
	// a rejection in the middle of the journal
	_, err = d.Dispatch(ctx, state.DeleteTask("binder-1", "page-1", "task-1"))
	require.True(t, state.IsRejection(err, state.CodeTaskTimerActive))
	_, err = d.Dispatch(ctx, state.SetView(domain.ViewShop))
	require.NoError(t, err)

	liveState := d.State()
	live, err := liveState.Snapshot()
	require.NoError(t, err)

	replayedState := Replay(p.Journal)
	replayed, err := replayedState.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, string(live), string(replayed))
}

func TestReplayFromIntermediateState(t *testing.T) {
	p := testutil.NewMemoryPersister()
	d := newTestDispatcher(p)
	login(t, d, domain.RoleFree, nil)

	mid := d.State()
	_, err := d.Dispatch(context.Background(), state.SetView(domain.ViewSettings))
	require.NoError(t, err)

	resumed := ReplayFrom(mid, p.Journal[1:])
	assert.Equal(t, domain.ViewSettings, resumed.CurrentView)
}

func TestRunDrainsQueue(t *testing.T) {
	p := testutil.NewMemoryPersister()
	d := newTestDispatcher(p)

	require.True(t, d.Enqueue(state.SetView(domain.ViewShop)))
	require.True(t, d.Enqueue(state.SetView(domain.ViewSettings)))

	done := make(chan error, 1)
	go func() { done <- d.Run(context.Background()) }()

	require.Eventually(t, func() bool {
		return d.State().CurrentView == domain.ViewSettings
	}, time.Second, time.Millisecond)

	d.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after Stop")
	}

	assert.False(t, d.Enqueue(state.Logout()), "enqueue after stop")
	assert.Len(t, p.Journal, 2)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	d := newTestDispatcher(testutil.NewMemoryPersister())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestRunContinuesPastRejections(t *testing.T) {
	p := testutil.NewMemoryPersister()
	d := newTestDispatcher(p)
	login(t, d, domain.RoleFree, nil)

	d.Enqueue(state.DeletePage("binder-nope", "page-1"))
	d.Enqueue(state.SetView(domain.ViewShop))

	go d.Run(context.Background())
	defer d.Stop()

	require.Eventually(t, func() bool {
		return d.State().CurrentView == domain.ViewShop
	}, time.Second, time.Millisecond)
}
