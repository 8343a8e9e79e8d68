package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binderhq/binderd/internal/dispatch"
	"github.com/binderhq/binderd/internal/domain"
	"github.com/binderhq/binderd/internal/state"
	"github.com/binderhq/binderd/internal/store"
	"github.com/binderhq/binderd/internal/testutil"
)

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "binderd.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	seed, err := Load()
	require.NoError(t, err)

	d := dispatch.New(state.Initial(), st, dispatch.WithNow(testutil.FixedNow(1_700_000_000_000)))
	require.NoError(t, Apply(context.Background(), st, d, seed))
	return st
}

func resume(t *testing.T, st *store.Store) *dispatch.Dispatcher {
	t.Helper()
	d, err := Resume(context.Background(), st, dispatch.WithNow(testutil.FixedNow(1_700_000_000_000)))
	require.NoError(t, err)
	return d
}

func TestApplySeedsRecordsAndJournal(t *testing.T) {
	st := seededStore(t)
	ctx := context.Background()

	users, err := st.ReadDirectory(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 4)

	binders, err := st.ReadBinders(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, binders, 2)

	// directory, plans and two bundles went through the journal
	seq, err := st.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), seq)
}

func TestResumeRebuildsCatalogFromJournal(t *testing.T) {
	st := seededStore(t)
	d := resume(t, st)

	s := d.State()
	assert.False(t, s.Authenticated)
	assert.Len(t, s.Users, 4)
	assert.Len(t, s.Bundles, 2)
	assert.Len(t, s.Plans, 2)

	// the clock continues past the journaled seeds
	assert.Equal(t, int64(4), d.Clock().Current())
}

func TestLoginRoundTrip(t *testing.T) {
	st := seededStore(t)
	d := resume(t, st)
	ctx := context.Background()

	s, err := Login(ctx, st, d, "alex.doe@example.com", "password123")
	require.NoError(t, err)
	require.True(t, s.Authenticated)
	require.NotNil(t, s.User)
	assert.Equal(t, "user-1", s.User.ID)

	// two stored binders plus one materialized mirror per catalog bundle
	require.Len(t, s.Binders, 4)
	assert.Equal(t, "binder-bundle-starter-pack", s.Binders[2].ID)
	assert.Equal(t, "binder-1", s.SelectedBinderID)
	assert.Equal(t, "page-1", s.SelectedPageID)

	// login persisted the session record
	session, err := st.ReadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.ID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	st := seededStore(t)
	d := resume(t, st)
	ctx := context.Background()

	_, err := Login(ctx, st, d, "alex.doe@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = Login(ctx, st, d, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.False(t, d.State().Authenticated)
}

func TestCorporateLoginSeesAssignedBinders(t *testing.T) {
	st := seededStore(t)
	d := resume(t, st)

	s, err := Login(context.Background(), st, d, "bob.b@acme.corp", "password123")
	require.NoError(t, err)
	require.True(t, s.Authenticated)

	// Bob has no collection of his own; the admin's assigned binder shows up.
	require.Len(t, s.Binders, 1)
	assert.Equal(t, "binder-acme-onboarding", s.Binders[0].ID)
}

func TestRestoreResumesSession(t *testing.T) {
	st := seededStore(t)
	d := resume(t, st)
	ctx := context.Background()

	_, err := Login(ctx, st, d, "alex.doe@example.com", "password123")
	require.NoError(t, err)

	// a fresh process restores the same identity
	d2 := resume(t, st)
	s, restored, err := Restore(ctx, st, d2)
	require.NoError(t, err)
	assert.True(t, restored)
	require.NotNil(t, s.User)
	assert.Equal(t, "user-1", s.User.ID)
}

func TestRestoreWithoutSession(t *testing.T) {
	st := seededStore(t)
	d := resume(t, st)

	s, restored, err := Restore(context.Background(), st, d)
	require.NoError(t, err)
	assert.False(t, restored)
	assert.False(t, s.Authenticated)
}

func TestRestoreLogsOutDeletedAccount(t *testing.T) {
	st := seededStore(t)
	d := resume(t, st)
	ctx := context.Background()

	_, err := Login(ctx, st, d, "sally.s@acme.corp", "password123")
	require.NoError(t, err)

	// sally is removed from the directory behind the session's back
	users, err := st.ReadDirectory(ctx)
	require.NoError(t, err)
	kept := users[:0]
	for _, u := range users {
		if u.ID != "user-corp-user-sally" {
			kept = append(kept, u)
		}
	}
	require.NoError(t, st.SaveDirectory(ctx, kept))

	d2 := resume(t, st)
	s, restored, err := Restore(ctx, st, d2)
	require.NoError(t, err)
	assert.False(t, restored)
	assert.False(t, s.Authenticated)

	_, err = st.ReadSession(ctx)
	assert.ErrorIs(t, err, store.ErrNoSession)
}

func TestLogoutClearsSession(t *testing.T) {
	st := seededStore(t)
	d := resume(t, st)
	ctx := context.Background()

	_, err := Login(ctx, st, d, "alex.doe@example.com", "password123")
	require.NoError(t, err)

	s, err := Logout(ctx, d)
	require.NoError(t, err)
	assert.False(t, s.Authenticated)
	assert.Nil(t, s.User)

	_, err = st.ReadSession(ctx)
	assert.ErrorIs(t, err, store.ErrNoSession)
}

func TestChangePassword(t *testing.T) {
	st := seededStore(t)
	d := resume(t, st)
	ctx := context.Background()

	_, err := Login(ctx, st, d, "alex.doe@example.com", "password123")
	require.NoError(t, err)

	_, err = ChangePassword(ctx, d, "hunter2hunter2")
	require.NoError(t, err)

	_, err = Login(ctx, st, d, "alex.doe@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	s, err := Login(ctx, st, d, "alex.doe@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.True(t, s.Authenticated)
}

func TestRebuildCatalog(t *testing.T) {
	st := seededStore(t)
	ctx := context.Background()

	// a published binder in records that no journaled action ever projected
	published := domain.Binder{
		ID:          "binder-pub",
		OwnerID:     "user-1",
		Name:        "Published Templates",
		IsPublished: true,
		BundleID:    "bundle-pub",
		PriceCents:  1299,
		Pages:       []domain.Page{{ID: "page-pub", Title: "Template"}},
	}
	require.NoError(t, st.UpsertBinder(ctx, "user-1", published))

	d := resume(t, st)
	require.NoError(t, RebuildCatalog(ctx, st, d))

	bundle := domain.FindBundle(d.State().Bundles, "bundle-pub")
	require.NotNil(t, bundle)
	assert.Equal(t, "Published Templates", bundle.Name)
	assert.Equal(t, int64(1299), bundle.PriceCents)
}
