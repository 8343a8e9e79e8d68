package gateway

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binderhq/binderd/internal/dispatch"
	"github.com/binderhq/binderd/internal/domain"
	"github.com/binderhq/binderd/internal/state"
	"github.com/binderhq/binderd/internal/testutil"
)

const testTime = int64(1_700_000_000_000)

func newFlows(t *testing.T) (*Flows, *SimulatedGateway, *SimulatedScheduler) {
	t.Helper()
	d := dispatch.New(state.Initial(), testutil.NewMemoryPersister(),
		dispatch.WithNow(testutil.FixedNow(testTime)),
		dispatch.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	g := NewSimulatedGateway()
	p := NewSimulatedScheduler()
	return &Flows{
		Gateway:    g,
		Push:       p,
		Dispatcher: d,
		IDs:        domain.NewSequentialGenerator("gen"),
	}, g, p
}

func flowUser(role domain.UserRole) domain.User {
	u := domain.User{
		ID:           "user-1",
		Email:        "user-1@example.com",
		Name:         "User One",
		Role:         role,
		PasswordHash: "$2a$10$fake-hash",
	}
	if role == domain.RoleCorporateAdmin || role == domain.RoleCorporateUser {
		u.CorporateID = "corp-1"
	}
	return u
}

func flowBinder() domain.Binder {
	return domain.Binder{
		ID:      "binder-1",
		OwnerID: "user-1",
		Name:    "Work Projects",
		Pages: []domain.Page{{
			ID:    "page-1",
			Title: "Kick-off",
			Tasks: []domain.Task{{
				ID: "task-1", Text: "Draft proposal",
				Status: domain.TaskIncomplete, DueAt: testTime + 60_000,
			}},
			Reminder: domain.Reminder{
				Title: "Project Review", Frequency: domain.FrequencyWeekly, At: testTime + 120_000,
			},
		}},
	}
}

func loginAs(t *testing.T, f *Flows, role domain.UserRole) {
	t.Helper()
	u := flowUser(role)
	_, err := f.Dispatcher.Dispatch(context.Background(),
		state.Authenticate(u, []domain.Binder{flowBinder()}, []domain.User{u}, nil))
	require.NoError(t, err)
}

func TestPublishBinder(t *testing.T) {
	f, g, _ := newFlows(t)
	loginAs(t, f, domain.RoleOwner)

	s, err := f.PublishBinder(context.Background(), "binder-1", 1499, "https://img.example/b1.png")
	require.NoError(t, err)

	b := s.FindBinder("binder-1")
	require.NotNil(t, b)
	assert.True(t, b.IsPublished)
	assert.Equal(t, int64(1499), b.PriceCents)
	assert.Equal(t, "gen-1", b.BundleID)
	assert.Equal(t, "price_sim_000001", b.PriceRef)
	assert.Equal(t, "prod_sim_000001", b.ProductRef)
	assert.Equal(t, "https://img.example/b1.png", b.ImageURL)

	bundle := domain.FindBundle(s.Bundles, "gen-1")
	require.NotNil(t, bundle)
	assert.Equal(t, "Work Projects", bundle.Name)
	assert.Equal(t, int64(1499), bundle.PriceCents)

	// the provider saw the listing
	assert.Equal(t, int64(1), g.prices)
}

func TestRepublishKeepsBundleAndProductRefs(t *testing.T) {
	f, g, _ := newFlows(t)
	loginAs(t, f, domain.RoleOwner)
	ctx := context.Background()

	_, err := f.PublishBinder(ctx, "binder-1", 999, "")
	require.NoError(t, err)

	s, err := f.PublishBinder(ctx, "binder-1", 1999, "")
	require.NoError(t, err)

	b := s.FindBinder("binder-1")
	assert.Equal(t, "gen-1", b.BundleID)

	// the provider product is updated in place; only the price is re-minted
	assert.Equal(t, "prod_sim_000001", b.ProductRef)
	assert.Equal(t, int64(1), g.prods)
	assert.Equal(t, "price_sim_000002", b.PriceRef)

	require.Len(t, s.Bundles, 1)
	assert.Equal(t, int64(1999), s.Bundles[0].PriceCents)
}

func TestPublishBinderPermissions(t *testing.T) {
	t.Run("free user", func(t *testing.T) {
		f, _, _ := newFlows(t)
		loginAs(t, f, domain.RoleFree)
		_, err := f.PublishBinder(context.Background(), "binder-1", 999, "")
		assert.ErrorIs(t, err, ErrNotPermitted)
	})

	t.Run("owner simulating free", func(t *testing.T) {
		f, _, _ := newFlows(t)
		loginAs(t, f, domain.RoleOwner)
		ctx := context.Background()
		_, err := f.Dispatcher.Dispatch(ctx, state.SetSimulatedRole(domain.RoleFree))
		require.NoError(t, err)
		_, err = f.PublishBinder(ctx, "binder-1", 999, "")
		assert.ErrorIs(t, err, ErrNotPermitted)
	})

	t.Run("logged out", func(t *testing.T) {
		f, _, _ := newFlows(t)
		_, err := f.PublishBinder(context.Background(), "binder-1", 999, "")
		assert.ErrorIs(t, err, ErrNotPermitted)
	})
}

func TestPublishBinderUnknownID(t *testing.T) {
	f, _, _ := newFlows(t)
	loginAs(t, f, domain.RoleVIP)

	_, err := f.PublishBinder(context.Background(), "binder-nope", 999, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnpublishBinderDropsBundle(t *testing.T) {
	f, _, _ := newFlows(t)
	loginAs(t, f, domain.RoleOwner)
	ctx := context.Background()

	_, err := f.PublishBinder(ctx, "binder-1", 999, "")
	require.NoError(t, err)

	s, err := f.UnpublishBinder(ctx, "binder-1")
	require.NoError(t, err)

	assert.False(t, s.FindBinder("binder-1").IsPublished)
	assert.Empty(t, s.Bundles)
}

func addCatalogBundle(t *testing.T, f *Flows) domain.Bundle {
	t.Helper()
	bundle := domain.Bundle{
		ID:          "bundle-starter",
		OwnerID:     "user-owner",
		Name:        "Starter Pack",
		Description: "Essential templates.",
		PriceCents:  999,
		PresetPages: []domain.Page{
			{Title: "Daily Notes", Tasks: []domain.Task{{ID: "preset-task-1", Text: "Review", Status: domain.TaskIncomplete}}},
			{Title: "Goal Tracker"},
		},
	}
	_, err := f.Dispatcher.Dispatch(context.Background(), state.AddBundle(bundle))
	require.NoError(t, err)
	return bundle
}

func TestPurchaseBundle(t *testing.T) {
	f, g, _ := newFlows(t)
	loginAs(t, f, domain.RoleFree)
	addCatalogBundle(t, f)

	s, err := f.PurchaseBundle(context.Background(), "bundle-starter")
	require.NoError(t, err)

	assert.Contains(t, s.PurchasedBundles, "bundle-starter")

	require.Len(t, g.Intents, 1)
	assert.Equal(t, int64(999), g.Intents[0].AmountCents)
	assert.Equal(t, "user-1@example.com", g.Intents[0].ReceiptEmail)

	// the bundle's pages arrive as a fresh binder mirroring the bundle id
	imported := s.FindBinder("gen-1")
	require.NotNil(t, imported)
	assert.Equal(t, "Starter Pack", imported.Name)
	assert.Equal(t, "user-1", imported.OwnerID)
	assert.Equal(t, "bundle-starter", imported.BundleID)
	assert.False(t, imported.IsPublished)
	require.Len(t, imported.Pages, 2)
	assert.Equal(t, "gen-2", imported.Pages[0].ID)
	assert.Equal(t, "gen-3", imported.Pages[0].Tasks[0].ID)
	assert.Equal(t, "gen-4", imported.Pages[1].ID)
}

func TestPurchaseBundleRejectsRepeat(t *testing.T) {
	f, g, _ := newFlows(t)
	loginAs(t, f, domain.RoleFree)
	addCatalogBundle(t, f)
	ctx := context.Background()

	_, err := f.PurchaseBundle(ctx, "bundle-starter")
	require.NoError(t, err)

	_, err = f.PurchaseBundle(ctx, "bundle-starter")
	assert.ErrorIs(t, err, ErrAlreadyAcquired)

	// one charge, one purchase record, one imported binder
	s := f.Dispatcher.State()
	require.Len(t, g.Intents, 1)
	assert.Equal(t, []string{"bundle-starter"}, s.PurchasedBundles)
	assert.NotNil(t, s.FindBinder("gen-1"))
	assert.Nil(t, s.FindBinder("gen-5"))
}

func TestPurchaseBundleRejectsMirroredBundle(t *testing.T) {
	f, g, _ := newFlows(t)

	// the user's collection already mirrors the bundle, without any
	// purchase record
	u := flowUser(domain.RoleFree)
	mirror := flowBinder()
	mirror.BundleID = "bundle-starter"
	_, err := f.Dispatcher.Dispatch(context.Background(),
		state.Authenticate(u, []domain.Binder{mirror}, []domain.User{u}, nil))
	require.NoError(t, err)
	addCatalogBundle(t, f)

	_, err = f.PurchaseBundle(context.Background(), "bundle-starter")
	assert.ErrorIs(t, err, ErrAlreadyAcquired)
	assert.Empty(t, g.Intents)
}

func TestPurchaseBundlePermissions(t *testing.T) {
	t.Run("logged out", func(t *testing.T) {
		f, _, _ := newFlows(t)
		_, err := f.PurchaseBundle(context.Background(), "bundle-starter")
		assert.ErrorIs(t, err, ErrNotPermitted)
	})

	t.Run("corporate user", func(t *testing.T) {
		f, _, _ := newFlows(t)
		loginAs(t, f, domain.RoleCorporateUser)
		_, err := f.PurchaseBundle(context.Background(), "bundle-starter")
		assert.ErrorIs(t, err, ErrNotPermitted)
	})

	t.Run("owner", func(t *testing.T) {
		f, _, _ := newFlows(t)
		loginAs(t, f, domain.RoleOwner)
		addCatalogBundle(t, f)
		_, err := f.PurchaseBundle(context.Background(), "bundle-starter")
		assert.ErrorIs(t, err, ErrNotPermitted)
	})

	t.Run("unknown bundle", func(t *testing.T) {
		f, _, _ := newFlows(t)
		loginAs(t, f, domain.RoleFree)
		_, err := f.PurchaseBundle(context.Background(), "bundle-nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func testPlans() []domain.SubscriptionPlan {
	return []domain.SubscriptionPlan{
		{ID: domain.RoleVIP, Name: "VIP", PriceCents: 1999, PriceYearlyCents: 19999},
		{ID: domain.RoleCorporateAdmin, Name: "Corporate", PriceCents: 4999, PriceYearlyCents: 49999},
	}
}

func TestUpgradePlan(t *testing.T) {
	f, g, _ := newFlows(t)
	loginAs(t, f, domain.RoleFree)
	ctx := context.Background()
	_, err := f.Dispatcher.Dispatch(ctx, state.SetPlans(testPlans()))
	require.NoError(t, err)

	s, err := f.UpgradePlan(ctx, domain.RoleVIP, false)
	require.NoError(t, err)

	require.NotNil(t, s.User)
	assert.Equal(t, domain.RoleVIP, s.User.Role)
	require.Len(t, g.Intents, 1)
	assert.Equal(t, int64(1999), g.Intents[0].AmountCents)
	assert.Equal(t, "VIP subscription", g.Intents[0].Description)
}

func TestUpgradePlanYearlyAmount(t *testing.T) {
	f, g, _ := newFlows(t)
	loginAs(t, f, domain.RoleFree)
	ctx := context.Background()
	_, err := f.Dispatcher.Dispatch(ctx, state.SetPlans(testPlans()))
	require.NoError(t, err)

	_, err = f.UpgradePlan(ctx, domain.RoleVIP, true)
	require.NoError(t, err)
	require.Len(t, g.Intents, 1)
	assert.Equal(t, int64(19999), g.Intents[0].AmountCents)
}

func TestUpgradePlanGuards(t *testing.T) {
	f, _, _ := newFlows(t)

	_, err := f.UpgradePlan(context.Background(), domain.RoleVIP, false)
	assert.ErrorIs(t, err, ErrNotPermitted)

	loginAs(t, f, domain.RoleFree)
	_, err = f.UpgradePlan(context.Background(), domain.RoleVIP, false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func subscribe(t *testing.T, f *Flows) {
	t.Helper()
	_, err := f.Dispatcher.Dispatch(context.Background(), state.SetPushSubscription("sub-1"))
	require.NoError(t, err)
}

func TestArmTaskCountdownSchedulesPush(t *testing.T) {
	f, _, p := newFlows(t)
	loginAs(t, f, domain.RoleFree)
	subscribe(t, f)

	s, err := f.ArmTaskCountdown(context.Background(), "binder-1", "page-1", "task-1")
	require.NoError(t, err)

	task := s.FindBinder("binder-1").FindPage("page-1").FindTask("task-1")
	assert.Equal(t, testTime, task.StartedAt)

	push, ok := p.Pending("task-1")
	require.True(t, ok)
	assert.Equal(t, "sub-1", push.Handle)
	assert.Equal(t, "Draft proposal", push.Title)
	assert.Equal(t, testTime+60_000, push.At)
}

func TestArmTaskCountdownWithoutSubscription(t *testing.T) {
	f, _, p := newFlows(t)
	loginAs(t, f, domain.RoleFree)

	_, err := f.ArmTaskCountdown(context.Background(), "binder-1", "page-1", "task-1")
	require.NoError(t, err)
	assert.Zero(t, p.PendingCount())
}

func TestArmTaskCountdownRejectionSchedulesNothing(t *testing.T) {
	f, _, p := newFlows(t)
	loginAs(t, f, domain.RoleFree)
	subscribe(t, f)
	ctx := context.Background()

	_, err := f.ArmTaskCountdown(ctx, "binder-1", "page-1", "task-1")
	require.NoError(t, err)
	require.Equal(t, 1, p.PendingCount())

	// second arm while the countdown is live is rejected
	_, err = f.ArmTaskCountdown(ctx, "binder-1", "page-1", "task-1")
	var rej *state.RejectionError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, state.CodeTaskTimerActive, rej.Code)
	assert.Equal(t, 1, p.PendingCount())
}

func TestArmReminderSchedulesPush(t *testing.T) {
	f, _, p := newFlows(t)
	loginAs(t, f, domain.RoleFree)
	subscribe(t, f)

	s, err := f.ArmReminder(context.Background(), "binder-1", "page-1")
	require.NoError(t, err)

	reminder := s.FindBinder("binder-1").FindPage("page-1").Reminder
	assert.True(t, reminder.IsActive)
	assert.Equal(t, testTime, reminder.StartedAt)

	push, ok := p.Pending("page-1")
	require.True(t, ok)
	assert.Equal(t, "Project Review", push.Title)
	assert.Equal(t, testTime+120_000, push.At)
}

func TestDismissCancelsPush(t *testing.T) {
	f, _, p := newFlows(t)
	loginAs(t, f, domain.RoleFree)
	subscribe(t, f)
	ctx := context.Background()

	_, err := f.ArmTaskCountdown(ctx, "binder-1", "page-1", "task-1")
	require.NoError(t, err)

	_, err = f.Dispatcher.Dispatch(ctx, state.TriggerNotification(domain.ActiveNotification{
		Type:       domain.NotificationAlarm,
		BinderID:   "binder-1",
		PageID:     "page-1",
		SourceID:   "task-1",
		SourceType: domain.SourceTask,
		Title:      "Draft proposal",
	}))
	require.NoError(t, err)

	s, err := f.Dismiss(ctx)
	require.NoError(t, err)

	assert.Nil(t, s.ActiveNotification)
	assert.Zero(t, p.PendingCount())

	// the countdown is disarmed with the alert
	task := s.FindBinder("binder-1").FindPage("page-1").FindTask("task-1")
	assert.Zero(t, task.StartedAt)
}

func TestDismissWithoutNotification(t *testing.T) {
	f, _, _ := newFlows(t)
	loginAs(t, f, domain.RoleFree)

	s, err := f.Dismiss(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s.ActiveNotification)
}
