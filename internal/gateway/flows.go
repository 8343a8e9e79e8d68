package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/binderhq/binderd/internal/dispatch"
	"github.com/binderhq/binderd/internal/domain"
	"github.com/binderhq/binderd/internal/state"
)

// ErrNotPermitted is returned when the acting role may not run a flow. The
// reducer treats unauthorized transitions as silent no-ops; the flows layer
// is the caller-facing gate that says so out loud.
var ErrNotPermitted = errors.New("not permitted for this role")

// ErrNotFound is returned when a flow target does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyAcquired is returned when the buyer already holds the bundle,
// as a purchase record or as a binder mirroring the bundle id.
var ErrAlreadyAcquired = errors.New("bundle already acquired")

// Flows bundles the provider seams with the dispatcher for the multi-step
// operations that cross them.
type Flows struct {
	Gateway    PaymentGateway
	Push       PushScheduler
	Dispatcher *dispatch.Dispatcher
	IDs        domain.IDGenerator
}

// PublishBinder lists a binder for sale: sync the product with the payment
// provider, then dispatch the update that flips it published. The reducer's
// catalog sync point projects the bundle from the updated binder.
//
// Re-publishing keeps the bundle id and mints a fresh provider price.
func (f *Flows) PublishBinder(ctx context.Context, binderID string, priceCents int64, imageURL string) (state.AppState, error) {
	s := f.Dispatcher.State()
	if !domain.CanPublish(s.User, s.SimulatedRole) {
		return s, ErrNotPermitted
	}
	b := s.FindBinder(binderID)
	if b == nil {
		return s, fmt.Errorf("publish binder %s: %w", binderID, ErrNotFound)
	}

	sync, err := f.Gateway.SyncProduct(ctx, ProductSyncRequest{
		Name:        b.Name,
		Description: b.Description,
		PriceCents:  priceCents,
		Currency:    "usd",
		ProductRef:  b.ProductRef,
	})
	if err != nil {
		return s, fmt.Errorf("publish binder %s: %w", binderID, err)
	}

	updated := b.Clone()
	updated.IsPublished = true
	updated.PriceCents = priceCents
	if imageURL != "" {
		updated.ImageURL = imageURL
	}
	if updated.BundleID == "" {
		updated.BundleID = f.IDs.NewID()
	}
	updated.PriceRef = sync.PriceRef
	updated.ProductRef = sync.ProductRef

	return f.Dispatcher.Dispatch(ctx, state.UpdateBinder(updated))
}

// UnpublishBinder delists a binder. The catalog sync point removes the
// bundle when the binder stops publishing.
func (f *Flows) UnpublishBinder(ctx context.Context, binderID string) (state.AppState, error) {
	s := f.Dispatcher.State()
	if !domain.CanPublish(s.User, s.SimulatedRole) {
		return s, ErrNotPermitted
	}
	b := s.FindBinder(binderID)
	if b == nil {
		return s, fmt.Errorf("unpublish binder %s: %w", binderID, ErrNotFound)
	}

	updated := b.Clone()
	updated.IsPublished = false
	return f.Dispatcher.Dispatch(ctx, state.UpdateBinder(updated))
}

// PurchaseBundle charges for a catalog bundle, records the purchase, and
// imports the bundle's pages as a fresh binder owned by the buyer. A bundle
// the buyer already holds, either as a purchase record or as a binder
// mirroring the bundle id, cannot be acquired again. The owner never buys
// from the shop at all; every catalog bundle is already materialized into
// the owner's collection at login.
func (f *Flows) PurchaseBundle(ctx context.Context, bundleID string) (state.AppState, error) {
	s := f.Dispatcher.State()
	if s.User == nil {
		return s, ErrNotPermitted
	}
	if !domain.CanAccessStore(s.User, s.SimulatedRole) {
		return s, ErrNotPermitted
	}
	if domain.EffectiveRole(s.User, s.SimulatedRole) == domain.RoleOwner {
		return s, ErrNotPermitted
	}
	bundle := domain.FindBundle(s.Bundles, bundleID)
	if bundle == nil {
		return s, fmt.Errorf("purchase bundle %s: %w", bundleID, ErrNotFound)
	}
	for _, id := range s.PurchasedBundles {
		if id == bundleID {
			return s, fmt.Errorf("purchase bundle %s: %w", bundleID, ErrAlreadyAcquired)
		}
	}
	for i := range s.Binders {
		if s.Binders[i].BundleID == bundleID {
			return s, fmt.Errorf("purchase bundle %s: %w", bundleID, ErrAlreadyAcquired)
		}
	}

	_, err := f.Gateway.CreatePaymentIntent(ctx, PaymentIntentRequest{
		AmountCents:  bundle.PriceCents,
		Currency:     "usd",
		Description:  bundle.Name,
		ReceiptEmail: s.User.Email,
	})
	if err != nil {
		return s, fmt.Errorf("purchase bundle %s: %w", bundleID, err)
	}

	if _, err := f.Dispatcher.Dispatch(ctx, state.PurchaseBundle(bundleID)); err != nil {
		return f.Dispatcher.State(), err
	}

	imported := domain.Binder{
		ID:          f.IDs.NewID(),
		OwnerID:     s.User.ID,
		Name:        bundle.Name,
		Description: bundle.Description,
		Pages:       domain.InstantiatePages(bundle, f.IDs),
		BundleID:    bundle.ID,
	}
	return f.Dispatcher.Dispatch(ctx, state.AddBinder(imported))
}

// UpgradePlan charges for a subscription plan and switches the current
// user's role to the plan's tier.
func (f *Flows) UpgradePlan(ctx context.Context, role domain.UserRole, yearly bool) (state.AppState, error) {
	s := f.Dispatcher.State()
	if s.User == nil {
		return s, ErrNotPermitted
	}
	plan := domain.FindPlan(s.Plans, role)
	if plan == nil {
		return s, fmt.Errorf("upgrade to %s: %w", role, ErrNotFound)
	}

	amount := plan.PriceCents
	if yearly {
		amount = plan.PriceYearlyCents
	}
	_, err := f.Gateway.CreatePaymentIntent(ctx, PaymentIntentRequest{
		AmountCents:  amount,
		Currency:     "usd",
		Description:  plan.Name + " subscription",
		ReceiptEmail: s.User.Email,
	})
	if err != nil {
		return s, fmt.Errorf("upgrade to %s: %w", role, err)
	}

	return f.Dispatcher.Dispatch(ctx, state.UpgradeSubscription(role))
}

// ArmTaskCountdown starts a task countdown and schedules its push
// delivery. The push is best effort; a scheduling failure is not a reason
// to disarm a countdown the state already accepted.
func (f *Flows) ArmTaskCountdown(ctx context.Context, binderID, pageID, taskID string) (state.AppState, error) {
	next, err := f.Dispatcher.Dispatch(ctx, state.StartTaskTimer(binderID, pageID, taskID))
	if err != nil {
		return next, err
	}
	f.schedulePush(ctx, &next, binderID, pageID, taskID)
	return next, nil
}

// ArmReminder arms a page reminder and schedules its push delivery.
func (f *Flows) ArmReminder(ctx context.Context, binderID, pageID string) (state.AppState, error) {
	next, err := f.Dispatcher.Dispatch(ctx, state.StartReminder(binderID, pageID))
	if err != nil {
		return next, err
	}
	f.schedulePush(ctx, &next, binderID, pageID, "")
	return next, nil
}

// Dismiss clears the live alert and cancels its pending push delivery.
func (f *Flows) Dismiss(ctx context.Context) (state.AppState, error) {
	s := f.Dispatcher.State()
	if n := s.ActiveNotification; n != nil && f.Push != nil && s.PushSubscription != "" {
		if err := f.Push.Cancel(ctx, s.PushSubscription, n.SourceID); err != nil {
			return s, fmt.Errorf("cancel push: %w", err)
		}
	}
	return f.Dispatcher.Dispatch(ctx, state.DismissNotification())
}

// schedulePush registers the delivery for a freshly armed countdown. With
// taskID empty the source is the page's reminder.
func (f *Flows) schedulePush(ctx context.Context, s *state.AppState, binderID, pageID, taskID string) {
	if f.Push == nil || s.PushSubscription == "" {
		return
	}
	b := s.FindBinder(binderID)
	if b == nil {
		return
	}
	page := b.FindPage(pageID)
	if page == nil {
		return
	}

	if taskID == "" {
		f.Push.Schedule(ctx, s.PushSubscription, page.ID, page.Reminder.Title, page.Reminder.At)
		return
	}
	if task := page.FindTask(taskID); task != nil {
		f.Push.Schedule(ctx, s.PushSubscription, task.ID, task.Text, task.DueAt)
	}
}
