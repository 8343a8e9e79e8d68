package state

import "github.com/binderhq/binderd/internal/domain"

// AppState is the complete in-memory application state. It is a value;
// transitions produce a new value and never write through the old one.
type AppState struct {
	// User is the authenticated account, nil when logged out.
	User *domain.User `json:"user,omitempty"`

	// Users is the full account directory, loaded at bootstrap and
	// refreshed on login.
	Users []domain.User `json:"users"`

	Authenticated bool `json:"authenticated"`

	// Binders is the collection visible to the current identity. Under
	// simulation this is the sandbox, not the owner's real collection.
	Binders []domain.Binder `json:"binders"`

	// Bundles is the shop catalog, a read-model derived from publishing
	// binders plus seeded fixtures.
	Bundles []domain.Bundle `json:"bundles"`

	Plans []domain.SubscriptionPlan `json:"plans"`

	// PurchasedBundles lists bundle ids acquired this session. Not
	// persisted; ownership of imported content lives in the binders.
	PurchasedBundles []string `json:"purchasedBundles,omitempty"`

	CurrentView      domain.View `json:"currentView"`
	SelectedBinderID string      `json:"selectedBinderId,omitempty"`
	SelectedPageID   string      `json:"selectedPageId,omitempty"`

	NotificationStyle  domain.NotificationStyle   `json:"notificationStyle"`
	ActiveNotification *domain.ActiveNotification `json:"activeNotification,omitempty"`

	// PushSubscription is an opaque delivery handle for the push scheduler.
	PushSubscription string `json:"pushSubscription,omitempty"`

	// SimulatedRole is the owner's impersonation sandbox; empty when not
	// simulating. OriginalBinders stashes the owner's real collection for
	// verbatim restore when simulation ends.
	SimulatedRole   domain.UserRole `json:"simulatedRole,omitempty"`
	OriginalBinders []domain.Binder `json:"originalBinders,omitempty"`
}

// Initial returns the unauthenticated starting state.
func Initial() AppState {
	return AppState{
		CurrentView:       domain.ViewDashboard,
		NotificationStyle: domain.StyleStandard,
	}
}

// FindBinder returns the visible binder with the given id, or nil.
func (s *AppState) FindBinder(id string) *domain.Binder {
	return domain.FindBinder(s.Binders, id)
}

// EffectiveRole resolves the role the current identity is acting as.
func (s *AppState) EffectiveRole() domain.UserRole {
	return domain.EffectiveRole(s.User, s.SimulatedRole)
}

// defaultSelection picks the login-time cursors: the first binder and its
// first page, or empty cursors when the collection is empty.
func defaultSelection(binders []domain.Binder) (binderID, pageID string) {
	if len(binders) == 0 {
		return "", ""
	}
	binderID = binders[0].ID
	if len(binders[0].Pages) > 0 {
		pageID = binders[0].Pages[0].ID
	}
	return binderID, pageID
}
