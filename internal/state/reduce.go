package state

import (
	"github.com/binderhq/binderd/internal/domain"
)

// Reduce computes the next state for one action, plus the persistence
// effects the transition requires. It is the only place domain transitions
// happen.
//
// The returned state shares unchanged collections with the input state;
// changed collections are rebuilt. Callers must treat both states as
// immutable.
//
// Error semantics: a non-nil error is always a *RejectionError and always
// accompanies the unchanged input state with no effects.
func Reduce(s AppState, a Action) (AppState, []Effect, error) {
	switch a.Type {
	case ActionAuthenticate:
		return reduceAuthenticate(s, a)
	case ActionLogout:
		return reduceLogout(s)
	case ActionUpdateCredential:
		return reduceUpdateCredential(s, a)

	case ActionSetView:
		s.CurrentView = a.View
		return s, nil, nil
	case ActionSelectBinder:
		return reduceSelectBinder(s, a)
	case ActionSelectPage:
		s.SelectedBinderID = a.BinderID
		s.SelectedPageID = a.PageID
		return s, nil, nil

	case ActionAddBinder:
		return reduceAddBinder(s, a)
	case ActionUpdateBinder:
		return reduceUpdateBinder(s, a)
	case ActionDeleteBinder:
		return reduceDeleteBinder(s, a)
	case ActionAssignBinder:
		return reduceAssignBinder(s, a)

	case ActionAddPage:
		return reduceAddPage(s, a)
	case ActionUpdatePage:
		return reduceUpdatePage(s, a)
	case ActionDeletePage:
		return reduceDeletePage(s, a)

	case ActionUpdateTask:
		return reduceUpdateTask(s, a)
	case ActionDeleteTask:
		return reduceDeleteTask(s, a)
	case ActionStartTaskTimer:
		return reduceStartTaskTimer(s, a)
	case ActionStartReminder:
		return reduceStartReminder(s, a)

	case ActionPurchaseBundle:
		return reducePurchaseBundle(s, a)
	case ActionAddBundle:
		return reduceAddBundle(s, a)

	case ActionSetNotificationStyle:
		s.NotificationStyle = a.Style
		return s, nil, nil
	case ActionSetPushSubscription:
		s.PushSubscription = a.Handle
		return s, nil, nil
	case ActionTriggerNotification:
		return reduceTriggerNotification(s, a)
	case ActionDismissNotification:
		return reduceDismissNotification(s)

	case ActionSetSimulatedRole:
		return reduceSetSimulatedRole(s, a)

	case ActionCreateCorporateUser:
		return reduceCreateCorporateUser(s, a)
	case ActionDeleteUser:
		return reduceDeleteUser(s, a)

	case ActionUpgradeSubscription:
		return reduceUpgradeSubscription(s, a)
	case ActionUpdatePlan:
		return reduceUpdatePlan(s, a)

	case ActionSetDirectory:
		s.Users = domain.CloneUsers(a.Directory)
		return s, nil, nil
	case ActionSetPlans:
		s.Plans = domain.ClonePlans(a.Plans)
		return s, nil, nil

	default:
		// Unknown actions are identity transitions; the dispatcher logs them.
		return s, nil, nil
	}
}

// reduceAuthenticate installs the user and their binder collection as the
// current identity. Login-time materialization:
//
//   - A corporate user additionally sees the admin binders assigned to it
//     (by id union, duplicates skipped).
//   - The owner additionally sees every catalog bundle not already
//     represented among its binders, materialized with ids derived from the
//     bundle id so repeated logins converge.
//
// Credential verification happened before dispatch; this transition assumes
// success. Any active simulation is cleared.
func reduceAuthenticate(s AppState, a Action) (AppState, []Effect, error) {
	if a.User == nil {
		return s, nil, nil
	}
	user := a.User.Clone()
	final := domain.CloneBinders(a.Binders)
	if final == nil {
		final = []domain.Binder{}
	}

	if user.Role == domain.RoleCorporateUser && user.CorporateID != "" {
		present := make(map[string]bool, len(final))
		for i := range final {
			present[final[i].ID] = true
		}
		for i := range a.AdminBinders {
			b := &a.AdminBinders[i]
			if b.AssignedTo(user.ID) && !present[b.ID] {
				final = append(final, b.Clone())
				present[b.ID] = true
			}
		}
	}

	if user.Role == domain.RoleOwner {
		mirrored := make(map[string]bool, len(final))
		for i := range final {
			if final[i].BundleID != "" {
				mirrored[final[i].BundleID] = true
			}
		}
		for i := range s.Bundles {
			if !mirrored[s.Bundles[i].ID] {
				final = append(final, domain.MaterializeBinder(&s.Bundles[i]))
			}
		}
	}

	s.Authenticated = true
	s.User = &user
	if a.Directory != nil {
		s.Users = domain.CloneUsers(a.Directory)
	}
	s.Binders = final
	s.SelectedBinderID, s.SelectedPageID = defaultSelection(final)
	s.SimulatedRole = ""
	s.OriginalBinders = nil

	return s, []Effect{saveSession(user)}, nil
}

// reduceLogout resets to the unauthenticated state while keeping the
// long-lived catalogs (directory, bundles, plans) loaded.
func reduceLogout(s AppState) (AppState, []Effect, error) {
	next := Initial()
	next.Users = s.Users
	next.Bundles = s.Bundles
	next.Plans = s.Plans
	return next, []Effect{clearSession()}, nil
}

func reduceUpdateCredential(s AppState, a Action) (AppState, []Effect, error) {
	if s.User == nil {
		return s, nil, nil
	}
	user := s.User.Clone()
	user.PasswordHash = a.Credential

	users := domain.CloneUsers(s.Users)
	if existing := domain.FindUser(users, user.ID); existing != nil {
		existing.PasswordHash = a.Credential
	}

	s.User = &user
	s.Users = users
	return s, []Effect{saveDirectory(users), saveSession(user)}, nil
}

func reduceSelectBinder(s AppState, a Action) (AppState, []Effect, error) {
	s.SelectedBinderID = a.BinderID
	s.SelectedPageID = ""
	if b := s.FindBinder(a.BinderID); b != nil && len(b.Pages) > 0 {
		s.SelectedPageID = b.Pages[0].ID
	}
	return s, nil, nil
}
