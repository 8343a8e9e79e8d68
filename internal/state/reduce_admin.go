package state

import "github.com/binderhq/binderd/internal/domain"

// reduceSetSimulatedRole enters, switches or exits the owner's simulation
// sandbox. Only a true owner may do any of this; everyone else gets an
// identity transition.
//
// Three cases:
//
//	enter:  stash the real collection, present an empty sandbox
//	exit:   restore the stash verbatim, recompute default cursors
//	switch: wipe the sandbox again, leaving the stash untouched
//
// Setting the role it already is, or exiting while not simulating, is a
// no-op. The sandbox always starts empty: simulation previews the app as a
// fresh identity, it does not load that role's real data.
func reduceSetSimulatedRole(s AppState, a Action) (AppState, []Effect, error) {
	if !domain.IsOwner(s.User) {
		return s, nil, nil
	}
	was := s.SimulatedRole
	now := a.Role

	switch {
	case was == "" && now != "":
		s.OriginalBinders = s.Binders
		s.Binders = []domain.Binder{}
		s.SimulatedRole = now
		s.SelectedBinderID = ""
		s.SelectedPageID = ""
	case was != "" && now == "":
		restored := s.OriginalBinders
		if restored == nil {
			restored = []domain.Binder{}
		}
		s.Binders = restored
		s.OriginalBinders = nil
		s.SimulatedRole = ""
		s.SelectedBinderID, s.SelectedPageID = defaultSelection(restored)
	case was != "" && now != "" && was != now:
		s.Binders = []domain.Binder{}
		s.SimulatedRole = now
		s.SelectedBinderID = ""
		s.SelectedPageID = ""
		// OriginalBinders stays as stashed at entry.
	}
	return s, nil, nil
}

// actingAdmin resolves the corporate admin identity for user-management
// transitions: the current user when they are a real admin, or -- when the
// owner is simulating an admin -- the first real corporate admin in the
// directory. Returns nil when the acting identity may not manage users.
func actingAdmin(s *AppState) *domain.User {
	if !domain.CanManageUsers(s.User, s.SimulatedRole) {
		return nil
	}
	if s.User.Role == domain.RoleCorporateAdmin {
		return s.User
	}
	return domain.FindCorporateAdmin(s.Users, "")
}

func reduceCreateCorporateUser(s AppState, a Action) (AppState, []Effect, error) {
	admin := actingAdmin(&s)
	if admin == nil || a.User == nil {
		return s, nil, nil
	}
	if admin.CorporateID == "" {
		return s, nil, nil
	}
	if domain.FindUserByEmail(s.Users, a.User.Email) != nil {
		return s, nil, &RejectionError{
			Code:    CodeDuplicateEmail,
			Message: "a user with this email already exists",
		}
	}

	u := a.User.Clone()
	u.Role = domain.RoleCorporateUser
	u.CorporateID = admin.CorporateID

	users := domain.CloneUsers(s.Users)
	users = append(users, u)
	s.Users = users

	// A new corporate user starts with an empty collection of its own; it
	// sees assigned binders at login.
	return s, []Effect{saveDirectory(users), saveBinders(u.ID, []domain.Binder{})}, nil
}

func reduceDeleteUser(s AppState, a Action) (AppState, []Effect, error) {
	admin := actingAdmin(&s)
	if admin == nil {
		return s, nil, nil
	}

	target := domain.FindUser(s.Users, a.UserID)
	if target == nil {
		return s, nil, &RejectionError{
			Code: CodeNotFound, Message: "user does not exist", UserID: a.UserID,
		}
	}
	if target.Role != domain.RoleCorporateUser || target.CorporateID != admin.CorporateID {
		return s, nil, &RejectionError{
			Code:    CodeCorporateMismatch,
			Message: "target is not a corporate user of the acting admin",
			UserID:  a.UserID,
		}
	}

	users := make([]domain.User, 0, len(s.Users))
	for i := range s.Users {
		if s.Users[i].ID != a.UserID {
			users = append(users, s.Users[i])
		}
	}
	s.Users = users

	return s, []Effect{saveDirectory(users), deleteBinders(a.UserID)}, nil
}

// reduceUpgradeSubscription switches the current user's role to the tier a
// plan grants. The payment already happened in the glue; the reducer only
// records the outcome and persists it immediately.
func reduceUpgradeSubscription(s AppState, a Action) (AppState, []Effect, error) {
	if s.User == nil || !domain.ValidRole(a.Role) {
		return s, nil, nil
	}
	user := s.User.Clone()
	user.Role = a.Role

	users := domain.CloneUsers(s.Users)
	if existing := domain.FindUser(users, user.ID); existing != nil {
		existing.Role = a.Role
	}

	s.User = &user
	s.Users = users
	return s, []Effect{saveDirectory(users), saveSession(user)}, nil
}

func reduceUpdatePlan(s AppState, a Action) (AppState, []Effect, error) {
	if a.Plan == nil {
		return s, nil, nil
	}
	plans := domain.ClonePlans(s.Plans)
	for i := range plans {
		if plans[i].ID == a.Plan.ID {
			plans[i] = a.Plan.Clone()
		}
	}
	s.Plans = plans
	return s, nil, nil
}
