package domain

// Authorization predicates are centralized here so the reducer and any
// presentation layer derive permissions from the same functions. The reducer
// uses them as defense-in-depth; callers are expected to pre-check before
// dispatching.

// EffectiveRole resolves the role a user is currently acting as. When the
// owner is impersonating another role via the simulation sandbox, the
// simulated role wins; otherwise the real role applies.
//
// Compute this once per transition. Re-deriving real-vs-simulated in several
// places is how sandbox leaks happen.
func EffectiveRole(u *User, simulated UserRole) UserRole {
	if u == nil {
		return ""
	}
	if u.Role == RoleOwner && simulated != "" {
		return simulated
	}
	return u.Role
}

// IsOwner reports whether the user's real role is owner. Simulation never
// grants or removes ownership.
func IsOwner(u *User) bool {
	return u != nil && u.Role == RoleOwner
}

// IsCorporateAdmin reports whether the effective role is corporate admin.
func IsCorporateAdmin(u *User, simulated UserRole) bool {
	return EffectiveRole(u, simulated) == RoleCorporateAdmin
}

// CanPublish reports whether the effective role may publish binders to the
// shop. Owners and VIPs publish; corporate and free accounts do not.
func CanPublish(u *User, simulated UserRole) bool {
	r := EffectiveRole(u, simulated)
	return r == RoleOwner || r == RoleVIP
}

// CanAccessStore reports whether the effective role may browse and purchase
// from the shop. Corporate accounts get their content by assignment instead.
func CanAccessStore(u *User, simulated UserRole) bool {
	r := EffectiveRole(u, simulated)
	return r != RoleCorporateAdmin && r != RoleCorporateUser
}

// CanManageUsers reports whether the acting identity may create or delete
// corporate users: a real corporate admin, or the owner while simulating
// one. A simulated admin acts on behalf of the first real admin in the
// directory.
func CanManageUsers(u *User, simulated UserRole) bool {
	if u == nil {
		return false
	}
	if u.Role == RoleCorporateAdmin && simulated == "" {
		return true
	}
	return u.Role == RoleOwner && simulated == RoleCorporateAdmin
}
