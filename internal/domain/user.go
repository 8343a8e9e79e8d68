package domain

// UserRole is the access tier of an account.
type UserRole string

const (
	// RoleOwner is the single account that drives the system: it sees every
	// published bundle as a binder and may impersonate other roles.
	RoleOwner UserRole = "owner"
	// RoleFree is the default tier for self-signup accounts.
	RoleFree UserRole = "free"
	// RoleVIP is the paid individual tier; VIPs may publish binders.
	RoleVIP UserRole = "vip"
	// RoleCorporateAdmin manages a corporate group and assigns binders to
	// its members.
	RoleCorporateAdmin UserRole = "corporate_admin"
	// RoleCorporateUser belongs to exactly one corporate group and sees the
	// binders its admin assigned to it.
	RoleCorporateUser UserRole = "corporate_user"
)

// ValidRole reports whether r is one of the defined role values.
func ValidRole(r UserRole) bool {
	switch r {
	case RoleOwner, RoleFree, RoleVIP, RoleCorporateAdmin, RoleCorporateUser:
		return true
	}
	return false
}

// User is an account in the directory.
//
// INVARIANT: a RoleCorporateUser always carries a non-empty CorporateID
// matching exactly one RoleCorporateAdmin's CorporateID.
type User struct {
	ID    string   `json:"id" yaml:"id"`
	Email string   `json:"email" yaml:"email"`
	Name  string   `json:"name" yaml:"name"`
	Role  UserRole `json:"role" yaml:"role"`

	// PasswordHash is the bcrypt hash of the account credential. Credential
	// verification happens in the login glue, never in the reducer.
	PasswordHash string `json:"passwordHash,omitempty" yaml:"password_hash,omitempty"`

	// CorporateID groups a corporate admin with its corporate users.
	// Empty for owner, free and vip accounts.
	CorporateID string `json:"corporateId,omitempty" yaml:"corporate_id,omitempty"`
}

// Clone returns a deep copy of the user.
func (u User) Clone() User {
	return u // all fields are value types
}

// FindUser returns the first user with the given id, or nil.
func FindUser(users []User, id string) *User {
	for i := range users {
		if users[i].ID == id {
			return &users[i]
		}
	}
	return nil
}

// FindUserByEmail returns the first user with the given email, or nil.
func FindUserByEmail(users []User, email string) *User {
	for i := range users {
		if users[i].Email == email {
			return &users[i]
		}
	}
	return nil
}

// FindCorporateAdmin returns the first corporate admin in the directory,
// optionally restricted to a corporate group. Pass an empty corporateID to
// match any admin.
func FindCorporateAdmin(users []User, corporateID string) *User {
	for i := range users {
		if users[i].Role != RoleCorporateAdmin {
			continue
		}
		if corporateID == "" || users[i].CorporateID == corporateID {
			return &users[i]
		}
	}
	return nil
}

// CloneUsers deep-copies a user directory.
func CloneUsers(users []User) []User {
	if users == nil {
		return nil
	}
	out := make([]User, len(users))
	copy(out, users)
	return out
}
