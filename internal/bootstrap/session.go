package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/binderhq/binderd/internal/dispatch"
	"github.com/binderhq/binderd/internal/domain"
	"github.com/binderhq/binderd/internal/state"
	"github.com/binderhq/binderd/internal/store"
)

// ErrInvalidCredentials is returned by Login for an unknown email or a
// wrong password. Deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Login verifies the credential against the directory and dispatches the
// authenticate transition with everything it needs pre-loaded: the fresh
// directory, the user's stored collection, and for a corporate user the
// matching admin's collection.
func Login(ctx context.Context, st *store.Store, d *dispatch.Dispatcher, email, password string) (state.AppState, error) {
	users, err := st.ReadDirectory(ctx)
	if err != nil {
		return d.State(), fmt.Errorf("login: %w", err)
	}

	u := domain.FindUserByEmail(users, email)
	if u == nil {
		return d.State(), ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return d.State(), ErrInvalidCredentials
	}

	return authenticate(ctx, st, d, *u, users)
}

// Restore re-authenticates from the stored session record. Returns
// restored=false without error when no session exists. The user is
// refreshed from the directory so role changes since the last login take
// effect.
func Restore(ctx context.Context, st *store.Store, d *dispatch.Dispatcher) (s state.AppState, restored bool, err error) {
	sessionUser, err := st.ReadSession(ctx)
	if errors.Is(err, store.ErrNoSession) {
		return d.State(), false, nil
	}
	if err != nil {
		return d.State(), false, fmt.Errorf("restore: %w", err)
	}

	users, err := st.ReadDirectory(ctx)
	if err != nil {
		return d.State(), false, fmt.Errorf("restore: %w", err)
	}

	u := domain.FindUser(users, sessionUser.ID)
	if u == nil {
		// The account was deleted since the session was saved.
		if _, err := d.Dispatch(ctx, state.Logout()); err != nil {
			return d.State(), false, fmt.Errorf("restore: %w", err)
		}
		return d.State(), false, nil
	}

	next, err := authenticate(ctx, st, d, *u, users)
	if err != nil {
		return next, false, err
	}
	return next, true, nil
}

// Logout dispatches the logout transition, which clears the session record.
func Logout(ctx context.Context, d *dispatch.Dispatcher) (state.AppState, error) {
	return d.Dispatch(ctx, state.Logout())
}

// ChangePassword hashes the new credential and dispatches the update.
func ChangePassword(ctx context.Context, d *dispatch.Dispatcher, password string) (state.AppState, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return d.State(), fmt.Errorf("change password: %w", err)
	}
	return d.Dispatch(ctx, state.UpdateCredential(string(hash)))
}

func authenticate(ctx context.Context, st *store.Store, d *dispatch.Dispatcher, u domain.User, users []domain.User) (state.AppState, error) {
	binders, err := st.ReadBinders(ctx, u.ID)
	if err != nil {
		return d.State(), fmt.Errorf("load collection: %w", err)
	}

	var adminBinders []domain.Binder
	if u.Role == domain.RoleCorporateUser && u.CorporateID != "" {
		if admin := domain.FindCorporateAdmin(users, u.CorporateID); admin != nil {
			adminBinders, err = st.ReadBinders(ctx, admin.ID)
			if err != nil {
				return d.State(), fmt.Errorf("load admin collection: %w", err)
			}
		}
	}

	return d.Dispatch(ctx, state.Authenticate(u, binders, users, adminBinders))
}
