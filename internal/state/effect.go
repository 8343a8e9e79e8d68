package state

import "github.com/binderhq/binderd/internal/domain"

// EffectKind identifies a persistence side effect requested by a transition.
type EffectKind string

const (
	// EffectSaveDirectory rewrites the account directory record.
	EffectSaveDirectory EffectKind = "save_directory"
	// EffectUpsertBinder inserts-or-replaces one binder inside its owner's
	// stored collection. The adapter performs the read-modify-write; the
	// reducer only ever sees the viewer's collection, which may not be the
	// owner's (assigned corporate binders, shop imports).
	EffectUpsertBinder EffectKind = "upsert_binder"
	// EffectRemoveBinder deletes one binder from its owner's stored
	// collection.
	EffectRemoveBinder EffectKind = "remove_binder"
	// EffectSaveBinders rewrites a user's whole stored collection.
	EffectSaveBinders EffectKind = "save_binders"
	// EffectDeleteBinders drops a user's stored collection entirely.
	EffectDeleteBinders EffectKind = "delete_binders"
	// EffectSaveSession records the logged-in user.
	EffectSaveSession EffectKind = "save_session"
	// EffectClearSession removes the session record.
	EffectClearSession EffectKind = "clear_session"
)

// Effect describes one persistence write coupled to a transition. Effects
// are applied after the new state is installed and are fire-and-forget: a
// failed write is logged by the dispatcher and does not roll back state.
type Effect struct {
	Kind EffectKind

	// UserID scopes binder-collection effects; OwnerID for binder upserts.
	UserID string

	Users   []domain.User
	Binder  *domain.Binder
	Binders []domain.Binder
	User    *domain.User

	// BinderID identifies the record for EffectRemoveBinder.
	BinderID string
}

func saveDirectory(users []domain.User) Effect {
	return Effect{Kind: EffectSaveDirectory, Users: users}
}

func upsertBinder(b domain.Binder) Effect {
	return Effect{Kind: EffectUpsertBinder, UserID: b.OwnerID, Binder: &b}
}

func removeBinder(ownerID, binderID string) Effect {
	return Effect{Kind: EffectRemoveBinder, UserID: ownerID, BinderID: binderID}
}

func saveBinders(userID string, binders []domain.Binder) Effect {
	return Effect{Kind: EffectSaveBinders, UserID: userID, Binders: binders}
}

func deleteBinders(userID string) Effect {
	return Effect{Kind: EffectDeleteBinders, UserID: userID}
}

func saveSession(u domain.User) Effect {
	return Effect{Kind: EffectSaveSession, User: &u}
}

func clearSession() Effect {
	return Effect{Kind: EffectClearSession}
}
