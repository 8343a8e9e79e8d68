// Package store is the SQLite persistence layer: one durable record per
// concern (account directory, per-user binder collections, the session) plus
// the append-only action journal the dispatcher replays on startup.
//
// Records are JSON documents keyed by owner. The journal is the source of
// truth for in-memory state; records exist so reads at bootstrap (login,
// session restore, admin lookup) do not have to fold the whole journal.
package store
