package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/binderhq/binderd/internal/domain"
)

// ErrNoSession is returned by ReadSession when no session record exists.
var ErrNoSession = errors.New("no session")

// SaveDirectory rewrites the single-row account directory.
func (s *Store) SaveDirectory(ctx context.Context, users []domain.User) error {
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("save directory: marshal: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO directory (id, users) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET users = excluded.users
	`, string(data))
	if err != nil {
		return fmt.Errorf("save directory: %w", err)
	}
	return nil
}

// ReadDirectory loads the account directory. Returns nil when no directory
// has been saved yet.
func (s *Store) ReadDirectory(ctx context.Context) ([]domain.User, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT users FROM directory WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}
	var users []domain.User
	if err := json.Unmarshal([]byte(data), &users); err != nil {
		return nil, fmt.Errorf("read directory: unmarshal: %w", err)
	}
	return users, nil
}

// SaveBinders rewrites a user's whole stored binder collection.
func (s *Store) SaveBinders(ctx context.Context, userID string, binders []domain.Binder) error {
	if binders == nil {
		binders = []domain.Binder{}
	}
	data, err := json.Marshal(binders)
	if err != nil {
		return fmt.Errorf("save binders %s: marshal: %w", userID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO binders (user_id, data) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET data = excluded.data
	`, userID, string(data))
	if err != nil {
		return fmt.Errorf("save binders %s: %w", userID, err)
	}
	return nil
}

// ReadBinders loads a user's stored binder collection. Returns nil when the
// user has no record.
func (s *Store) ReadBinders(ctx context.Context, userID string) ([]domain.Binder, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM binders WHERE user_id = ?`, userID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read binders %s: %w", userID, err)
	}
	var binders []domain.Binder
	if err := json.Unmarshal([]byte(data), &binders); err != nil {
		return nil, fmt.Errorf("read binders %s: unmarshal: %w", userID, err)
	}
	return binders, nil
}

// UpsertBinder inserts-or-replaces one binder inside its owner's stored
// collection. Read-modify-write in a single transaction; the single-writer
// dispatch path means there is no concurrent writer to race.
func (s *Store) UpsertBinder(ctx context.Context, ownerID string, b domain.Binder) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert binder %s: begin tx: %w", b.ID, err)
	}
	defer tx.Rollback()

	binders, err := readBindersTx(ctx, tx, ownerID)
	if err != nil {
		return fmt.Errorf("upsert binder %s: %w", b.ID, err)
	}

	replaced := false
	for i := range binders {
		if binders[i].ID == b.ID {
			binders[i] = b
			replaced = true
			break
		}
	}
	if !replaced {
		binders = append(binders, b)
	}

	if err := writeBindersTx(ctx, tx, ownerID, binders); err != nil {
		return fmt.Errorf("upsert binder %s: %w", b.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert binder %s: commit: %w", b.ID, err)
	}
	return nil
}

// RemoveBinder deletes one binder from its owner's stored collection.
// Removing an absent binder is a no-op.
func (s *Store) RemoveBinder(ctx context.Context, ownerID, binderID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("remove binder %s: begin tx: %w", binderID, err)
	}
	defer tx.Rollback()

	binders, err := readBindersTx(ctx, tx, ownerID)
	if err != nil {
		return fmt.Errorf("remove binder %s: %w", binderID, err)
	}

	kept := binders[:0]
	for _, b := range binders {
		if b.ID != binderID {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(binders) {
		return nil
	}

	if err := writeBindersTx(ctx, tx, ownerID, kept); err != nil {
		return fmt.Errorf("remove binder %s: %w", binderID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("remove binder %s: commit: %w", binderID, err)
	}
	return nil
}

// DeleteBinders drops a user's stored collection entirely.
func (s *Store) DeleteBinders(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM binders WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("delete binders %s: %w", userID, err)
	}
	return nil
}

// ReadAllCollections loads every stored binder collection keyed by user id,
// in user id order. Used by catalog rebuild at bootstrap.
func (s *Store) ReadAllCollections(ctx context.Context) (map[string][]domain.Binder, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id, data FROM binders ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("read collections: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.Binder)
	for rows.Next() {
		var userID, data string
		if err := rows.Scan(&userID, &data); err != nil {
			return nil, fmt.Errorf("read collections: scan: %w", err)
		}
		var binders []domain.Binder
		if err := json.Unmarshal([]byte(data), &binders); err != nil {
			return nil, fmt.Errorf("read collections %s: unmarshal: %w", userID, err)
		}
		out[userID] = binders
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read collections: %w", err)
	}
	return out, nil
}

// SaveSession records the logged-in user.
func (s *Store) SaveSession(ctx context.Context, u domain.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("save session: marshal: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO session (id, data) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data
	`, string(data))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// ReadSession loads the session record. Returns ErrNoSession when logged
// out.
func (s *Store) ReadSession(ctx context.Context) (domain.User, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM session WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, ErrNoSession
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("read session: %w", err)
	}
	var u domain.User
	if err := json.Unmarshal([]byte(data), &u); err != nil {
		return domain.User{}, fmt.Errorf("read session: unmarshal: %w", err)
	}
	return u, nil
}

// ClearSession removes the session record. Clearing an absent session is a
// no-op.
func (s *Store) ClearSession(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE id = 1`)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func readBindersTx(ctx context.Context, tx *sql.Tx, userID string) ([]domain.Binder, error) {
	var data string
	err := tx.QueryRowContext(ctx, `SELECT data FROM binders WHERE user_id = ?`, userID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read collection: %w", err)
	}
	var binders []domain.Binder
	if err := json.Unmarshal([]byte(data), &binders); err != nil {
		return nil, fmt.Errorf("unmarshal collection: %w", err)
	}
	return binders, nil
}

func writeBindersTx(ctx context.Context, tx *sql.Tx, userID string, binders []domain.Binder) error {
	if binders == nil {
		binders = []domain.Binder{}
	}
	data, err := json.Marshal(binders)
	if err != nil {
		return fmt.Errorf("marshal collection: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO binders (user_id, data) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET data = excluded.data
	`, userID, string(data))
	if err != nil {
		return fmt.Errorf("write collection: %w", err)
	}
	return nil
}
