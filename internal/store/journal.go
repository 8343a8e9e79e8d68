package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/binderhq/binderd/internal/state"
)

// AppendAction appends a stamped action to the journal. The seq is the
// primary key; ON CONFLICT DO NOTHING makes re-appending the same seq
// idempotent, which covers crash-and-retry during dispatch.
func (s *Store) AppendAction(ctx context.Context, a state.Action) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("append action seq=%d: marshal: %w", a.Seq, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO journal (seq, type, time, action) VALUES (?, ?, ?, ?)
		ON CONFLICT(seq) DO NOTHING
	`, a.Seq, string(a.Type), a.Time, string(data))
	if err != nil {
		return fmt.Errorf("append action seq=%d: %w", a.Seq, err)
	}
	return nil
}

// ReadJournal loads the whole journal in seq order.
func (s *Store) ReadJournal(ctx context.Context) ([]state.Action, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT action FROM journal ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	defer rows.Close()

	var actions []state.Action
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("read journal: scan: %w", err)
		}
		var a state.Action
		if err := json.Unmarshal([]byte(data), &a); err != nil {
			return nil, fmt.Errorf("read journal: unmarshal: %w", err)
		}
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return actions, nil
}

// LastSeq returns the highest journaled sequence number, 0 when empty.
// The dispatcher's clock resumes from this value after replay.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM journal`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq, nil
}

// JournalLen returns the number of journaled actions.
func (s *Store) JournalLen(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM journal`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("journal len: %w", err)
	}
	return n, nil
}
