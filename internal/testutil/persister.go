package testutil

import (
	"context"
	"sync"

	"github.com/binderhq/binderd/internal/domain"
	"github.com/binderhq/binderd/internal/state"
)

// MemoryPersister is an in-memory dispatch.Persister. It records the
// journal and the durable records so tests can assert on what a transition
// persisted without opening a database.
type MemoryPersister struct {
	mu sync.Mutex

	Journal     []state.Action
	Directory   []domain.User
	Collections map[string][]domain.Binder
	Session     *domain.User

	// FailAppend makes AppendAction fail, for exercising the abort path.
	FailAppend error
}

// NewMemoryPersister creates an empty persister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{Collections: make(map[string][]domain.Binder)}
}

func (p *MemoryPersister) AppendAction(ctx context.Context, a state.Action) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailAppend != nil {
		return p.FailAppend
	}
	p.Journal = append(p.Journal, a)
	return nil
}

func (p *MemoryPersister) SaveDirectory(ctx context.Context, users []domain.User) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Directory = domain.CloneUsers(users)
	return nil
}

func (p *MemoryPersister) UpsertBinder(ctx context.Context, ownerID string, b domain.Binder) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	binders := p.Collections[ownerID]
	for i := range binders {
		if binders[i].ID == b.ID {
			binders[i] = b.Clone()
			p.Collections[ownerID] = binders
			return nil
		}
	}
	p.Collections[ownerID] = append(binders, b.Clone())
	return nil
}

func (p *MemoryPersister) RemoveBinder(ctx context.Context, ownerID, binderID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	binders := p.Collections[ownerID]
	kept := binders[:0]
	for _, b := range binders {
		if b.ID != binderID {
			kept = append(kept, b)
		}
	}
	p.Collections[ownerID] = kept
	return nil
}

func (p *MemoryPersister) SaveBinders(ctx context.Context, userID string, binders []domain.Binder) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Collections[userID] = domain.CloneBinders(binders)
	return nil
}

func (p *MemoryPersister) DeleteBinders(ctx context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.Collections, userID)
	return nil
}

func (p *MemoryPersister) SaveSession(ctx context.Context, u domain.User) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	clone := u.Clone()
	p.Session = &clone
	return nil
}

func (p *MemoryPersister) ClearSession(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Session = nil
	return nil
}

// Binders returns a copy of a user's recorded collection.
func (p *MemoryPersister) Binders(userID string) []domain.Binder {
	p.mu.Lock()
	defer p.mu.Unlock()
	return domain.CloneBinders(p.Collections[userID])
}

// JournalTypes returns the journaled action types in order.
func (p *MemoryPersister) JournalTypes() []state.ActionType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]state.ActionType, len(p.Journal))
	for i, a := range p.Journal {
		out[i] = a.Type
	}
	return out
}
