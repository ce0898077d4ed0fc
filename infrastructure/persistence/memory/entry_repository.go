// Package memory provides in-memory implementations of the persistence
// ports for tests and local development.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"lifelog-backend/application/ports"
	"lifelog-backend/domain/entry"
	apperrors "lifelog-backend/pkg/errors"
)

// EntryRepository is a map-backed ports.EntryRepository. It mirrors the
// DynamoDB implementation's conditional-write semantics and counts store
// calls so tests can assert that rejected requests never reach the store.
type EntryRepository struct {
	mu      sync.RWMutex
	items   map[string]map[string]entry.Entry // userID -> entryID -> entry
	calls   int
	failure error
}

// NewEntryRepository creates an empty in-memory repository.
func NewEntryRepository() *EntryRepository {
	return &EntryRepository{items: make(map[string]map[string]entry.Entry)}
}

// Calls reports how many store operations were attempted.
func (r *EntryRepository) Calls() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.calls
}

// FailWith makes every subsequent operation return err.
func (r *EntryRepository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failure = err
}

func (r *EntryRepository) List(ctx context.Context, userID string, entityType entry.EntityType, limit int) ([]entry.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.failure != nil {
		return nil, r.failure
	}
	prefix := entry.IDPrefix(entityType)
	var out []entry.Entry
	for _, e := range r.items[userID] {
		if strings.HasPrefix(e.EntryID, prefix) {
			out = append(out, copyEntry(e))
		}
	}
	// Sort keys embed fixed-width millisecond timestamps; descending string
	// order is descending creation order.
	sort.Slice(out, func(i, j int) bool { return out[i].EntryID > out[j].EntryID })
	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []entry.Entry{}
	}
	return out, nil
}

func (r *EntryRepository) Get(ctx context.Context, userID, entryID string) (*entry.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.failure != nil {
		return nil, r.failure
	}
	e, ok := r.items[userID][entryID]
	if !ok {
		return nil, apperrors.NewNotFoundError("Entry")
	}
	out := copyEntry(e)
	return &out, nil
}

func (r *EntryRepository) Create(ctx context.Context, e entry.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.failure != nil {
		return r.failure
	}
	if _, exists := r.items[e.UserID][e.EntryID]; exists {
		return apperrors.NewConflictError("entry id already exists")
	}
	if r.items[e.UserID] == nil {
		r.items[e.UserID] = make(map[string]entry.Entry)
	}
	r.items[e.UserID][e.EntryID] = copyEntry(e)
	return nil
}

func (r *EntryRepository) Update(ctx context.Context, userID, entryID string, fields map[string]any, updatedAt string) (*entry.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.failure != nil {
		return nil, r.failure
	}
	e, ok := r.items[userID][entryID]
	if !ok {
		return nil, apperrors.NewNotFoundError("Entry")
	}
	updated := copyEntry(e)
	for k, v := range fields {
		updated.Fields[k] = v
	}
	updated.UpdatedAt = updatedAt
	r.items[userID][entryID] = copyEntry(updated)
	return &updated, nil
}

func (r *EntryRepository) Delete(ctx context.Context, userID, entryID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.failure != nil {
		return r.failure
	}
	if _, ok := r.items[userID][entryID]; !ok {
		return apperrors.NewNotFoundError("Entry")
	}
	delete(r.items[userID], entryID)
	return nil
}

func copyEntry(e entry.Entry) entry.Entry {
	fields := make(map[string]any, len(e.Fields))
	for k, v := range e.Fields {
		fields[k] = v
	}
	e.Fields = fields
	return e
}

var _ ports.EntryRepository = (*EntryRepository)(nil)
