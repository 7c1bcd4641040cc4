// Package mirror keeps the client's record of book ids already saved by the
// signed-in user. Each user has a separate persisted set. The working set
// lives in memory for the length of a scoped Session and is written to
// durable storage once, when it closes.
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/bookshelf/bookshelf-go/internal/client/storage"
)

// SavedBooksKey prefixes the storage key of each user's persisted id array.
const SavedBooksKey = "saved_books"

// ErrSessionClosed is returned by Record once the session has been flushed.
var ErrSessionClosed = errors.New("mirror session already closed")

// Key returns the storage key holding userID's saved ids.
func Key(userID string) string {
	return SavedBooksKey + ":" + userID
}

// Mirror reads and writes one user's persisted set of saved book ids.
type Mirror struct {
	store storage.Store
	key   string
}

// New creates a Mirror of userID's saved ids backed by store.
func New(store storage.Store, userID string) *Mirror {
	return &Mirror{store: store, key: Key(userID)}
}

// Snapshot returns the persisted ids, or an empty set when none were stored.
func (m *Mirror) Snapshot(ctx context.Context) (map[string]struct{}, error) {
	set := make(map[string]struct{})

	raw, ok, err := m.store.Get(ctx, m.key)
	if err != nil || !ok {
		return set, err
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decode %s: %w", m.key, err)
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// Open starts a Session seeded from the current snapshot. The caller must Close it.
func (m *Mirror) Open(ctx context.Context) (*Session, error) {
	set, err := m.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &Session{mirror: m, ids: set}, nil
}

// Run opens a Session, passes it to fn, and flushes it however fn returns.
func (m *Mirror) Run(ctx context.Context, fn func(*Session) error) (err error) {
	s, err := m.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(s)
}

func (m *Mirror) flush(ctx context.Context, ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return m.store.Set(ctx, m.key, string(data))
}

// Session is the in-memory working set of saved ids.
type Session struct {
	mirror *Mirror

	mu     sync.Mutex
	ids    map[string]struct{}
	closed bool
}

// Record adds id to the working set. Recording a present id is a no-op.
// A closed session has already been written and accepts no more ids.
func (s *Session) Record(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.ids[id] = struct{}{}
	return nil
}

// Has reports whether id is in the working set.
func (s *Session) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// Close writes the working set to storage. Only the first call writes.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	ids := sortedIDs(s.ids)
	s.mu.Unlock()

	return s.mirror.flush(ctx, ids)
}

func sortedIDs(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
