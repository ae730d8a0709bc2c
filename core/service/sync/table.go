// Package sync implements the item Sync state machine (spec §4.5): the
// per-collection resend/ACK/unexpected-key algorithm, ported from the
// reference SyncStateStore, plus item command application and body
// rendering.
package sync

import (
	"sync"

	"easyncd/core/domain"
)

// collectionKey identifies one CollectionState row.
type collectionKey struct {
	userID       int64
	deviceID     string
	collectionID string
}

// entry pairs a CollectionState with the mutex serializing access to it
// (spec §5: "all operations are serialized by a per-key mutex... different
// triples proceed in parallel").
type entry struct {
	mu    sync.Mutex
	state *domain.CollectionState
}

// table is the in-process CollectionState cache. Fine-grained locking is
// per key (spec §5: "use fine-grained locking per key, not a global
// lock"); the outer map's own mutex only guards entry creation, never the
// state mutation itself.
type table struct {
	mu      sync.Mutex
	entries map[collectionKey]*entry
}

func newTable() *table {
	return &table{entries: make(map[collectionKey]*entry)}
}

// withLocked runs fn against the CollectionState for key, creating it via
// load on first access, holding the per-key lock for the duration.
func (t *table) withLocked(key collectionKey, load func() (*domain.CollectionState, error), fn func(*domain.CollectionState)) error {
	t.mu.Lock()
	e, ok := t.entries[key]
	if !ok {
		e = &entry{}
		t.entries[key] = e
	}
	t.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == nil {
		st, err := load()
		if err != nil {
			return err
		}
		if st == nil {
			st = domain.NewCollectionState()
		}
		e.state = st
	}
	fn(e.state)
	return nil
}
