// Package ping implements the long-poll notification subsystem (spec
// §4.6): a per-user subscription bus with edge-triggered, non-blocking
// wake-up, grounded on the same buffered-channel/coarse-lock pattern the
// teacher uses for its SSE fan-out adapter.
package ping

import (
	"sync"

	"github.com/rs/zerolog"
)

// subscription is one parked Ping call's registration. signal is buffered
// to depth 1 so Notify never blocks on a slow or absent reader — it is a
// level, not a queue: multiple notifies before the subscriber parks again
// collapse into one wake-up (spec §4.6 "level-then-drain").
type subscription struct {
	userID  int64
	folders map[string]struct{}
	signal  chan struct{}

	mu      sync.Mutex
	changed map[string]struct{}
}

func (s *subscription) watches(collectionID string) bool {
	if len(s.folders) == 0 {
		return true
	}
	_, ok := s.folders[collectionID]
	return ok
}

func (s *subscription) markChanged(collectionID string) {
	s.mu.Lock()
	if s.changed == nil {
		s.changed = make(map[string]struct{}, 1)
	}
	s.changed[collectionID] = struct{}{}
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// drainChanged returns and clears the set of collections that changed
// since the last drain.
func (s *subscription) drainChanged() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.changed))
	for id := range s.changed {
		out = append(out, id)
	}
	s.changed = nil
	return out
}

// Bus is the subscription registry, keyed by user_id. Per spec §5 it uses
// one coarse lock for subscribe/unsubscribe/notify — these are
// O(subscribers_for_user), which stays small.
type Bus struct {
	mu   sync.Mutex
	byID map[int64]map[*subscription]struct{}
	log  zerolog.Logger
}

func NewBus(log zerolog.Logger) *Bus {
	return &Bus{byID: make(map[int64]map[*subscription]struct{}), log: log}
}

func (b *Bus) subscribe(userID int64, folders []string) *subscription {
	set := make(map[string]struct{}, len(folders))
	for _, f := range folders {
		set[f] = struct{}{}
	}
	sub := &subscription{userID: userID, folders: set, signal: make(chan struct{}, 1)}

	b.mu.Lock()
	if b.byID[userID] == nil {
		b.byID[userID] = make(map[*subscription]struct{})
	}
	b.byID[userID][sub] = struct{}{}
	total := len(b.byID[userID])
	b.mu.Unlock()

	b.log.Debug().Int64("user_id", userID).Int("total_subscriptions", total).Msg("ping_subscribed")
	return sub
}

// unsubscribe is idempotent: calling it twice, or for an already-removed
// subscription, is a no-op (spec §4.6).
func (b *Bus) unsubscribe(sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.byID[sub.userID]
	if !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(b.byID, sub.userID)
	}
}

// Notify implements out.Notifier: it is a no-op when no subscribers exist
// and never blocks the publisher (spec §4.6).
func (b *Bus) Notify(userID int64, collectionID string) {
	b.mu.Lock()
	subs := b.byID[userID]
	matched := make([]*subscription, 0, len(subs))
	for sub := range subs {
		if sub.watches(collectionID) {
			matched = append(matched, sub)
		}
	}
	b.mu.Unlock()

	if len(matched) == 0 {
		return
	}
	b.log.Debug().Int64("user_id", userID).Str("collection_id", collectionID).
		Int("woken", len(matched)).Msg("ping_notify")
	for _, sub := range matched {
		sub.markChanged(collectionID)
	}
}
