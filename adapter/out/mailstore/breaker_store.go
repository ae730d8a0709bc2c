package mailstore

import (
	"context"

	"easyncd/core/domain"
	"easyncd/core/port/out"
	"easyncd/pkg/resilience"
)

// BreakerStore wraps an out.Store with a circuit breaker (spec §5: the
// per-request deadline must not be held open by a struggling store). A
// tripped breaker surfaces resilience.ErrStoreUnavailable; the Sync
// handler reports it, like any store failure, as collection Status 3
// (domain.StatusServerError).
type BreakerStore struct {
	inner   out.Store
	breaker *resilience.StoreBreaker
}

func NewBreakerStore(inner out.Store) *BreakerStore {
	return &BreakerStore{inner: inner, breaker: resilience.NewStoreBreaker("mailstore")}
}

func (s *BreakerStore) GetUser(ctx context.Context, login string) (*domain.User, error) {
	v, err := s.breaker.Do(func() (any, error) { return s.inner.GetUser(ctx, login) })
	if err != nil {
		return nil, err
	}
	u, _ := v.(*domain.User)
	return u, nil
}

func (s *BreakerStore) ListItems(ctx context.Context, userID int64, collectionID string, cursor, limit int) ([]domain.Item, int, error) {
	type result struct {
		items []domain.Item
		total int
	}
	v, err := s.breaker.Do(func() (any, error) {
		items, total, err := s.inner.ListItems(ctx, userID, collectionID, cursor, limit)
		return result{items, total}, err
	})
	if err != nil {
		return nil, 0, err
	}
	r, _ := v.(result)
	return r.items, r.total, nil
}

func (s *BreakerStore) GetItem(ctx context.Context, userID int64, collectionID, serverID string) (*domain.Item, error) {
	v, err := s.breaker.Do(func() (any, error) { return s.inner.GetItem(ctx, userID, collectionID, serverID) })
	if err != nil {
		return nil, err
	}
	it, _ := v.(*domain.Item)
	return it, nil
}

func (s *BreakerStore) SetRead(ctx context.Context, userID int64, serverID string, read bool) error {
	_, err := s.breaker.Do(func() (any, error) { return nil, s.inner.SetRead(ctx, userID, serverID, read) })
	return err
}

func (s *BreakerStore) DeleteItem(ctx context.Context, userID int64, serverID string) error {
	_, err := s.breaker.Do(func() (any, error) { return nil, s.inner.DeleteItem(ctx, userID, serverID) })
	return err
}

func (s *BreakerStore) InsertItem(ctx context.Context, userID int64, collectionID string, item domain.Item) (string, error) {
	v, err := s.breaker.Do(func() (any, error) { return s.inner.InsertItem(ctx, userID, collectionID, item) })
	if err != nil {
		return "", err
	}
	id, _ := v.(string)
	return id, nil
}
