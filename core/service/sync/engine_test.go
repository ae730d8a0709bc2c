package sync

import (
	"context"
	"testing"

	"easyncd/core/domain"
	in "easyncd/core/port/in"
	"easyncd/core/port/out"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	items []domain.Item
}

func (f *fakeStore) GetUser(ctx context.Context, login string) (*domain.User, error) {
	return &domain.User{ID: 1, Email: login}, nil
}
func (f *fakeStore) ListItems(ctx context.Context, userID int64, collectionID string, cursor, limit int) ([]domain.Item, int, error) {
	end := cursor + limit
	if end > len(f.items) {
		end = len(f.items)
	}
	if cursor > len(f.items) {
		cursor = len(f.items)
	}
	return f.items[cursor:end], len(f.items), nil
}
func (f *fakeStore) GetItem(ctx context.Context, userID int64, collectionID, serverID string) (*domain.Item, error) {
	for _, it := range f.items {
		if it.ServerID == serverID {
			return &it, nil
		}
	}
	return nil, out.ErrNotFound
}
func (f *fakeStore) SetRead(ctx context.Context, userID int64, serverID string, read bool) error { return nil }
func (f *fakeStore) DeleteItem(ctx context.Context, userID int64, serverID string) error          { return nil }
func (f *fakeStore) InsertItem(ctx context.Context, userID int64, collectionID string, item domain.Item) (string, error) {
	return "new-1", nil
}

type fakeRepo struct {
	saved map[string]*domain.CollectionState
}

func newFakeRepo() *fakeRepo { return &fakeRepo{saved: map[string]*domain.CollectionState{}} }

func (r *fakeRepo) Get(ctx context.Context, userID int64, deviceID, collectionID string) (*domain.CollectionState, error) {
	return r.saved[collectionID], nil
}
func (r *fakeRepo) Put(ctx context.Context, userID int64, deviceID, collectionID string, state *domain.CollectionState) error {
	r.saved[collectionID] = state
	return nil
}

func newTestService(items []domain.Item) *Service {
	return NewService(&fakeStore{items: items}, newFakeRepo(), nil, zerolog.Nop())
}

func TestInitialSyncPrimesWithNoItems(t *testing.T) {
	svc := newTestService([]domain.Item{{ServerID: "1"}, {ServerID: "2"}})
	res, err := svc.Sync(context.Background(), in.SyncRequest{UserID: 1, DeviceID: "d", CollectionID: "1", ClientKey: domain.InitialSyncKey})
	require.NoError(t, err)
	require.Equal(t, domain.StatusOK, res.Status)
	require.Equal(t, domain.SyncKey(1), res.Batch.ResponseSyncKey)
	require.Empty(t, res.Batch.Items)
	require.False(t, res.Batch.MoreAvailable)
}

func TestIdempotentResendReturnsSamePendingBatch(t *testing.T) {
	svc := newTestService([]domain.Item{{ServerID: "1"}, {ServerID: "2"}, {ServerID: "3"}})
	ctx := context.Background()

	_, err := svc.Sync(ctx, in.SyncRequest{UserID: 1, DeviceID: "d", CollectionID: "1", ClientKey: domain.InitialSyncKey})
	require.NoError(t, err)

	first, err := svc.Sync(ctx, in.SyncRequest{UserID: 1, DeviceID: "d", CollectionID: "1", ClientKey: domain.SyncKey(1), WindowSize: 2})
	require.NoError(t, err)
	require.Equal(t, 2, first.Batch.SentCount)
	require.True(t, first.Batch.MoreAvailable)

	// Resend with the same client key: server must not touch cursor/store.
	second, err := svc.Sync(ctx, in.SyncRequest{UserID: 1, DeviceID: "d", CollectionID: "1", ClientKey: domain.SyncKey(1), WindowSize: 2})
	require.NoError(t, err)
	require.Equal(t, first.Batch.ResponseSyncKey, second.Batch.ResponseSyncKey)
	require.Equal(t, first.Batch.SentCount, second.Batch.SentCount)
}

func TestAckAdvancesCursorAndIssuesNewKey(t *testing.T) {
	svc := newTestService([]domain.Item{{ServerID: "1"}, {ServerID: "2"}, {ServerID: "3"}})
	ctx := context.Background()
	req := func(key domain.SyncKey) in.SyncRequest {
		return in.SyncRequest{UserID: 1, DeviceID: "d", CollectionID: "1", ClientKey: key, WindowSize: 2}
	}

	_, err := svc.Sync(ctx, in.SyncRequest{UserID: 1, DeviceID: "d", CollectionID: "1", ClientKey: domain.InitialSyncKey})
	require.NoError(t, err)

	batch1, err := svc.Sync(ctx, req(1))
	require.NoError(t, err)
	require.Equal(t, domain.SyncKey(2), batch1.Batch.ResponseSyncKey)
	require.True(t, batch1.Batch.MoreAvailable)

	batch2, err := svc.Sync(ctx, req(2))
	require.NoError(t, err)
	require.Equal(t, domain.SyncKey(3), batch2.Batch.ResponseSyncKey)
	require.Equal(t, 1, batch2.Batch.SentCount)
	require.False(t, batch2.Batch.MoreAvailable)
}

func TestUnexpectedKeyDoesNotRollBackCurrentKey(t *testing.T) {
	svc := newTestService([]domain.Item{{ServerID: "1"}})
	ctx := context.Background()

	_, err := svc.Sync(ctx, in.SyncRequest{UserID: 1, DeviceID: "d", CollectionID: "1", ClientKey: domain.InitialSyncKey})
	require.NoError(t, err)
	_, err = svc.Sync(ctx, in.SyncRequest{UserID: 1, DeviceID: "d", CollectionID: "1", ClientKey: domain.SyncKey(1)})
	require.NoError(t, err)

	// A stale/garbage key arrives; CurrentKey (now 1) must stay put and a
	// fresh batch keyed off it is produced rather than erroring or resetting.
	res, err := svc.Sync(ctx, in.SyncRequest{UserID: 1, DeviceID: "d", CollectionID: "1", ClientKey: domain.SyncKey(99)})
	require.NoError(t, err)
	require.Equal(t, domain.StatusOK, res.Status)
	require.Equal(t, domain.SyncKey(2), res.Batch.ResponseSyncKey)
}
