package folder

import (
	"context"
	"testing"

	"easyncd/core/domain"

	"github.com/stretchr/testify/require"
)

type fakeFolderRepo struct {
	saved map[string]domain.SyncKey
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{saved: map[string]domain.SyncKey{}}
}

func (r *fakeFolderRepo) Get(ctx context.Context, userID int64, deviceID string) (domain.SyncKey, error) {
	return r.saved[deviceID], nil
}
func (r *fakeFolderRepo) Put(ctx context.Context, userID int64, deviceID string, key domain.SyncKey) error {
	r.saved[deviceID] = key
	return nil
}

func TestFolderSyncInitialReturnsFixedHierarchy(t *testing.T) {
	repo := newFakeFolderRepo()
	svc := NewService(repo)

	res, err := svc.FolderSync(context.Background(), 1, "dev-1", domain.InitialSyncKey)
	require.NoError(t, err)
	require.Equal(t, domain.StatusOK, res.Status)
	require.Equal(t, currentFolderSyncKey, res.SyncKey)
	require.Len(t, res.Added, 5)
	require.Equal(t, "Inbox", res.Added[0].DisplayName)
}

func TestFolderSyncAcknowledgedKeyIsIdempotent(t *testing.T) {
	repo := newFakeFolderRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.FolderSync(ctx, 1, "dev-1", domain.InitialSyncKey)
	require.NoError(t, err)

	res, err := svc.FolderSync(ctx, 1, "dev-1", currentFolderSyncKey)
	require.NoError(t, err)
	require.Equal(t, domain.StatusOK, res.Status)
	require.Empty(t, res.Added)
}

func TestFolderSyncRejectsUnknownKeyWithoutInitialSync(t *testing.T) {
	repo := newFakeFolderRepo()
	svc := NewService(repo)

	res, err := svc.FolderSync(context.Background(), 1, "dev-1", currentFolderSyncKey)
	require.NoError(t, err)
	require.Equal(t, domain.StatusInvalidSyncKey, res.Status)
}

func TestFolderSyncRejectsGarbageKey(t *testing.T) {
	repo := newFakeFolderRepo()
	svc := NewService(repo)

	res, err := svc.FolderSync(context.Background(), 1, "dev-1", domain.SyncKey(999))
	require.NoError(t, err)
	require.Equal(t, domain.StatusInvalidSyncKey, res.Status)
}
