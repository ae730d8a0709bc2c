package provision

import (
	"context"
	"testing"

	"easyncd/core/domain"
	"easyncd/pkg/apperr"

	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	devices map[string]*domain.Device
}

func newFakeRepo() *fakeRepo { return &fakeRepo{devices: map[string]*domain.Device{}} }

func (r *fakeRepo) Get(ctx context.Context, userID int64, deviceID string) (*domain.Device, error) {
	return r.devices[deviceKey(userID, deviceID)], nil
}
func (r *fakeRepo) Put(ctx context.Context, d *domain.Device) error {
	r.devices[deviceKey(d.UserID, d.DeviceID)] = d
	return nil
}

type sequentialKeys struct{ next uint32 }

func (k *sequentialKeys) Next() uint32 {
	k.next++
	return k.next
}

func TestProvisionHandshakeReachesProvisionedState(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &sequentialKeys{})
	ctx := context.Background()

	first, err := svc.Provision(ctx, 1, "dev-1", "iPhone", 0)
	require.NoError(t, err)
	require.Equal(t, domain.Temporary, first.State)
	require.NotZero(t, first.PolicyKey)

	second, err := svc.Provision(ctx, 1, "dev-1", "iPhone", first.PolicyKey)
	require.NoError(t, err)
	require.Equal(t, domain.Provisioned, second.State)
	require.NotEqual(t, first.PolicyKey, second.PolicyKey)

	require.NoError(t, svc.Authorize(ctx, 1, "dev-1", second.PolicyKey))
}

func TestProvisionRestartsHandshakeOnKeyMismatch(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &sequentialKeys{})
	ctx := context.Background()

	first, err := svc.Provision(ctx, 1, "dev-1", "iPhone", 0)
	require.NoError(t, err)

	restarted, err := svc.Provision(ctx, 1, "dev-1", "iPhone", first.PolicyKey+99)
	require.NoError(t, err)
	require.Equal(t, domain.Temporary, restarted.State)
	require.NotEqual(t, first.PolicyKey, restarted.PolicyKey)
}

func TestAuthorizeRequiresProvisioning(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &sequentialKeys{})

	err := svc.Authorize(context.Background(), 1, "unknown-device", 5)
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	require.Equal(t, 449, appErr.Status)
}

func TestAuthorizeDeprovisionsOnPolicyKeyMismatch(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &sequentialKeys{})
	ctx := context.Background()

	first, err := svc.Provision(ctx, 1, "dev-1", "iPhone", 0)
	require.NoError(t, err)
	second, err := svc.Provision(ctx, 1, "dev-1", "iPhone", first.PolicyKey)
	require.NoError(t, err)

	err = svc.Authorize(ctx, 1, "dev-1", second.PolicyKey+1)
	require.Error(t, err)

	dev, _ := repo.Get(ctx, 1, "dev-1")
	require.Equal(t, domain.Unprovisioned, dev.State)
	require.Zero(t, dev.PolicyKey)
}
