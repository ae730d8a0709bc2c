package out

import (
	"context"

	"easyncd/core/domain"
)

// DeviceRepository persists Device records (spec §3 "Device", §6
// "Persisted state"). Keyed by (user_id, device_id).
type DeviceRepository interface {
	Get(ctx context.Context, userID int64, deviceID string) (*domain.Device, error)
	Put(ctx context.Context, d *domain.Device) error
}

// CollectionStateRepository persists the per-(user, device, collection)
// Sync ledger so it survives process restart (spec §6: "persistence is
// delegated to the store via simple KV semantics get/put(user, device,
// collection) -> state blob").
type CollectionStateRepository interface {
	Get(ctx context.Context, userID int64, deviceID, collectionID string) (*domain.CollectionState, error)
	Put(ctx context.Context, userID int64, deviceID, collectionID string, state *domain.CollectionState) error
}

// FolderStateRepository tracks the folder hierarchy's per-device SyncKey
// (spec §4.4); the hierarchy itself is fixed, only the client's
// acknowledged key needs to persist.
type FolderStateRepository interface {
	Get(ctx context.Context, userID int64, deviceID string) (domain.SyncKey, error)
	Put(ctx context.Context, userID int64, deviceID string, key domain.SyncKey) error
}

// PolicyKeyAllocator issues fresh PolicyKeys (spec §4.3). 0 is reserved
// and never returned. Keys are only compared for equality; the
// snowflake-backed persistence.PolicyKeyAllocator does not return them in
// increasing order.
type PolicyKeyAllocator interface {
	Next() uint32
}
