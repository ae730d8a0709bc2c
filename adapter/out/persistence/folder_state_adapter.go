package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"easyncd/core/domain"
)

// FolderStateAdapter tracks each device's acknowledged folder hierarchy
// SyncKey (spec §4.4); the hierarchy itself is fixed and never stored.
type FolderStateAdapter struct {
	pool *pgxpool.Pool
}

func NewFolderStateAdapter(pool *pgxpool.Pool) *FolderStateAdapter {
	return &FolderStateAdapter{pool: pool}
}

func (a *FolderStateAdapter) Get(ctx context.Context, userID int64, deviceID string) (domain.SyncKey, error) {
	var key uint64
	err := a.pool.QueryRow(ctx, `
		SELECT sync_key FROM folder_states WHERE user_id = $1 AND device_id = $2`, userID, deviceID).Scan(&key)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.InitialSyncKey, nil
	}
	if err != nil {
		return 0, err
	}
	return domain.SyncKey(key), nil
}

func (a *FolderStateAdapter) Put(ctx context.Context, userID int64, deviceID string, key domain.SyncKey) error {
	_, err := a.pool.Exec(ctx, `
		INSERT INTO folder_states (user_id, device_id, sync_key)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, device_id) DO UPDATE SET sync_key = EXCLUDED.sync_key`,
		userID, deviceID, uint64(key))
	return err
}
