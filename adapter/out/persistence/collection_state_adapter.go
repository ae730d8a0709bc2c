package persistence

import (
	"context"
	"errors"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"easyncd/core/domain"
)

// CollectionStateAdapter persists the CollectionState ledger as an opaque
// JSON blob (spec §6: "persistence is delegated to the store via simple KV
// semantics get/put(user, device, collection) -> state blob").
type CollectionStateAdapter struct {
	pool *pgxpool.Pool
}

func NewCollectionStateAdapter(pool *pgxpool.Pool) *CollectionStateAdapter {
	return &CollectionStateAdapter{pool: pool}
}

func (a *CollectionStateAdapter) Get(ctx context.Context, userID int64, deviceID, collectionID string) (*domain.CollectionState, error) {
	var blob []byte
	err := a.pool.QueryRow(ctx, `
		SELECT state FROM collection_states WHERE user_id = $1 AND device_id = $2 AND collection_id = $3`,
		userID, deviceID, collectionID).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state domain.CollectionState
	if err := json.Unmarshal(blob, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (a *CollectionStateAdapter) Put(ctx context.Context, userID int64, deviceID, collectionID string, state *domain.CollectionState) error {
	blob, err := json.Marshal(state)
	if err != nil {
		return err
	}
	_, err = a.pool.Exec(ctx, `
		INSERT INTO collection_states (user_id, device_id, collection_id, state)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, device_id, collection_id) DO UPDATE SET state = EXCLUDED.state`,
		userID, deviceID, collectionID, blob)
	return err
}
