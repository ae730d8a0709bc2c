// Package persistence implements the out.DeviceRepository,
// out.CollectionStateRepository and out.FolderStateRepository ports on
// Postgres via pgx/v5, in the teacher's entity/adapter style.
package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"easyncd/core/domain"
)

type DeviceAdapter struct {
	pool *pgxpool.Pool
}

func NewDeviceAdapter(pool *pgxpool.Pool) *DeviceAdapter {
	return &DeviceAdapter{pool: pool}
}

func (a *DeviceAdapter) Get(ctx context.Context, userID int64, deviceID string) (*domain.Device, error) {
	row := a.pool.QueryRow(ctx, `
		SELECT device_id, device_type, user_id, policy_key, state, protocol_version, first_seen, last_seen
		FROM devices WHERE user_id = $1 AND device_id = $2`, userID, deviceID)

	var d domain.Device
	var state int
	err := row.Scan(&d.DeviceID, &d.DeviceType, &d.UserID, &d.PolicyKey, &state, &d.ProtocolVersion, &d.FirstSeen, &d.LastSeen)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	d.State = domain.ProvisionState(state)
	return &d, nil
}

func (a *DeviceAdapter) Put(ctx context.Context, d *domain.Device) error {
	_, err := a.pool.Exec(ctx, `
		INSERT INTO devices (user_id, device_id, device_type, policy_key, state, protocol_version, first_seen, last_seen)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, device_id) DO UPDATE SET
			device_type = EXCLUDED.device_type,
			policy_key = EXCLUDED.policy_key,
			state = EXCLUDED.state,
			protocol_version = EXCLUDED.protocol_version,
			last_seen = EXCLUDED.last_seen`,
		d.UserID, d.DeviceID, d.DeviceType, d.PolicyKey, int(d.State), d.ProtocolVersion, d.FirstSeen, d.LastSeen)
	return err
}
