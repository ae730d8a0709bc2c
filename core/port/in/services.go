// Package in declares the inbound service contracts adapter/in/http
// handlers call into. Each mirrors one EAS command from spec §4.2's
// command table.
package in

import (
	"context"
	"time"

	"easyncd/core/domain"
)

// SyncRequest/SyncResult model one collection's worth of the Sync command
// (spec §4.5).
type SyncRequest struct {
	UserID       int64
	DeviceID     string
	CollectionID string
	ClientKey    domain.SyncKey
	WindowSize   int
	Options      domain.SyncOptions
	Commands     []domain.ItemCommand
}

type SyncResult struct {
	CollectionID string
	Status       domain.Status
	Batch        *domain.Batch // nil when Status != StatusOK
}

type SyncService interface {
	Sync(ctx context.Context, req SyncRequest) (SyncResult, error)
}

// FolderSyncResult models the FolderSync response (spec §4.4).
type FolderSyncResult struct {
	Status  domain.Status
	SyncKey domain.SyncKey
	Added   []domain.Folder // empty unless this is the priming response
}

type FolderService interface {
	FolderSync(ctx context.Context, userID int64, deviceID string, clientKey domain.SyncKey) (FolderSyncResult, error)
}

// ProvisionResult models one leg of the two-phase handshake (spec §4.3).
type ProvisionResult struct {
	PolicyKey uint32
	State     domain.ProvisionState
}

type ProvisionService interface {
	// Provision advances the device's state machine. echoedKey is the
	// PolicyKey the client is acknowledging (0 on the very first request).
	Provision(ctx context.Context, userID int64, deviceID, deviceType string, echoedKey uint32) (ProvisionResult, error)
	// Authorize checks an already-provisioned device's presented PolicyKey
	// against its current one (spec §4.3 "PROVISIONED(Pn)" transition).
	Authorize(ctx context.Context, userID int64, deviceID string, presentedKey uint32) error
}

// PingRequest/PingService model the C6 long-poll (spec §4.6).
type PingRequest struct {
	UserID      int64
	DeviceID    string
	Heartbeat   time.Duration
	Collections []string
}

type PingService interface {
	Ping(ctx context.Context, req PingRequest) (domain.PingResult, error)
}

// GetItemEstimateService implements the read-only estimate command
// (SPEC_FULL §4 supplement).
type GetItemEstimateService interface {
	Estimate(ctx context.Context, userID int64, deviceID, collectionID string) (int, error)
}

// SendMailService accepts a raw MIME payload and files it into Sent
// (SPEC_FULL §4 supplement).
type SendMailService interface {
	SendMail(ctx context.Context, userID int64, mime []byte) error
}
