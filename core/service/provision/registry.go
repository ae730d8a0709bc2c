// Package provision implements the device & provisioning registry (spec
// §4.3): one record per (user_id, device_id) and the minimal two-phase
// PolicyKey handshake.
package provision

import (
	"context"
	"strconv"
	"sync"
	"time"

	"easyncd/core/domain"
	in "easyncd/core/port/in"
	"easyncd/core/port/out"
	"easyncd/pkg/apperr"
)

// Service implements in.ProvisionService. Calls for one device are
// serialized by an in-process per-key mutex (spec §5); the device record
// itself is read from and written to repo on every call.
type Service struct {
	repo  out.DeviceRepository
	keys  out.PolicyKeyAllocator
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(repo out.DeviceRepository, keys out.PolicyKeyAllocator) *Service {
	return &Service{repo: repo, keys: keys, locks: make(map[string]*sync.Mutex)}
}

func (s *Service) lockFor(userID int64, deviceID string) *sync.Mutex {
	k := deviceKey(userID, deviceID)
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[k]
	if !ok {
		l = &sync.Mutex{}
		s.locks[k] = l
	}
	return l
}

func deviceKey(userID int64, deviceID string) string {
	return strconv.FormatInt(userID, 10) + ":" + deviceID
}

func (s *Service) Provision(ctx context.Context, userID int64, deviceID, deviceType string, echoedKey uint32) (in.ProvisionResult, error) {
	lock := s.lockFor(userID, deviceID)
	lock.Lock()
	defer lock.Unlock()

	dev, err := s.repo.Get(ctx, userID, deviceID)
	if err != nil {
		return in.ProvisionResult{}, err
	}
	now := time.Now()
	if dev == nil {
		dev = &domain.Device{
			DeviceID:   deviceID,
			DeviceType: deviceType,
			UserID:     userID,
			State:      domain.Unprovisioned,
			FirstSeen:  now,
		}
	}
	dev.LastSeen = now

	switch dev.State {
	case domain.Unprovisioned:
		// request #1: PolicyKey 0 expected, issue a temporary key.
		dev.PolicyKey = s.keys.Next()
		dev.State = domain.Temporary

	case domain.Temporary:
		if echoedKey != dev.PolicyKey {
			// client didn't echo the temporary key back; restart the handshake.
			dev.PolicyKey = s.keys.Next()
			dev.State = domain.Temporary
			break
		}
		dev.PolicyKey = s.keys.Next()
		dev.State = domain.Provisioned

	case domain.Provisioned:
		// A second Provision call while already provisioned re-issues a
		// fresh key and restarts at TEMPORARY, mirroring a policy refresh.
		dev.PolicyKey = s.keys.Next()
		dev.State = domain.Temporary
	}

	if err := s.repo.Put(ctx, dev); err != nil {
		return in.ProvisionResult{}, err
	}
	return in.ProvisionResult{PolicyKey: dev.PolicyKey, State: dev.State}, nil
}

func (s *Service) Authorize(ctx context.Context, userID int64, deviceID string, presentedKey uint32) error {
	lock := s.lockFor(userID, deviceID)
	lock.Lock()
	defer lock.Unlock()

	dev, err := s.repo.Get(ctx, userID, deviceID)
	if err != nil {
		return err
	}
	if dev == nil || !dev.Provisioned() {
		return apperr.ProvisioningRequired()
	}
	if presentedKey != dev.PolicyKey {
		dev.State = domain.Unprovisioned
		dev.PolicyKey = 0
		_ = s.repo.Put(ctx, dev)
		return apperr.PolicyKeyMismatch()
	}
	return nil
}
