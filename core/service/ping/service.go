package ping

import (
	"context"
	"time"

	"easyncd/core/domain"
	in "easyncd/core/port/in"
)

// Service implements in.PingService against a Bus.
type Service struct {
	bus *Bus
}

func NewService(bus *Bus) *Service {
	return &Service{bus: bus}
}

func (s *Service) Ping(ctx context.Context, req in.PingRequest) (domain.PingResult, error) {
	if len(req.Collections) == 0 {
		return domain.PingResult{Status: domain.PingMissingParameters}, nil
	}
	if len(req.Collections) > domain.MaxPingFolders {
		return domain.PingResult{Status: domain.PingTooManyFolders}, nil
	}
	if req.Heartbeat <= 0 {
		return domain.PingResult{Status: domain.PingInvalidHeartbeat}, nil
	}
	heartbeat := domain.ClampHeartbeat(req.Heartbeat)

	sub := s.bus.subscribe(req.UserID, req.Collections)
	defer s.bus.unsubscribe(sub)

	timer := time.NewTimer(heartbeat)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return domain.PingResult{Status: domain.PingServerError}, ctx.Err()
	case <-timer.C:
		return domain.PingResult{Status: domain.PingHeartbeatExpired}, nil
	case <-sub.signal:
		changed := sub.drainChanged()
		return domain.PingResult{Status: domain.PingChangesAvailable, Changed: changed}, nil
	}
}
