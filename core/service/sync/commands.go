package sync

import (
	"context"

	"easyncd/core/domain"
	in "easyncd/core/port/in"
	"easyncd/core/port/out"
)

// applyCommands applies client-submitted mutations to the store before the
// outgoing batch is computed (spec §4.5 "Commands"). Failures are
// per-item: one bad command must not fail the whole collection. The
// per-item outcome is returned so the caller can attach it to the next
// Batch's Responses.
func (s *Service) applyCommands(ctx context.Context, req in.SyncRequest) []domain.ItemCommandResult {
	if len(req.Commands) == 0 {
		return nil
	}
	results := make([]domain.ItemCommandResult, 0, len(req.Commands))
	for _, cmd := range req.Commands {
		status := s.applyOne(ctx, req, cmd)
		results = append(results, domain.ItemCommandResult{ServerID: cmd.ServerID, Status: status})
	}
	return results
}

func (s *Service) applyOne(ctx context.Context, req in.SyncRequest, cmd domain.ItemCommand) domain.Status {
	switch cmd.Kind {
	case domain.CommandChange:
		if cmd.Read == nil {
			return domain.StatusProtocolError
		}
		if err := s.store.SetRead(ctx, req.UserID, cmd.ServerID, *cmd.Read); err != nil {
			if _, ok := err.(*out.NotFoundError); ok {
				return domain.StatusObjectNotFound
			}
			s.log.Warn().Err(err).Str("server_id", cmd.ServerID).Msg("sync_command_change_failed")
			return domain.StatusServerError
		}
		return domain.StatusOK

	case domain.CommandDelete:
		if err := s.store.DeleteItem(ctx, req.UserID, cmd.ServerID); err != nil {
			if _, ok := err.(*out.NotFoundError); ok {
				return domain.StatusObjectNotFound
			}
			s.log.Warn().Err(err).Str("server_id", cmd.ServerID).Msg("sync_command_delete_failed")
			return domain.StatusServerError
		}
		return domain.StatusOK

	case domain.CommandAdd:
		item := domain.Item{MIMEBytes: cmd.MIME}
		if _, err := s.store.InsertItem(ctx, req.UserID, req.CollectionID, item); err != nil {
			s.log.Warn().Err(err).Msg("sync_command_add_failed")
			return domain.StatusServerError
		}
		return domain.StatusOK

	default:
		return domain.StatusProtocolError
	}
}
