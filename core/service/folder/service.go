// Package folder implements the folder hierarchy engine (spec §4.4): the
// single FolderSync operation against the fixed, static folder tree.
package folder

import (
	"context"

	"easyncd/core/domain"
	in "easyncd/core/port/in"
	"easyncd/core/port/out"
)

const currentFolderSyncKey = domain.SyncKey(1)

// Service implements in.FolderService.
type Service struct {
	repo out.FolderStateRepository
}

func NewService(repo out.FolderStateRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) FolderSync(ctx context.Context, userID int64, deviceID string, clientKey domain.SyncKey) (in.FolderSyncResult, error) {
	switch clientKey {
	case domain.InitialSyncKey:
		if err := s.repo.Put(ctx, userID, deviceID, currentFolderSyncKey); err != nil {
			return in.FolderSyncResult{}, err
		}
		return in.FolderSyncResult{
			Status:  domain.StatusOK,
			SyncKey: currentFolderSyncKey,
			Added:   domain.FixedHierarchy(),
		}, nil

	case currentFolderSyncKey:
		known, err := s.repo.Get(ctx, userID, deviceID)
		if err != nil {
			return in.FolderSyncResult{}, err
		}
		if known != currentFolderSyncKey {
			return in.FolderSyncResult{Status: domain.StatusInvalidSyncKey}, nil
		}
		return in.FolderSyncResult{Status: domain.StatusOK, SyncKey: currentFolderSyncKey}, nil

	default:
		return in.FolderSyncResult{Status: domain.StatusInvalidSyncKey}, nil
	}
}
