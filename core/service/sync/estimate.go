package sync

import (
	"context"

	"easyncd/core/domain"
)

// SentFolderID is the fixed collection id for Sent Items in the
// FixedHierarchy (domain.FixedHierarchy ServerID "4").
const SentFolderID = "4"

// Estimate implements in.GetItemEstimateService (SPEC_FULL §4): the
// number of items remaining beyond the client's current cursor,
// total_available - cursor, clamped to >= 0.
func (s *Service) Estimate(ctx context.Context, userID int64, deviceID, collectionID string) (int, error) {
	st, err := s.repo.Get(ctx, userID, deviceID, collectionID)
	if err != nil {
		return 0, err
	}
	items, total, err := s.store.ListItems(ctx, userID, collectionID, st.Cursor, 1)
	if err != nil {
		return 0, err
	}
	remaining := total - st.Cursor
	if remaining < 0 {
		remaining = 0
	}
	s.logThreadSize(items)
	return remaining, nil
}

// logThreadSize reports the conversation size of the next unseen item as a
// supplemental debug signal (SPEC_FULL §4: "GetItemEstimate can report
// per-thread counts") — informational only, never alters the estimate.
func (s *Service) logThreadSize(nextItems []domain.Item) {
	if s.graph == nil || len(nextItems) == 0 || nextItems[0].ConversationID == "" {
		return
	}
	size, err := s.graph.ThreadSize(nextItems[0].ConversationID)
	if err != nil {
		return
	}
	s.log.Debug().
		Str("conversation_id", nextItems[0].ConversationID).
		Int("thread_size", size).
		Msg("estimate_thread_context")
}
