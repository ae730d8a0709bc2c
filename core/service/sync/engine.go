package sync

import (
	"context"

	"easyncd/core/domain"
	in "easyncd/core/port/in"
	"easyncd/core/port/out"

	"github.com/rs/zerolog"
)

// Service implements in.SyncService (spec §4.5). It holds CollectionState
// in an in-process, per-key-locked table, persisting it through repo so
// state survives restarts; the store itself is the source of truth for
// item content.
type Service struct {
	store out.Store
	repo  out.CollectionStateRepository
	graph out.ConversationGraph // optional; nil is a valid no-op
	log   zerolog.Logger
	table *table
}

func NewService(store out.Store, repo out.CollectionStateRepository, graph out.ConversationGraph, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		repo:  repo,
		graph: graph,
		log:   log,
		table: newTable(),
	}
}

func (s *Service) Sync(ctx context.Context, req in.SyncRequest) (in.SyncResult, error) {
	key := collectionKey{userID: req.UserID, deviceID: req.DeviceID, collectionID: req.CollectionID}
	windowSize := domain.ClampWindowSize(req.WindowSize)

	var result in.SyncResult
	var stepErr error

	err := s.table.withLocked(key, func() (*domain.CollectionState, error) {
		return s.repo.Get(ctx, req.UserID, req.DeviceID, req.CollectionID)
	}, func(st *domain.CollectionState) {
		result, stepErr = s.step(ctx, req, st, windowSize)
	})
	if err != nil {
		return in.SyncResult{CollectionID: req.CollectionID, Status: domain.StatusServerError}, err
	}
	if stepErr != nil {
		return result, stepErr
	}

	if err := s.repo.Put(ctx, req.UserID, req.DeviceID, req.CollectionID, s.currentState(key)); err != nil {
		s.log.Warn().Err(err).Str("collection_id", req.CollectionID).Msg("sync_state_persist_failed")
	}
	return result, nil
}

func (s *Service) currentState(key collectionKey) *domain.CollectionState {
	s.table.mu.Lock()
	e := s.table.entries[key]
	s.table.mu.Unlock()
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// step runs one collection's worth of the algorithm from spec §4.5 against
// the already-locked CollectionState st.
func (s *Service) step(ctx context.Context, req in.SyncRequest, st *domain.CollectionState, windowSize int) (in.SyncResult, error) {
	clientKey := req.ClientKey

	// 1. Initial sync.
	if clientKey == domain.InitialSyncKey {
		st.CurrentKey = domain.InitialSyncKey
		st.NextKey = domain.InitialSyncKey.Succ()
		st.PendingBatch = nil
		st.Cursor = 0
		return in.SyncResult{
			CollectionID: req.CollectionID,
			Status:       domain.StatusOK,
			Batch:        &domain.Batch{ResponseSyncKey: st.NextKey},
		}, nil
	}

	// 2. Idempotent resend.
	if clientKey == st.CurrentKey && st.PendingBatch != nil {
		s.log.Info().Str("client_key", clientKey.String()).
			Str("server_next_key", st.NextKey.String()).Msg("sync_resend_pending")
		batch := *st.PendingBatch
		return in.SyncResult{CollectionID: req.CollectionID, Status: domain.StatusOK, Batch: &batch}, nil
	}

	// 3. ACK: client echoes the key we last issued.
	if clientKey == st.NextKey {
		st.CurrentKey = st.NextKey
		st.NextKey = st.NextKey.Succ()
		st.PendingBatch = nil
	}

	// 4. First batch of a round.
	if clientKey == st.CurrentKey {
		responses := s.applyCommands(ctx, req)
		return s.generateBatch(ctx, req, st, windowSize, responses)
	}

	// 5. Unexpected key: do not roll back CurrentKey (spec §4.5 case 5).
	s.log.Warn().Str("got", clientKey.String()).
		Str("expected_cur", st.CurrentKey.String()).
		Str("next", st.NextKey.String()).Msg("sync_unexpected_key")
	st.PendingBatch = nil
	st.Cursor = 0
	return s.generateBatch(ctx, req, st, windowSize, nil)
}

func (s *Service) generateBatch(ctx context.Context, req in.SyncRequest, st *domain.CollectionState, windowSize int, responses []domain.ItemCommandResult) (in.SyncResult, error) {
	items, total, err := s.store.ListItems(ctx, req.UserID, req.CollectionID, st.Cursor, windowSize)
	if err != nil {
		return in.SyncResult{CollectionID: req.CollectionID, Status: domain.StatusServerError}, err
	}

	moreAvailable := st.Cursor+len(items) < total
	responseKey := st.CurrentKey.Succ()
	st.NextKey = responseKey

	rendered := make([]domain.Item, len(items))
	for i, it := range items {
		rendered[i] = renderBody(it, req.Options)
	}

	batch := &domain.Batch{
		ResponseSyncKey: responseKey,
		Items:           rendered,
		Responses:       responses,
		MoreAvailable:   moreAvailable,
		SentCount:       len(items),
		TotalAvailable:  total,
	}
	st.PendingBatch = batch

	if moreAvailable {
		st.Cursor += len(items)
	} else {
		st.Cursor = 0
	}

	s.log.Info().Str("client_key", req.ClientKey.String()).
		Str("response_sync_key", responseKey.String()).
		Int("sent", batch.SentCount).
		Int("total", batch.TotalAvailable).
		Bool("more", batch.MoreAvailable).
		Msg("sync_batch_generated")

	result := *batch
	return in.SyncResult{CollectionID: req.CollectionID, Status: domain.StatusOK, Batch: &result}, nil
}
