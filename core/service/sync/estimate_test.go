package sync

import (
	"context"
	"testing"

	"easyncd/core/domain"
	in "easyncd/core/port/in"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeGraph struct {
	lastConversationID string
}

func (g *fakeGraph) RecordEdge(conversationID, parentServerID, childServerID string) error {
	return nil
}
func (g *fakeGraph) ThreadSize(conversationID string) (int, error) {
	g.lastConversationID = conversationID
	return 3, nil
}

func TestEstimateReflectsMidRoundCursor(t *testing.T) {
	svc := newTestService([]domain.Item{{ServerID: "1"}, {ServerID: "2"}, {ServerID: "3"}})
	ctx := context.Background()

	_, err := svc.Sync(ctx, in.SyncRequest{UserID: 1, DeviceID: "d", CollectionID: "1", ClientKey: domain.InitialSyncKey})
	require.NoError(t, err)
	// Mid-round: more available, so the cursor holds the in-round offset
	// and Estimate reports what's left of this paging round.
	_, err = svc.Sync(ctx, in.SyncRequest{UserID: 1, DeviceID: "d", CollectionID: "1", ClientKey: domain.SyncKey(1), WindowSize: 2})
	require.NoError(t, err)

	remaining, err := svc.Estimate(ctx, 1, "d", "1")
	require.NoError(t, err)
	require.Equal(t, 1, remaining)
}

func TestEstimateLooksUpThreadSizeWhenGraphIsWired(t *testing.T) {
	store := &fakeStore{items: []domain.Item{{ServerID: "1", ConversationID: "conv-1"}}}
	graph := &fakeGraph{}
	svc := NewService(store, newFakeRepo(), graph, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Sync(ctx, in.SyncRequest{UserID: 1, DeviceID: "d", CollectionID: "1", ClientKey: domain.InitialSyncKey})
	require.NoError(t, err)

	_, err = svc.Estimate(ctx, 1, "d", "1")
	require.NoError(t, err)
	require.Equal(t, "conv-1", graph.lastConversationID)
}
