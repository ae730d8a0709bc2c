package mailops

import (
	"context"
	"testing"

	"easyncd/core/domain"

	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	collectionID string
	inserted     domain.Item
}

func (f *fakeStore) GetUser(ctx context.Context, login string) (*domain.User, error) {
	return nil, nil
}
func (f *fakeStore) ListItems(ctx context.Context, userID int64, collectionID string, cursor, limit int) ([]domain.Item, int, error) {
	return nil, 0, nil
}
func (f *fakeStore) GetItem(ctx context.Context, userID int64, collectionID, serverID string) (*domain.Item, error) {
	return nil, nil
}
func (f *fakeStore) SetRead(ctx context.Context, userID int64, serverID string, read bool) error {
	return nil
}
func (f *fakeStore) DeleteItem(ctx context.Context, userID int64, serverID string) error { return nil }
func (f *fakeStore) InsertItem(ctx context.Context, userID int64, collectionID string, item domain.Item) (string, error) {
	f.collectionID = collectionID
	f.inserted = item
	return "sent-1", nil
}

type fakeGraph struct {
	conversationID, parent, child string
}

func (g *fakeGraph) RecordEdge(conversationID, parentServerID, childServerID string) error {
	g.conversationID = conversationID
	g.parent = parentServerID
	g.child = childServerID
	return nil
}
func (g *fakeGraph) ThreadSize(conversationID string) (int, error) { return 0, nil }

const outgoingMIME = "From: alice@example.com\r\n" +
	"To: bob@example.com\r\n" +
	"Subject: Re: lunch\r\n" +
	"Message-Id: <out-1@example.com>\r\n" +
	"\r\n" +
	"Sounds good.\r\n"

func TestSendMailFilesIntoSentAndRecordsThread(t *testing.T) {
	store := &fakeStore{}
	graph := &fakeGraph{}
	svc := NewSendMailService(store, graph)

	err := svc.SendMail(context.Background(), 1, []byte(outgoingMIME))
	require.NoError(t, err)

	require.Equal(t, sentFolderID, store.collectionID)
	require.True(t, store.inserted.Read)
	require.Equal(t, "Re: lunch", store.inserted.Subject)
	require.Equal(t, []string{"bob@example.com"}, store.inserted.To)
	require.Equal(t, "<out-1@example.com>", store.inserted.ConversationID)

	require.Equal(t, "<out-1@example.com>", graph.conversationID)
	require.Equal(t, "sent-1", graph.child)
}

func TestSendMailRejectsEmptyPayload(t *testing.T) {
	svc := NewSendMailService(&fakeStore{}, nil)
	err := svc.SendMail(context.Background(), 1, nil)
	require.Error(t, err)
}
