package smtp

import (
	"context"
	"testing"

	"easyncd/core/domain"
	"easyncd/pkg/logger"

	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	inserted     domain.Item
	collectionID string
	userID       int64
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
	f.userID = userID
	f.collectionID = collectionID
	f.inserted = item
	return "srv-1", nil
}

type fakeNotifier struct {
	notifiedUser int64
	notifiedColl string
}

func (f *fakeNotifier) Notify(userID int64, collectionID string) {
	f.notifiedUser = userID
	f.notifiedColl = collectionID
}

const rawMessage = "From: sender@example.com\r\n" +
	"To: alice@example.com\r\n" +
	"Subject: Quarterly report\r\n" +
	"Message-Id: <abc123@example.com>\r\n" +
	"Date: Mon, 2 Jan 2006 15:04:05 -0700\r\n" +
	"\r\n" +
	"Body text.\r\n"

func TestDeliverInsertsIntoInboxAndNotifies(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	ig := NewIngress(store, notifier, logger.Default())

	err := ig.Deliver(context.Background(), 42, []byte(rawMessage))
	require.NoError(t, err)

	require.Equal(t, int64(42), store.userID)
	require.Equal(t, inboxFolderID, store.collectionID)
	require.Equal(t, "Quarterly report", store.inserted.Subject)
	require.Equal(t, "sender@example.com", store.inserted.From)
	require.Equal(t, []string{"alice@example.com"}, store.inserted.To)
	require.Equal(t, "<abc123@example.com>", store.inserted.ConversationID)
	require.NotZero(t, store.inserted.ReceivedAt)

	require.Equal(t, int64(42), notifier.notifiedUser)
	require.Equal(t, inboxFolderID, notifier.notifiedColl)
}

func TestDeliverRejectsUnparsableMessage(t *testing.T) {
	ig := NewIngress(&fakeStore{}, &fakeNotifier{}, logger.Default())
	err := ig.Deliver(context.Background(), 1, []byte("not a valid mail message"))
	require.Error(t, err)
}
