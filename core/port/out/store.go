// Package out declares the outbound contracts the core consumes but does
// not define (spec §6): the mailbox store, persisted ledger KV, the
// notification bus, and the supplemental conversation graph. Every
// adapter/out/* package implements one of these.
package out

import (
	"context"

	"easyncd/core/domain"
)

// Store is the external mailbox store interface (spec §6). Schema and
// storage engine are out of core scope; the core only ever calls this
// interface.
type Store interface {
	GetUser(ctx context.Context, login string) (*domain.User, error)
	ListItems(ctx context.Context, userID int64, collectionID string, cursor, limit int) (items []domain.Item, totalAvailable int, err error)
	GetItem(ctx context.Context, userID int64, collectionID, serverID string) (*domain.Item, error)
	SetRead(ctx context.Context, userID int64, serverID string, read bool) error
	DeleteItem(ctx context.Context, userID int64, serverID string) error
	InsertItem(ctx context.Context, userID int64, collectionID string, item domain.Item) (serverID string, err error)
}

// ErrNotFound is returned by Store methods that look up a single entity.
var ErrNotFound = &NotFoundError{}

// NotFoundError is a sentinel distinguishing "absent" from a hard I/O
// failure so callers can map it onto StatusObjectNotFound (spec §4.5)
// rather than StatusServerError.
type NotFoundError struct{ Detail string }

func (e *NotFoundError) Error() string {
	if e.Detail == "" {
		return "store: not found"
	}
	return "store: not found: " + e.Detail
}
