// Package domain holds the core EAS entities (spec §3): User, Device,
// CollectionState, Batch, Item, Folder, and Ping subscriptions. These are
// plain value types — no persistence or transport concerns leak in here.
package domain

// User is external to the core (spec §3): created and destroyed by the
// identity system that backs HTTP Basic auth. The core treats UserID as
// opaque and never mutates it.
type User struct {
	ID      int64
	Email   string
	Display string
}
