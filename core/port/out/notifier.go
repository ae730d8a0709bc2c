package out

// Notifier is the publish half of the C6 subscription bus (spec §6,
// "Notification interface"): `notifier.notify(user_id, collection_id)` is
// called by the SMTP ingress after a durable insert. Publication is
// non-blocking and a no-op when no subscribers exist (spec §4.6).
type Notifier interface {
	Notify(userID int64, collectionID string)
}

// ConversationGraph is the supplemental conversation-threading store
// (SPEC_FULL §2/§4): records parent/child relationships between items
// sharing a ConversationID so GetItemEstimate can report per-thread counts.
// Not part of spec.md's required surface; a no-op implementation is valid.
type ConversationGraph interface {
	RecordEdge(conversationID, parentServerID, childServerID string) error
	ThreadSize(conversationID string) (int, error)
}
