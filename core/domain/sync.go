package domain

import "strconv"

// SyncKey is EAS's monotonically non-decreasing per-collection counter,
// rendered as a decimal string on the wire (spec §3). The zero value is the
// reserved "initial sync" sentinel.
type SyncKey uint64

// InitialSyncKey is the sentinel a client sends to (re)prime a collection.
const InitialSyncKey SyncKey = 0

// ParseSyncKey decodes the wire representation of a SyncKey. EAS keys are
// ASCII decimal strings inside STR_I (spec §4.1 "Numeric semantics").
func ParseSyncKey(s string) (SyncKey, bool) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return SyncKey(n), true
}

func (k SyncKey) String() string {
	return strconv.FormatUint(uint64(k), 10)
}

// Succ returns the next key in sequence.
func (k SyncKey) Succ() SyncKey {
	return k + 1
}

// BodyType selects which AirSyncBase.Body representation to render
// (spec §4.5 "Item rendering").
type BodyType int

const (
	BodyTypePlain BodyType = 1
	BodyTypeHTML  BodyType = 2
	BodyTypeMIME  BodyType = 4
)

// BodyPreference is one entry of a collection's requested body_preference
// list (spec §4.5): a type plus the client's truncation size for it.
type BodyPreference struct {
	Type            BodyType
	TruncationSize  int // 0 means "no truncation requested"
	AllOrNone       bool
}

// SyncOptions carries the per-collection request options (spec §4.5).
type SyncOptions struct {
	FilterType      int
	MIMESupport     int
	BodyPreferences []BodyPreference
}

// ItemCommand is a client-submitted mutation applied before a batch is
// computed (spec §4.5 "Commands").
type ItemCommandKind int

const (
	CommandChange ItemCommandKind = iota
	CommandDelete
	CommandAdd
)

type ItemCommand struct {
	Kind     ItemCommandKind
	ServerID string // empty for CommandAdd until assigned
	Read     *bool  // set when Kind == CommandChange and the client flips Read
	MIME     []byte // raw RFC-822 bytes, set when Kind == CommandAdd (client Add, e.g. SendMail-adjacent flows)
}

// ItemCommandResult records the per-item outcome of applying an ItemCommand
// (spec §4.5: "Failures are per-item, not per-collection").
type ItemCommandResult struct {
	ServerID string
	Status   Status
}

// Status is an EAS per-collection or per-item status code (spec §4.5).
type Status int

const (
	StatusOK              Status = 1
	StatusServerError     Status = 3
	StatusProtocolError   Status = 4
	StatusServerRetryable Status = 6
	StatusConflict        Status = 7
	StatusObjectNotFound  Status = 8
	StatusInvalidSyncKey  Status = 9
)

// Item is a single synchronized email (spec §3). ServerID is stable across
// batches and has the form "collection:pk".
type Item struct {
	ServerID       string
	CollectionID   string
	Subject        string
	From           string
	ExternalSender string // precedence over From when rendering DisplayFrom, per SPEC_FULL §4 supplement
	To             []string
	ReceivedAt     int64 // unix seconds; kept as int64 so domain has no time.Time/locale dependency
	Read           bool
	MIMEBytes      []byte
	BodyPlain      string
	BodyHTML       string
	ConversationID string

	// Rendered* fields are populated by core/service/sync's body renderer
	// per the collection's body_preference (spec §4.5 "Item rendering");
	// they are wire-output only and never read back from the store.
	RenderedBodyType  BodyType
	RenderedData      []byte // STR_I bytes for plain/HTML, raw MIME bytes for type=4
	EstimatedDataSize int    // always the untrimmed size
	Truncated         bool
}

// DisplayFrom applies the precedence rule the original implementation left
// to duck-typed attribute lookups (spec §9): ExternalSender wins when set,
// otherwise From, otherwise a placeholder.
func (it *Item) DisplayFrom() string {
	if it.ExternalSender != "" {
		return it.ExternalSender
	}
	if it.From != "" {
		return it.From
	}
	return "unknown"
}

// Batch is a server-generated, immutable response for one Sync round
// (spec §3). Once created it is never mutated — only replaced.
type Batch struct {
	ResponseSyncKey SyncKey
	Items           []Item
	Responses       []ItemCommandResult
	MoreAvailable   bool
	SentCount       int
	TotalAvailable  int
}

// CollectionState is the per-(user, device, collection) Sync ledger
// (spec §3). Concurrency is owned by the caller: per spec §5, all
// operations against one CollectionState are serialized by a per-key
// mutex held in core/service/sync's state table, not here.
type CollectionState struct {
	CurrentKey   SyncKey
	NextKey      SyncKey
	PendingBatch *Batch // nil means "none" — the explicit sum type from SPEC_FULL §9
	Cursor       int
	WindowSize   int
}

// NewCollectionState returns a fresh ledger primed for SyncKey 0 (spec §4.5
// step 1): next_key = 1, no pending batch, cursor at 0.
func NewCollectionState() *CollectionState {
	return &CollectionState{
		CurrentKey:   InitialSyncKey,
		NextKey:      InitialSyncKey.Succ(),
		PendingBatch: nil,
		Cursor:       0,
		WindowSize:   DefaultWindowSize,
	}
}

const (
	MinWindowSize     = 1
	MaxWindowSize     = 512
	DefaultWindowSize = 25
)

// ClampWindowSize enforces the [1, 512] bound from spec §3/§4.5.
func ClampWindowSize(requested int) int {
	if requested <= 0 {
		return DefaultWindowSize
	}
	if requested < MinWindowSize {
		return MinWindowSize
	}
	if requested > MaxWindowSize {
		return MaxWindowSize
	}
	return requested
}
