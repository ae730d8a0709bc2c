// Package wbxml implements the tokenized-XML wire format used by EAS:
// multi-codepage tag switching, inline strings, and OPAQUE binary blobs.
// The token layout follows the generic WBXML global tokens (SWITCH_PAGE,
// END, STR_I, OPAQUE); the code page tables below are EAS-specific.
package wbxml

// Global tokens, independent of code page.
const (
	tokenSwitchPage byte = 0x00
	tokenEnd        byte = 0x01
	tokenStrI       byte = 0x03
	tokenOpaque     byte = 0xC3

	// tagHasContent is set on a tag token when the element carries
	// children or inline text and must be closed with END.
	tagHasContent byte = 0x40
	tagMask       byte = 0x3F
)

const (
	headerVersion  byte = 0x03
	headerPublicID byte = 0x01
	headerCharset       = 106 // UTF-8, mb_u_int32-encoded
)

// Page identifies one EAS WBXML code page.
type Page byte

const (
	PageAirSync         Page = 0x00
	PageEmail           Page = 0x02
	PagePing            Page = 0x0D
	PageProvision       Page = 0x0E
	PageFolderHierarchy Page = 0x07
	PageAirSyncBase     Page = 0x11
	PageGetItemEstimate Page = 0x0B
	PageSettings        Page = 0x12
)

// CodePage maps a page-local tag id to its element name, and back.
type CodePage struct {
	names map[byte]string
	ids   map[string]byte
}

func newCodePage(entries map[byte]string) CodePage {
	cp := CodePage{names: entries, ids: make(map[string]byte, len(entries))}
	for id, name := range entries {
		cp.ids[name] = id
	}
	return cp
}

func (cp CodePage) nameOf(id byte) (string, bool) {
	n, ok := cp.names[id]
	return n, ok
}

func (cp CodePage) idOf(name string) (byte, bool) {
	id, ok := cp.ids[name]
	return id, ok
}

// codeSpace is the full set of pages the codec understands, keyed by Page.
var codeSpace = map[Page]CodePage{
	PageAirSync: newCodePage(map[byte]string{
		0x05: "Sync",
		0x06: "Responses",
		0x07: "Add",
		0x08: "Change",
		0x09: "Delete",
		0x0A: "Fetch",
		0x0B: "SyncKey",
		0x0C: "ClientId",
		0x0D: "ServerId",
		0x0E: "Status",
		0x0F: "Collection",
		0x10: "Class",
		0x11: "Version",
		0x12: "CollectionId",
		0x13: "GetChanges",
		0x14: "MoreAvailable",
		0x15: "WindowSize",
		0x16: "Commands",
		0x17: "Options",
		0x18: "FilterType",
		0x19: "Truncation",
		0x1A: "RTFTruncation",
		0x1B: "Conflict",
		0x1C: "Collections",
		0x1D: "ApplicationData",
		0x1E: "DeletesAsMoves",
		0x1F: "NotifyGUID",
		0x20: "Supported",
		0x21: "SoftDelete",
		0x22: "MIMESupport",
		0x23: "MIMETruncation",
		0x24: "Wait",
		0x25: "Limit",
		0x26: "Partial",
		0x27: "ConversationMode",
		0x28: "MaxItems",
		0x29: "HeartbeatInterval",
	}),
	PageEmail: newCodePage(map[byte]string{
		0x0F: "DateReceived",
		0x11: "DisplayTo",
		0x12: "Importance",
		0x13: "MessageClass",
		0x14: "Subject",
		0x15: "Read",
		0x16: "To",
		0x17: "Cc",
		0x18: "From",
		0x19: "ReplyTo",
		0x1A: "AllDayEvent",
		0x1F: "InternetCPID",
		0x22: "ContentClass",
		0x39: "Flag",
	}),
	PagePing: newCodePage(map[byte]string{
		0x05: "Ping",
		0x06: "AutdState",
		0x07: "Status",
		0x08: "HeartbeatInterval",
		0x09: "Folders",
		0x0A: "Folder",
		0x0B: "Id",
		0x0C: "Class",
		0x0D: "MaxFolders",
	}),
	PageProvision: newCodePage(map[byte]string{
		0x05: "Provision",
		0x06: "Policies",
		0x07: "Policy",
		0x08: "PolicyType",
		0x09: "PolicyKey",
		0x0A: "Data",
		0x0B: "Status",
		0x0C: "RemoteWipe",
		0x0D: "EASProvisionDoc",
		0x0E: "DevicePasswordEnabled",
		0x0F: "AlphanumericDevicePasswordRequired",
		0x10: "DeviceEncryptionEnabled",
	}),
	PageFolderHierarchy: newCodePage(map[byte]string{
		0x07: "DisplayName",
		0x08: "ServerId",
		0x09: "ParentId",
		0x0A: "Type",
		0x0C: "Status",
		0x0D: "ContentClass",
		0x0E: "Changes",
		0x0F: "Add",
		0x10: "Delete",
		0x11: "Update",
		0x12: "SyncKey",
		0x13: "FolderSync",
		0x14: "Count",
		0x15: "Version",
	}),
	PageAirSyncBase: newCodePage(map[byte]string{
		0x05: "BodyPreference",
		0x06: "Type",
		0x07: "TruncationSize",
		0x08: "AllOrNone",
		0x0A: "Body",
		0x0B: "Data",
		0x0C: "EstimatedDataSize",
		0x0D: "Truncated",
		0x0E: "Attachments",
		0x0F: "Attachment",
		0x10: "DisplayName",
		0x11: "FileReference",
		0x12: "Method",
		0x13: "ContentId",
		0x14: "ContentLocation",
		0x15: "IsInline",
		0x16: "NativeBodyType",
		0x17: "ContentType",
	}),
	PageGetItemEstimate: newCodePage(map[byte]string{
		0x05: "GetItemEstimate",
		0x06: "Collections",
		0x07: "Collection",
		0x08: "Class",
		0x09: "CollectionId",
		0x0B: "Estimate",
		0x0C: "Response",
		0x0D: "Status",
	}),
	PageSettings: newCodePage(map[byte]string{
		0x05: "Settings",
		0x06: "Status",
		0x07: "Get",
		0x08: "DeviceInformation",
		0x09: "UserInformation",
		0x0A: "EmailAddresses",
		0x0B: "SmtpAddress",
	}),
}

func pageFor(p Page) (CodePage, bool) {
	cp, ok := codeSpace[p]
	return cp, ok
}
