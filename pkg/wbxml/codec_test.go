package wbxml

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	root := New(PageFolderHierarchy, "FolderSync")
	root.Add(NewText(PageFolderHierarchy, "Status", "1"))
	root.Add(NewText(PageFolderHierarchy, "SyncKey", "1"))
	changes := New(PageFolderHierarchy, "Changes")
	changes.Add(NewText(PageFolderHierarchy, "Count", "1"))
	add := New(PageFolderHierarchy, "Add")
	add.Add(NewText(PageFolderHierarchy, "ServerId", "1"))
	add.Add(NewText(PageFolderHierarchy, "ParentId", "0"))
	add.Add(NewText(PageFolderHierarchy, "DisplayName", "Inbox"))
	add.Add(NewText(PageFolderHierarchy, "Type", "2"))
	changes.Add(add)
	root.Add(changes)

	encoded, err := Encode(root)
	require.NoError(t, err)
	require.Equal(t, headerVersion, encoded[0])
	require.Equal(t, headerPublicID, encoded[1])

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, "FolderSync", decoded.Tag)
	require.Equal(t, "1", decoded.ChildText("Status"))
	require.Equal(t, "1", decoded.ChildText("SyncKey"))

	decodedChanges := decoded.Child("Changes")
	require.NotNil(t, decodedChanges)
	require.Equal(t, "1", decodedChanges.ChildText("Count"))
	decodedAdd := decodedChanges.Child("Add")
	require.NotNil(t, decodedAdd)
	require.Equal(t, "Inbox", decodedAdd.ChildText("DisplayName"))
	require.Equal(t, "2", decodedAdd.ChildText("Type"))
}

func TestOpaqueRoundTripIsByteExact(t *testing.T) {
	mime := []byte("From: a@b.com\r\nTo: c@d.com\r\nSubject: hi\r\n\r\nbody\x00withnul\xffbytes")

	body := New(PageAirSyncBase, "Body")
	body.Add(NewText(PageAirSyncBase, "Type", "4"))
	body.Add(NewOpaque(PageAirSyncBase, "Data", mime))

	encoded, err := Encode(body)
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)

	data := decoded.Child("Data")
	require.NotNil(t, data)
	require.Equal(t, mime, data.Opaque)
}

func TestDecodeRejectsTruncatedHeader(t *testing.T) {
	_, err := Decode([]byte{headerVersion})
	require.Error(t, err)
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
}

func TestDecodeRejectsUnterminatedElement(t *testing.T) {
	// FolderSync (0x13|0x40) with no matching END.
	data := []byte{headerVersion, headerPublicID, 0x6a, 0x00, tokenSwitchPage, byte(PageFolderHierarchy), 0x13 | tagHasContent}
	_, err := Decode(data)
	require.Error(t, err)
}

func TestDecodeRejectsOpaqueLengthOverrun(t *testing.T) {
	data := []byte{
		headerVersion, headerPublicID, 0x6a, 0x00,
		tokenSwitchPage, byte(PageAirSyncBase),
		0x0A | tagHasContent, // Body
		tokenOpaque, 0x10,    // claims 16 bytes, none follow
	}
	_, err := Decode(data)
	require.Error(t, err)
}

func TestDecodeRetainsUnknownTagAsOpaqueName(t *testing.T) {
	data := []byte{
		headerVersion, headerPublicID, 0x6a, 0x00,
		tokenSwitchPage, byte(PageFolderHierarchy),
		0x3E, // not in the table, no content bit
	}
	root, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, "unknown-0x3e", root.Tag)
}
