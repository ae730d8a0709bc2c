package wbxml

import (
	"bufio"
	"bytes"
	"io"
)

// Decode parses WBXML bytes into an element tree rooted at the single
// top-level element (spec §4.1). Unknown tags within a known page are
// retained as opaque-named nodes (tag set to a synthetic "unknown-<id>"
// name) rather than rejected, so handlers can ignore forward-compatible
// additions.
func Decode(data []byte) (*Element, error) {
	r := bufio.NewReader(bytes.NewReader(data))

	version, err := r.ReadByte()
	if err != nil || version != headerVersion {
		return nil, malformed("missing or unexpected version header")
	}
	publicID, err := r.ReadByte()
	if err != nil || publicID != headerPublicID {
		return nil, malformed("missing or unexpected public id header")
	}
	if _, err := readMultiByteUint32(r); err != nil {
		return nil, err
	}
	strTableLen, err := readMultiByteUint32(r)
	if err != nil {
		return nil, err
	}
	if strTableLen > 0 {
		if _, err := io.CopyN(io.Discard, r, int64(strTableLen)); err != nil {
			return nil, malformed("truncated string table")
		}
	}

	d := &decoder{r: r, curPage: 0}
	root, err := d.readElement()
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, malformed("empty document")
	}
	return root, nil
}

type decoder struct {
	r       *bufio.Reader
	curPage Page
}

// readElement reads one tag token and its content, or returns (nil, nil)
// on END / EOF so callers know to stop reading siblings.
func (d *decoder) readElement() (*Element, error) {
	for {
		tok, err := d.r.ReadByte()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, malformed("read error: %v", err)
		}
		switch tok {
		case tokenSwitchPage:
			p, err := d.r.ReadByte()
			if err != nil {
				return nil, malformed("truncated SWITCH_PAGE")
			}
			d.curPage = Page(p)
			continue
		case tokenEnd:
			return nil, nil
		default:
			return d.readTaggedElement(tok)
		}
	}
}

func (d *decoder) readTaggedElement(tok byte) (*Element, error) {
	cp, known := pageFor(d.curPage)
	id := tok & tagMask
	name, ok := cp.nameOf(id)
	if !known || !ok {
		name = unknownTagName(id)
	}
	el := &Element{Page: d.curPage, Tag: name}

	if tok&tagHasContent == 0 {
		return el, nil
	}

	for {
		peek, err := d.r.Peek(1)
		if err != nil {
			return nil, malformed("unterminated element %q", name)
		}
		switch peek[0] {
		case tokenEnd:
			d.r.ReadByte()
			return el, nil
		case tokenStrI:
			d.r.ReadByte()
			s, err := d.readInlineString()
			if err != nil {
				return nil, err
			}
			el.Text = s
		case tokenOpaque:
			d.r.ReadByte()
			blob, err := d.readOpaque()
			if err != nil {
				return nil, err
			}
			el.Opaque = blob
		case tokenSwitchPage:
			d.r.ReadByte()
			p, err := d.r.ReadByte()
			if err != nil {
				return nil, malformed("truncated SWITCH_PAGE")
			}
			d.curPage = Page(p)
		default:
			child, err := d.readElement()
			if err != nil {
				return nil, err
			}
			if child == nil {
				return el, nil
			}
			el.Children = append(el.Children, child)
		}
	}
}

func (d *decoder) readInlineString() (string, error) {
	var buf bytes.Buffer
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			return "", malformed("STR_I missing NUL terminator")
		}
		if b == 0x00 {
			return buf.String(), nil
		}
		buf.WriteByte(b)
	}
}

func (d *decoder) readOpaque() ([]byte, error) {
	n, err := readMultiByteUint32(d.r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return nil, malformed("OPAQUE length %d exceeds remaining bytes", n)
	}
	return buf, nil
}

func unknownTagName(id byte) string {
	const hex = "0123456789abcdef"
	return "unknown-0x" + string([]byte{hex[id>>4], hex[id&0xF]})
}
