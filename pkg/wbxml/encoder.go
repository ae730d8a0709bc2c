package wbxml

// Encode serializes an element tree to WBXML bytes (spec §4.1). root's own
// tag is emitted like any other element; callers typically pass the
// command-level root (e.g. AirSync/Sync or FolderHierarchy/FolderSync).
func Encode(root *Element) ([]byte, error) {
	buf := make([]byte, 0, 256)
	buf = append(buf, headerVersion, headerPublicID)
	buf = appendMultiByteUint32(buf, headerCharset)
	buf = appendMultiByteUint32(buf, 0) // empty string table

	e := &encoder{buf: buf, curPage: -1}
	if err := e.writeElement(root); err != nil {
		return nil, err
	}
	return e.buf, nil
}

type encoder struct {
	buf     []byte
	curPage int // -1 until the first SWITCH_PAGE is emitted
}

func (e *encoder) switchTo(p Page) {
	if e.curPage == int(p) {
		return
	}
	e.buf = append(e.buf, tokenSwitchPage, byte(p))
	e.curPage = int(p)
}

func (e *encoder) writeElement(el *Element) error {
	cp, ok := pageFor(el.Page)
	if !ok {
		return malformed("unknown code page %#x for tag %q", el.Page, el.Tag)
	}
	id, ok := cp.idOf(el.Tag)
	if !ok {
		return malformed("unknown tag %q in page %#x", el.Tag, el.Page)
	}
	e.switchTo(el.Page)

	hasContent := el.Text != "" || el.Opaque != nil || len(el.Children) > 0
	tok := id
	if hasContent {
		tok |= tagHasContent
	}
	e.buf = append(e.buf, tok)
	if !hasContent {
		return nil
	}

	switch {
	case el.Opaque != nil:
		e.buf = append(e.buf, tokenOpaque)
		e.buf = appendMultiByteUint32(e.buf, uint32(len(el.Opaque)))
		e.buf = append(e.buf, el.Opaque...)
	case el.Text != "":
		e.buf = append(e.buf, tokenStrI)
		e.buf = append(e.buf, []byte(el.Text)...)
		e.buf = append(e.buf, 0x00)
	}
	for _, child := range el.Children {
		if err := e.writeElement(child); err != nil {
			return err
		}
	}
	e.buf = append(e.buf, tokenEnd)
	return nil
}
