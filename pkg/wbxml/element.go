package wbxml

// Element is one node of the typed syntax tree the encoder/decoder operate
// on. A node is exactly one of: empty self-closing tag, text content, or a
// container of child Elements; Opaque is set only on AirSyncBase/Data nodes
// carrying a raw MIME body.
type Element struct {
	Page     Page
	Tag      string
	Text     string
	Opaque   []byte
	Children []*Element
}

// New builds an empty container element on the given page.
func New(page Page, tag string) *Element {
	return &Element{Page: page, Tag: tag}
}

// NewText builds a leaf element carrying inline string content.
func NewText(page Page, tag, text string) *Element {
	return &Element{Page: page, Tag: tag, Text: text}
}

// NewOpaque builds a leaf element carrying a raw binary payload.
func NewOpaque(page Page, tag string, data []byte) *Element {
	return &Element{Page: page, Tag: tag, Opaque: data}
}

// Add appends a child and returns e (the parent), so callers can chain
// construction.
func (e *Element) Add(child *Element) *Element {
	e.Children = append(e.Children, child)
	return e
}

// Child returns the first direct child with the given tag, regardless of
// page, or nil if there is none.
func (e *Element) Child(tag string) *Element {
	for _, c := range e.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// ChildText returns the text content of the first child with the given
// tag, or the empty string if absent.
func (e *Element) ChildText(tag string) string {
	if c := e.Child(tag); c != nil {
		return c.Text
	}
	return ""
}

// AllChildren returns every direct child with the given tag, in order.
func (e *Element) AllChildren(tag string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}
