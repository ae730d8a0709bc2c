package wbxml

import "fmt"

// FormatError reports a framing-level decode failure (spec §4.1): a
// truncated mb_u_int32, missing header, unterminated element, an OPAQUE
// length exceeding the remaining bytes, or a STR_I missing its NUL
// terminator. Callers map this onto apperr.MalformedWBXML.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("wbxml: malformed: %s", e.Reason)
}

func malformed(format string, args ...any) error {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}
