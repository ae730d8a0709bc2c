package wbxml

import "io"

// readMultiByteUint32 decodes a big-endian base-128 mb_u_int32: each byte
// contributes 7 bits, the continuation bit (0x80) set on every byte but
// the last (spec §4.1).
func readMultiByteUint32(r io.ByteReader) (uint32, error) {
	var v uint32
	for i := 0; i < 5; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, malformed("truncated mb_u_int32: %v", err)
		}
		v = v<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, malformed("mb_u_int32 exceeds 5 continuation bytes")
}

// appendMultiByteUint32 appends v's big-endian base-128 encoding to buf.
func appendMultiByteUint32(buf []byte, v uint32) []byte {
	var groups [5]byte
	n := 0
	groups[n] = byte(v & 0x7F) // least-significant group, carries no continuation bit
	n++
	v >>= 7
	for v > 0 {
		groups[n] = byte(v & 0x7F)
		n++
		v >>= 7
	}
	for i := n - 1; i >= 0; i-- {
		b := groups[i]
		if i != 0 {
			b |= 0x80
		}
		buf = append(buf, b)
	}
	return buf
}
