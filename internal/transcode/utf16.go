package transcode

// AppendUTF16 appends the UTF-16 encoding of a validated scalar value to dst.
// Values above the BMP become a high/low surrogate pair. There is no error
// path: r is already range-checked by the decoder.
func AppendUTF16(dst []uint16, r rune) []uint16 {
	if r < 0x10000 {
		return append(dst, uint16(r))
	}
	v := r - 0x10000
	return append(dst,
		uint16(highSurrogate+(v>>10)),
		uint16(lowSurrogate+(v&0x3FF)))
}

// appendUTF8 appends the UTF-8 encoding of a scalar value to dst.
// Inverse of DecodeScalar's length rules.
func appendUTF8(dst []byte, r rune) []byte {
	switch {
	case r < 0x80:
		return append(dst, byte(r))
	case r < 0x800:
		return append(dst, byte(0xC0|r>>6), byte(0x80|r&0x3F))
	case r < 0x10000:
		return append(dst, byte(0xE0|r>>12), byte(0x80|(r>>6)&0x3F), byte(0x80|r&0x3F))
	default:
		return append(dst, byte(0xF0|r>>18), byte(0x80|(r>>12)&0x3F), byte(0x80|(r>>6)&0x3F), byte(0x80|r&0x3F))
	}
}
