// Package transcode converts between the UTF-8 byte stream produced by the
// model runtime and the UTF-16 code units expected by the host string type.
// Input bytes are untrusted: every decode path must make forward progress on
// malformed data and never panic.
package transcode

// ErrKind classifies a UTF-8 decode failure.
type ErrKind int

const (
	InvalidStartByte ErrKind = iota
	InvalidContinuation
	Overlong
	SurrogateInUTF8
	OutOfRange
)

func (k ErrKind) String() string {
	switch k {
	case InvalidStartByte:
		return "invalid start byte"
	case InvalidContinuation:
		return "invalid continuation byte"
	case Overlong:
		return "overlong encoding"
	case SurrogateInUTF8:
		return "surrogate codepoint in utf-8"
	case OutOfRange:
		return "codepoint out of range"
	default:
		return "unknown decode error"
	}
}

// DecodeError reports a malformed sequence at a byte offset. Callers recover
// by skipping exactly one byte and resuming.
type DecodeError struct {
	Kind   ErrKind
	Offset int
}

func (e *DecodeError) Error() string { return e.Kind.String() }

// IsDecodeError reports whether err is a local, recoverable decode failure.
func IsDecodeError(err error) bool {
	_, ok := err.(*DecodeError)
	return ok
}

const (
	maxScalar     = 0x10FFFF
	surrogateMin  = 0xD800
	surrogateMax  = 0xDFFF
	highSurrogate = 0xD800
	lowSurrogate  = 0xDC00
)

// SeqLen returns the expected UTF-8 sequence length for a leading byte,
// or 0 if the byte cannot start a sequence.
func SeqLen(b byte) int {
	switch {
	case b <= 0x7F:
		return 1
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	default:
		return 0
	}
}

func isCont(b byte) bool { return b&0xC0 == 0x80 }

// DecodeScalar decodes one scalar value from p starting at offset i.
// It returns the scalar and the number of bytes consumed, or a *DecodeError.
// The caller must ensure the full expected sequence is present (see SeqLen);
// a continuation byte beyond len(p) is reported as InvalidContinuation.
func DecodeScalar(p []byte, i int) (rune, int, error) {
	b0 := p[i]
	switch n := SeqLen(b0); n {
	case 1:
		return rune(b0), 1, nil
	case 2:
		if i+1 >= len(p) || !isCont(p[i+1]) {
			return 0, 0, &DecodeError{Kind: InvalidContinuation, Offset: i}
		}
		r := rune(b0&0x1F)<<6 | rune(p[i+1]&0x3F)
		if r < 0x80 {
			return 0, 0, &DecodeError{Kind: Overlong, Offset: i}
		}
		return r, 2, nil
	case 3:
		if i+2 >= len(p) || !isCont(p[i+1]) || !isCont(p[i+2]) {
			return 0, 0, &DecodeError{Kind: InvalidContinuation, Offset: i}
		}
		r := rune(b0&0x0F)<<12 | rune(p[i+1]&0x3F)<<6 | rune(p[i+2]&0x3F)
		if r < 0x800 {
			return 0, 0, &DecodeError{Kind: Overlong, Offset: i}
		}
		if r >= surrogateMin && r <= surrogateMax {
			return 0, 0, &DecodeError{Kind: SurrogateInUTF8, Offset: i}
		}
		return r, 3, nil
	case 4:
		if i+3 >= len(p) || !isCont(p[i+1]) || !isCont(p[i+2]) || !isCont(p[i+3]) {
			return 0, 0, &DecodeError{Kind: InvalidContinuation, Offset: i}
		}
		r := rune(b0&0x07)<<18 | rune(p[i+1]&0x3F)<<12 | rune(p[i+2]&0x3F)<<6 | rune(p[i+3]&0x3F)
		if r < 0x10000 {
			return 0, 0, &DecodeError{Kind: Overlong, Offset: i}
		}
		if r > maxScalar {
			return 0, 0, &DecodeError{Kind: OutOfRange, Offset: i}
		}
		return r, 4, nil
	default:
		return 0, 0, &DecodeError{Kind: InvalidStartByte, Offset: i}
	}
}
