package transcode

// maxRemainder is the longest incomplete tail we can be asked to carry:
// one byte short of a full 4-byte sequence.
const maxRemainder = 3

// Transcoder converts a chunked UTF-8 byte stream into UTF-16 code units.
// A multi-byte sequence split across two chunks is carried in the remainder
// buffer and reassembled on the next call. The zero value is ready to use.
//
// Correctness property: transcoding chunks C1..Cn in order and concatenating
// the outputs yields the same code units as transcoding the concatenation of
// C1..Cn in a single call.
type Transcoder struct {
	rem []byte

	// OnError, when set, observes each recoverable decode error together
	// with the offset into the combined remainder+chunk buffer. The scan
	// always continues past the bad byte.
	OnError func(err error, offset int)
}

// Transcode consumes the next chunk and returns the code units that are
// complete so far. chunk is not mutated. An empty result is valid: the whole
// chunk may have been absorbed into the remainder.
func (t *Transcoder) Transcode(chunk []byte) []uint16 {
	var buf []byte
	if len(t.rem) > 0 {
		buf = make([]byte, 0, len(t.rem)+len(chunk))
		buf = append(buf, t.rem...)
		buf = append(buf, chunk...)
	} else {
		buf = chunk
	}

	out := make([]uint16, 0, len(buf))
	i := 0
	for i < len(buf) {
		if n := SeqLen(buf[i]); n > 0 && i+n > len(buf) {
			// Incomplete tail: carry it over and wait for the next chunk.
			break
		}
		r, n, err := DecodeScalar(buf, i)
		if err != nil {
			if t.OnError != nil {
				t.OnError(err, i)
			}
			i++ // skip exactly one byte, never stall
			continue
		}
		out = AppendUTF16(out, r)
		i += n
	}

	t.rem = t.rem[:0]
	if i < len(buf) {
		t.rem = append(t.rem, buf[i:]...)
	}
	return out
}

// Flush drains the transcoder at end of stream. A remainder that survives to
// this point is a genuinely truncated sequence; it is reported through
// OnError and discarded, never kept.
func (t *Transcoder) Flush() []uint16 {
	if len(t.rem) == 0 {
		return nil
	}
	buf := t.rem
	t.rem = nil

	out := make([]uint16, 0, len(buf))
	i := 0
	for i < len(buf) {
		r, n, err := DecodeScalar(buf, i)
		if err != nil {
			if t.OnError != nil {
				t.OnError(err, i)
			}
			i++
			continue
		}
		out = AppendUTF16(out, r)
		i += n
	}
	return out
}

// Pending returns the number of carried-over bytes, at most 3 for a
// well-behaved stream. Useful for diagnostics.
func (t *Transcoder) Pending() int { return len(t.rem) }
