package transcode

import "testing"

func TestDecodeScalar_ASCII(t *testing.T) {
	r, n, err := DecodeScalar([]byte("A"), 0)
	if err != nil || r != 'A' || n != 1 {
		t.Fatalf("got r=%q n=%d err=%v", r, n, err)
	}
}

func TestDecodeScalar_MultiByte(t *testing.T) {
	cases := []struct {
		in   []byte
		want rune
		n    int
	}{
		{[]byte{0xC3, 0xA9}, 0xE9, 2},             // é
		{[]byte{0xE2, 0x82, 0xAC}, 0x20AC, 3},     // €
		{[]byte{0xF0, 0x9F, 0x98, 0x80}, 0x1F600, 4}, // 😀
	}
	for _, c := range cases {
		r, n, err := DecodeScalar(c.in, 0)
		if err != nil {
			t.Fatalf("decode %x: %v", c.in, err)
		}
		if r != c.want || n != c.n {
			t.Fatalf("decode %x: got U+%04X size %d, want U+%04X size %d", c.in, r, n, c.want, c.n)
		}
	}
}

func TestDecodeScalar_Errors(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		kind ErrKind
	}{
		{"bare continuation", []byte{0x80}, InvalidStartByte},
		{"0xFF start", []byte{0xFF}, InvalidStartByte},
		{"bad continuation", []byte{0xC3, 0x41}, InvalidContinuation},
		{"truncated 3-byte", []byte{0xE2, 0x82}, InvalidContinuation},
		{"overlong 2-byte", []byte{0xC0, 0x80}, Overlong},
		{"overlong 3-byte", []byte{0xE0, 0x80, 0x80}, Overlong},
		{"surrogate D800", []byte{0xED, 0xA0, 0x80}, SurrogateInUTF8},
		{"above 10FFFF", []byte{0xF4, 0x90, 0x80, 0x80}, OutOfRange},
		{"overlong 4-byte", []byte{0xF0, 0x80, 0x80, 0x80}, Overlong},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, _, err := DecodeScalar(c.in, 0)
			de, ok := err.(*DecodeError)
			if !ok {
				t.Fatalf("expected DecodeError, got %v", err)
			}
			if de.Kind != c.kind {
				t.Fatalf("kind = %v, want %v", de.Kind, c.kind)
			}
		})
	}
}

func TestSeqLen(t *testing.T) {
	if SeqLen(0x41) != 1 || SeqLen(0xC3) != 2 || SeqLen(0xE2) != 3 || SeqLen(0xF0) != 4 {
		t.Fatal("wrong expected lengths for leading bytes")
	}
	if SeqLen(0x80) != 0 || SeqLen(0xFF) != 0 {
		t.Fatal("continuation/invalid bytes must report length 0")
	}
}
