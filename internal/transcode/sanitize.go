package transcode

// SanitizeUTF16 decodes host UTF-16 code units into scalar values and
// re-encodes them as UTF-8 bytes for the model runtime. Surrogate pairs are
// merged; an unpaired high or low surrogate is dropped and the scan moves on.
// This is the reverse path used for prompts before tokenization.
func SanitizeUTF16(units []uint16) []byte {
	out := make([]byte, 0, len(units)*3)
	for i := 0; i < len(units); i++ {
		u := units[i]
		switch {
		case u >= highSurrogate && u < lowSurrogate:
			if i+1 < len(units) && units[i+1] >= lowSurrogate && units[i+1] <= surrogateMax {
				r := 0x10000 + (rune(u)-highSurrogate)<<10 + (rune(units[i+1]) - lowSurrogate)
				out = appendUTF8(out, r)
				i++
				continue
			}
			// Lone high surrogate: drop.
		case u >= lowSurrogate && u <= surrogateMax:
			// Lone low surrogate: drop.
		default:
			out = appendUTF8(out, rune(u))
		}
	}
	return out
}

// EncodeUTF16 converts a native Go string into host code units. Prompts
// arrive as Go strings over the wire and cross the same sanitize path the
// UTF-16 host uses.
func EncodeUTF16(s string) []uint16 {
	out := make([]uint16, 0, len(s))
	for _, r := range s {
		out = AppendUTF16(out, r)
	}
	return out
}

// DecodeUTF16String renders host code units as a Go string. Unpaired
// surrogates are dropped, matching the sanitize path. Used at the delivery
// edge only.
func DecodeUTF16String(units []uint16) string {
	return string(SanitizeUTF16(units))
}
