package fonts

import "golang.org/x/text/encoding/charmap"

// winAnsiWidths is the §4.2 "small, static 224-entry width table" for
// the Helvetica fallback, one entry per WinAnsi byte 32..255, in
// 1000-unit em. Values are Adobe's standard Helvetica AFM widths for the
// corresponding Windows-1252 codepoint; unmapped/unused code points in
// the 0x80-0x9F control region fall back to the space width (278).
var winAnsiWidths = [224]int{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333, 278, 278, // 0x20-0x2F
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 278, 278, 584, 584, 584, 556, // 0x30-0x3F
	1015, 667, 667, 722, 722, 667, 611, 778, 722, 278, 500, 667, 556, 833, 722, 778, // 0x40-0x4F
	667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 278, 278, 278, 469, 556, // 0x50-0x5F
	333, 556, 556, 500, 556, 556, 278, 556, 556, 222, 222, 500, 222, 833, 556, 556, // 0x60-0x6F
	556, 556, 333, 500, 278, 556, 500, 722, 500, 500, 500, 334, 260, 334, 584, 278, // 0x70-0x7F
	556, 278, 222, 556, 333, 1000, 556, 556, 333, 1000, 667, 333, 1000, 278, 611, 278, // 0x80-0x8F
	278, 222, 222, 333, 333, 350, 556, 1000, 333, 1000, 500, 333, 944, 278, 500, 667, // 0x90-0x9F
	278, 333, 556, 556, 556, 556, 260, 556, 333, 737, 370, 556, 584, 333, 737, 333, // 0xA0-0xAF
	400, 584, 333, 333, 333, 556, 537, 278, 333, 333, 365, 556, 834, 834, 834, 611, // 0xB0-0xBF
	667, 667, 667, 667, 667, 667, 1000, 722, 667, 667, 667, 667, 278, 278, 278, 278, // 0xC0-0xCF
	722, 722, 778, 778, 778, 778, 778, 584, 778, 722, 722, 722, 722, 667, 667, 611, // 0xD0-0xDF
	556, 556, 556, 556, 556, 556, 889, 500, 556, 556, 556, 556, 278, 278, 278, 278, // 0xE0-0xEF
	556, 556, 556, 556, 556, 556, 556, 584, 611, 556, 556, 556, 556, 500, 556, 500, // 0xF0-0xFF
}

// winAnsiWidth returns the Helvetica-fallback advance width in
// 1000-unit em for r, encoding it to a WinAnsi byte first; characters
// not representable in WinAnsi report 0 (§4.2 "dropped on output").
func winAnsiWidth(r rune) int {
	b, ok := runeToWinAnsi(r)
	if !ok || b < 32 {
		return 0
	}
	return winAnsiWidths[int(b)-32]
}

// runeToWinAnsi encodes r via the standard Windows-1252 mapping
// (golang.org/x/text/encoding/charmap.Windows1252), covering the 27
// smart-quote/dash/bullet/trademark codepoints in the 0x80-0x9F region
// that differ from Latin-1.
func runeToWinAnsi(r rune) (byte, bool) {
	enc := charmap.Windows1252.NewEncoder()
	out, err := enc.String(string(r))
	if err != nil || len(out) != 1 {
		return 0, false
	}
	return out[0], true
}

// EncodeWinAnsi converts s to the WinAnsi byte string a Helvetica-fallback
// content stream shows via a literal-string Tj; characters with no
// WinAnsi representation are dropped (§4.2 "dropped on output").
func EncodeWinAnsi(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := runeToWinAnsi(r); ok {
			out = append(out, b)
		}
	}
	return out
}

// winAnsiToRune decodes a WinAnsi byte back to its rune, used when text
// content must round-trip through the Helvetica content-stream encoding.
func winAnsiToRune(b byte) rune {
	dec := charmap.Windows1252.NewDecoder()
	out, err := dec.Bytes([]byte{b})
	if err != nil || len(out) == 0 {
		return rune(b)
	}
	r := []rune(string(out))
	if len(r) == 0 {
		return rune(b)
	}
	return r[0]
}
