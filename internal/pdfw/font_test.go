package pdfw

import (
	"bytes"
	"strings"
	"testing"

	"docxpdf/internal/fonts"
)

func syntheticFace() *fonts.Face {
	return &fonts.Face{
		BaseName:    "Synthtest",
		SubsetBytes: []byte("\x00\x01\x00\x00fake-sfnt-bytes"),
		IsOpenType:  false,
		UnitsPerEm:  1000,
		GlyphMap:    map[rune]fonts.GlyphID{'A': 1, 'B': 2},
		NativeGID:   map[fonts.GlyphID]uint16{0: 0, 1: 41, 2: 42},
		WidthsByGID: map[fonts.GlyphID]int{1: 600, 2: 650},
	}
}

func TestCidToGIDMapBytes_MapsDenseCIDToNativeGID(t *testing.T) {
	b := cidToGIDMapBytes(syntheticFace())
	if len(b) != 3*2 {
		t.Fatalf("len = %d, want 6 (3 CIDs * 2 bytes)", len(b))
	}
	// CID 1 -> native GID 41
	if got := int(b[2])<<8 | int(b[3]); got != 41 {
		t.Errorf("CID 1 -> GID %d, want 41", got)
	}
	// CID 2 -> native GID 42
	if got := int(b[4])<<8 | int(b[5]); got != 42 {
		t.Errorf("CID 2 -> GID %d, want 42", got)
	}
}

func TestWidthsArray_GroupsConsecutiveCIDs(t *testing.T) {
	arr := widthsArray(syntheticFace())
	if len(arr) != 2 {
		t.Fatalf("widthsArray len = %d, want 2 (start CID, widths array)", len(arr))
	}
	if arr[0].(int) != 1 {
		t.Errorf("start CID = %v, want 1", arr[0])
	}
	ws := arr[1].(Array)
	if len(ws) != 2 || ws[0].(int) != 600 || ws[1].(int) != 650 {
		t.Errorf("widths = %v, want [600 650]", ws)
	}
}

func TestToUnicodeCMap_RoundTripsGlyphToRune(t *testing.T) {
	cmap := toUnicodeCMap(syntheticFace())
	if !strings.Contains(cmap, "beginbfchar") {
		t.Fatalf("missing beginbfchar block")
	}
	// CID 1 maps to rune 'A' (0x0041).
	if !strings.Contains(cmap, "<0001> <0041>") {
		t.Errorf("ToUnicode CMap missing CID 1 -> U+0041 mapping: %q", cmap)
	}
}

func TestEmbedFace_HelveticaUsesType1NoFontFile(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, nil)
	face := &fonts.Face{Helvetica: true, BaseName: "Helvetica-Bold"}
	ref := embedFace(w, face)
	if err := w.Close(ref, ref); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "/Subtype /Type1") {
		t.Errorf("Helvetica face missing /Subtype /Type1")
	}
	if !strings.Contains(out, "/BaseFont /Helvetica-Bold") {
		t.Errorf("Helvetica face missing /BaseFont /Helvetica-Bold")
	}
	if strings.Contains(out, "FontFile") {
		t.Errorf("Helvetica face should not embed a font program")
	}
}

func TestEmbedFace_EmbeddedFaceWritesCIDFontType2(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, nil)
	ref := embedFace(w, syntheticFace())
	if err := w.Close(ref, ref); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"/Subtype /Type0", "/Encoding /Identity-H", "/Subtype /CIDFontType2", "CIDToGIDMap"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}
