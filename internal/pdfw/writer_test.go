package pdfw

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"strings"
	"testing"
)

func TestWriter_ObjectsNumberedAndXrefCountsMatch(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, nil)
	a := w.NextRef()
	b := w.NextRef()
	w.Put(a, Dict{"Type": Name("Catalog"), "Pages": b})
	w.Put(b, Dict{"Type": Name("Pages"), "Kids": Array{}, "Count": 0})
	if err := w.Close(a, a); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "%PDF-1.7") {
		t.Errorf("output does not start with PDF header: %q", out[:20])
	}
	if !strings.Contains(out, "1 0 obj") || !strings.Contains(out, "2 0 obj") {
		t.Errorf("missing expected object headers")
	}
	if !strings.Contains(out, "xref\n0 3\n") {
		t.Errorf("xref subsection count wrong, want 3 (free + 2 objects): %q", out)
	}
	if !strings.Contains(out, "trailer") || !strings.Contains(out, "startxref") || !strings.HasSuffix(strings.TrimRight(out, "\n"), "%%EOF") {
		t.Errorf("missing trailer/startxref/%%%%EOF")
	}
}

func TestWriter_StreamLengthMatchesCompressedBytes(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, nil)
	ref := w.NextRef()
	raw := []byte("hello world hello world hello world")
	w.PutStream(ref, Stream{Dict: Dict{"Type": Name("XObject")}, Raw: raw})
	if err := w.Close(ref, ref); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	out := buf.String()
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	zw.Write(raw)
	zw.Close()
	if want := fmt.Sprintf("/Length %d", compressed.Len()); !strings.Contains(out, want) {
		t.Errorf("stream dict missing %q", want)
	}
	if !strings.Contains(out, "/Filter /FlateDecode") {
		t.Errorf("expected FlateDecode filter in stream dict")
	}
	if !strings.Contains(out, "stream\n") || !strings.Contains(out, "endstream") {
		t.Errorf("missing stream/endstream markers")
	}
}

func TestContent_SkipsRedundantFontAndColorChanges(t *testing.T) {
	c := NewContent()
	c.BeginText()
	c.SetFont("F1", 12)
	c.SetFont("F1", 12) // redundant, must not re-emit Tf
	c.SetFillRGB(0x000000)
	c.SetFillRGB(0x000000) // redundant, must not re-emit rg
	c.ShowGlyphs([]uint16{1, 2, 3})
	out := string(c.Bytes())
	if strings.Count(out, "Tf") != 1 {
		t.Errorf("SetFont emitted %d Tf ops, want 1: %q", strings.Count(out, "Tf"), out)
	}
	if strings.Count(out, "rg") != 1 {
		t.Errorf("SetFillRGB emitted %d rg ops, want 1", strings.Count(out, "rg"))
	}
}

func TestContent_ShowGlyphsEmitsHexCIDs(t *testing.T) {
	c := NewContent()
	c.BeginText()
	c.ShowGlyphs([]uint16{0x0041, 0x00ff})
	out := string(c.Bytes())
	if !strings.Contains(out, "<004100FF> Tj") {
		t.Errorf("ShowGlyphs() = %q, want a hex string containing 004100FF", out)
	}
}

func TestContent_BeginTextEndTextBalanced(t *testing.T) {
	c := NewContent()
	c.BeginText()
	c.BeginText() // redundant
	out := string(c.Bytes())
	if strings.Count(out, "BT") != 1 {
		t.Errorf("BeginText emitted %d BT ops, want 1", strings.Count(out, "BT"))
	}
	if strings.Count(out, "ET") != 1 {
		t.Errorf("Bytes() did not close the open text block with exactly one ET")
	}
}
