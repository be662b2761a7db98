package pdfw

import (
	"bytes"
	"strings"
	"testing"

	"docxpdf/internal/fonts"
)

func TestWrite_AssemblesCatalogPagesAndContent(t *testing.T) {
	c := NewContent()
	c.BeginText()
	c.SetFont("F0", 12)
	c.MoveTextTo(72, 700)
	c.ShowGlyphs([]uint16{1})

	doc := Document{
		Pages: []Page{
			{WidthPt: 612, HeightPt: 792, Content: c.Bytes()},
		},
		Fonts: map[string]*fonts.Face{
			"F0": {Helvetica: true, BaseName: "Helvetica"},
		},
	}

	var buf bytes.Buffer
	if err := Write(&buf, doc, nil); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{"/Type /Catalog", "/Type /Pages", "/Type /Page", "/MediaBox", "/Type /Font", "startxref", "%%EOF"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if !strings.Contains(out, "/Count 1") {
		t.Errorf("expected page count 1 in Pages dict")
	}
}

func TestWrite_LinkAnnotationRectangle(t *testing.T) {
	doc := Document{
		Pages: []Page{{
			WidthPt: 612, HeightPt: 792, Content: []byte(""),
			Annots: []LinkAnnot{{X: 10, Y: 20, W: 30, H: 5, URL: "https://example.com"}},
		}},
		Fonts: map[string]*fonts.Face{},
	}
	var buf bytes.Buffer
	if err := Write(&buf, doc, nil); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "/Subtype /Link") {
		t.Errorf("missing link annotation")
	}
	if !strings.Contains(out, "(https://example.com)") {
		t.Errorf("missing URI action target")
	}
	if !strings.Contains(out, "/Rect [10.0 20.0 40.0 25.0]") {
		t.Errorf("annotation rect not computed as [x y x+w y+h]: %q", out)
	}
}
