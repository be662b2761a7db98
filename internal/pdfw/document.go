package pdfw

import (
	"io"
	"sort"

	"go.uber.org/zap"

	"docxpdf/internal/fonts"
	"docxpdf/internal/model"
)

// LinkAnnot is one URI link annotation in page space (§4.4 Footnote/Line
// rendering: "hyperlink rectangles are accumulated and flushed"; §6
// Output: "URI link annotations for hyperlinks").
type LinkAnnot struct {
	X, Y, W, H float64 // page-space rectangle, origin bottom-left
	URL        string
}

// Page is one fully laid-out page ready for assembly: its content
// stream bytes (already built via Content.Bytes), the set of fonts/
// images it references by resource name, and its link annotations.
// internal/paginate builds one of these per logical page; Content is the
// single build from its final layout pass, when NUMPAGES is known.
type Page struct {
	WidthPt, HeightPt float64
	Content           []byte
	Annots            []LinkAnnot
}

// Document is the complete set of pages plus the document-wide font and
// image resources referenced across all of them (§4.4 Page object
// assembly: "inherited font resource dictionary... all fonts used
// anywhere in the document").
type Document struct {
	Pages  []Page
	Fonts  map[string]*fonts.Face        // resource name -> face
	Images map[string]model.EmbeddedImage // resource name -> finalized image
}

// Write assembles and emits the complete PDF: font/image objects first
// (so page Resources dicts can reference their refs), then one content
// stream and page object per Page, then the shared Pages tree and
// Catalog, then the xref/trailer.
func Write(out io.Writer, doc Document, log *zap.Logger) error {
	w := New(out, log)

	fontRefs := make(map[string]Ref, len(doc.Fonts))
	names := sortedKeys(doc.Fonts)
	for _, name := range names {
		fontRefs[name] = embedFace(w, doc.Fonts[name])
	}

	imageRefs := make(map[string]Ref, len(doc.Images))
	imgNames := sortedImageKeys(doc.Images)
	for _, name := range imgNames {
		if ref, ok := embedImage(w, doc.Images[name]); ok {
			imageRefs[name] = ref
		} else if log != nil {
			log.Warn("Image XObject dropped, placeholder expected in content stream", zap.String("resource", name))
		}
	}

	resources := Dict{}
	if len(fontRefs) > 0 {
		fontDict := Dict{}
		for name, ref := range fontRefs {
			fontDict[Name(name)] = ref
		}
		resources["Font"] = fontDict
	}
	if len(imageRefs) > 0 {
		xDict := Dict{}
		for name, ref := range imageRefs {
			xDict[Name(name)] = ref
		}
		resources["XObject"] = xDict
	}

	pagesRef := w.NextRef()
	pageRefs := make(Array, 0, len(doc.Pages))
	for _, p := range doc.Pages {
		contentRef := w.NextRef()
		w.PutStream(contentRef, Stream{Raw: p.Content})

		pageRef := w.NextRef()
		pageDict := Dict{
			"Type":      Name("Page"),
			"Parent":    pagesRef,
			"MediaBox":  Array{float64(0), float64(0), p.WidthPt, p.HeightPt},
			"Resources": resources,
			"Contents":  contentRef,
		}
		if len(p.Annots) > 0 {
			pageDict["Annots"] = buildAnnots(w, p.Annots)
		}
		w.Put(pageRef, pageDict)
		pageRefs = append(pageRefs, pageRef)
	}

	w.Put(pagesRef, Dict{
		"Type":  Name("Pages"),
		"Kids":  pageRefs,
		"Count": len(pageRefs),
	})

	catalogRef := w.NextRef()
	w.Put(catalogRef, Dict{
		"Type":  Name("Catalog"),
		"Pages": pagesRef,
	})

	infoRef := w.NextRef()
	w.Put(infoRef, Dict{"Producer": "docxpdf"})

	return w.Close(catalogRef, infoRef)
}

func buildAnnots(w *Writer, annots []LinkAnnot) Array {
	out := make(Array, 0, len(annots))
	for _, a := range annots {
		ref := w.NextRef()
		w.Put(ref, Dict{
			"Type":    Name("Annot"),
			"Subtype": Name("Link"),
			"Rect":    Array{a.X, a.Y, a.X + a.W, a.Y + a.H},
			"Border":  Array{0, 0, 0},
			"A": Dict{
				"Type": Name("Action"),
				"S":    Name("URI"),
				"URI":  a.URL,
			},
		})
		out = append(out, ref)
	}
	return out
}

func sortedKeys(m map[string]*fonts.Face) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedImageKeys(m map[string]model.EmbeddedImage) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
