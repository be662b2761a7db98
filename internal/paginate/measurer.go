package paginate

import (
	"docxpdf/internal/fonts"
	"docxpdf/internal/model"
)

// faceKey identifies one resolved face independent of size, matching
// fonts.Service.Resolve's (familyChain, bold, italic) granularity.
type faceKey struct {
	familyChain   string
	bold, italic bool
}

// faceMeasurer adapts a fonts.Service plus a per-document face cache to
// the layout.Measurer interface, so internal/layout never imports
// internal/fonts directly (§9 Design Notes narrow-interface rule). Faces
// are resolved once per (familyChain, bold, italic) with the full
// document used_chars set collected in pass one, then reused for every
// width query in pass two — this is what makes the Font Service's
// "used_chars passed to Resolve" contract line up with a pure per-glyph
// lookup during layout.
type faceMeasurer struct {
	svc   *fonts.Service
	faces map[faceKey]*fonts.Face
}

func newFaceMeasurer(svc *fonts.Service) *faceMeasurer {
	return &faceMeasurer{svc: svc, faces: map[faceKey]*fonts.Face{}}
}

// prewarm resolves every (family, bold, italic) combination in used
// against its full collected rune set, populating the cache that
// AdvancePt/LineHeightPt/AscentPt and the renderer's FaceFor will read
// from. Must run before any layout pass.
func (m *faceMeasurer) prewarm(used map[faceKey]map[rune]bool) {
	for k, chars := range used {
		m.faces[k] = m.svc.Resolve(k.familyChain, k.bold, k.italic, chars)
	}
}

func (m *faceMeasurer) faceFor(family string, bold, italic bool) *fonts.Face {
	k := faceKey{familyChain: family, bold: bold, italic: italic}
	if f, ok := m.faces[k]; ok {
		return f
	}
	// Defensive: a run not seen during the scan pass (should not happen
	// given Paginate always prewarms before laying out) resolves
	// lazily against an empty used_chars set, i.e. it will only carry
	// whatever widths the Helvetica fallback provides.
	f := m.svc.Resolve(family, bold, italic, nil)
	m.faces[k] = f
	return f
}

func (m *faceMeasurer) AdvancePt(family string, bold, italic bool, sizePt float64, r rune) float64 {
	f := m.faceFor(family, bold, italic)
	return float64(f.AdvanceWidth1000(r)) / 1000 * sizePt
}

func (m *faceMeasurer) LineHeightPt(family string, bold, italic bool, sizePt float64) float64 {
	f := m.faceFor(family, bold, italic)
	if f.Helvetica {
		return 1.15 * sizePt
	}
	if f.LineHeightRatio <= 0 {
		return 1.15 * sizePt
	}
	return f.LineHeightRatio * sizePt
}

func (m *faceMeasurer) AscentPt(family string, bold, italic bool, sizePt float64) float64 {
	f := m.faceFor(family, bold, italic)
	if f.Helvetica {
		return 0.905 * sizePt // Helvetica's published ascent ratio
	}
	if f.AscentRatio <= 0 {
		return 0.905 * sizePt
	}
	return f.AscentRatio * sizePt
}

// collectUsedChars walks every run in the document and accumulates, per
// (familyChain, bold, italic), the set of runes it renders — the
// used_chars input to fonts.Service.Resolve (§4.2).
func collectUsedChars(doc *model.Document) map[faceKey]map[rune]bool {
	used := map[faceKey]map[rune]bool{}
	add := func(r *model.Run) {
		if r.InlineImage != nil || r.IsTab || r.Text == "" {
			return
		}
		k := faceKey{familyChain: r.FontFamily, bold: r.Bold, italic: r.Italic}
		set, ok := used[k]
		if !ok {
			set = map[rune]bool{}
			used[k] = set
		}
		for _, c := range r.Text {
			set[c] = true
		}
	}
	walkParagraphRuns(doc, add)
	return used
}

func walkParagraphRuns(doc *model.Document, f func(r *model.Run)) {
	visitP := func(p *model.Paragraph) {
		for i := range p.Runs {
			f(&p.Runs[i])
		}
	}
	visitBlocks := func(blocks []model.Block) {
		for i := range blocks {
			b := &blocks[i]
			switch b.Kind {
			case model.BlockParagraph:
				if b.Paragraph != nil {
					visitP(b.Paragraph)
				}
			case model.BlockTable:
				if b.Table != nil {
					for r := range b.Table.Rows {
						for c := range b.Table.Rows[r].Cells {
							cell := &b.Table.Rows[r].Cells[c]
							for p := range cell.Paragraphs {
								visitP(&cell.Paragraphs[p])
							}
						}
					}
				}
			}
		}
	}
	for s := range doc.Sections {
		visitBlocks(doc.Sections[s].Blocks)
		hf := doc.Sections[s].Properties.Header
		ft := doc.Sections[s].Properties.Footer
		for _, h := range []*model.HeaderFooter{hf.Default, hf.First, ft.Default, ft.First} {
			if h == nil {
				continue
			}
			for p := range h.Paragraphs {
				visitP(&h.Paragraphs[p])
			}
		}
	}
	for _, fn := range doc.Footnotes {
		for p := range fn.Paragraphs {
			visitP(&fn.Paragraphs[p])
		}
	}
}
