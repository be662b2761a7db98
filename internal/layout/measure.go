// Package layout is the Layout Engine (spec §4.3): it turns paragraph
// runs into wrapped lines under a width constraint, resolves tab stops,
// computes table auto-fit column widths, row heights, and cell vertical
// alignment. It never touches the page/document cursor — that is the
// Paginator's job (internal/paginate); this package is pure geometry.
package layout

import "docxpdf/internal/common"

// Measurer is the width-measurement primitive the Layout Engine needs
// from the Font Service, kept as a narrow interface so this package does
// not import internal/fonts directly (spec §4.3 "provide width
// measurement primitives to the Paginator" — here inverted: callers hand
// us the primitive, we hand lines back).
type Measurer interface {
	// AdvancePt returns r's advance width in points for the given style.
	AdvancePt(family string, bold, italic bool, sizePt float64, r rune) float64
	// LineHeightPt returns the natural (single-spaced) line height in
	// points for the given style.
	LineHeightPt(family string, bold, italic bool, sizePt float64) float64
	// AscentPt returns the distance from baseline to ascender top.
	AscentPt(family string, bold, italic bool, sizePt float64) float64
}

// vertScale and vertOffset implement §4.3 "Vertical-align: superscript /
// subscript runs use 58% of the nominal size, offset +35% up and -14%
// down of the nominal size respectively."
const (
	vertScale        = 0.58
	superscriptUpPt  = 0.35
	subscriptDownPt  = -0.14
)

// effectiveSize returns the size actually used for measurement, and the
// baseline offset (points, positive = up) a renderer must apply.
func effectiveSize(nominal float64, v common.VertAlign) (size, baselineOffset float64) {
	switch v {
	case common.VertSuperscript:
		return nominal * vertScale, nominal * superscriptUpPt
	case common.VertSubscript:
		return nominal * vertScale, nominal * subscriptDownPt
	default:
		return nominal, 0
	}
}

func wordWidth(m Measurer, family string, bold, italic bool, size float64, word string) float64 {
	var w float64
	for _, r := range word {
		w += m.AdvancePt(family, bold, italic, size, r)
	}
	return w
}
