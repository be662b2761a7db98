package paginate

import (
	"docxpdf/internal/model"
	"docxpdf/internal/pdfw"
)

// renderPage is one logical page under construction: header, body,
// footnotes and footer are all drawn into content during each layout
// pass; only the final pass knows totalPages (§4.4 Two-phase assembly).
type renderPage struct {
	props       model.SectionProperties
	isFirstPage bool // first page of its section, for header/footer First variant
	content     *pdfw.Content
	annots      []pdfw.LinkAnnot

	footnoteIDs    []string // first-seen order on this page
	footnoteIDSeen map[string]bool
	footnoteUsed   float64 // pt already reserved for footnotes on this page
}

func newRenderPage(props model.SectionProperties, isFirstPage bool) *renderPage {
	return &renderPage{
		props:          props,
		isFirstPage:    isFirstPage,
		content:        pdfw.NewContent(),
		footnoteIDSeen: map[string]bool{},
	}
}

// bottomLimit is the lowest y a paragraph's content may extend to,
// shrinking as footnotes accumulate (§4.4 step 9).
func (rp *renderPage) bottomLimit() float64 {
	return rp.props.MarginBottom + rp.footnoteUsed
}

// addFootnoteRef registers id on first sight, reserving its laid-out
// height (plus a one-time 12pt separator allowance) from the page's
// usable bottom limit.
func (rp *renderPage) addFootnoteRef(id string, heightPt float64) {
	if rp.footnoteIDSeen[id] {
		return
	}
	rp.footnoteIDSeen[id] = true
	if len(rp.footnoteIDs) == 0 {
		rp.footnoteUsed += 12 // separator allowance, first footnote only
	}
	rp.footnoteIDs = append(rp.footnoteIDs, id)
	rp.footnoteUsed += heightPt
}

// column is one (x, width) band within a section's text area.
type column struct {
	x, width float64
}

func columnsFor(props model.SectionProperties) []column {
	if props.Columns == nil || len(props.Columns.Columns) == 0 {
		return []column{{x: props.MarginLeft, width: props.TextWidth()}}
	}
	cols := make([]column, 0, len(props.Columns.Columns))
	x := props.MarginLeft
	for _, c := range props.Columns.Columns {
		cols = append(cols, column{x: x, width: c.Width})
		x += c.Width + c.SpaceAfter
	}
	return cols
}
