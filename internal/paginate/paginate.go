// Package paginate is the Paginator & Renderer (spec §4.4): it walks the
// Document Model section by section, places paragraphs and tables onto
// pages under the Layout Engine's line/row geometry, and emits a
// pdfw.Document ready for pdfw.Write.
package paginate

import (
	"bytes"
	"strconv"

	"go.uber.org/zap"

	"docxpdf/internal/common"
	"docxpdf/internal/fonts"
	"docxpdf/internal/images"
	"docxpdf/internal/layout"
	"docxpdf/internal/model"
	"docxpdf/internal/pdfw"
)

// Options carries the caller-tunable knobs the Paginator needs from
// config.DocumentConfig without importing internal/config directly.
type Options struct {
	FallbackFonts         []string
	JPEGQuality           int
	RemovePNGTransparency bool
}

// Paginate lays out doc twice (§4.4 "Two-phase assembly", generalized to
// the whole body rather than just headers/footers: the first pass exists
// only to learn the final page count, the second pass re-runs placement
// with that count known so every NUMPAGES field anywhere in the document
// — not only in a header or footer — resolves correctly) and returns the
// finished PDF bytes.
func Paginate(doc *model.Document, index fonts.Index, opts Options, log *zap.Logger) ([]byte, error) {
	svc := fonts.NewService(index, doc.EmbeddedFonts, opts.FallbackFonts, log)
	fm := newFaceMeasurer(svc)
	fm.prewarm(collectUsedChars(doc))
	footnoteNums := assignFootnoteNumbers(doc)

	imgOpts := images.Options{JPEGQuality: opts.JPEGQuality, RemovePNGTransparency: opts.RemovePNGTransparency}

	counting := newPaginator(fm, newResourcePool(fm, imgOpts, log), footnoteNums, 0, log)
	counting.run(doc)
	totalPages := len(counting.pages)

	final := newPaginator(fm, newResourcePool(fm, imgOpts, log), footnoteNums, totalPages, log)
	final.run(doc)

	pdfPages := make([]pdfw.Page, len(final.pages))
	for i, rp := range final.pages {
		pdfPages[i] = pdfw.Page{
			WidthPt:  rp.props.PageWidth,
			HeightPt: rp.props.PageHeight,
			Content:  rp.content.Bytes(),
			Annots:   rp.annots,
		}
	}

	out := pdfw.Document{
		Pages:  pdfPages,
		Fonts:  final.pool.faces(),
		Images: final.pool.images(),
	}

	var buf bytes.Buffer
	if err := pdfw.Write(&buf, out, log); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// paginator holds the mutable cursor state for one full pass over doc.
type paginator struct {
	pages []*renderPage
	cur   *renderPage
	cols  []column
	curCol int
	y      float64
	atTop  bool
	prevSpaceAfter float64

	fm           *faceMeasurer
	pool         *resourcePool
	footnoteNums map[string]int
	footnoteByID map[string]model.Footnote
	totalPages   int
	log          *zap.Logger
}

func newPaginator(fm *faceMeasurer, pool *resourcePool, footnoteNums map[string]int, totalPages int, log *zap.Logger) *paginator {
	return &paginator{fm: fm, pool: pool, footnoteNums: footnoteNums, totalPages: totalPages, log: log}
}

func (pg *paginator) run(doc *model.Document) {
	pg.footnoteByID = doc.Footnotes
	for s := range doc.Sections {
		sec := &doc.Sections[s]
		props := sec.Properties
		if s == 0 || props.Break != common.BreakContinuous {
			pg.finalizeCurrent()
			pg.newPage(props, true)
		} else {
			pg.cur.props = props
			pg.cols = columnsFor(props)
			pg.curCol = 0
		}
		for b := range sec.Blocks {
			pg.placeBlock(sec.Blocks, b)
		}
	}
	pg.finalizeCurrent()
}

// newPage starts a fresh page/column cursor and draws its header
// immediately — header placement never depends on body flow. isFirst
// marks the first physical page of a section (for the header/footer
// First variant); a page created only because columns ran out within
// the same section is not.
func (pg *paginator) newPage(props model.SectionProperties, isFirst bool) {
	rp := newRenderPage(props, isFirst)
	pg.cur = rp
	pg.cols = columnsFor(props)
	pg.curCol = 0
	pg.y = props.PageHeight - props.MarginTop
	pg.atTop = true
	pg.prevSpaceAfter = 0
	pg.drawHeader(rp)
}

// finalizeCurrent draws the footnote area and footer for the page in
// progress (both occupy fixed-position margin areas, so they render once
// a page is known to receive no further body content) and appends it.
func (pg *paginator) finalizeCurrent() {
	if pg.cur == nil {
		return
	}
	pg.drawFootnotes(pg.cur)
	pg.drawFooter(pg.cur)
	pg.pages = append(pg.pages, pg.cur)
}

func (pg *paginator) advance() {
	pg.curCol++
	if pg.curCol >= len(pg.cols) {
		props := pg.cur.props
		pg.finalizeCurrent()
		pg.newPage(props, false)
		return
	}
	pg.y = pg.cur.props.PageHeight - pg.cur.props.MarginTop
	pg.atTop = true
	pg.prevSpaceAfter = 0
}

func (pg *paginator) placeBlock(blocks []model.Block, i int) {
	blk := &blocks[i]
	switch blk.Kind {
	case model.BlockParagraph:
		if blk.Paragraph != nil {
			pg.placeParagraph(blocks, i)
		}
	case model.BlockTable:
		if blk.Table != nil {
			pg.placeTable(blk.Table)
		}
	}
}

func (pg *paginator) pageNum() int { return len(pg.pages) + 1 }

// placeParagraph implements §4.4 steps 1-9 for one top-level paragraph.
func (pg *paginator) placeParagraph(blocks []model.Block, i int) {
	orig := blocks[i].Paragraph
	col := pg.cols[pg.curCol]

	if (orig.PageBreakBefore || orig.ColumnBreakBefore) && !pg.atTop {
		pg.advance()
		col = pg.cols[pg.curCol]
	}

	p := substituteFields(*orig, pg.pageNum(), pg.totalPages, pg.footnoteNums)
	contentH := layout.ParagraphContentHeight(&p, col.width, pg.fm)
	interGap := pg.interGap(&p)
	keepExtra := pg.keepNextExtra(blocks, i, col)

	remaining := pg.y - interGap - contentH - keepExtra
	if remaining < pg.cur.bottomLimit() && !pg.atTop {
		pg.placeParagraphOverflow(orig, &p, col)
		return
	}

	pg.renderParagraphAt(&p, col, pg.y-interGap, true)
	pg.registerFootnotes(orig, col)
	pg.y -= interGap + contentH
	pg.prevSpaceAfter = p.SpaceAfter
	pg.atTop = false
}

// placeParagraphOverflow implements §4.4's orphan/widow split: if fewer
// than two lines would fit, or the paragraph forbids splitting
// (KeepLines), the whole paragraph moves to the next column/page;
// otherwise the fitting prefix renders here and the remainder continues
// at the top of the next column/page.
func (pg *paginator) placeParagraphOverflow(orig, p *model.Paragraph, col column) {
	if p.BlockImage != nil || p.KeepLines || len(p.Runs) == 0 {
		pg.advance()
		col = pg.cols[pg.curCol]
		pg.renderParagraphAt(p, col, pg.y, true)
		pg.registerFootnotes(orig, col)
		h := layout.ParagraphContentHeight(p, col.width, pg.fm)
		pg.y -= h
		pg.prevSpaceAfter = p.SpaceAfter
		pg.atTop = false
		return
	}

	lines := layout.BuildLines(p, col.width, pg.fm)
	natural := layout.NaturalLineHeight(p, pg.fm)
	lineH := layout.ParagraphLineHeight(p, natural)

	available := pg.y - pg.interGap(p) - pg.cur.bottomLimit()
	fit := int(available / lineH)
	if fit > len(lines)-2 {
		fit = len(lines) - 2
	}
	if fit < 2 {
		pg.advance()
		col = pg.cols[pg.curCol]
		pg.renderParagraphAt(p, col, pg.y, true)
		pg.registerFootnotes(orig, col)
		h := layout.ParagraphContentHeight(p, col.width, pg.fm)
		pg.y -= h
		pg.prevSpaceAfter = p.SpaceAfter
		pg.atTop = false
		return
	}

	top := pg.y - pg.interGap(p)
	pg.drawDecorationsFor(p, col, top, float64(fit)*lineH)
	x := col.x + p.IndentLeft
	w := col.width - p.IndentLeft - p.IndentRight
	drawLines(pg.cur, pg.pool, pg.fm, lines[:fit], x, w, top, lineH, p.Alignment)

	pg.advance()
	col = pg.cols[pg.curCol]
	rest := lines[fit:]
	restTop := pg.y
	bottom := drawLines(pg.cur, pg.pool, pg.fm, rest, col.x+p.IndentLeft, col.width-p.IndentLeft-p.IndentRight, restTop, lineH, p.Alignment)
	pg.y = bottom
	pg.registerFootnotes(orig, col)
	pg.prevSpaceAfter = p.SpaceAfter
	pg.atTop = false
}

// renderParagraphAt draws one paragraph's shading/borders/label/lines (or
// image) with its top edge at top, without any overflow test — callers
// already decided this paragraph belongs on the current page.
func (pg *paginator) renderParagraphAt(p *model.Paragraph, col column, top float64, drawDecor bool) {
	h := layout.ParagraphContentHeight(p, col.width, pg.fm)
	if drawDecor {
		pg.drawDecorationsFor(p, col, top, h)
	}

	if p.BlockImage != nil {
		name, ok := pg.pool.imageName(*p.BlockImage)
		x := col.x + (col.width-p.BlockImage.DisplayWidth)/2
		y := top - p.BlockImage.DisplayHeight
		if ok {
			pg.cur.content.DrawImage(name, x, y, p.BlockImage.DisplayWidth, p.BlockImage.DisplayHeight)
		} else {
			drawPlaceholder(pg.cur.content, x, y, p.BlockImage.DisplayWidth, p.BlockImage.DisplayHeight)
		}
		return
	}
	if p.IsVisuallyEmpty() {
		return
	}

	natural := layout.NaturalLineHeight(p, pg.fm)
	lineH := layout.ParagraphLineHeight(p, natural)
	lines := layout.BuildLines(p, col.width, pg.fm)
	x := col.x + p.IndentLeft
	w := col.width - p.IndentLeft - p.IndentRight
	drawLines(pg.cur, pg.pool, pg.fm, lines, x, w, top, lineH, p.Alignment)
}

func (pg *paginator) drawDecorationsFor(p *model.Paragraph, col column, top, h float64) {
	bottom := top - h
	x := col.x
	w := col.width
	if !p.Shading.Transparent {
		drawShading(pg.cur.content, p.Shading, x, bottom, w, h)
	}
	drawBorders(pg.cur.content, p.BordersBox, x, bottom, w, h)
}

// interGap implements §4.4's space-collapse rule: 0 at the top of a
// page/column; 0 when the current paragraph has ContextualSpacing set
// (the previous paragraph's ContextualSpacing is not consulted);
// otherwise the larger of the current paragraph's SpaceBefore and the
// previous paragraph's SpaceAfter.
func (pg *paginator) interGap(p *model.Paragraph) float64 {
	if pg.atTop {
		return 0
	}
	if p.ContextualSpacing {
		return 0
	}
	if pg.prevSpaceAfter > p.SpaceBefore {
		return pg.prevSpaceAfter
	}
	return p.SpaceBefore
}

// keepNextExtra approximates §4.4 step 5: the cumulative height of a
// KeepNext run of paragraphs, using the full height of every keep-linked
// paragraph plus two line heights (its first line and one more) of the
// final (non-KeepNext) paragraph in the chain.
func (pg *paginator) keepNextExtra(blocks []model.Block, i int, col column) float64 {
	blk := &blocks[i]
	if blk.Kind != model.BlockParagraph || blk.Paragraph == nil || !blk.Paragraph.KeepNext {
		return 0
	}
	var extra float64
	j := i + 1
	for j < len(blocks) {
		b := &blocks[j]
		if b.Kind != model.BlockParagraph || b.Paragraph == nil {
			break
		}
		if b.Paragraph.KeepNext {
			extra += layout.ParagraphContentHeight(b.Paragraph, col.width, pg.fm)
			j++
			continue
		}
		lineH := layout.ParagraphLineHeight(b.Paragraph, layout.NaturalLineHeight(b.Paragraph, pg.fm))
		extra += 2 * lineH
		break
	}
	return extra
}

// registerFootnotes scans orig's runs (not the field-substituted copy —
// footnote ids are not field-substituted) for footnote-reference marks
// and reserves their body height on the current page.
func (pg *paginator) registerFootnotes(orig *model.Paragraph, col column) {
	for i := range orig.Runs {
		id := orig.Runs[i].FootnoteID
		if id == "" || orig.Runs[i].IsFootnoteBackref {
			continue
		}
		fn, ok := pg.footnoteByID[id]
		if !ok {
			continue
		}
		var h float64
		for p := range fn.Paragraphs {
			h += layout.ParagraphContentHeight(&fn.Paragraphs[p], col.width, pg.fm)
		}
		pg.cur.addFootnoteRef(id, h)
	}
}

// drawFootnotes renders rp's accumulated footnote bodies, separator rule
// first, directly above the footer margin (§4.4 Footnote rendering).
func (pg *paginator) drawFootnotes(rp *renderPage) {
	if len(rp.footnoteIDs) == 0 {
		return
	}
	col := column{x: rp.props.MarginLeft, width: rp.props.TextWidth()}
	y := rp.props.MarginBottom + rp.footnoteUsed
	drawFootnoteSeparator(rp.content, col.x, col.width, y)
	y -= 12
	for _, id := range rp.footnoteIDs {
		fn, ok := pg.footnoteByID[id]
		if !ok {
			continue
		}
		num := pg.footnoteNums[id]
		for pIdx := range fn.Paragraphs {
			body := fn.Paragraphs[pIdx]
			if pIdx == 0 && num > 0 {
				mark := model.Run{Text: strconv.Itoa(num) + ". ", FontFamily: "Helvetica", FontSizePt: 10}
				body.Runs = append([]model.Run{mark}, body.Runs...)
			}
			h := layout.ParagraphContentHeight(&body, col.width, pg.fm)
			pg.renderParagraphAt(&body, col, y, false)
			y -= h
		}
	}
}

// placeTable implements §4.3/§4.4 table placement: rows are kept whole
// (no mid-row split — a row taller than a full page renders anyway
// rather than looping forever) and a row that would overflow the
// current column/page moves the whole row to the next one.
func (pg *paginator) placeTable(t *model.Table) {
	colWidths := layout.AutoFitColumns(t, pg.fm)
	col := pg.cols[pg.curCol]
	left := col.x + t.Indent

	for r := range t.Rows {
		row := &t.Rows[r]
		rh := layout.RowHeight(row, colWidths, t.CellMargin, pg.fm)
		if pg.y-rh < pg.cur.bottomLimit() && !pg.atTop {
			pg.advance()
			col = pg.cols[pg.curCol]
			left = col.x + t.Indent
		}
		pg.drawRow(row, colWidths, t.CellMargin, left, pg.y, rh)
		pg.y -= rh
		pg.atTop = false
	}
	pg.prevSpaceAfter = 0
}

func (pg *paginator) drawRow(row *model.TableRow, colWidths []float64, margin model.CellMargin, left, top, rowH float64) {
	colX := left
	col := 0
	for ci := range row.Cells {
		cell := &row.Cells[ci]
		span := cell.GridSpan
		if span < 1 {
			span = 1
		}
		w := 0.0
		for k := col; k < col+span && k < len(colWidths); k++ {
			w += colWidths[k]
		}
		if cell.VMerge != common.VMergeContinue {
			bottom := top - rowH
			if !cell.Shading.Transparent {
				drawShading(pg.cur.content, cell.Shading, colX, bottom, w, rowH)
			}
			drawBorders(pg.cur.content, cell.BordersBox, colX, bottom, w, rowH)

			contentW := w - margin.Left - margin.Right
			contentH := layout.CellContentHeight(cell, contentW, pg.fm)
			ascent := pg.firstLineAscent(cell)
			baseline := layout.CellFirstBaselineY(cell.VAlign, top, margin.Top, margin.Bottom, rowH, contentH, ascent)
			y := baseline + ascent
			cx := colX + margin.Left
			for pIdx := range cell.Paragraphs {
				orig := &cell.Paragraphs[pIdx]
				p := substituteFields(*orig, pg.pageNum(), pg.totalPages, pg.footnoteNums)
				ph := layout.ParagraphContentHeight(&p, contentW, pg.fm)
				pg.renderParagraphAt(&p, column{x: cx, width: contentW}, y, true)
				pg.registerFootnotes(orig, column{x: cx, width: contentW})
				y -= ph
			}
		}
		colX += w
		col += span
	}
}

func (pg *paginator) firstLineAscent(cell *model.TableCell) float64 {
	for i := range cell.Paragraphs {
		for j := range cell.Paragraphs[i].Runs {
			r := &cell.Paragraphs[i].Runs[j]
			if r.Text == "" && r.InlineImage == nil {
				continue
			}
			return pg.fm.AscentPt(r.FontFamily, r.Bold, r.Italic, r.FontSizePt)
		}
	}
	return pg.fm.AscentPt("Helvetica", false, false, 12)
}

func (pg *paginator) drawHeader(rp *renderPage) {
	hf := pg.headerFooterFor(rp.props.Header, rp.isFirstPage, rp.props.DifferentFirstPage)
	if hf == nil {
		return
	}
	col := column{x: rp.props.MarginLeft, width: rp.props.TextWidth()}
	top := rp.props.PageHeight - rp.props.HeaderMargin
	pg.renderHeaderFooterBody(rp, hf, col, top)
}

func (pg *paginator) drawFooter(rp *renderPage) {
	hf := pg.headerFooterFor(rp.props.Footer, rp.isFirstPage, rp.props.DifferentFirstPage)
	if hf == nil {
		return
	}
	col := column{x: rp.props.MarginLeft, width: rp.props.TextWidth()}
	top := rp.props.FooterMargin
	pg.renderHeaderFooterBody(rp, hf, col, top)
}

func (pg *paginator) headerFooterFor(set model.HeaderFooterSet, isFirst, differentFirst bool) *model.HeaderFooter {
	if isFirst && differentFirst && set.First != nil {
		return set.First
	}
	return set.Default
}

func (pg *paginator) renderHeaderFooterBody(rp *renderPage, hf *model.HeaderFooter, col column, top float64) {
	saved := pg.cur
	pg.cur = rp
	y := top
	for i := range hf.Paragraphs {
		p := substituteFields(hf.Paragraphs[i], len(pg.pages)+1, pg.totalPages, pg.footnoteNums)
		h := layout.ParagraphContentHeight(&p, col.width, pg.fm)
		pg.renderParagraphAt(&p, col, y, true)
		y -= h
	}
	pg.cur = saved
}
