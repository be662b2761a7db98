package layout

import (
	"math"

	"docxpdf/internal/common"
	"docxpdf/internal/model"
)

// ParagraphLineHeight computes a single paragraph's natural per-line
// height from its LineSpacing record (§4.4 step 4): Auto multiplies the
// natural text line height, Exact is literal, AtLeast floors at the
// natural height.
func ParagraphLineHeight(p *model.Paragraph, natural float64) float64 {
	switch p.LineSpacing.Kind {
	case common.LineSpacingExact:
		return p.LineSpacing.Value
	case common.LineSpacingAtLeast:
		return math.Max(natural, p.LineSpacing.Value)
	default:
		return natural * p.LineSpacing.Value
	}
}

// ParagraphContentHeight computes one paragraph's laid-out height within
// width, matching §4.4 step 4's per-paragraph cases.
func ParagraphContentHeight(p *model.Paragraph, width float64, m Measurer) float64 {
	natural := naturalLineHeight(p, m)
	lineH := ParagraphLineHeight(p, natural)

	if p.BlockImage != nil {
		h := p.BlockImage.DisplayHeight
		if h < lineH {
			h = lineH
		}
		return h + borderPad(p.BordersBox.Top) + borderPad(p.BordersBox.Bottom)
	}
	if p.IsVisuallyEmpty() {
		return lineH + borderPad(p.BordersBox.Top) + borderPad(p.BordersBox.Bottom)
	}

	lines := BuildLines(p, width, m)
	n := len(lines)
	if n < 1+p.ExtraLineBreaks {
		n = 1 + p.ExtraLineBreaks
	}
	return float64(n)*lineH + borderPad(p.BordersBox.Top) + borderPad(p.BordersBox.Bottom)
}

// BuildLines lays out a paragraph's runs into wrapped or tab-resolved
// lines (§4.4 step 4), shared by ParagraphContentHeight and the renderer
// so both see identical line breaks.
func BuildLines(p *model.Paragraph, width float64, m Measurer) []Line {
	if hasTab(p.Runs) {
		return []Line{ResolveTabs(p.Runs, p.TabStops, m)}
	}
	hanging := p.IndentHanging
	if p.ListLabel == "" && p.IndentFirstLine < 0 {
		hanging = -p.IndentFirstLine
	}
	return BreakLines(p.Runs, width-p.IndentLeft-p.IndentRight, hanging, m)
}

// NaturalLineHeight is the tallest natural (un-spaced) line height any
// run in p would produce, used as the Auto/AtLeast line-spacing base.
func NaturalLineHeight(p *model.Paragraph, m Measurer) float64 {
	return naturalLineHeight(p, m)
}

func naturalLineHeight(p *model.Paragraph, m Measurer) float64 {
	h := 0.0
	for _, r := range p.Runs {
		size, _ := effectiveSize(r.FontSizePt, r.VerticalAlign)
		if lh := m.LineHeightPt(r.FontFamily, r.Bold, r.Italic, size); lh > h {
			h = lh
		}
	}
	if h == 0 {
		h = m.LineHeightPt("Helvetica", false, false, 12)
	}
	return h
}

func hasTab(runs []model.Run) bool {
	for _, r := range runs {
		if r.IsTab {
			return true
		}
	}
	return false
}

func borderPad(b model.BorderSide) float64 {
	if !b.Present {
		return 0
	}
	return b.WidthPt
}

// CellContentHeight sums a cell's paragraph heights (§4.3 Row-height
// computation), not including the cell's own top/bottom margins — callers
// add those once per cell via RowHeight.
func CellContentHeight(cell *model.TableCell, width float64, m Measurer) float64 {
	var h float64
	for i := range cell.Paragraphs {
		h += ParagraphContentHeight(&cell.Paragraphs[i], width, m)
	}
	return h
}

// RowHeight implements §4.3 Row-height computation across every
// non-continuation cell (a vMerge="continue" cell contributes no
// standalone content height — it visually extends the row above).
func RowHeight(row *model.TableRow, colWidths []float64, cellMargin model.CellMargin, m Measurer) float64 {
	var maxContent float64
	col := 0
	for i := range row.Cells {
		cell := &row.Cells[i]
		span := cell.GridSpan
		if span < 1 {
			span = 1
		}
		if cell.VMerge != common.VMergeContinue {
			w := spanWidth(colWidths, col, span) - cellMargin.Left - cellMargin.Right
			content := CellContentHeight(cell, w, m) + cellMargin.Top + cellMargin.Bottom
			if content > maxContent {
				maxContent = content
			}
		}
		col += span
	}

	height := maxContent + 0.5 // paragraph-mark allowance
	switch row.HeightKind {
	case model.RowHeightExact:
		height = row.Height
	case model.RowHeightAtLeast:
		height = math.Max(height, row.Height)
	}
	return height
}

func spanWidth(colWidths []float64, col, span int) float64 {
	var w float64
	for i := col; i < col+span && i < len(colWidths); i++ {
		w += colWidths[i]
	}
	return w
}

// CellFirstBaselineY implements §4.3 Vertical alignment inside a cell.
// rowTop is the cell's top edge y; ascentPt is size·ascender for the
// cell's first line.
func CellFirstBaselineY(valign common.CellVAlign, rowTop, marginTop, marginBottom, rowHeight, contentHeight, ascentPt float64) float64 {
	switch valign {
	case common.VAlignCenter:
		offset := math.Max(0, (rowHeight-marginTop-marginBottom-contentHeight)/2)
		return rowTop - marginTop - offset - ascentPt
	case common.VAlignBottom:
		offset := math.Max(0, rowHeight-marginTop-marginBottom-contentHeight)
		return rowTop - marginTop - offset - ascentPt
	default:
		return rowTop - marginTop - ascentPt
	}
}
