package wml

import (
	"github.com/beevik/etree"

	"docxpdf/internal/common"
	"docxpdf/internal/model"
)

// parseTable builds a model.Table from a <w:tbl> element, tracking the
// running grid-column cursor per row (advanced by gridSpan) and resolving
// each cell's border edges against the table-level border record with
// edge-vs-inside fallback (§4.1 "Table parsing").
func (dp *docParser) parseTable(tblEl *etree.Element) model.Table {
	t := model.Table{}

	if grid := tblEl.SelectElement("tblGrid"); grid != nil {
		for _, col := range grid.ChildElements() {
			if col.Tag != "gridCol" {
				continue
			}
			if w, ok := attrInt(col, "w"); ok {
				t.ColumnWidths = append(t.ColumnWidths, common.TwipsToPoints(w))
			}
		}
	}

	var tableBorders model.Borders
	var tableShading model.Shading
	if tblPr := tblEl.SelectElement("tblPr"); tblPr != nil {
		if ind := tblPr.SelectElement("tblInd"); ind != nil {
			if w, ok := attrInt(ind, "w"); ok {
				t.Indent = common.TwipsToPoints(w)
			}
		}
		if bdr := tblPr.SelectElement("tblBorders"); bdr != nil {
			tableBorders = parseTableBorders(bdr)
		}
		if shd := tblPr.SelectElement("shd"); shd != nil {
			tableShading = parseShading(shd)
		}
		if cellMar := tblPr.SelectElement("tblCellMar"); cellMar != nil {
			t.CellMargin = parseCellMargin(cellMar)
		}
	}

	rowEls := tblEl.SelectElements("tr")
	for rowIdx, rowEl := range rowEls {
		row := model.TableRow{HeightKind: model.RowHeightAuto}
		if trPr := rowEl.SelectElement("trPr"); trPr != nil {
			if h := trPr.SelectElement("trHeight"); h != nil {
				if v, ok := attrInt(h, "val"); ok {
					row.Height = common.TwipsToPoints(v)
					rule, _ := attrStr(h, "hRule")
					if rule == "exact" {
						row.HeightKind = model.RowHeightExact
					} else {
						row.HeightKind = model.RowHeightAtLeast
					}
				}
			}
		}

		gridCol := 0
		for _, cellEl := range rowEl.SelectElements("tc") {
			cell := dp.parseCell(cellEl, tableBorders, tableShading, rowIdx == 0, rowIdx == len(rowEls)-1, gridCol == 0)
			gridCol += cell.GridSpan
			row.Cells = append(row.Cells, cell)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func (dp *docParser) parseCell(tcEl *etree.Element, tableBorders model.Borders, tableShading model.Shading, isTopRow, isBottomRow, isLeftCol bool) model.TableCell {
	cell := model.TableCell{GridSpan: 1, VAlign: common.VAlignTop}

	if tcPr := tcEl.SelectElement("tcPr"); tcPr != nil {
		if w := tcPr.SelectElement("tcW"); w != nil {
			if v, ok := attrInt(w, "w"); ok {
				cell.Width = common.TwipsToPoints(v)
			}
		}
		if span := tcPr.SelectElement("gridSpan"); span != nil {
			if v, ok := attrInt(span, "val"); ok && v > 0 {
				cell.GridSpan = v
			}
		}
		if vm := tcPr.SelectElement("vMerge"); vm != nil {
			v, hasVal := attrStr(vm, "val")
			if hasVal && v == "restart" {
				cell.VMerge = common.VMergeRestart
			} else {
				cell.VMerge = common.VMergeContinue
			}
		}
		if va := tcPr.SelectElement("vAlign"); va != nil {
			v, _ := attrStr(va, "val")
			switch v {
			case "center":
				cell.VAlign = common.VAlignCenter
			case "bottom":
				cell.VAlign = common.VAlignBottom
			default:
				cell.VAlign = common.VAlignTop
			}
		}
		if shd := tcPr.SelectElement("shd"); shd != nil {
			cell.Shading = parseShading(shd)
		} else {
			cell.Shading = tableShading
		}
		if bdr := tcPr.SelectElement("tcBorders"); bdr != nil {
			cell.BordersBox = resolveCellBorders(bdr, tableBorders, isTopRow, isBottomRow, isLeftCol)
		} else {
			cell.BordersBox = fallbackCellBorders(tableBorders, isTopRow, isBottomRow, isLeftCol)
		}
	} else {
		cell.BordersBox = fallbackCellBorders(tableBorders, isTopRow, isBottomRow, isLeftCol)
		cell.Shading = tableShading
	}

	for _, pEl := range tcEl.SelectElements("p") {
		cell.Paragraphs = append(cell.Paragraphs, dp.parseParagraph(pEl))
	}
	return cell
}

// fallbackCellBorders applies the table's border record with edge-vs-inside
// resolution described in §4.1: a cell at row 0 uses "top", elsewhere
// "insideH"; analogously bottom, and left/right fall back to start/end.
func fallbackCellBorders(t model.Borders, isTopRow, isBottomRow, isLeftCol bool) model.Borders {
	top := t.Between
	if isTopRow {
		top = t.Top
	}
	bottom := t.Between
	if isBottomRow {
		bottom = t.Bottom
	}
	return model.Borders{
		Top:    top,
		Bottom: bottom,
		Left:   t.Left,
		Right:  t.Right,
	}
}

func resolveCellBorders(tcBdr *etree.Element, tableBorders model.Borders, isTopRow, isBottomRow, isLeftCol bool) model.Borders {
	fallback := fallbackCellBorders(tableBorders, isTopRow, isBottomRow, isLeftCol)
	result := fallback
	if el := tcBdr.SelectElement("top"); el != nil {
		result.Top = parseBorderSide(el)
	}
	if el := tcBdr.SelectElement("bottom"); el != nil {
		result.Bottom = parseBorderSide(el)
	}
	if el := tcBdr.SelectElement("left"); el != nil {
		result.Left = parseBorderSide(el)
	} else if el := tcBdr.SelectElement("start"); el != nil {
		result.Left = parseBorderSide(el)
	}
	if el := tcBdr.SelectElement("right"); el != nil {
		result.Right = parseBorderSide(el)
	} else if el := tcBdr.SelectElement("end"); el != nil {
		result.Right = parseBorderSide(el)
	}
	return result
}

func parseTableBorders(bdr *etree.Element) model.Borders {
	t := model.Borders{
		Top:     parseBorderSide(bdr.SelectElement("top")),
		Bottom:  parseBorderSide(bdr.SelectElement("bottom")),
		Between: parseBorderSide(bdr.SelectElement("insideH")),
	}
	if el := bdr.SelectElement("left"); el != nil {
		t.Left = parseBorderSide(el)
	} else {
		t.Left = parseBorderSide(bdr.SelectElement("start"))
	}
	if el := bdr.SelectElement("right"); el != nil {
		t.Right = parseBorderSide(el)
	} else {
		t.Right = parseBorderSide(bdr.SelectElement("end"))
	}
	return t
}

func parseCellMargin(cellMar *etree.Element) model.CellMargin {
	read := func(tag string) float64 {
		el := cellMar.SelectElement(tag)
		if el == nil {
			return 0
		}
		v, ok := attrInt(el, "w")
		if !ok {
			return 0
		}
		return common.TwipsToPoints(v)
	}
	return model.CellMargin{
		Top:    read("top"),
		Left:   read("left"),
		Bottom: read("bottom"),
		Right:  read("right"),
	}
}
