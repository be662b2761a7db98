package wml

import (
	"github.com/beevik/etree"
	"go.uber.org/zap"

	"docxpdf/internal/common"
	"docxpdf/internal/model"
)

const defaultPageWidthPt = 612.0  // US Letter
const defaultPageHeightPt = 792.0
const defaultMarginPt = 72.0

// parseSectionProperties reads one <w:sectPr> into model.SectionProperties,
// falling back to US Letter / 1in margins for anything absent.
func (dp *docParser) parseSectionProperties(sectPr *etree.Element) model.SectionProperties {
	sp := model.SectionProperties{
		PageWidth:    defaultPageWidthPt,
		PageHeight:   defaultPageHeightPt,
		MarginTop:    defaultMarginPt,
		MarginBottom: defaultMarginPt,
		MarginLeft:   defaultMarginPt,
		MarginRight:  defaultMarginPt,
		HeaderMargin: 36,
		FooterMargin: 36,
	}
	if sectPr == nil {
		return sp
	}

	if pgSz := sectPr.SelectElement("pgSz"); pgSz != nil {
		if w, ok := attrInt(pgSz, "w"); ok {
			sp.PageWidth = common.TwipsToPoints(w)
		}
		if h, ok := attrInt(pgSz, "h"); ok {
			sp.PageHeight = common.TwipsToPoints(h)
		}
	}
	if pgMar := sectPr.SelectElement("pgMar"); pgMar != nil {
		if v, ok := attrInt(pgMar, "top"); ok {
			sp.MarginTop = common.TwipsToPoints(v)
		}
		if v, ok := attrInt(pgMar, "bottom"); ok {
			sp.MarginBottom = common.TwipsToPoints(v)
		}
		if v, ok := attrInt(pgMar, "left"); ok {
			sp.MarginLeft = common.TwipsToPoints(v)
		}
		if v, ok := attrInt(pgMar, "right"); ok {
			sp.MarginRight = common.TwipsToPoints(v)
		}
		if v, ok := attrInt(pgMar, "header"); ok {
			sp.HeaderMargin = common.TwipsToPoints(v)
		}
		if v, ok := attrInt(pgMar, "footer"); ok {
			sp.FooterMargin = common.TwipsToPoints(v)
		}
	}
	if titlePg := sectPr.SelectElement("titlePg"); titlePg != nil {
		sp.DifferentFirstPage = true
	}
	if docGrid := sectPr.SelectElement("docGrid"); docGrid != nil {
		if v, ok := attrInt(docGrid, "linePitch"); ok {
			sp.LinePitch = common.TwipsToPoints(v)
		}
	}
	if typeEl := sectPr.SelectElement("type"); typeEl != nil {
		v, _ := attrStr(typeEl, "val")
		switch v {
		case "continuous":
			sp.Break = common.BreakContinuous
		case "oddPage":
			sp.Break = common.BreakOddPage
		case "evenPage":
			sp.Break = common.BreakEvenPage
		default:
			sp.Break = common.BreakNextPage
		}
	} else {
		sp.Break = common.BreakNextPage
	}

	if cols := sectPr.SelectElement("cols"); cols != nil {
		sp.Columns = dp.parseColumns(cols, sp.TextWidth())
	}

	sp.Header = dp.resolveHeaderFooterSet(sectPr, "headerReference")
	sp.Footer = dp.resolveHeaderFooterSet(sectPr, "footerReference")

	return sp
}

// parseColumns reads a <w:cols> record. An explicit per-column list (<w:col>
// children) is read verbatim; the common `num`+`space` equal-width form is
// expanded and normalized so total width matches the text width (§3
// invariant: "sum of declared column widths + gaps <= page text width").
func (dp *docParser) parseColumns(cols *etree.Element, textWidth float64) *model.ColumnsConfig {
	sep := false
	if v, _ := attrStr(cols, "sep"); v == "1" || v == "true" {
		sep = true
	}

	if colEls := cols.SelectElements("col"); len(colEls) > 0 {
		cfg := &model.ColumnsConfig{Sep: sep}
		for _, c := range colEls {
			var spec model.ColumnSpec
			if w, ok := attrInt(c, "w"); ok {
				spec.Width = common.TwipsToPoints(w)
			}
			if s, ok := attrInt(c, "space"); ok {
				spec.SpaceAfter = common.TwipsToPoints(s)
			}
			cfg.Columns = append(cfg.Columns, spec)
		}
		return cfg
	}

	num, ok := attrInt(cols, "num")
	if !ok || num <= 1 {
		return nil
	}
	spaceTwips, _ := attrInt(cols, "space")
	space := common.TwipsToPoints(spaceTwips)
	if space == 0 {
		space = 36
	}
	totalGap := space * float64(num-1)
	colWidth := (textWidth - totalGap) / float64(num)

	cfg := &model.ColumnsConfig{Sep: sep}
	for i := 0; i < num; i++ {
		spec := model.ColumnSpec{Width: colWidth}
		if i < num-1 {
			spec.SpaceAfter = space
		}
		cfg.Columns = append(cfg.Columns, spec)
	}
	return cfg
}

func (dp *docParser) resolveHeaderFooterSet(sectPr *etree.Element, refTag string) model.HeaderFooterSet {
	var set model.HeaderFooterSet
	for _, ref := range sectPr.SelectElements(refTag) {
		typ, _ := attrStr(ref, "type")
		relID := ref.SelectAttrValue("id", "")
		if relID == "" {
			continue
		}
		target, ok := dp.rels[relID]
		if !ok {
			continue
		}
		data, found, err := dp.container.ReadPart(target)
		if err != nil || !found {
			continue
		}
		hf := dp.parseHeaderFooterPart(data, target)
		switch typ {
		case "first":
			set.First = hf
		default: // "default" and "even" both map onto the steady-state variant
			set.Default = hf
		}
	}
	return set
}

func (dp *docParser) parseHeaderFooterPart(data []byte, partPath string) *model.HeaderFooter {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		if dp.log != nil {
			dp.log.Warn("Malformed header/footer part, ignoring", zap.Error(err))
		}
		return nil
	}
	root := doc.Root()
	if root == nil {
		return nil
	}

	prevRels := dp.rels
	if partRels, ok := dp.readPartRels(partPath); ok {
		dp.rels = partRels
	}
	defer func() { dp.rels = prevRels }()

	hf := &model.HeaderFooter{}
	for _, pEl := range root.SelectElements("p") {
		hf.Paragraphs = append(hf.Paragraphs, dp.parseParagraph(pEl))
	}
	return hf
}
