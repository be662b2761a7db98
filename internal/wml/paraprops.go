package wml

import (
	"github.com/beevik/etree"

	"docxpdf/internal/common"
	"docxpdf/internal/model"
)

// rawParaProps is everything parseParaProps can read straight off one
// paragraph's <w:pPr>, split between the cascading ParaProps and the
// instance-only fields the spec never lists as inheritable (§4.1).
type rawParaProps struct {
	Props ParaProps

	ParaStyleID string
	NumID       int
	ILvl        int
	HasNumPr    bool

	PageBreakBefore   bool
	ColumnBreakBefore bool
	TabStops          []model.TabStop

	RunMarkProps RunProps // the pPr/rPr "paragraph mark" run properties
}

func parseParaProps(pPr *etree.Element, th Theme) rawParaProps {
	var out rawParaProps
	if pPr == nil {
		return out
	}
	if styleEl := pPr.SelectElement("pStyle"); styleEl != nil {
		out.ParaStyleID, _ = attrStr(styleEl, "val")
	}
	if numPr := pPr.SelectElement("numPr"); numPr != nil {
		if ilvlEl := numPr.SelectElement("ilvl"); ilvlEl != nil {
			if v, ok := attrInt(ilvlEl, "val"); ok {
				out.ILvl = v
			}
		}
		if numIDEl := numPr.SelectElement("numId"); numIDEl != nil {
			if v, ok := attrInt(numIDEl, "val"); ok && v != 0 {
				out.NumID = v
				out.HasNumPr = true
			}
		}
	}
	if jc := pPr.SelectElement("jc"); jc != nil {
		v, _ := attrStr(jc, "val")
		out.Props.Alignment = ptrAlign(parseAlignment(v))
	}
	if spacing := pPr.SelectElement("spacing"); spacing != nil {
		if v, ok := attrInt(spacing, "before"); ok {
			out.Props.SpaceBeforeTwips = ptrInt(v)
		}
		if v, ok := attrInt(spacing, "after"); ok {
			out.Props.SpaceAfterTwips = ptrInt(v)
		}
		parseLineSpacing(spacing, &out.Props)
	}
	if el := pPr.SelectElement("contextualSpacing"); el != nil {
		out.Props.ContextualSpacing = onOff(el)
	}
	if el := pPr.SelectElement("keepNext"); el != nil {
		out.Props.KeepNext = onOff(el)
	}
	if el := pPr.SelectElement("keepLines"); el != nil {
		out.Props.KeepLines = onOff(el)
	}
	if ind := pPr.SelectElement("ind"); ind != nil {
		if v, ok := attrInt(ind, "left"); ok {
			out.Props.IndentLeftTwips = ptrInt(v)
		}
		if v, ok := attrInt(ind, "right"); ok {
			out.Props.IndentRightTwips = ptrInt(v)
		}
		if v, ok := attrInt(ind, "hanging"); ok {
			out.Props.IndentHangTwips = ptrInt(v)
		}
		if v, ok := attrInt(ind, "firstLine"); ok {
			out.Props.IndentFirstTwips = ptrInt(v)
		}
	}
	if pBdr := pPr.SelectElement("pBdr"); pBdr != nil {
		borders := parseBorders(pBdr)
		out.Props.Borders = &borders
	}
	if shd := pPr.SelectElement("shd"); shd != nil {
		shading := parseShading(shd)
		out.Props.Shading = &shading
	}
	if el := pPr.SelectElement("pageBreakBefore"); el != nil {
		out.PageBreakBefore = *onOff(el)
	}
	if tabsEl := pPr.SelectElement("tabs"); tabsEl != nil {
		out.TabStops = parseTabStops(tabsEl)
	}
	if rPr := pPr.SelectElement("rPr"); rPr != nil {
		out.RunMarkProps = parseRunProps(rPr, th)
	}
	return out
}

func parseAlignment(v string) common.Alignment {
	switch v {
	case "center":
		return common.AlignCenter
	case "right", "end":
		return common.AlignRight
	case "both", "distribute":
		return common.AlignJustify
	default:
		return common.AlignLeft
	}
}

func parseLineSpacing(spacing *etree.Element, out *ParaProps) {
	lineVal, hasLine := attrInt(spacing, "line")
	if !hasLine {
		return
	}
	rule, _ := attrStr(spacing, "lineRule")
	switch rule {
	case "exact":
		out.LineSpacingExactPt = ptrFloat(common.TwipsToPoints(lineVal))
	case "atLeast":
		out.LineSpacingAtLeastPt = ptrFloat(common.TwipsToPoints(lineVal))
	default: // "auto" or absent: line is in 240ths of a line
		out.LineSpacingAutoMult = ptrFloat(float64(lineVal) / 240.0)
	}
}

func parseBorders(pBdr *etree.Element) model.Borders {
	return model.Borders{
		Top:     parseBorderSide(pBdr.SelectElement("top")),
		Bottom:  parseBorderSide(pBdr.SelectElement("bottom")),
		Left:    parseBorderSide(pBdr.SelectElement("left")),
		Right:   parseBorderSide(pBdr.SelectElement("right")),
		Between: parseBorderSide(pBdr.SelectElement("between")),
	}
}

func parseBorderSide(el *etree.Element) model.BorderSide {
	if el == nil {
		return model.BorderSide{}
	}
	valType, _ := attrStr(el, "val")
	if valType == "" || valType == "none" || valType == "nil" {
		return model.BorderSide{}
	}
	szEighths, _ := attrInt(el, "sz")
	rgbStr, _ := attrStr(el, "color")
	rgb, auto := hexColor(rgbStr)
	if auto {
		rgb = 0 // "auto" border color defaults to black
	}
	return model.BorderSide{
		Present: true,
		WidthPt: float64(szEighths) / 8.0,
		ColorRGB: rgb,
	}
}

func parseShading(shd *etree.Element) model.Shading {
	fill, _ := attrStr(shd, "fill")
	rgb, auto := hexColor(fill)
	return model.Shading{Transparent: auto, ColorRGB: rgb}
}

func parseTabStops(tabsEl *etree.Element) []model.TabStop {
	var out []model.TabStop
	for _, tabEl := range tabsEl.ChildElements() {
		if tabEl.Tag != "tab" {
			continue
		}
		posTwips, ok := attrInt(tabEl, "pos")
		if !ok {
			continue
		}
		val, _ := attrStr(tabEl, "val")
		if val == "clear" {
			continue
		}
		align := common.TabLeft
		switch val {
		case "center":
			align = common.TabCenter
		case "right", "end":
			align = common.TabRight
		case "decimal":
			align = common.TabDecimal
		}
		leaderStr, _ := attrStr(tabEl, "leader")
		var leader rune
		switch leaderStr {
		case "dot":
			leader = '.'
		case "hyphen":
			leader = '-'
		case "underscore":
			leader = '_'
		}
		out = append(out, model.TabStop{
			Position: common.TwipsToPoints(posTwips),
			Align:    align,
			Leader:   leader,
		})
	}
	return out
}
