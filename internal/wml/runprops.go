package wml

import (
	"github.com/beevik/etree"

	"docxpdf/internal/common"
)

// parseRunProps reads one <w:rPr> (or <w:pPr><w:rPr> paragraph-mark props)
// element into a RunProps. Every field stays nil unless the element is
// actually present, preserving the Option<T> cascade semantics.
func parseRunProps(rPr *etree.Element, th Theme) RunProps {
	var rp RunProps
	if rPr == nil {
		return rp
	}
	if fonts := rPr.SelectElement("rFonts"); fonts != nil {
		ascii, _ := attrStr(fonts, "ascii")
		asciiTheme, _ := attrStr(fonts, "asciiTheme")
		if family := th.Resolve(ascii, asciiTheme); family != "" {
			rp.FontFamily = ptrStr(family)
		}
	}
	if sz := rPr.SelectElement("sz"); sz != nil {
		if v, ok := attrInt(sz, "val"); ok {
			rp.FontSizeHalfPt = ptrInt(v)
		}
	}
	if el := rPr.SelectElement("b"); el != nil {
		rp.Bold = onOff(el)
	}
	if el := rPr.SelectElement("i"); el != nil {
		rp.Italic = onOff(el)
	}
	if el := rPr.SelectElement("u"); el != nil {
		v, _ := attrStr(el, "val")
		rp.Underline = ptrBool(v != "" && v != "none")
	}
	if el := rPr.SelectElement("strike"); el != nil {
		rp.Strike = onOff(el)
	}
	if el := rPr.SelectElement("caps"); el != nil {
		rp.Caps = onOff(el)
	}
	if el := rPr.SelectElement("smallCaps"); el != nil {
		rp.SmallCaps = onOff(el)
	}
	if el := rPr.SelectElement("vanish"); el != nil {
		rp.Hidden = onOff(el)
	}
	if el := rPr.SelectElement("color"); el != nil {
		v, _ := attrStr(el, "val")
		rgb, auto := hexColor(v)
		rp.ColorRGB = ptrU32(rgb)
		rp.ColorAuto = ptrBool(auto)
	}
	if el := rPr.SelectElement("highlight"); el != nil {
		v, _ := attrStr(el, "val")
		if v != "" && v != "none" {
			rp.HighlightRGB = ptrU32(highlightColor(v))
			rp.HasHighlight = ptrBool(true)
		} else {
			rp.HasHighlight = ptrBool(false)
		}
	}
	if el := rPr.SelectElement("vertAlign"); el != nil {
		v, _ := attrStr(el, "val")
		switch v {
		case "superscript":
			rp.VertAlign = ptrVert(common.VertSuperscript)
		case "subscript":
			rp.VertAlign = ptrVert(common.VertSubscript)
		default:
			rp.VertAlign = ptrVert(common.VertBaseline)
		}
	}
	return rp
}

// highlightColor maps WML's named highlight palette to sRGB. Word stores
// these as fixed names rather than hex values.
func highlightColor(name string) uint32 {
	switch name {
	case "yellow":
		return 0xFFFF00
	case "green":
		return 0x00FF00
	case "cyan":
		return 0x00FFFF
	case "magenta":
		return 0xFF00FF
	case "blue":
		return 0x0000FF
	case "red":
		return 0xFF0000
	case "darkBlue":
		return 0x00008B
	case "darkCyan":
		return 0x008B8B
	case "darkGreen":
		return 0x006400
	case "darkMagenta":
		return 0x8B008B
	case "darkRed":
		return 0x8B0000
	case "darkYellow":
		return 0x808000
	case "darkGray":
		return 0x808080
	case "lightGray":
		return 0xD3D3D3
	case "black":
		return 0x000000
	default:
		return 0xFFFF00
	}
}

// resolveRunFields returns the model.Run formatting fields from the resolved fixed
// point of inline ▷ character style ▷ paragraph-style run props ▷ document
// defaults ▷ hardcoded built-ins (§4.1).
func (dp *docParser) resolveRunFields(inline RunProps, charStyleID, paraStyleID string) (family string, sizePt float64, bold, italic, underline, strike, caps, smallCaps, hidden bool, colorRGB uint32, colorAuto bool, highlightRGB uint32, hasHighlight bool, vert common.VertAlign) {
	rp := dp.styles.RunProperties(inline, charStyleID, paraStyleID, dp.log)
	family = firstSet(dp.defaultFamily, rp.FontFamily)
	sizePt = common.HalfPointsToPoints(firstSet(int(dp.defaultSizePt*2), rp.FontSizeHalfPt))
	bold = firstSet(false, rp.Bold)
	italic = firstSet(false, rp.Italic)
	underline = firstSet(false, rp.Underline)
	strike = firstSet(false, rp.Strike)
	caps = firstSet(false, rp.Caps)
	smallCaps = firstSet(false, rp.SmallCaps)
	hidden = firstSet(false, rp.Hidden)
	colorRGB = firstSet[uint32](0, rp.ColorRGB)
	colorAuto = firstSet(true, rp.ColorAuto)
	highlightRGB = firstSet[uint32](0, rp.HighlightRGB)
	hasHighlight = firstSet(false, rp.HasHighlight)
	vert = firstSet(common.VertBaseline, rp.VertAlign)
	return
}
