package wml

import (
	"github.com/beevik/etree"

	"docxpdf/internal/common"
	"docxpdf/internal/model"
)

// parseParagraph assembles one <w:p> into a model.Paragraph: paragraph
// properties cascade through the style graph, runs are extracted by the
// field-code state machine, and a numbering label is resolved last (it
// needs the paragraph's own style-resolved indent for the hanging-indent
// fallback).
func (dp *docParser) parseParagraph(pEl *etree.Element) model.Paragraph {
	var pPr *etree.Element
	if el := pEl.SelectElement("pPr"); el != nil {
		pPr = el
	}
	raw := parseParaProps(pPr, dp.theme)

	resolved := dp.styles.ParagraphProperties(raw.Props, raw.ParaStyleID, dp.log)

	p := model.Paragraph{
		Alignment:         firstSet(common.AlignLeft, resolved.Alignment),
		SpaceBefore:       common.TwipsToPoints(firstSet(0, resolved.SpaceBeforeTwips)),
		SpaceAfter:        common.TwipsToPoints(firstSet(0, resolved.SpaceAfterTwips)),
		ContextualSpacing: firstSet(false, resolved.ContextualSpacing),
		KeepNext:          firstSet(false, resolved.KeepNext),
		KeepLines:         firstSet(false, resolved.KeepLines),
		IndentLeft:        common.TwipsToPoints(firstSet(0, resolved.IndentLeftTwips)),
		IndentRight:       common.TwipsToPoints(firstSet(0, resolved.IndentRightTwips)),
		IndentHanging:     common.TwipsToPoints(firstSet(0, resolved.IndentHangTwips)),
		IndentFirstLine:   common.TwipsToPoints(firstSet(0, resolved.IndentFirstTwips)),
		PageBreakBefore:   raw.PageBreakBefore,
		ColumnBreakBefore: raw.ColumnBreakBefore,
		TabStops:          raw.TabStops,
	}
	if resolved.Borders != nil {
		p.BordersBox = *resolved.Borders
	}
	if resolved.Shading != nil {
		p.Shading = *resolved.Shading
	} else {
		p.Shading = model.Shading{Transparent: true}
	}
	p.LineSpacing = resolveLineSpacing(resolved, dp.defaultLineSpacingMult)

	rx := dp.extractRuns(pEl, raw.ParaStyleID)
	p.Runs = rx.runs
	p.Floating = rx.floating
	p.ExtraLineBreaks = rx.extraLineBreaks
	if rx.pageBreakBefore {
		p.PageBreakBefore = true
	}
	if rx.columnBreakBefore {
		p.ColumnBreakBefore = true
	}

	if raw.HasNumPr {
		p.ListLabel = dp.numbering.Label(raw.NumID, raw.ILvl)
		if def, ok := dp.numbering.levelDef(raw.NumID, raw.ILvl); ok {
			if p.IndentLeft == 0 {
				p.IndentLeft = def.IndentLeft
			}
			if p.IndentHanging == 0 {
				p.IndentHanging = def.IndentHang
			}
		}
	}

	markFamily, markSizePt, _, _, _, _, _, _, _, _, _, _, _, _ := dp.resolveRunFields(raw.RunMarkProps, "", raw.ParaStyleID)
	model.EnsureParagraphMark(&p, markFamily, markSizePt)

	if len(p.Runs) == 1 && p.Runs[0].InlineImage != nil {
		p.BlockImage = p.Runs[0].InlineImage
	}

	return p
}

func resolveLineSpacing(props ParaProps, docDefaultMult float64) model.LineSpacing {
	if props.LineSpacingExactPt != nil {
		return model.LineSpacing{Kind: common.LineSpacingExact, Value: *props.LineSpacingExactPt}
	}
	if props.LineSpacingAtLeastPt != nil {
		return model.LineSpacing{Kind: common.LineSpacingAtLeast, Value: *props.LineSpacingAtLeastPt}
	}
	if props.LineSpacingAutoMult != nil {
		return model.LineSpacing{Kind: common.LineSpacingAuto, Value: *props.LineSpacingAutoMult}
	}
	if docDefaultMult == 0 {
		docDefaultMult = 1.0
	}
	return model.LineSpacing{Kind: common.LineSpacingAuto, Value: docDefaultMult}
}
