package wml

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"docxpdf/internal/common"
	"docxpdf/internal/model"
)

// runExtractor walks one paragraph's run-bearing children in document
// order implementing the field-code state machine from §4.1. It is
// constructed fresh per paragraph and threaded through hyperlink/sdt
// recursion so pending text and in-field state survive wrapper boundaries.
type runExtractor struct {
	dp          *docParser
	paraStyleID string

	runs     []model.Run
	floating []FloatingImageAt

	pending      strings.Builder
	pendingProps mergedIdentity
	pendingSet   bool

	inField    bool
	fieldInstr strings.Builder

	extraLineBreaks   int
	pageBreakBefore   bool
	columnBreakBefore bool

	hyperlinkURL string
}

// FloatingImageAt is an alias of model.FloatingImage; parseParagraph
// (paragraph.go) copies the collected list onto Paragraph.Floating
// unchanged.
type FloatingImageAt = model.FloatingImage

func (dp *docParser) extractRuns(pEl *etree.Element, paraStyleID string) *runExtractor {
	rx := &runExtractor{dp: dp, paraStyleID: paraStyleID}
	rx.walkChildren(pEl, "")
	rx.flush(rx.pendingProps)
	return rx
}

func (rx *runExtractor) walkChildren(el *etree.Element, charStyleID string) {
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "r":
			rx.walkRun(child)
		case "hyperlink":
			rx.walkHyperlink(child)
		case "sdt":
			if content := child.SelectElement("sdtContent"); content != nil {
				rx.walkChildren(content, charStyleID)
			}
		case "ins", "del", "smartTag":
			rx.walkChildren(child, charStyleID)
		}
	}
}

func (rx *runExtractor) walkHyperlink(hEl *etree.Element) {
	relID := hEl.SelectAttrValue("id", "")
	prevURL := rx.hyperlinkURL
	if relID != "" {
		if target, ok := rx.dp.rels[relID]; ok {
			rx.hyperlinkURL = target
		}
	}
	rx.walkChildren(hEl, "")
	rx.hyperlinkURL = prevURL
}

func (rx *runExtractor) walkRun(rEl *etree.Element) {
	var charStyleID string
	var rp RunProps
	if rPr := rEl.SelectElement("rPr"); rPr != nil {
		rp = parseRunProps(rPr, rx.dp.theme)
		if styleEl := rPr.SelectElement("rStyle"); styleEl != nil {
			charStyleID, _ = attrStr(styleEl, "val")
		}
	}

	for _, child := range rEl.ChildElements() {
		switch child.Tag {
		case "t":
			rx.appendText(child.Text(), rp, charStyleID)
		case "tab":
			rx.flush(rx.currentProps(rp, charStyleID))
			rx.runs = append(rx.runs, rx.buildRun("", rp, charStyleID, runExtra{isTab: true}))
		case "br":
			rx.flush(rx.currentProps(rp, charStyleID))
			typ, _ := attrStr(child, "type")
			switch typ {
			case "page":
				rx.pageBreakBefore = true
			case "column":
				rx.columnBreakBefore = true
			default:
				rx.extraLineBreaks++
			}
		case "cr":
			rx.flush(rx.currentProps(rp, charStyleID))
			rx.extraLineBreaks++
		case "drawing":
			rx.flush(rx.currentProps(rp, charStyleID))
			rx.walkDrawing(child, rp, charStyleID)
		case "fldChar":
			rx.handleFldChar(child, rp, charStyleID)
		case "instrText":
			if rx.inField {
				rx.fieldInstr.WriteString(child.Text())
			}
		case "footnoteReference":
			rx.flush(rx.currentProps(rp, charStyleID))
			id, _ := attrStr(child, "id")
			rx.runs = append(rx.runs, rx.buildRun("", rp, charStyleID, runExtra{footnoteID: id}))
		case "footnoteRef":
			rx.flush(rx.currentProps(rp, charStyleID))
			rx.runs = append(rx.runs, rx.buildRun("", rp, charStyleID, runExtra{isBackref: true}))
		}
	}
}

// appendText accumulates t-element text into the pending buffer, flushing
// first if the run's resolved formatting changed since the last flush (so
// adjacent identically-formatted runs still merge into one model.Run,
// matching §3's "a Run is a maximal span of identically formatted inline
// content").
func (rx *runExtractor) appendText(text string, rp RunProps, charStyleID string) {
	props := rx.currentProps(rp, charStyleID)
	if rx.pendingSet && !sameRunIdentity(rx.pendingProps, props) {
		rx.flush(rx.pendingProps)
	}
	rx.pendingProps = props
	rx.pendingSet = true
	normalized := strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", " "), "\n", " ")
	normalized = strings.ReplaceAll(normalized, "\r", " ")
	rx.pending.WriteString(normalized)
}

// currentProps folds the hyperlink-resolved URL into the identity used to
// decide run merging: two text spans differing only by hyperlink target
// must not merge.
func (rx *runExtractor) currentProps(rp RunProps, charStyleID string) mergedIdentity {
	return mergedIdentity{rp: rp, charStyleID: charStyleID, hyperlinkURL: rx.hyperlinkURL}
}

type mergedIdentity struct {
	rp           RunProps
	charStyleID  string
	hyperlinkURL string
}

func sameRunIdentity(a, b mergedIdentity) bool {
	return a.charStyleID == b.charStyleID && a.hyperlinkURL == b.hyperlinkURL && samePtrRunProps(a.rp, b.rp)
}

// samePtrRunProps compares two RunProps field by field, treating two nil
// pointers as equal and otherwise comparing the pointed-to values.
func samePtrRunProps(a, b RunProps) bool {
	return ptrEqStr(a.FontFamily, b.FontFamily) &&
		ptrEqInt(a.FontSizeHalfPt, b.FontSizeHalfPt) &&
		ptrEqBool(a.Bold, b.Bold) &&
		ptrEqBool(a.Italic, b.Italic) &&
		ptrEqBool(a.Underline, b.Underline) &&
		ptrEqBool(a.Strike, b.Strike) &&
		ptrEqBool(a.Caps, b.Caps) &&
		ptrEqBool(a.SmallCaps, b.SmallCaps) &&
		ptrEqBool(a.Hidden, b.Hidden) &&
		ptrEqU32(a.ColorRGB, b.ColorRGB) &&
		ptrEqBool(a.ColorAuto, b.ColorAuto) &&
		ptrEqU32(a.HighlightRGB, b.HighlightRGB) &&
		ptrEqBool(a.HasHighlight, b.HasHighlight) &&
		(a.VertAlign == nil) == (b.VertAlign == nil) &&
		(a.VertAlign == nil || *a.VertAlign == *b.VertAlign)
}

func ptrEqStr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
func ptrEqInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
func ptrEqBool(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
func ptrEqU32(a, b *uint32) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// flush emits the pending text buffer as a Run using props, then clears it.
func (rx *runExtractor) flush(props mergedIdentity) {
	if rx.pending.Len() == 0 {
		rx.pendingSet = false
		return
	}
	text := rx.pending.String()
	rx.pending.Reset()
	rx.pendingSet = false
	rx.runs = append(rx.runs, rx.buildRun(text, props.rp, props.charStyleID, runExtra{}))
}

type runExtra struct {
	isTab       bool
	footnoteID  string
	isBackref   bool
	field       common.FieldCode
	inlineImage *model.EmbeddedImage
}

func (rx *runExtractor) buildRun(text string, rp RunProps, charStyleID string, extra runExtra) model.Run {
	family, sizePt, bold, italic, underline, strike, caps, smallCaps, hidden, colorRGB, colorAuto, highlightRGB, hasHighlight, vert := rx.dp.resolveRunFields(rp, charStyleID, rx.paraStyleID)
	if extra.footnoteID != "" || extra.isBackref {
		vert = common.VertSuperscript
	}
	return model.Run{
		Text:              text,
		FontFamily:        family,
		FontSizePt:        sizePt,
		Bold:              bold,
		Italic:            italic,
		Underline:         underline,
		Strike:            strike,
		Caps:              caps,
		SmallCaps:         smallCaps,
		Hidden:            hidden,
		ColorRGB:          colorRGB,
		ColorAuto:         colorAuto,
		HighlightRGB:      highlightRGB,
		HasHighlight:      hasHighlight,
		IsTab:             extra.isTab,
		VerticalAlign:     vert,
		Field:             extra.field,
		HyperlinkURL:      rx.hyperlinkURL,
		InlineImage:       extra.inlineImage,
		FootnoteID:        extra.footnoteID,
		IsFootnoteBackref: extra.isBackref,
	}
}

// handleFldChar drives the field-code state machine: begin flushes and
// opens field-instruction capture, separate is a no-op boundary, end
// matches the trimmed instruction case-insensitively against PAGE and
// NUMPAGES and emits a placeholder run for recognized codes (unrecognized
// fields are dropped per §7).
func (rx *runExtractor) handleFldChar(el *etree.Element, rp RunProps, charStyleID string) {
	typ, _ := attrStr(el, "type")
	switch typ {
	case "begin":
		rx.flush(rx.currentProps(rp, charStyleID))
		rx.inField = true
		rx.fieldInstr.Reset()
	case "separate":
		// boundary only; instruction text has been fully captured by now
	case "end":
		if !rx.inField {
			return
		}
		rx.inField = false
		instr := strings.ToUpper(strings.TrimSpace(rx.fieldInstr.String()))
		var code common.FieldCode
		switch {
		case strings.HasPrefix(instr, "PAGE"):
			code = common.FieldPage
		case strings.HasPrefix(instr, "NUMPAGES"):
			code = common.FieldNumPages
		default:
			return
		}
		rx.runs = append(rx.runs, rx.buildRun("", rp, charStyleID, runExtra{field: code}))
	}
}

// walkDrawing parses a <w:drawing> for its embedded image relationship and
// extent, distinguishing inline placement (wp:inline, becomes an
// InlineImage-bearing Run) from floating placement (wp:anchor, becomes a
// FloatingImage).
func (rx *runExtractor) walkDrawing(drawing *etree.Element, rp RunProps, charStyleID string) {
	if inline := drawing.SelectElement("inline"); inline != nil {
		img := rx.dp.resolveDrawingImage(inline)
		if img == nil {
			return
		}
		rx.runs = append(rx.runs, rx.buildRun("", rp, charStyleID, runExtra{inlineImage: img}))
		return
	}
	if anchor := drawing.SelectElement("anchor"); anchor != nil {
		img := rx.dp.resolveDrawingImage(anchor)
		if img == nil {
			return
		}
		fi := model.FloatingImage{Image: *img}
		behind, _ := attrStr(anchor, "behindDoc")
		fi.BehindDoc = behind == "1" || behind == "true"
		if posH := anchor.SelectElement("positionH"); posH != nil {
			fi.HAnchor = parseHAnchor(posH.SelectAttrValue("relativeFrom", ""))
			if off := posH.SelectElement("posOffset"); off != nil {
				if v, err := strconv.ParseInt(off.Text(), 10, 64); err == nil {
					fi.HOffset = common.EMUToPoints(v)
				}
			}
		}
		if posV := anchor.SelectElement("positionV"); posV != nil {
			fi.VAnchor = parseVAnchor(posV.SelectAttrValue("relativeFrom", ""))
			if off := posV.SelectElement("posOffset"); off != nil {
				if v, err := strconv.ParseInt(off.Text(), 10, 64); err == nil {
					fi.VOffset = common.EMUToPoints(v)
				}
			}
		}
		rx.floating = append(rx.floating, fi)
	}
}

func parseHAnchor(v string) common.HorizontalAnchor {
	switch v {
	case "column":
		return common.HAnchorColumn
	case "margin", "leftMargin", "rightMargin":
		return common.HAnchorMargin
	default:
		return common.HAnchorPage
	}
}

func parseVAnchor(v string) common.VerticalAnchor {
	switch v {
	case "margin", "topMargin", "bottomMargin":
		return common.VAnchorMargin
	case "paragraph":
		return common.VAnchorParagraph
	default:
		return common.VAnchorPage
	}
}
