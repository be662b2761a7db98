package layout

import (
	"math"
	"strings"

	"docxpdf/internal/common"
	"docxpdf/internal/model"
)

// DefaultTabGridPt is the §4.3 fallback grid used when a tab's x-cursor
// has run past every declared stop.
const DefaultTabGridPt = 36.0

// ResolveTabs lays out a tab-bearing paragraph as a single line (§4.4
// step 3: "Compute a single line via the tab pipeline if any run is a
// tab"). Coordinates are paragraph-relative, matching BreakLines.
func ResolveTabs(runs []model.Run, tabStops []model.TabStop, m Measurer) Line {
	segments := splitOnTabs(runs)

	var chunks []Chunk
	cursor := 0.0
	for i, seg := range segments {
		if i > 0 {
			stop, found := nextStop(tabStops, cursor)
			targetX := math.Floor(cursor/DefaultTabGridPt+1) * DefaultTabGridPt
			align := common.TabLeft
			var leader rune
			if found {
				targetX = stop.Position
				align = stop.Align
				leader = stop.Leader
			}

			segWidth := measureFlat(seg, m)
			start := targetX
			switch align {
			case common.TabCenter:
				start = targetX - segWidth/2
			case common.TabRight:
				start = targetX - segWidth
			case common.TabDecimal:
				start = targetX - measureToDecimal(seg, m)
			}
			if start < cursor {
				start = cursor
			}

			if leader != 0 && start > cursor {
				leaderW := measureRune(seg, m, leader)
				if leaderW > 0 {
					x0 := cursor + leaderW
					x1 := start - leaderW
					if x1 > x0 {
						chunks = append(chunks, Chunk{IsImage: false, X: x0, Width: x1 - x0, Text: strings.Repeat(string(leader), 1), FontFamily: leaderFont(seg)})
					}
				}
			}
			cursor = start
		}

		segChunks, segWidth := placeFlat(seg, cursor, m)
		chunks = append(chunks, segChunks...)
		cursor += segWidth
	}

	h := 0.0
	for _, c := range chunks {
		if sz := c.FontSizePt; sz > 0 {
			if lh := m.LineHeightPt(c.FontFamily, c.Bold, c.Italic, sz); lh > h {
				h = lh
			}
		}
	}
	return Line{Chunks: chunks, Width: cursor, Height: h}
}

// tabSegment is the run slice between two tab markers (or paragraph
// start/end and the nearest marker).
type tabSegment = []model.Run

func splitOnTabs(runs []model.Run) []tabSegment {
	var segs []tabSegment
	var cur tabSegment
	for _, r := range runs {
		if r.IsTab {
			segs = append(segs, cur)
			cur = nil
			continue
		}
		cur = append(cur, r)
	}
	segs = append(segs, cur)
	return segs
}

func nextStop(stops []model.TabStop, afterX float64) (model.TabStop, bool) {
	var best model.TabStop
	found := false
	for _, s := range stops {
		if s.Position <= afterX {
			continue
		}
		if !found || s.Position < best.Position {
			best = s
			found = true
		}
	}
	return best, found
}

func measureFlat(seg tabSegment, m Measurer) float64 {
	var w float64
	for _, r := range seg {
		size, _ := effectiveSize(r.FontSizePt, r.VerticalAlign)
		for _, c := range r.Text {
			w += m.AdvancePt(r.FontFamily, r.Bold, r.Italic, size, c)
		}
	}
	return w
}

// measureToDecimal returns the width from the segment's start to the
// character immediately preceding its first '.', or the full segment
// width (§4.3 "if no '.', treat as right") when none is found.
func measureToDecimal(seg tabSegment, m Measurer) float64 {
	var w float64
	for _, r := range seg {
		size, _ := effectiveSize(r.FontSizePt, r.VerticalAlign)
		idx := strings.IndexByte(r.Text, '.')
		if idx < 0 {
			for _, c := range r.Text {
				w += m.AdvancePt(r.FontFamily, r.Bold, r.Italic, size, c)
			}
			continue
		}
		for _, c := range r.Text[:idx] {
			w += m.AdvancePt(r.FontFamily, r.Bold, r.Italic, size, c)
		}
		return w
	}
	return w
}

func measureRune(seg tabSegment, m Measurer, r rune) float64 {
	family, bold, italic, size := "Helvetica", false, false, 10.0
	if len(seg) > 0 {
		family, bold, italic = seg[0].FontFamily, seg[0].Bold, seg[0].Italic
		size, _ = effectiveSize(seg[0].FontSizePt, seg[0].VerticalAlign)
	}
	return m.AdvancePt(family, bold, italic, size, r)
}

func leaderFont(seg tabSegment) string {
	if len(seg) > 0 {
		return seg[0].FontFamily
	}
	return "Helvetica"
}

// placeFlat lays out seg's runs sequentially with no wrapping, starting
// at x0, merging adjacent same-style words the way BreakLines does.
func placeFlat(seg tabSegment, x0 float64, m Measurer) ([]Chunk, float64) {
	b := &lineBuilder{x: x0}
	for i := range seg {
		r := &seg[i]
		size, baseOff := effectiveSize(r.FontSizePt, r.VerticalAlign)
		if r.InlineImage != nil {
			b.appendImage(r.InlineImage, r.InlineImage.DisplayWidth, r.InlineImage.DisplayHeight)
			continue
		}
		for _, atom := range splitAtoms(r.Text) {
			if atom.isSpace {
				b.pendingGapPt += wordWidth(m, r.FontFamily, r.Bold, r.Italic, size, atom.text)
				continue
			}
			w := wordWidth(m, r.FontFamily, r.Bold, r.Italic, size, atom.text)
			b.appendWord(atom.text, w, r, size, baseOff)
		}
	}
	return b.chunks, b.x - x0
}
