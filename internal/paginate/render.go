package paginate

import (
	"docxpdf/internal/common"
	"docxpdf/internal/fonts"
	"docxpdf/internal/layout"
	"docxpdf/internal/model"
	"docxpdf/internal/pdfw"
)

const placeholderGray = pdfw.PlaceholderGrayRGB

// drawLines renders lines inside [left, left+width] with top as the y
// of the first line's top edge, per §4.4 Line rendering contract
// (alignment, justify distribution, underline/strike/highlight/
// hyperlink rectangles flushed after the text block).
func drawLines(rp *renderPage, pool *resourcePool, fm *faceMeasurer, lines []layout.Line, left, width, top, lineH float64, align common.Alignment) float64 {
	c := rp.content
	var decorations []decoration
	y := top

	for li, line := range lines {
		ascent := lineAscent(fm, line)
		baseline := y - ascent
		x0, gapExtra := lineStartAndGap(line, left, width, align, li == len(lines)-1)

		c.BeginText()
		x := x0
		for _, chunk := range line.Chunks {
			if chunk.IsImage {
				name, ok := pool.imageName(*chunk.Image)
				if ok {
					c.DrawImage(name, x, baseline-chunk.Image.DisplayHeight*0.1, chunk.Image.DisplayWidth, chunk.Image.DisplayHeight)
				} else {
					c.EndText()
					drawPlaceholder(c, x, baseline, chunk.Width, chunk.Image.DisplayHeight)
					c.BeginText()
				}
				x += chunk.Width
				continue
			}

			face := fm.faceFor(chunk.FontFamily, chunk.Bold, chunk.Italic)
			name := pool.fontName(chunk.FontFamily, chunk.Bold, chunk.Italic)
			c.SetFont(name, chunk.FontSizePt)
			c.SetFillRGB(resolveColor(chunk.ColorRGB, chunk.ColorAuto))
			c.MoveTextTo(x, baseline+chunk.BaselineOffset)
			showChunkText(c, face, chunk.Text)

			if chunk.Underline || chunk.Strike || chunk.HasHighlight || chunk.HyperlinkURL != "" {
				decorations = append(decorations, decoration{chunk: chunk, x: x, baseline: baseline})
			}

			x += chunk.Width
			if gapExtra > 0 {
				x += gapExtra
			}
		}
		y -= lineH
	}
	c.EndText()
	flushDecorations(rp, decorations)
	return y
}

type decoration struct {
	chunk    layout.Chunk
	x        float64
	baseline float64
}

// flushDecorations draws underline/strike/highlight rectangles and
// records hyperlink annotations after the text block closes, matching
// §4.4's "accumulated and flushed after the text block to avoid mode
// switches".
func flushDecorations(rp *renderPage, decs []decoration) {
	for _, d := range decs {
		if d.chunk.HasHighlight {
			rp.content.SetFillRGB(d.chunk.HighlightRGB)
			rp.content.Rect(d.x, d.baseline-2, d.chunk.Width, d.chunk.FontSizePt*1.1)
			rp.content.Fill()
		}
		if d.chunk.Underline {
			rp.content.SetStrokeRGB(resolveColor(d.chunk.ColorRGB, d.chunk.ColorAuto))
			rp.content.SetLineWidth(d.chunk.FontSizePt * 0.05)
			rp.content.MoveTo(d.x, d.baseline-1)
			rp.content.LineTo(d.x+d.chunk.Width, d.baseline-1)
			rp.content.Stroke()
		}
		if d.chunk.Strike {
			rp.content.SetStrokeRGB(resolveColor(d.chunk.ColorRGB, d.chunk.ColorAuto))
			rp.content.SetLineWidth(d.chunk.FontSizePt * 0.05)
			midY := d.baseline + d.chunk.FontSizePt*0.3
			rp.content.MoveTo(d.x, midY)
			rp.content.LineTo(d.x+d.chunk.Width, midY)
			rp.content.Stroke()
		}
		if d.chunk.HyperlinkURL != "" {
			rp.annots = append(rp.annots, pdfw.LinkAnnot{
				X: d.x, Y: d.baseline - 2, W: d.chunk.Width, H: d.chunk.FontSizePt * 1.2,
				URL: d.chunk.HyperlinkURL,
			})
		}
	}
}

func showChunkText(c *pdfw.Content, face *fonts.Face, text string) {
	if face.Helvetica {
		c.ShowTextBytes(fonts.EncodeWinAnsi(text))
		return
	}
	cids := make([]uint16, 0, len(text))
	for _, r := range text {
		cids = append(cids, uint16(face.GlyphMap[r]))
	}
	c.ShowGlyphs(cids)
}

func resolveColor(rgb uint32, auto bool) uint32 {
	if auto {
		return 0
	}
	return rgb
}

func lineAscent(fm *faceMeasurer, line layout.Line) float64 {
	var a float64
	for _, c := range line.Chunks {
		if c.IsImage {
			continue
		}
		if v := fm.AscentPt(c.FontFamily, c.Bold, c.Italic, c.FontSizePt); v > a {
			a = v
		}
	}
	if a == 0 {
		a = line.Height * 0.8
	}
	return a
}

// lineStartAndGap implements §4.4's per-alignment x origin and the
// Justify inter-chunk gap distribution.
func lineStartAndGap(line layout.Line, left, width float64, align common.Alignment, isLast bool) (x, gapExtra float64) {
	switch align {
	case common.AlignCenter:
		return left + (width-line.Width)/2, 0
	case common.AlignRight:
		return left + width - line.Width, 0
	case common.AlignJustify:
		if isLast || len(line.Chunks) < 2 {
			return left, 0
		}
		extra := (width - line.Width) / float64(len(line.Chunks)-1)
		if extra < 0 {
			extra = 0
		}
		return left, extra
	default:
		return left, 0
	}
}

func drawPlaceholder(c *pdfw.Content, x, baseline, w, h float64) {
	c.SetFillRGB(placeholderGray)
	c.Rect(x, baseline, w, h)
	c.Fill()
}

// drawShading fills a paragraph/cell's background box, extended by the
// given left/right border offsets (§4.4 step 7: "full box extending by
// left/right border offsets").
func drawShading(c *pdfw.Content, sh model.Shading, x, bottom, w, h float64) {
	if sh.Transparent {
		return
	}
	c.SetFillRGB(sh.ColorRGB)
	c.Rect(x, bottom, w, h)
	c.Fill()
}

// drawBorders strokes a paragraph/cell's declared border edges.
func drawBorders(c *pdfw.Content, b model.Borders, x, bottom, w, h float64) {
	draw := func(side model.BorderSide, x0, y0, x1, y1 float64) {
		if !side.Present || side.WidthPt <= 0 {
			return
		}
		c.SetStrokeRGB(side.ColorRGB)
		c.SetLineWidth(side.WidthPt)
		c.MoveTo(x0, y0)
		c.LineTo(x1, y1)
		c.Stroke()
	}
	draw(b.Top, x, bottom+h, x+w, bottom+h)
	draw(b.Bottom, x, bottom, x+w, bottom)
	draw(b.Left, x, bottom, x, bottom+h)
	draw(b.Right, x+w, bottom, x+w, bottom+h)
}

// drawFootnoteSeparator draws the 0.5pt, 144pt-wide (or text-width if
// narrower) rule 3pt above the first footnote baseline (§4.4 Footnote
// rendering step 1).
func drawFootnoteSeparator(c *pdfw.Content, left, textWidth, y float64) {
	w := 144.0
	if textWidth < w {
		w = textWidth
	}
	c.SetStrokeRGB(0x000000)
	c.SetLineWidth(0.5)
	c.MoveTo(left, y)
	c.LineTo(left+w, y)
	c.Stroke()
}
