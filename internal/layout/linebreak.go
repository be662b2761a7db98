package layout

import (
	"strings"
	"unicode"

	"docxpdf/internal/model"
)

// Chunk is one placed span of a line: either text in a single run's
// formatting, or an inline image.
type Chunk struct {
	Text string

	IsImage bool
	Image   *model.EmbeddedImage

	X, Width float64 // pt, paragraph-relative

	FontFamily     string
	FontSizePt     float64 // effective (post vertical-align scaling) size
	Bold, Italic   bool
	Underline      bool
	Strike         bool
	ColorRGB       uint32
	ColorAuto      bool
	HighlightRGB   uint32
	HasHighlight   bool
	BaselineOffset float64 // pt, positive = up, from §4.3 vertical-align
	HyperlinkURL   string
}

// Line is one laid-out line of chunks.
type Line struct {
	Chunks []Chunk
	Width  float64 // pt, sum of placed content (excludes trailing collapsed space)
	Height float64 // pt, line-box height (max of text/image line heights)
}

// BreakLines wraps runs into lines within textWidth, allowing the first
// line to extend to textWidth+hangingAllowance (§4.3 Line-breaking
// contract). Runs containing tab markers must not be passed here — the
// caller routes tab-bearing paragraphs through the tab pipeline instead
// (ResolveTabs).
func BreakLines(runs []model.Run, textWidth, hangingAllowance float64, m Measurer) []Line {
	var lines []Line
	cur := newLineBuilder()
	firstLine := true

	limit := func() float64 {
		if firstLine {
			return textWidth + hangingAllowance
		}
		return textWidth
	}

	flush := func() {
		if len(cur.chunks) == 0 && cur.x == 0 {
			return
		}
		lines = append(lines, cur.build())
		cur = newLineBuilder()
		firstLine = false
	}

	for i := range runs {
		r := &runs[i]
		size, baseOff := effectiveSize(r.FontSizePt, r.VerticalAlign)

		if r.InlineImage != nil {
			w := r.InlineImage.DisplayWidth
			h := r.InlineImage.DisplayHeight
			if cur.x > 0 && cur.x+w > limit() {
				flush()
			}
			cur.appendImage(r.InlineImage, w, h)
			continue
		}
		if r.IsTab {
			// A tab inside a non-tab-routed paragraph (defensive; the
			// paginator should have routed this paragraph to
			// ResolveTabs). Treat as a single space-width gap so layout
			// degrades gracefully instead of losing the run entirely.
			cur.pendingGapPt += m.AdvancePt(r.FontFamily, r.Bold, r.Italic, size, ' ')
			continue
		}

		for _, atom := range splitAtoms(r.Text) {
			if atom.isSpace {
				cur.pendingGapPt += wordWidth(m, r.FontFamily, r.Bold, r.Italic, size, atom.text)
				continue
			}
			w := wordWidth(m, r.FontFamily, r.Bold, r.Italic, size, atom.text)
			if cur.x > 0 && cur.x+cur.pendingGapPt+w > limit() {
				flush()
				// The whitespace gap at the break point is not
				// carried onto the new line.
				cur.pendingGapPt = 0
			}
			cur.appendWord(atom.text, w, r, size, baseOff)
		}
	}
	flush()

	lineH := func(l *Line) float64 {
		h := 0.0
		for _, c := range l.Chunks {
			if c.IsImage {
				if c.Image.DisplayHeight > h {
					h = c.Image.DisplayHeight
				}
				continue
			}
		}
		return h
	}
	for i := range lines {
		textH := 0.0
		for _, r := range runs {
			size, _ := effectiveSize(r.FontSizePt, r.VerticalAlign)
			if lh := m.LineHeightPt(r.FontFamily, r.Bold, r.Italic, size); lh > textH {
				textH = lh
			}
		}
		h := lineH(&lines[i])
		if textH > h {
			h = textH
		}
		lines[i].Height = h
	}
	return lines
}

type atom struct {
	text    string
	isSpace bool
}

// splitAtoms splits s into alternating word/whitespace-run atoms,
// preserving every character (no atom is ever dropped by this function;
// callers decide whether to keep a given whitespace atom).
func splitAtoms(s string) []atom {
	var atoms []atom
	var b strings.Builder
	var inSpace bool
	flush := func() {
		if b.Len() == 0 {
			return
		}
		atoms = append(atoms, atom{text: b.String(), isSpace: inSpace})
		b.Reset()
	}
	for _, r := range s {
		sp := unicode.IsSpace(r)
		if b.Len() > 0 && sp != inSpace {
			flush()
		}
		inSpace = sp
		b.WriteRune(r)
	}
	flush()
	return atoms
}

type lineBuilder struct {
	chunks       []Chunk
	x            float64
	pendingGapPt float64
}

func newLineBuilder() *lineBuilder { return &lineBuilder{} }

func (b *lineBuilder) appendWord(text string, w float64, r *model.Run, size, baseOff float64) {
	gap := b.pendingGapPt
	b.pendingGapPt = 0
	if n := len(b.chunks); n > 0 && sameChunkStyle(&b.chunks[n-1], r, size, baseOff) {
		b.chunks[n-1].Text += strings.Repeat(" ", gapChars(gap, r, size)) + text
		b.chunks[n-1].Width += gap + w
		b.x += gap + w
		return
	}
	b.chunks = append(b.chunks, Chunk{
		Text:           text,
		X:              b.x + gap,
		Width:          w,
		FontFamily:     r.FontFamily,
		FontSizePt:     size,
		Bold:           r.Bold,
		Italic:         r.Italic,
		Underline:      r.Underline,
		Strike:         r.Strike,
		ColorRGB:       r.ColorRGB,
		ColorAuto:      r.ColorAuto,
		HighlightRGB:   r.HighlightRGB,
		HasHighlight:   r.HasHighlight,
		BaselineOffset: baseOff,
		HyperlinkURL:   r.HyperlinkURL,
	})
	b.x += gap + w
}

func (b *lineBuilder) appendImage(img *model.EmbeddedImage, w, h float64) {
	gap := b.pendingGapPt
	b.pendingGapPt = 0
	b.chunks = append(b.chunks, Chunk{IsImage: true, Image: img, X: b.x + gap, Width: w})
	b.x += gap + w
}

func (b *lineBuilder) build() Line {
	return Line{Chunks: b.chunks, Width: b.x}
}

// sameChunkStyle reports whether a trailing word can be merged into the
// previous chunk's text (same run identity in every rendering-relevant
// field) rather than starting a new Chunk — keeps the per-line chunk
// count down to one per maximal same-style span, matching §3's run
// merging done one layer up.
func sameChunkStyle(c *Chunk, r *model.Run, size, baseOff float64) bool {
	return c.FontFamily == r.FontFamily &&
		c.FontSizePt == size &&
		c.Bold == r.Bold && c.Italic == r.Italic &&
		c.Underline == r.Underline && c.Strike == r.Strike &&
		c.ColorRGB == r.ColorRGB && c.ColorAuto == r.ColorAuto &&
		c.HighlightRGB == r.HighlightRGB && c.HasHighlight == r.HasHighlight &&
		c.BaselineOffset == baseOff &&
		c.HyperlinkURL == r.HyperlinkURL
}

// gapChars stands in for a point-width gap with a single space (for any
// positive gap) in the merged chunk's Text; the renderer measures the stored Width field
// for placement, so this only needs to look right as plain text (e.g.
// copy/paste via ToUnicode), not drive layout math.
func gapChars(gapPt float64, r *model.Run, size float64) int {
	if gapPt <= 0 {
		return 0
	}
	return 1
}
