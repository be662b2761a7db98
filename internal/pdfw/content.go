package pdfw

import (
	"bytes"
	"fmt"
)

// Content accumulates the operators of one page content stream. It is a
// thin, stateful wrapper: callers (internal/paginate) decide what to
// draw and in what order; Content just emits the bytes, tracking text/
// graphics-state mode so it never emits a redundant BT/ET pair or
// repeats the current font/color (§4.4 Line rendering contract's
// "encoder optimization").
type Content struct {
	buf        bytes.Buffer
	inText     bool
	curFont    Name
	curSizePt  float64
	haveFont   bool
	curFillRGB uint32
	haveFill   bool
}

// NewContent starts an empty content stream.
func NewContent() *Content { return &Content{} }

// Bytes returns the accumulated operator stream, closing any open text
// block first.
func (c *Content) Bytes() []byte {
	c.EndText()
	return c.buf.Bytes()
}

func (c *Content) op(format string, args ...interface{}) {
	fmt.Fprintf(&c.buf, format, args...)
	c.buf.WriteByte('\n')
}

// GSave/GRestore bracket a q/Q graphics-state block (used to scope a
// clip, transform, or fill color change to one drawn element).
func (c *Content) GSave()    { c.op("q") }
func (c *Content) GRestore() { c.op("Q") }

// BeginText/EndText open/close one BT/ET block; redundant calls are
// no-ops so callers can call BeginText before every line without
// worrying about nesting.
func (c *Content) BeginText() {
	if !c.inText {
		c.op("BT")
		c.inText = true
		c.haveFont = false
	}
}

func (c *Content) EndText() {
	if c.inText {
		c.op("ET")
		c.inText = false
	}
}

// SetFont emits Tf only when the (resource name, size) pair changed
// since the last call.
func (c *Content) SetFont(resourceName Name, sizePt float64) {
	if c.haveFont && c.curFont == resourceName && c.curSizePt == sizePt {
		return
	}
	c.op("/%s %s Tf", resourceName, trimFloat(sizePt))
	c.curFont, c.curSizePt, c.haveFont = resourceName, sizePt, true
}

// MoveTextTo positions the text line matrix absolutely; the paginator's
// drawLines calls it for every text chunk.
func (c *Content) MoveTextTo(x, y float64) {
	c.op("1 0 0 1 %s %s Tm", trimFloat(x), trimFloat(y))
}

// MoveTextBy advances the text line matrix by a relative offset (Td),
// matching §4.4's "coordinate deltas via relative Td moves".
func (c *Content) MoveTextBy(dx, dy float64) {
	c.op("%s %s Td", trimFloat(dx), trimFloat(dy))
}

// ShowGlyphs emits Tj with a hex string of 2-byte CIDs (Identity-H
// encoding, §6 Output).
func (c *Content) ShowGlyphs(cids []uint16) {
	var hex bytes.Buffer
	hex.WriteByte('<')
	for _, cid := range cids {
		fmt.Fprintf(&hex, "%04X", cid)
	}
	hex.WriteByte('>')
	c.op("%s Tj", hex.String())
}

// ShowTextBytes emits Tj with a literal string, treating b as raw bytes
// (e.g. WinAnsi-encoded text for a simple Type1 font) rather than
// ranging over it as UTF-8 runes, which would corrupt any byte >= 0x80.
func (c *Content) ShowTextBytes(b []byte) {
	var lit bytes.Buffer
	lit.WriteByte('(')
	for _, ch := range b {
		switch ch {
		case '(', ')', '\\':
			lit.WriteByte('\\')
			lit.WriteByte(ch)
		default:
			lit.WriteByte(ch)
		}
	}
	lit.WriteByte(')')
	c.op("%s Tj", lit.String())
}

// SetFillRGB emits rg only on a real color change.
func (c *Content) SetFillRGB(rgb uint32) {
	if c.haveFill && c.curFillRGB == rgb {
		return
	}
	r, g, b := rgbComponents(rgb)
	c.op("%s %s %s rg", trimFloat(r), trimFloat(g), trimFloat(b))
	c.curFillRGB, c.haveFill = rgb, true
}

func (c *Content) SetStrokeRGB(rgb uint32) {
	r, g, b := rgbComponents(rgb)
	c.op("%s %s %s RG", trimFloat(r), trimFloat(g), trimFloat(b))
}

func (c *Content) SetLineWidth(w float64) {
	c.op("%s w", trimFloat(w))
}

func rgbComponents(rgb uint32) (r, g, b float64) {
	r = float64((rgb>>16)&0xff) / 255
	g = float64((rgb>>8)&0xff) / 255
	b = float64(rgb&0xff) / 255
	return
}

// Rect appends a rectangle to the current path (no paint operator).
func (c *Content) Rect(x, y, w, h float64) {
	c.op("%s %s %s %s re", trimFloat(x), trimFloat(y), trimFloat(w), trimFloat(h))
}

func (c *Content) MoveTo(x, y float64) { c.op("%s %s m", trimFloat(x), trimFloat(y)) }
func (c *Content) LineTo(x, y float64) { c.op("%s %s l", trimFloat(x), trimFloat(y)) }

func (c *Content) Fill()        { c.op("f") }
func (c *Content) Stroke()      { c.op("S") }
func (c *Content) FillStroke()  { c.op("B") }
func (c *Content) ClipNoPaint() { c.op("W n") }

// DrawImage paints the named XObject into the unit square, scaled by a
// cm matrix to (w, h) and translated to (x, y) (image origin is its
// bottom-left corner in PDF user space).
func (c *Content) DrawImage(resourceName Name, x, y, w, h float64) {
	c.GSave()
	c.op("%s 0 0 %s %s %s cm", trimFloat(w), trimFloat(h), trimFloat(x), trimFloat(y))
	c.op("/%s Do", resourceName)
	c.GRestore()
}
