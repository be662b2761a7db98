package fonts

import (
	"bytes"
	"encoding/binary"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// subsetTrueType rebuilds a minimal TrueType ("glyf") font program holding
// only the glyphs named by order (order[i] is the original font's glyph id
// that becomes new glyph id i; order[0] must be .notdef), per §4.2 steps
// 3-4. The new glyph order is exactly the dense CID order buildFace already
// assigns, so the caller can use the identity CIDToGIDMap the spec
// describes instead of an explicit map. Returns ok=false (caller embeds
// the full, unsubsetted program instead, per §4.2 step 6's fallback) if
// any requested glyph's outline can't be re-encoded — e.g. a cubic (CFF)
// contour leaking through a mislabeled OpenType/CFF font.
func subsetTrueType(parsed *sfnt.Font, upem int, order []sfnt.GlyphIndex) ([]byte, bool) {
	var buf sfnt.Buffer
	ppem := fixed.I(upem)

	glyphs := make([]subsetGlyph, len(order))
	for i, gid := range order {
		g, ok := loadSubsetGlyph(parsed, &buf, gid, ppem)
		if !ok {
			return nil, false
		}
		adv, err := parsed.GlyphAdvance(&buf, gid, ppem, font.HintingNone)
		if err != nil {
			return nil, false
		}
		g.advance = adv.Round()
		glyphs[i] = g
	}

	ascent, descent := 0, 0
	if m, err := parsed.Metrics(&buf, ppem, font.HintingNone); err == nil {
		ascent = m.Ascent.Round()
		descent = m.Descent.Round()
	}

	return assembleSubsetFont(glyphs, upem, ascent, descent), true
}

type subsetPoint struct {
	x, y    int16
	onCurve bool
}

type subsetGlyph struct {
	contours [][]subsetPoint
	xMin, yMin, xMax, yMax int16
	advance                int
}

// loadSubsetGlyph flattens gid's outline (composites already resolved by
// sfnt.LoadGlyph) into the simple-glyph contour form the "glyf" table
// uses. Cubic (CFF) segments are rejected: ok=false, since a quadratic
// glyf table has no way to represent them.
func loadSubsetGlyph(parsed *sfnt.Font, buf *sfnt.Buffer, gid sfnt.GlyphIndex, ppem fixed.Int26_6) (subsetGlyph, bool) {
	segs, err := parsed.LoadGlyph(buf, gid, ppem, nil)
	if err != nil {
		return subsetGlyph{}, false
	}
	if len(segs) == 0 {
		return subsetGlyph{}, true // space and other marking-less glyphs
	}

	var contours [][]subsetPoint
	var cur []subsetPoint
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if cur != nil {
				contours = append(contours, cur)
			}
			cur = []subsetPoint{pointAt(seg.Args[0], true)}
		case sfnt.SegmentOpLineTo:
			cur = append(cur, pointAt(seg.Args[0], true))
		case sfnt.SegmentOpQuadTo:
			cur = append(cur, pointAt(seg.Args[0], false), pointAt(seg.Args[1], true))
		default: // SegmentOpCubeTo: not representable in a quadratic glyf outline
			return subsetGlyph{}, false
		}
	}
	if cur != nil {
		contours = append(contours, cur)
	}

	g := subsetGlyph{contours: contours}
	first := true
	for _, c := range contours {
		for _, p := range c {
			if first {
				g.xMin, g.xMax, g.yMin, g.yMax = p.x, p.x, p.y, p.y
				first = false
				continue
			}
			if p.x < g.xMin {
				g.xMin = p.x
			}
			if p.x > g.xMax {
				g.xMax = p.x
			}
			if p.y < g.yMin {
				g.yMin = p.y
			}
			if p.y > g.yMax {
				g.yMax = p.y
			}
		}
	}
	return g, true
}

func pointAt(p fixed.Point26_6, onCurve bool) subsetPoint {
	return subsetPoint{x: int16(p.X.Round()), y: int16(p.Y.Round()), onCurve: onCurve}
}

// encodeGlyf renders one glyph's simple-glyph table entry (no composites,
// no instructions, no repeat/short-vector flag compression — every
// coordinate is a plain 2-byte signed delta).
func encodeGlyf(g subsetGlyph) []byte {
	if len(g.contours) == 0 {
		return nil
	}
	var buf bytes.Buffer
	be16 := func(v int16) { binary.Write(&buf, binary.BigEndian, v) }

	be16(int16(len(g.contours)))
	be16(g.xMin)
	be16(g.yMin)
	be16(g.xMax)
	be16(g.yMax)

	end := -1
	for _, c := range g.contours {
		end += len(c)
		be16(int16(end))
	}
	be16(0) // instructionLength

	var flags, xs, ys bytes.Buffer
	lastX, lastY := int16(0), int16(0)
	for _, c := range g.contours {
		for _, p := range c {
			var flag byte
			if p.onCurve {
				flag = 0x01
			}
			flags.WriteByte(flag)
			dx, dy := p.x-lastX, p.y-lastY
			binary.Write(&xs, binary.BigEndian, dx)
			binary.Write(&ys, binary.BigEndian, dy)
			lastX, lastY = p.x, p.y
		}
	}
	buf.Write(flags.Bytes())
	buf.Write(xs.Bytes())
	buf.Write(ys.Bytes())
	return buf.Bytes()
}

func padEven(b []byte) []byte {
	if len(b)%2 == 1 {
		return append(b, 0)
	}
	return b
}

func tableChecksum(data []byte) uint32 {
	var sum uint32
	n := len(data) / 4
	for i := 0; i < n; i++ {
		sum += binary.BigEndian.Uint32(data[i*4:])
	}
	if rem := len(data) % 4; rem != 0 {
		var last [4]byte
		copy(last[:], data[n*4:])
		sum += binary.BigEndian.Uint32(last[:])
	}
	return sum
}

// assembleSubsetFont writes a complete sfnt binary containing exactly
// glyf/head/hhea/hmtx/loca/maxp — the tables a PDF reader needs to
// rasterize glyphs selected by GID via CIDToGIDMap/Identity-H. cmap/name/
// post are intentionally omitted: nothing in the embedded program is ever
// looked up by character code or PostScript name once it's inside a PDF.
func assembleSubsetFont(glyphs []subsetGlyph, upem, ascent, descent int) []byte {
	numGlyphs := len(glyphs)

	glyfChunks := make([][]byte, numGlyphs)
	loca := make([]uint32, numGlyphs+1)
	var glyfOffset uint32
	fontXMin, fontYMin, fontXMax, fontYMax := int16(0), int16(0), int16(0), int16(0)
	maxPoints, maxContours := 0, 0
	advMax := 0
	first := true
	for i, g := range glyphs {
		raw := padEven(encodeGlyf(g))
		glyfChunks[i] = raw
		loca[i] = glyfOffset
		glyfOffset += uint32(len(raw))

		if len(g.contours) > 0 {
			if first {
				fontXMin, fontXMax, fontYMin, fontYMax = g.xMin, g.xMax, g.yMin, g.yMax
				first = false
			} else {
				fontXMin = minI16(fontXMin, g.xMin)
				fontXMax = maxI16(fontXMax, g.xMax)
				fontYMin = minI16(fontYMin, g.yMin)
				fontYMax = maxI16(fontYMax, g.yMax)
			}
			if len(g.contours) > maxContours {
				maxContours = len(g.contours)
			}
			pts := 0
			for _, c := range g.contours {
				pts += len(c)
			}
			if pts > maxPoints {
				maxPoints = pts
			}
		}
		if g.advance > advMax {
			advMax = g.advance
		}
	}
	loca[numGlyphs] = glyfOffset

	var glyf bytes.Buffer
	for _, c := range glyfChunks {
		glyf.Write(c)
	}

	var locaBuf bytes.Buffer
	for _, off := range loca {
		binary.Write(&locaBuf, binary.BigEndian, off)
	}

	var head bytes.Buffer
	binary.Write(&head, binary.BigEndian, uint16(1)) // majorVersion
	binary.Write(&head, binary.BigEndian, uint16(0)) // minorVersion
	binary.Write(&head, binary.BigEndian, uint32(0x00010000)) // fontRevision
	binary.Write(&head, binary.BigEndian, uint32(0))          // checkSumAdjustment, patched below
	binary.Write(&head, binary.BigEndian, uint32(0x5F0F3CF5)) // magicNumber
	binary.Write(&head, binary.BigEndian, uint16(0))          // flags
	binary.Write(&head, binary.BigEndian, uint16(upem))
	binary.Write(&head, binary.BigEndian, int64(0)) // created
	binary.Write(&head, binary.BigEndian, int64(0)) // modified
	binary.Write(&head, binary.BigEndian, fontXMin)
	binary.Write(&head, binary.BigEndian, fontYMin)
	binary.Write(&head, binary.BigEndian, fontXMax)
	binary.Write(&head, binary.BigEndian, fontYMax)
	binary.Write(&head, binary.BigEndian, uint16(0)) // macStyle
	binary.Write(&head, binary.BigEndian, uint16(8)) // lowestRecPPEM
	binary.Write(&head, binary.BigEndian, int16(2))  // fontDirectionHint
	binary.Write(&head, binary.BigEndian, int16(1))  // indexToLocFormat: long
	binary.Write(&head, binary.BigEndian, int16(0))  // glyphDataFormat

	var hhea bytes.Buffer
	binary.Write(&hhea, binary.BigEndian, uint16(1)) // majorVersion
	binary.Write(&hhea, binary.BigEndian, uint16(0)) // minorVersion
	binary.Write(&hhea, binary.BigEndian, int16(ascent))
	binary.Write(&hhea, binary.BigEndian, int16(descent))
	binary.Write(&hhea, binary.BigEndian, int16(0)) // lineGap
	binary.Write(&hhea, binary.BigEndian, uint16(advMax))
	binary.Write(&hhea, binary.BigEndian, int16(0)) // minLeftSideBearing
	binary.Write(&hhea, binary.BigEndian, int16(0)) // minRightSideBearing
	binary.Write(&hhea, binary.BigEndian, int16(0)) // xMaxExtent
	binary.Write(&hhea, binary.BigEndian, int16(1)) // caretSlopeRise
	binary.Write(&hhea, binary.BigEndian, int16(0)) // caretSlopeRun
	binary.Write(&hhea, binary.BigEndian, int16(0)) // caretOffset
	binary.Write(&hhea, binary.BigEndian, int16(0)) // reserved x4
	binary.Write(&hhea, binary.BigEndian, int16(0))
	binary.Write(&hhea, binary.BigEndian, int16(0))
	binary.Write(&hhea, binary.BigEndian, int16(0))
	binary.Write(&hhea, binary.BigEndian, int16(0))  // metricDataFormat
	binary.Write(&hhea, binary.BigEndian, uint16(numGlyphs)) // numberOfHMetrics

	var hmtx bytes.Buffer
	for _, g := range glyphs {
		binary.Write(&hmtx, binary.BigEndian, uint16(g.advance))
		binary.Write(&hmtx, binary.BigEndian, g.xMin)
	}

	var maxp bytes.Buffer
	binary.Write(&maxp, binary.BigEndian, uint32(0x00010000)) // version 1.0
	binary.Write(&maxp, binary.BigEndian, uint16(numGlyphs))
	binary.Write(&maxp, binary.BigEndian, uint16(maxPoints))
	binary.Write(&maxp, binary.BigEndian, uint16(maxContours))
	binary.Write(&maxp, binary.BigEndian, uint16(0)) // maxCompositePoints
	binary.Write(&maxp, binary.BigEndian, uint16(0)) // maxCompositeContours
	binary.Write(&maxp, binary.BigEndian, uint16(2)) // maxZones
	binary.Write(&maxp, binary.BigEndian, uint16(0)) // maxTwilightPoints
	binary.Write(&maxp, binary.BigEndian, uint16(0)) // maxStorage
	binary.Write(&maxp, binary.BigEndian, uint16(0)) // maxFunctionDefs
	binary.Write(&maxp, binary.BigEndian, uint16(0)) // maxInstructionDefs
	binary.Write(&maxp, binary.BigEndian, uint16(0)) // maxStackElements
	binary.Write(&maxp, binary.BigEndian, uint16(0)) // maxSizeOfInstructions
	binary.Write(&maxp, binary.BigEndian, uint16(0)) // maxComponentElements
	binary.Write(&maxp, binary.BigEndian, uint16(0)) // maxComponentDepth

	type table struct {
		tag  string
		data []byte
	}
	// Must stay in ascending tag order (sfnt table directory requirement).
	tables := []table{
		{"glyf", padEven(glyf.Bytes())},
		{"head", head.Bytes()},
		{"hhea", hhea.Bytes()},
		{"hmtx", padEven(hmtx.Bytes())},
		{"loca", locaBuf.Bytes()},
		{"maxp", maxp.Bytes()},
	}

	numTables := len(tables)
	entrySelector := 0
	for (1 << (entrySelector + 1)) <= numTables {
		entrySelector++
	}
	searchRange := (1 << entrySelector) * 16
	rangeShift := numTables*16 - searchRange

	var out bytes.Buffer
	binary.Write(&out, binary.BigEndian, uint32(0x00010000)) // sfntVersion: TrueType glyf outlines
	binary.Write(&out, binary.BigEndian, uint16(numTables))
	binary.Write(&out, binary.BigEndian, uint16(searchRange))
	binary.Write(&out, binary.BigEndian, uint16(entrySelector))
	binary.Write(&out, binary.BigEndian, uint16(rangeShift))

	headOffset := uint32(12 + 16*numTables)
	offset := headOffset
	type dirEntry struct {
		tag            string
		checksum, off, length uint32
	}
	entries := make([]dirEntry, numTables)
	var headTableOffset uint32
	for i, t := range tables {
		padded := padEven(t.data)
		entries[i] = dirEntry{tag: t.tag, checksum: tableChecksum(t.data), off: offset, length: uint32(len(t.data))}
		if t.tag == "head" {
			headTableOffset = offset
		}
		offset += uint32(len(padded))
	}
	for _, e := range entries {
		out.WriteString(e.tag)
		binary.Write(&out, binary.BigEndian, e.checksum)
		binary.Write(&out, binary.BigEndian, e.off)
		binary.Write(&out, binary.BigEndian, e.length)
	}
	for _, t := range tables {
		out.Write(padEven(t.data))
	}

	result := out.Bytes()
	// Patch head.checkSumAdjustment now that the whole file is laid out.
	fileSum := tableChecksum(result)
	adjustment := 0xB1B0AFBA - fileSum
	binary.BigEndian.PutUint32(result[headTableOffset+8:], adjustment)
	return result
}

func minI16(a, b int16) int16 {
	if a < b {
		return a
	}
	return b
}

func maxI16(a, b int16) int16 {
	if a > b {
		return a
	}
	return b
}
