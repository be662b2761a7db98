package wml

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"docxpdf/internal/common"
)

// LevelDef is one <w:lvl> of an abstract numbering definition.
type LevelDef struct {
	Format       common.NumberFormat
	LvlText      string
	Start        int
	IndentLeft   float64 // pt
	IndentHang   float64 // pt
}

// abstractNum is one <w:abstractNum>'s level table, keyed by ilvl.
type abstractNum struct {
	Levels map[int]LevelDef
}

// Numbering is the two-level numId -> abstractNumId -> level map described
// in §4.1, plus the per-(numId,level) counters maintained while paragraphs
// are walked in document order.
type Numbering struct {
	numToAbstract map[int]int
	abstracts     map[int]*abstractNum

	counters map[numLevelKey]int
	depth    map[int]int // current deepest level visited per numId
}

type numLevelKey struct {
	numID int
	level int
}

func newNumbering() *Numbering {
	return &Numbering{
		numToAbstract: map[int]int{},
		abstracts:     map[int]*abstractNum{},
		counters:      map[numLevelKey]int{},
		depth:         map[int]int{},
	}
}

// parseNumbering reads word/numbering.xml. Absence or malformed content is
// never fatal: the caller gets an empty Numbering and list labels resolve
// to "" (§7 propagation policy).
func parseNumbering(data []byte, log *zap.Logger) *Numbering {
	n := newNumbering()
	if len(data) == 0 {
		return n
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		if log != nil {
			log.Warn("Malformed numbering.xml, ignoring", zap.Error(err))
		}
		return n
	}
	root := doc.Root()
	if root == nil {
		return n
	}
	for _, child := range root.ChildElements() {
		switch child.Tag {
		case "abstractNum":
			id, ok := attrInt(child, "abstractNumId")
			if !ok {
				continue
			}
			n.abstracts[id] = parseAbstractNum(child)
		case "num":
			numID, ok := attrInt(child, "numId")
			if !ok {
				continue
			}
			if ref := child.SelectElement("abstractNumId"); ref != nil {
				if absID, ok := attrInt(ref, "val"); ok {
					n.numToAbstract[numID] = absID
				}
			}
		}
	}
	return n
}

func parseAbstractNum(el *etree.Element) *abstractNum {
	a := &abstractNum{Levels: map[int]LevelDef{}}
	for _, lvl := range el.ChildElements() {
		if lvl.Tag != "lvl" {
			continue
		}
		ilvl, ok := attrInt(lvl, "ilvl")
		if !ok {
			continue
		}
		def := LevelDef{Format: common.NumFormatDecimal, Start: 1}
		if startEl := lvl.SelectElement("start"); startEl != nil {
			if v, ok := attrInt(startEl, "val"); ok {
				def.Start = v
			}
		}
		if fmtEl := lvl.SelectElement("numFmt"); fmtEl != nil {
			def.Format = parseNumFmt(fmtEl.SelectAttrValue("val", ""))
		}
		if textEl := lvl.SelectElement("lvlText"); textEl != nil {
			def.LvlText = textEl.SelectAttrValue("val", "")
		}
		if pPr := lvl.SelectElement("pPr"); pPr != nil {
			if ind := pPr.SelectElement("ind"); ind != nil {
				if v, ok := attrInt(ind, "left"); ok {
					def.IndentLeft = common.TwipsToPoints(v)
				}
				if v, ok := attrInt(ind, "hanging"); ok {
					def.IndentHang = common.TwipsToPoints(v)
				}
			}
		}
		a.Levels[ilvl] = def
	}
	return a
}

func parseNumFmt(v string) common.NumberFormat {
	switch v {
	case "decimal":
		return common.NumFormatDecimal
	case "decimalZero":
		return common.NumFormatDecimalZero
	case "lowerLetter":
		return common.NumFormatLowerLetter
	case "upperLetter":
		return common.NumFormatUpperLetter
	case "lowerRoman":
		return common.NumFormatLowerRoman
	case "upperRoman":
		return common.NumFormatUpperRoman
	case "bullet":
		return common.NumFormatBullet
	case "none", "":
		return common.NumFormatNone
	default:
		return common.NumFormatDecimal
	}
}

// levelDef looks up the LevelDef for (numId, ilvl), ok=false if the numId
// or level is unresolvable (malformed/missing numbering.xml).
func (n *Numbering) levelDef(numID, ilvl int) (LevelDef, bool) {
	absID, ok := n.numToAbstract[numID]
	if !ok {
		return LevelDef{}, false
	}
	abs, ok := n.abstracts[absID]
	if !ok {
		return LevelDef{}, false
	}
	def, ok := abs.Levels[ilvl]
	return def, ok
}

// Label advances the counters for (numId, ilvl) per the document-order
// paragraph walk in §4.1 and returns the resolved list label text, or ""
// if numbering could not be resolved.
func (n *Numbering) Label(numID, ilvl int) string {
	def, ok := n.levelDef(numID, ilvl)
	if !ok {
		return ""
	}

	if prevDepth, seen := n.depth[numID]; seen && prevDepth > ilvl {
		for lv := ilvl + 1; lv <= prevDepth; lv++ {
			delete(n.counters, numLevelKey{numID: numID, level: lv})
		}
	}
	n.depth[numID] = ilvl

	key := numLevelKey{numID: numID, level: ilvl}
	cur, seen := n.counters[key]
	if !seen {
		cur = def.Start
	} else {
		cur++
	}
	n.counters[key] = cur

	if def.Format == common.NumFormatBullet {
		return bulletGlyph(def.LvlText)
	}
	return n.expandLvlText(numID, def.LvlText, ilvl)
}

// expandLvlText substitutes every "%k" placeholder (k in 1..9) with the
// formatted counter value at level k-1, reading sibling levels' current
// counters (falling back to their start value if not yet visited).
func (n *Numbering) expandLvlText(numID int, tmpl string, ilvl int) string {
	var b strings.Builder
	runes := []rune(tmpl)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '%' && i+1 < len(runes) && runes[i+1] >= '1' && runes[i+1] <= '9' {
			level := int(runes[i+1]-'1')
			b.WriteString(n.formattedCounter(numID, level))
			i++
			continue
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}

func (n *Numbering) formattedCounter(numID, level int) string {
	def, ok := n.levelDef(numID, level)
	if !ok {
		return ""
	}
	key := numLevelKey{numID: numID, level: level}
	v, seen := n.counters[key]
	if !seen {
		v = def.Start
	}
	return formatCounter(v, def.Format)
}

func formatCounter(v int, format common.NumberFormat) string {
	switch format {
	case common.NumFormatDecimalZero:
		return fmt.Sprintf("%02d", v)
	case common.NumFormatLowerLetter:
		return letterBase26(v, false)
	case common.NumFormatUpperLetter:
		return letterBase26(v, true)
	case common.NumFormatLowerRoman:
		return strings.ToLower(roman(v))
	case common.NumFormatUpperRoman:
		return roman(v)
	case common.NumFormatNone:
		return ""
	default:
		return fmt.Sprintf("%d", v)
	}
}

// letterBase26 renders v (1-based) in excess-26 notation starting at "a"/"A":
// 1="a", 26="z", 27="aa", 28="ab", matching Word's lowerLetter/upperLetter.
func letterBase26(v int, upper bool) string {
	if v < 1 {
		v = 1
	}
	var digits []byte
	for v > 0 {
		v--
		digits = append([]byte{byte('a' + v%26)}, digits...)
		v /= 26
	}
	s := string(digits)
	if upper {
		s = strings.ToUpper(s)
	}
	return s
}

var romanTable = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// roman renders v as an uppercase Roman numeral via the standard greedy
// subtraction table. Values outside 1..3999 are rendered as plain decimal,
// since Word never produces numerals outside that range in practice.
func roman(v int) string {
	if v <= 0 || v > 3999 {
		return fmt.Sprintf("%d", v)
	}
	var b strings.Builder
	for _, r := range romanTable {
		for v >= r.value {
			b.WriteString(r.symbol)
			v -= r.value
		}
	}
	return b.String()
}

// bulletPUA maps the private-use-area codepoints Word's Wingdings/Symbol
// bullet fonts commonly use to their nearest standard Unicode glyph.
var bulletPUA = map[rune]rune{
	0xF0A7: '■', // ■ square
	0xF0B7: '•', // • bullet
	0xF0D8: '•',
	0xF06C: '●', // ● circle
	0xF0A8: '◆', // ◆ diamond
	0xF0FC: '✓', // ✓ check
	0xF076: '✓',
}

// bulletGlyph substitutes the first rune of lvlText through the PUA map,
// falling back to U+2022 when the glyph is unmapped or lvlText is empty.
func bulletGlyph(lvlText string) string {
	for _, r := range lvlText {
		if mapped, ok := bulletPUA[r]; ok {
			return string(mapped)
		}
		if r < 0xE000 || r > 0xF8FF {
			return string(r)
		}
		return "•"
	}
	return "•"
}
