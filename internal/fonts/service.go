package fonts

import (
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"docxpdf/internal/model"
)

// GlyphID is a dense, zero-based glyph id assigned by the subsetter —
// distinct from the native glyph id the face itself uses.
type GlyphID uint16

// Face is a fully resolved font ready for embedding: either a subsetted
// sfnt face or the built-in Helvetica/WinAnsi fallback.
type Face struct {
	Key model.FontKey

	// Helvetica is true when resolution fell all the way through to the
	// built-in fallback (§4.2 step 3): no SubsetBytes, no sfnt face.
	Helvetica bool

	// BaseName is the PDF BaseFont name.
	BaseName string

	// SubsetBytes is the embedded face program bytes: a minimal subset
	// font containing only GlyphMap's glyphs when Subsetted is true, the
	// full original program otherwise (CFF, or a TrueType face whose
	// outlines couldn't be re-encoded — §4.2 step 6's fallback). Nil
	// when Helvetica.
	SubsetBytes []byte
	// Subsetted is true when SubsetBytes was rebuilt with the identity
	// CIDToGIDMap ordering (§4.2 steps 3-4): new glyph id i is exactly
	// GlyphMap's CID i. When false, SubsetBytes keeps the font's native
	// glyph ids and the caller must emit an explicit CIDToGIDMap stream.
	Subsetted bool
	IsOpenType bool // CFF outlines (FontFile3) vs TrueType (FontFile2)

	UnitsPerEm int

	AscentRatio    float64 // ascent / upem
	DescentRatio   float64 // |descent| / upem
	LineHeightRatio float64 // (asc - desc + gap) / upem
	CapHeightRatio float64

	// GlyphMap maps a used rune to its dense new glyph id (CID). Index 0
	// is reserved for .notdef.
	GlyphMap map[rune]GlyphID
	// NativeGID maps a dense new glyph id back to the face's own glyph
	// id, i.e. the CIDToGIDMap PDF stream content.
	NativeGID map[GlyphID]uint16
	// WidthsByGID is the 1000-unit-em advance width for each dense gid.
	WidthsByGID map[GlyphID]int
}

// AdvanceWidth1000 returns r's advance width in 1000-unit em space, 0 if
// r was never requested via Resolve/used_chars (never looked up lazily:
// every width needed by the Layout Engine must come from used_chars
// passed to Resolve).
func (f *Face) AdvanceWidth1000(r rune) int {
	if f.Helvetica {
		return winAnsiWidth(r)
	}
	gid, ok := f.GlyphMap[r]
	if !ok {
		return 0
	}
	return f.WidthsByGID[gid]
}

// Service resolves fonts for one conversion. It holds no cross-document
// state beyond its Index and embedded-font map, so it is cheap to build
// per call. The parsed sfnt.Font objects it produces are not cached
// across documents, and no other layer caches them either.
type Service struct {
	index         Index
	embedded      map[model.FontKey][]byte
	fallbackChain []string // semicolon-list default, e.g. config.Document.FallbackFonts
	log           *zap.Logger
}

// NewService builds a Font Service for one conversion.
func NewService(index Index, embedded map[model.FontKey][]byte, fallbackChain []string, log *zap.Logger) *Service {
	return &Service{index: index, embedded: embedded, fallbackChain: fallbackChain, log: log}
}

// Resolve implements the §4.2 resolution order for one (familyChain,
// bold, italic) request and subsets the result to usedChars. It never
// returns an error: the worst case is the Helvetica Face.
func (s *Service) Resolve(familyChain string, bold, italic bool, usedChars map[rune]bool) *Face {
	candidates := splitFamilyChain(familyChain)
	candidates = append(candidates, s.fallbackChain...)

	for _, family := range candidates {
		familyLower := strings.ToLower(strings.TrimSpace(family))
		if familyLower == "" {
			continue
		}
		if data, ok := s.embedded[model.FontKey{FamilyLower: familyLower, Bold: bold, Italic: italic}]; ok {
			if f := s.buildFace(model.FontKey{FamilyLower: familyLower, Bold: bold, Italic: italic}, data, usedChars); f != nil {
				return f
			}
		}
		if data, _, ok := s.index.Resolve(familyLower, bold, italic); ok {
			if f := s.buildFace(model.FontKey{FamilyLower: familyLower, Bold: bold, Italic: italic}, data, usedChars); f != nil {
				return f
			}
		}
		if bold || italic {
			if data, _, ok := s.index.Resolve(familyLower, false, false); ok {
				if f := s.buildFace(model.FontKey{FamilyLower: familyLower}, data, usedChars); f != nil {
					return f
				}
			}
		}
	}

	if s.log != nil {
		s.log.Warn("No font resolved, falling back to Helvetica", zap.String("family", familyChain), zap.Bool("bold", bold), zap.Bool("italic", italic))
	}
	return s.helvetica(bold, italic)
}

func splitFamilyChain(chain string) []string {
	parts := strings.Split(chain, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *Service) helvetica(bold, italic bool) *Face {
	name := "Helvetica"
	switch {
	case bold && italic:
		name = "Helvetica-BoldOblique"
	case bold:
		name = "Helvetica-Bold"
	case italic:
		name = "Helvetica-Oblique"
	}
	return &Face{Helvetica: true, BaseName: name}
}

// buildFace parses face bytes and subsets to usedChars, per §4.2
// "Subsetting and embedding" steps 1-6. Returns nil (caller falls
// through to the next candidate/Helvetica) if the bytes do not parse as
// a usable sfnt face.
func (s *Service) buildFace(key model.FontKey, data []byte, usedChars map[rune]bool) *Face {
	parsed, err := sfnt.Parse(data)
	if err != nil {
		if s.log != nil {
			s.log.Warn("Font bytes failed to parse, trying next candidate", zap.String("family", key.FamilyLower), zap.Error(err))
		}
		return nil
	}

	var buf sfnt.Buffer
	upem := int(parsed.UnitsPerEm())
	if upem <= 0 {
		upem = 1000
	}
	ppemWhole := fixed.I(upem) // query metrics/advances in font-design units directly

	metrics, _ := parsed.Metrics(&buf, ppemWhole, font.HintingNone)

	f := &Face{
		Key:         key,
		BaseName:    syntheticBaseName(key),
		SubsetBytes: data,
		IsOpenType:  isOpenTypeCFF(data),
		UnitsPerEm:  upem,
		GlyphMap:    map[rune]GlyphID{},
		NativeGID:   map[GlyphID]uint16{},
		WidthsByGID: map[GlyphID]int{},
	}
	if upem > 0 {
		f.AscentRatio = float64(metrics.Ascent.Round()) / float64(upem)
		f.DescentRatio = float64(metrics.Descent.Round()) / float64(upem)
		// Height already folds ascent+|descent|+linegap.
		f.LineHeightRatio = float64(metrics.Height.Round()) / float64(upem)
		f.CapHeightRatio = float64(metrics.CapHeight.Round()) / float64(upem)
	}

	runes := make([]rune, 0, len(usedChars))
	for r := range usedChars {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })

	nextGID := GlyphID(1) // 0 is .notdef
	f.NativeGID[0] = 0
	scale := fixed.I(1000) // §4.2 widths are expressed in 1000-unit em
	for _, r := range runes {
		gid, err := parsed.GlyphIndex(&buf, r)
		if err != nil || gid == 0 {
			continue
		}
		newGID := nextGID
		nextGID++
		f.GlyphMap[r] = newGID
		f.NativeGID[newGID] = uint16(gid)

		adv, err := parsed.GlyphAdvance(&buf, gid, scale, font.HintingNone)
		if err == nil {
			f.WidthsByGID[newGID] = adv.Round()
		}
	}

	// §4.2 steps 3-4: subset the face to exactly the glyphs GlyphMap
	// needs, in CID order, so the identity CIDToGIDMap applies. A CFF
	// (OTTO) program, or any outline this re-encoder can't represent, is
	// embedded whole instead (step 6's fallback) with an explicit map.
	if !f.IsOpenType {
		order := make([]sfnt.GlyphIndex, nextGID)
		order[0] = 0
		for cid, gid := range f.NativeGID {
			order[cid] = sfnt.GlyphIndex(gid)
		}
		if subset, ok := subsetTrueType(parsed, upem, order); ok {
			f.SubsetBytes = subset
			f.Subsetted = true
		}
	}

	return f
}

func syntheticBaseName(key model.FontKey) string {
	name := key.FamilyLower
	if name == "" {
		name = "Font"
	}
	name = strings.ReplaceAll(name, " ", "")
	name = strings.ToUpper(name[:1]) + name[1:]
	switch {
	case key.Bold && key.Italic:
		name += ",BoldItalic"
	case key.Bold:
		name += ",Bold"
	case key.Italic:
		name += ",Italic"
	}
	return name
}

// isOpenTypeCFF reports whether data is an OpenType face with CFF
// outlines ("OTTO" tag) rather than TrueType glyf outlines.
func isOpenTypeCFF(data []byte) bool {
	return len(data) >= 4 && string(data[:4]) == "OTTO"
}
