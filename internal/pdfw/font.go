package pdfw

import (
	"fmt"
	"sort"

	"docxpdf/internal/fonts"
)

// embedFace writes a Type0/CIDFont pair (plus descriptor, CIDToGIDMap,
// ToUnicode CMap and the embedded font program) for one resolved
// fonts.Face, returning the Type0 font dict's ref. The structure mirrors
// andybalholm/pdf's Font.writeTo: a CID-keyed composite font with
// Identity-H encoding, a /W width array, and a batched bfchar ToUnicode
// CMap. Helvetica faces use the simpler built-in Type1/WinAnsi form
// instead, since there is no font program to subset.
func embedFace(w *Writer, face *fonts.Face) Ref {
	if face.Helvetica {
		return embedHelvetica(w, face.BaseName)
	}

	fontFileRef := w.NextRef()
	if face.IsOpenType {
		w.PutStream(fontFileRef, Stream{
			Dict: Dict{"Subtype": Name("OpenType")},
			Raw:  face.SubsetBytes,
		})
	} else {
		w.PutStream(fontFileRef, Stream{Raw: face.SubsetBytes})
	}

	descRef := w.NextRef()
	ascent := face.AscentRatio * 1000
	descent := -face.DescentRatio * 1000
	capHeight := face.CapHeightRatio * 1000
	if capHeight == 0 {
		capHeight = ascent
	}
	descriptor := Dict{
		"Type":        Name("FontDescriptor"),
		"FontName":    Name(face.BaseName),
		"Flags":       4, // symbolic, per CID composite convention
		"FontBBox":    Array{float64(0), descent, float64(1000), ascent},
		"ItalicAngle": float64(0),
		"Ascent":      ascent,
		"Descent":     descent,
		"CapHeight":   capHeight,
		"StemV":       float64(80),
	}
	if face.IsOpenType {
		descriptor["FontFile3"] = fontFileRef
	} else {
		descriptor["FontFile2"] = fontFileRef
	}
	w.Put(descRef, descriptor)

	// A subsetted face's new glyph order is exactly its CID order (§4.2
	// steps 3-4), so the identity map needs no stream at all. The
	// full-font fallback path keeps native glyph ids, so it still needs
	// the explicit CID->GID stream.
	var cidToGIDMap interface{} = Name("Identity")
	if !face.Subsetted {
		cidToGIDRef := w.NextRef()
		w.PutStream(cidToGIDRef, Stream{Raw: cidToGIDMapBytes(face)})
		cidToGIDMap = cidToGIDRef
	}

	cidFontRef := w.NextRef()
	w.Put(cidFontRef, Dict{
		"Type":           Name("Font"),
		"Subtype":        Name("CIDFontType2"),
		"BaseFont":       Name(face.BaseName),
		"CIDSystemInfo":  Dict{"Registry": "Adobe", "Ordering": "Identity", "Supplement": 0},
		"FontDescriptor": descRef,
		"DW":             avgWidth(face),
		"W":              widthsArray(face),
		"CIDToGIDMap":    cidToGIDMap,
	})

	toUnicodeRef := w.NextRef()
	w.PutStream(toUnicodeRef, Stream{Raw: []byte(toUnicodeCMap(face))})

	type0Ref := w.NextRef()
	w.Put(type0Ref, Dict{
		"Type":            Name("Font"),
		"Subtype":         Name("Type0"),
		"BaseFont":        Name(face.BaseName),
		"Encoding":        Name("Identity-H"),
		"DescendantFonts": Array{cidFontRef},
		"ToUnicode":       toUnicodeRef,
	})
	return type0Ref
}

func embedHelvetica(w *Writer, baseName string) Ref {
	ref := w.NextRef()
	w.Put(ref, Dict{
		"Type":     Name("Font"),
		"Subtype":  Name("Type1"),
		"BaseFont": Name(baseName),
		"Encoding": Name("WinAnsiEncoding"),
	})
	return ref
}

// cidToGIDMapBytes builds the explicit CIDToGIDMap stream (2 bytes per
// CID, big-endian native glyph id, indexed by dense CID up to the
// highest one assigned) for the full-font fallback path, where the
// embedded program keeps its own native glyph ids instead of the
// subsetter's identity ordering.
func cidToGIDMapBytes(face *fonts.Face) []byte {
	maxCID := fonts.GlyphID(0)
	for cid := range face.NativeGID {
		if cid > maxCID {
			maxCID = cid
		}
	}
	out := make([]byte, (int(maxCID)+1)*2)
	for cid, gid := range face.NativeGID {
		i := int(cid) * 2
		out[i] = byte(gid >> 8)
		out[i+1] = byte(gid)
	}
	return out
}

func sortedCIDs(face *fonts.Face) []fonts.GlyphID {
	cids := make([]fonts.GlyphID, 0, len(face.WidthsByGID))
	for cid := range face.WidthsByGID {
		cids = append(cids, cid)
	}
	sort.Slice(cids, func(i, j int) bool { return cids[i] < cids[j] })
	return cids
}

// widthsArray builds the /W array as runs of consecutive CIDs, each
// followed by its own width: "c [w1 w2 ... wn]".
func widthsArray(face *fonts.Face) Array {
	cids := sortedCIDs(face)
	var out Array
	i := 0
	for i < len(cids) {
		start := cids[i]
		var ws Array
		j := i
		for j < len(cids) && cids[j] == start+fonts.GlyphID(j-i) {
			ws = append(ws, face.WidthsByGID[cids[j]])
			j++
		}
		out = append(out, int(start), ws)
		i = j
	}
	return out
}

func avgWidth(face *fonts.Face) int {
	if len(face.WidthsByGID) == 0 {
		return 500
	}
	var sum int
	for _, w := range face.WidthsByGID {
		sum += w
	}
	return sum / len(face.WidthsByGID)
}

// toUnicodeCMap builds a ToUnicode CMap mapping each dense CID back to
// its source rune, batched 100 bfchar entries per block the way
// andybalholm/pdf's encoder does.
func toUnicodeCMap(face *fonts.Face) string {
	runeOf := make(map[fonts.GlyphID]rune, len(face.GlyphMap))
	for r, cid := range face.GlyphMap {
		runeOf[cid] = r
	}
	cids := sortedCIDs(face)

	s := "/CIDInit /ProcSet findresource begin\n" +
		"12 dict begin\nbegincmap\n" +
		"/CIDSystemInfo <<\n/Registry (Adobe)\n/Ordering (UCS)\n/Supplement 0\n>> def\n" +
		"/CMapName /Adobe-Identity-UCS def\n/CMapType 2 def\n" +
		"1 begincodespacerange\n<0000> <FFFF>\nendcodespacerange\n"

	for i := 0; i < len(cids); i += 100 {
		end := i + 100
		if end > len(cids) {
			end = len(cids)
		}
		s += fmt.Sprintf("%d beginbfchar\n", end-i)
		for _, cid := range cids[i:end] {
			r := runeOf[cid]
			s += fmt.Sprintf("<%04X> <%04X>\n", cid, r)
		}
		s += "endbfchar\n"
	}
	s += "endcmap\nCMapName currentdict /CMap defineresource pop\nend\nend\n"
	return s
}
