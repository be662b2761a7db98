package wml

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"docxpdf/internal/archive"
	"docxpdf/internal/model"
)

// fontKeyAttr reads the w:fontKey GUID carried on an embed element.
func fontKeyAttr(el *etree.Element) string {
	return el.SelectAttrValue("fontKey", "")
}

// deobfuscateFontKey parses a GUID string like
// "{302EE813-EB4A-4642-A93A-89EF99B2457E}" into the 16-byte obfuscation key
// described in §4.1: the GUID's mixed-endian fields are parsed into raw
// byte order, then the whole 16 bytes are reversed.
func deobfuscateFontKey(guid string) ([16]byte, bool) {
	g := strings.Trim(guid, "{}")
	g = strings.ReplaceAll(g, "-", "")
	if len(g) != 32 {
		return [16]byte{}, false
	}
	raw, err := hexDecode(g)
	if err != nil {
		return [16]byte{}, false
	}

	// raw is parsed in GUID field order: data1 (4 bytes, big-endian as
	// read from hex), data2 (2 bytes), data3 (2 bytes), data4 (8 bytes).
	// The mixed-endian GUID byte order stores data1/data2/data3
	// little-endian internally, so swap each field to native byte order.
	var guidBytes [16]byte
	guidBytes[0], guidBytes[1], guidBytes[2], guidBytes[3] = raw[3], raw[2], raw[1], raw[0]
	guidBytes[4], guidBytes[5] = raw[5], raw[4]
	guidBytes[6], guidBytes[7] = raw[7], raw[6]
	copy(guidBytes[8:], raw[8:16])

	var key [16]byte
	for i := 0; i < 16; i++ {
		key[i] = guidBytes[15-i]
	}
	return key, true
}

func hexDecode(s string) ([]byte, error) {
	out := make([]byte, len(s)/2)
	for i := range out {
		v, err := strconv.ParseUint(s[2*i:2*i+2], 16, 8)
		if err != nil {
			return nil, err
		}
		out[i] = byte(v)
	}
	return out, nil
}

// deobfuscateFontBytes XORs the first 32 bytes of data with two
// concatenated copies of key (byte i uses key[i%16]); the remainder of
// data is returned unchanged. data is not mutated in place.
func deobfuscateFontBytes(data []byte, key [16]byte) []byte {
	out := make([]byte, len(data))
	copy(out, data)
	n := len(out)
	if n > 32 {
		n = 32
	}
	for i := 0; i < n; i++ {
		out[i] ^= key[i%16]
	}
	return out
}

// resolveEmbeddedFonts reads every <w:embedRegular|embedBold|...> element's
// fontKey, locates its target part via rels, deobfuscates the bytes, and
// returns a family+style keyed map. Any failure (missing rel, missing part,
// bad GUID) is skipped and logged, never fatal.
func resolveEmbeddedFonts(data []byte, rels archive.Relationships, c *archive.Container, log *zap.Logger) map[model.FontKey][]byte {
	out := map[model.FontKey][]byte{}
	if len(data) == 0 {
		return out
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return out
	}
	root := doc.Root()
	if root == nil {
		return out
	}
	for _, child := range root.ChildElements() {
		if child.Tag != "font" {
			continue
		}
		family := strings.ToLower(child.SelectAttrValue("name", ""))
		if family == "" {
			continue
		}
		specs := []struct {
			tag          string
			bold, italic bool
		}{
			{"embedRegular", false, false},
			{"embedBold", true, false},
			{"embedItalic", false, true},
			{"embedBoldItalic", true, true},
		}
		for _, sp := range specs {
			el := child.SelectElement(sp.tag)
			if el == nil {
				continue
			}
			relID := el.SelectAttrValue("id", "")
			guid := fontKeyAttr(el)
			if relID == "" || guid == "" {
				continue
			}
			target, ok := rels[relID]
			if !ok {
				if log != nil {
					log.Warn("Font embed references unknown relationship", zap.String("family", family), zap.String("rel", relID))
				}
				continue
			}
			raw, ok, err := c.ReadPart(target)
			if err != nil || !ok {
				continue
			}
			key, ok := deobfuscateFontKey(guid)
			if !ok {
				if log != nil {
					log.Warn("Malformed embedded-font GUID, skipping", zap.String("family", family))
				}
				continue
			}
			out[model.FontKey{FamilyLower: family, Bold: sp.bold, Italic: sp.italic}] = deobfuscateFontBytes(raw, key)
		}
	}
	return out
}
