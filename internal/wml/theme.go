package wml

import (
	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// Theme holds the two Latin typeface names a document's theme declares;
// runs that reference "majorHAnsi"/"minorHAnsi" resolve against these
// instead of naming a font family directly (§4.1 "Fonts follow the same
// cascade but with theme indirection").
type Theme struct {
	MajorLatin string
	MinorLatin string
}

// parseTheme reads the first matching word/theme/*.xml part. Absence or
// malformed content yields a zero-value Theme (both names empty, meaning
// the indirection falls through to the hardcoded fallback chain).
func parseTheme(data []byte, log *zap.Logger) Theme {
	var th Theme
	if len(data) == 0 {
		return th
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		if log != nil {
			log.Warn("Malformed theme XML, ignoring", zap.Error(err))
		}
		return th
	}
	root := doc.Root()
	if root == nil {
		return th
	}
	themeElements := root.SelectElement("themeElements")
	if themeElements == nil {
		return th
	}
	fontScheme := themeElements.SelectElement("fontScheme")
	if fontScheme == nil {
		return th
	}
	if major := fontScheme.SelectElement("majorFont"); major != nil {
		th.MajorLatin = latinTypeface(major)
	}
	if minor := fontScheme.SelectElement("minorFont"); minor != nil {
		th.MinorLatin = latinTypeface(minor)
	}
	return th
}

func latinTypeface(fontGroup *etree.Element) string {
	latin := fontGroup.SelectElement("latin")
	if latin == nil {
		return ""
	}
	return latin.SelectAttrValue("typeface", "")
}

// Resolve turns a raw ascii-theme/font-family attribute pair into the
// effective family name: an explicit name wins, otherwise "majorHAnsi" /
// "minorHAnsi" indirect through the theme, otherwise "" (caller falls back
// to the hardcoded default chain).
func (th Theme) Resolve(explicitFamily, themeRef string) string {
	if explicitFamily != "" {
		return explicitFamily
	}
	switch themeRef {
	case "majorHAnsi", "majorAscii", "majorBidi":
		return th.MajorLatin
	case "minorHAnsi", "minorAscii", "minorBidi":
		return th.MinorLatin
	default:
		return ""
	}
}
