package wml

import (
	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// parseStylesheet reads word/styles.xml. Absence or malformed content
// yields an empty Stylesheet (hardcoded built-ins then apply at use site).
func parseStylesheet(data []byte, th Theme, log *zap.Logger) *Stylesheet {
	ss := newStylesheet()
	if len(data) == 0 {
		return ss
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		if log != nil {
			log.Warn("Malformed styles.xml, ignoring", zap.Error(err))
		}
		return ss
	}
	root := doc.Root()
	if root == nil {
		return ss
	}

	if dd := root.SelectElement("docDefaults"); dd != nil {
		if rpd := dd.SelectElement("rPrDefault"); rpd != nil {
			if rPr := rpd.SelectElement("rPr"); rPr != nil {
				ss.DocDefault = parseRunProps(rPr, th)
			}
		}
		if ppd := dd.SelectElement("pPrDefault"); ppd != nil {
			if pPr := ppd.SelectElement("pPr"); pPr != nil {
				raw := parseParaProps(pPr, th)
				ss.DocDefaultP = raw.Props
			}
		}
	}

	for _, styleEl := range root.SelectElements("style") {
		id := styleEl.SelectAttrValue("styleId", "")
		if id == "" {
			continue
		}
		s := &Style{ID: id}
		switch styleEl.SelectAttrValue("type", "paragraph") {
		case "character":
			s.Type = StyleCharacter
		case "table":
			s.Type = StyleTable
		default:
			s.Type = StyleParagraph
		}
		if basedOn := styleEl.SelectElement("basedOn"); basedOn != nil {
			s.BasedOn = basedOn.SelectAttrValue("val", "")
		}
		if pPr := styleEl.SelectElement("pPr"); pPr != nil {
			raw := parseParaProps(pPr, th)
			s.Para = raw.Props
		}
		if rPr := styleEl.SelectElement("rPr"); rPr != nil {
			s.Run = parseRunProps(rPr, th)
		}
		ss.Styles[id] = s
	}
	return ss
}
