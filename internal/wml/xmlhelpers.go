package wml

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"docxpdf/internal/common"
)

// attrInt reads an integer attribute (by local name, ignoring namespace
// prefix, matching etree's default Key match), returning ok=false if
// absent or unparsable.
func attrInt(el *etree.Element, name string) (int, bool) {
	if el == nil {
		return 0, false
	}
	v := el.SelectAttrValue(name, "")
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func attrFloat(el *etree.Element, name string) (float64, bool) {
	if el == nil {
		return 0, false
	}
	v := el.SelectAttrValue(name, "")
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func attrStr(el *etree.Element, name string) (string, bool) {
	if el == nil {
		return "", false
	}
	v := el.SelectAttrValue(name, "")
	return v, v != ""
}

// onOff implements WML's "on/off" toggle element convention: the element's
// mere presence means true, unless w:val is explicitly "0"/"false"/"off".
func onOff(el *etree.Element) *bool {
	if el == nil {
		return nil
	}
	v := strings.ToLower(el.SelectAttrValue("val", "true"))
	b := !(v == "0" || v == "false" || v == "off")
	return &b
}

// hexColor parses a 6-hex-digit sRGB value, or reports auto=true for
// "auto"/"none"/empty.
func hexColor(v string) (rgb uint32, auto bool) {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, "auto") {
		return 0, true
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return 0, true
	}
	return uint32(n), false
}

func ptrInt(v int) *int { return &v }

func ptrStr(v string) *string { return &v }

func ptrBool(v bool) *bool { return &v }

func ptrFloat(v float64) *float64 { return &v }

func ptrAlign(v common.Alignment) *common.Alignment { return &v }

func ptrVert(v common.VertAlign) *common.VertAlign { return &v }

func ptrU32(v uint32) *uint32 { return &v }
