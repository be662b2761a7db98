package wml

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"docxpdf/internal/common"
	"docxpdf/internal/model"
)

// resolveDrawingImage reads a wp:inline or wp:anchor element's blip
// reference and extent into an EmbeddedImage. PNG/JPEG decoding is an
// out-of-scope external collaborator per spec §1 ("give me width, height,
// and a byte stream"); image.DecodeConfig is used only to read pixel
// dimensions cheaply, never a full decode. Any failure (missing rel,
// missing part, unrecognized format) returns nil and is logged, never
// fatal (§7).
func (dp *docParser) resolveDrawingImage(extEl *etree.Element) *model.EmbeddedImage {
	widthEMU, heightEMU := 0, 0
	if extent := extEl.SelectElement("extent"); extent != nil {
		widthEMU, _ = attrInt(extent, "cx")
		heightEMU, _ = attrInt(extent, "cy")
	}

	relID := findBlipEmbed(extEl)
	if relID == "" {
		return nil
	}
	target, ok := dp.rels[relID]
	if !ok {
		if dp.log != nil {
			dp.log.Warn("Drawing references unknown relationship", zap.String("rel", relID))
		}
		return nil
	}
	data, ok, err := dp.container.ReadPart(target)
	if err != nil || !ok || len(data) == 0 {
		return nil
	}

	format, ok := sniffImageFormat(data)
	if !ok {
		if dp.log != nil {
			dp.log.Warn("Unrecognized embedded image format, skipping", zap.String("part", target))
		}
		return nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	pixelW, pixelH := 1, 1
	if err == nil {
		pixelW, pixelH = cfg.Width, cfg.Height
	}

	return &model.EmbeddedImage{
		Data:          data,
		Format:        format,
		PixelWidth:    pixelW,
		PixelHeight:   pixelH,
		DisplayWidth:  common.EMUToPoints(int64(widthEMU)),
		DisplayHeight: common.EMUToPoints(int64(heightEMU)),
	}
}

// findBlipEmbed descends into a:graphic/a:graphicData/pic:pic/pic:blipFill
// /a:blip looking for the r:embed attribute, without hardcoding the exact
// nesting depth (DrawingML wraps it differently for pictures vs. other
// graphic frames).
func findBlipEmbed(el *etree.Element) string {
	if el.Tag == "blip" {
		if v := el.SelectAttrValue("embed", ""); v != "" {
			return v
		}
	}
	for _, child := range el.ChildElements() {
		if v := findBlipEmbed(child); v != "" {
			return v
		}
	}
	return ""
}

func sniffImageFormat(data []byte) (common.ImageFormat, bool) {
	switch {
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8:
		return common.ImageJPEG, true
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}):
		return common.ImagePNG, true
	default:
		return 0, false
	}
}
