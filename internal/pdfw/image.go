package pdfw

import (
	"bytes"
	"image/color"
	"image/jpeg"
	"image/png"

	"docxpdf/internal/common"
	"docxpdf/internal/model"
)

// embedImage writes an image XObject for img, already finalized by
// internal/images.Finalize (JPEG bytes verbatim, PNG bytes decodable).
// JPEG passes through as DCTDecode; PNG is decoded to raw RGB samples
// (FlateDecode) with an optional separate SMask XObject carrying the
// alpha channel, matching §6 Output exactly.
func embedImage(w *Writer, img model.EmbeddedImage) (Ref, bool) {
	switch img.Format {
	case common.ImageJPEG:
		return embedJPEG(w, img)
	case common.ImagePNG:
		return embedPNG(w, img)
	default:
		return 0, false
	}
}

func embedJPEG(w *Writer, img model.EmbeddedImage) (Ref, bool) {
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return 0, false
	}
	colorSpace := Name("DeviceRGB")
	if cfg.ColorModel == color.GrayModel || cfg.ColorModel == color.Gray16Model {
		colorSpace = Name("DeviceGray")
	}
	ref := w.NextRef()
	w.PutStream(ref, Stream{
		Dict: Dict{
			"Type":             Name("XObject"),
			"Subtype":          Name("Image"),
			"Width":            cfg.Width,
			"Height":           cfg.Height,
			"ColorSpace":       colorSpace,
			"BitsPerComponent": 8,
			"Filter":           Name("DCTDecode"),
		},
		Raw:     img.Data,
		NoFlate: true,
	})
	return ref, true
}

func embedPNG(w *Writer, img model.EmbeddedImage) (Ref, bool) {
	decoded, err := png.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return 0, false
	}
	b := decoded.Bounds()
	width, height := b.Dx(), b.Dy()

	rgb := make([]byte, width*height*3)
	var alpha []byte
	hasAlpha := false

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := decoded.At(x, y).RGBA()
			rgb[i*3+0] = byte(r >> 8)
			rgb[i*3+1] = byte(g >> 8)
			rgb[i*3+2] = byte(bl >> 8)
			if a != 0xffff {
				hasAlpha = true
			}
			i++
		}
	}
	if hasAlpha {
		alpha = make([]byte, width*height)
		i = 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				_, _, _, a := decoded.At(x, y).RGBA()
				alpha[i] = byte(a >> 8)
				i++
			}
		}
	}

	var smaskRef Ref
	dict := Dict{
		"Type":             Name("XObject"),
		"Subtype":          Name("Image"),
		"Width":            width,
		"Height":           height,
		"ColorSpace":       Name("DeviceRGB"),
		"BitsPerComponent": 8,
	}
	if hasAlpha {
		smaskRef = w.NextRef()
		w.PutStream(smaskRef, Stream{
			Dict: Dict{
				"Type":             Name("XObject"),
				"Subtype":          Name("Image"),
				"Width":            width,
				"Height":           height,
				"ColorSpace":       Name("DeviceGray"),
				"BitsPerComponent": 8,
			},
			Raw: alpha,
		})
		dict["SMask"] = smaskRef
	}

	ref := w.NextRef()
	w.PutStream(ref, Stream{Dict: dict, Raw: rgb})
	return ref, true
}

// PlaceholderGrayRGB is the fill of the grey rectangle internal/paginate
// draws in place of an image XObject when its image resource pool
// reports the image as not embeddable (§4.4 Failure semantics). Kept
// here as the shared grey tone so paginate and pdfw agree on its value.
const PlaceholderGrayRGB uint32 = 0xcccccc
