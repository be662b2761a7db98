// Package images is the Image Embedder (spec §4.6): it takes the raw
// bytes the Document Parser carried through (§1 out-of-scope collaborator:
// "give me width, height, and a byte stream") and produces the exact
// bytes/format the PDF writer embeds — JPEG passes through untouched,
// PNG is decoded and optionally flattened/recompressed, and anything
// unrecognized is dropped with a warn log in favor of a placeholder the
// Paginator draws instead (§4.4 Failure semantics).
package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"go.uber.org/zap"

	"docxpdf/internal/common"
	"docxpdf/internal/model"
)

// Options controls re-encoding policy, mirroring config.DocumentConfig.Images.
type Options struct {
	JPEGQuality           int // unused for passthrough JPEG; reserved for a future recompress path
	RemovePNGTransparency bool
}

// Finalize produces the embeddable form of img. ok is false when the
// format could not be determined or decoded at all; callers must then
// render the grey placeholder rectangle and must not emit an XObject.
func Finalize(img model.EmbeddedImage, opts Options, log *zap.Logger) (model.EmbeddedImage, bool) {
	format, data, ok := sniff(img)
	if !ok {
		if log != nil {
			log.Warn("Unrecognized image format, using placeholder")
		}
		return model.EmbeddedImage{}, false
	}
	img.Format = format
	img.Data = data

	switch format {
	case common.ImageJPEG:
		// Passthrough: PDF DCTDecode embeds JPEG bytes directly (§4.6).
		return img, true
	case common.ImagePNG:
		return finalizePNG(img, opts, log)
	default:
		return model.EmbeddedImage{}, false
	}
}

// sniff resolves img's real format, keeping the common.ImageFormat the
// parser set when the data's leading signature agrees with it, and
// falling back to h2non/filetype magic-byte detection otherwise (e.g.
// a declared format the bytes themselves disagree with).
func sniff(img model.EmbeddedImage) (common.ImageFormat, []byte, bool) {
	if len(img.Data) == 0 {
		return 0, nil, false
	}
	switch {
	case img.Format == common.ImageJPEG && bytes.HasPrefix(img.Data, []byte{0xFF, 0xD8}):
		return img.Format, img.Data, true
	case img.Format == common.ImagePNG && bytes.HasPrefix(img.Data, []byte("\x89PNG")):
		return img.Format, img.Data, true
	}
	kind, err := filetype.Match(img.Data)
	if err != nil || kind == filetype.Unknown {
		return 0, nil, false
	}
	switch kind.Extension {
	case "jpg", "jpeg":
		return common.ImageJPEG, img.Data, true
	case "png":
		return common.ImagePNG, img.Data, true
	default:
		return 0, nil, false
	}
}

func finalizePNG(img model.EmbeddedImage, opts Options, log *zap.Logger) (model.EmbeddedImage, bool) {
	decoded, err := png.Decode(bytes.NewReader(img.Data))
	if err != nil {
		if log != nil {
			log.Warn("Failed to decode PNG, using placeholder", zap.Error(err))
		}
		return model.EmbeddedImage{}, false
	}

	if opts.RemovePNGTransparency {
		decoded = flattenAlpha(decoded)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, decoded, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		if log != nil {
			log.Warn("Failed to re-encode PNG, using placeholder", zap.Error(err))
		}
		return model.EmbeddedImage{}, false
	}

	img.Data = buf.Bytes()
	b := decoded.Bounds()
	img.PixelWidth = b.Dx()
	img.PixelHeight = b.Dy()
	return img, true
}

// flattenAlpha composites img over opaque white, dropping any alpha
// channel (PNGs with transparency otherwise need an SMask XObject, which
// config.Document.Images.remove_png_transparency lets callers opt out of).
func flattenAlpha(img image.Image) image.Image {
	background := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), color.White)
	return imaging.OverlayCenter(background, img, 1.0)
}

// ResizeToDisplay downsamples img so its pixel dimensions do not grossly
// exceed its declared display size, keeping embedded PDF bytes small when
// a source image is far higher resolution than its rendered box. Only
// PNG is ever resampled here; JPEG remains an untouched passthrough per
// §4.6.
func ResizeToDisplay(img model.EmbeddedImage, targetPxW, targetPxH int, log *zap.Logger) model.EmbeddedImage {
	if img.Format != common.ImagePNG || targetPxW <= 0 || targetPxH <= 0 {
		return img
	}
	if img.PixelWidth <= targetPxW && img.PixelHeight <= targetPxH {
		return img
	}
	decoded, err := png.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return img
	}
	resized := imaging.Resize(decoded, targetPxW, targetPxH, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		if log != nil {
			log.Warn("Failed to re-encode resized PNG, keeping original", zap.Error(err))
		}
		return img
	}
	img.Data = buf.Bytes()
	b := resized.Bounds()
	img.PixelWidth = b.Dx()
	img.PixelHeight = b.Dy()
	return img
}
