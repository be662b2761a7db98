package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"docxpdf/internal/common"
	"docxpdf/internal/model"
)

func encodeTestPNG(t *testing.T, w, h int, withAlpha bool) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := uint8(255)
			if withAlpha {
				a = uint8(128)
			}
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 0, A: a})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestFinalize_JPEGPassthrough(t *testing.T) {
	raw := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0}
	in := model.EmbeddedImage{Data: raw, Format: common.ImageJPEG}
	out, ok := Finalize(in, Options{}, nil)
	if !ok {
		t.Fatal("Finalize() JPEG not ok")
	}
	if !bytes.Equal(out.Data, raw) {
		t.Errorf("Finalize() JPEG bytes changed, want passthrough")
	}
}

func TestFinalize_PNGRoundTrip(t *testing.T) {
	raw := encodeTestPNG(t, 8, 8, false)
	in := model.EmbeddedImage{Data: raw, Format: common.ImagePNG}
	out, ok := Finalize(in, Options{}, nil)
	if !ok {
		t.Fatal("Finalize() PNG not ok")
	}
	if out.PixelWidth != 8 || out.PixelHeight != 8 {
		t.Errorf("Finalize() PNG dims = %dx%d, want 8x8", out.PixelWidth, out.PixelHeight)
	}
	if _, err := png.Decode(bytes.NewReader(out.Data)); err != nil {
		t.Errorf("Finalize() PNG output does not decode: %v", err)
	}
}

func TestFinalize_UnrecognizedDropsWithNotOK(t *testing.T) {
	in := model.EmbeddedImage{Data: []byte("not an image")}
	_, ok := Finalize(in, Options{}, nil)
	if ok {
		t.Fatal("Finalize() on garbage bytes = ok, want not ok")
	}
}

func TestFinalize_RemovesTransparency(t *testing.T) {
	raw := encodeTestPNG(t, 4, 4, true)
	in := model.EmbeddedImage{Data: raw, Format: common.ImagePNG}
	out, ok := Finalize(in, Options{RemovePNGTransparency: true}, nil)
	if !ok {
		t.Fatal("Finalize() not ok")
	}
	decoded, err := png.Decode(bytes.NewReader(out.Data))
	if err != nil {
		t.Fatalf("decode flattened PNG: %v", err)
	}
	_, _, _, a := decoded.At(0, 0).RGBA()
	if a != 0xffff {
		t.Errorf("flattened pixel alpha = %#x, want fully opaque", a)
	}
}

func TestResizeToDisplay_NoOpWhenSmallerThanTarget(t *testing.T) {
	raw := encodeTestPNG(t, 4, 4, false)
	in := model.EmbeddedImage{Data: raw, Format: common.ImagePNG, PixelWidth: 4, PixelHeight: 4}
	out := ResizeToDisplay(in, 100, 100, nil)
	if out.PixelWidth != 4 || out.PixelHeight != 4 {
		t.Errorf("ResizeToDisplay() upsized a smaller image, got %dx%d", out.PixelWidth, out.PixelHeight)
	}
}

func TestResizeToDisplay_Downsamples(t *testing.T) {
	raw := encodeTestPNG(t, 64, 64, false)
	in := model.EmbeddedImage{Data: raw, Format: common.ImagePNG, PixelWidth: 64, PixelHeight: 64}
	out := ResizeToDisplay(in, 16, 16, nil)
	if out.PixelWidth != 16 || out.PixelHeight != 16 {
		t.Errorf("ResizeToDisplay() = %dx%d, want 16x16", out.PixelWidth, out.PixelHeight)
	}
}
