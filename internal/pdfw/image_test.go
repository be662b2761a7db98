package pdfw

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"docxpdf/internal/common"
	"docxpdf/internal/model"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func TestEmbedPNG_OpaqueImageHasNoSMask(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			src.Set(x, y, color.RGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	w := New(&buf, nil)
	ref, ok := embedPNG(w, model.EmbeddedImage{Data: encodePNG(t, src), Format: common.ImagePNG})
	if !ok {
		t.Fatalf("embedPNG() ok = false")
	}
	w.Close(ref, ref)
	out := buf.String()
	if !contains(out, "/ColorSpace /DeviceRGB") {
		t.Errorf("missing DeviceRGB color space")
	}
	if contains(out, "/SMask") {
		t.Errorf("opaque PNG should not carry an SMask")
	}
}

func TestEmbedPNG_TransparentImageGetsSMask(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.Set(0, 0, color.NRGBA{R: 255, A: 128})
	src.Set(1, 0, color.NRGBA{R: 255, A: 255})
	src.Set(0, 1, color.NRGBA{R: 255, A: 255})
	src.Set(1, 1, color.NRGBA{R: 255, A: 255})

	var buf bytes.Buffer
	w := New(&buf, nil)
	ref, ok := embedPNG(w, model.EmbeddedImage{Data: encodePNG(t, src), Format: common.ImagePNG})
	if !ok {
		t.Fatalf("embedPNG() ok = false")
	}
	w.Close(ref, ref)
	out := buf.String()
	if !contains(out, "/SMask") {
		t.Errorf("partially transparent PNG should carry an SMask")
	}
	if !contains(out, "/ColorSpace /DeviceGray") {
		t.Errorf("SMask XObject should declare DeviceGray")
	}
}

func TestEmbedImage_UnrecognizedFormatFails(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, nil)
	_, ok := embedImage(w, model.EmbeddedImage{Data: []byte("not an image"), Format: common.ImageFormat(99)})
	if ok {
		t.Errorf("embedImage() ok = true for unrecognized format, want false")
	}
}

func contains(s, substr string) bool {
	return bytes.Contains([]byte(s), []byte(substr))
}
