package paginate

import (
	"fmt"

	"go.uber.org/zap"

	"docxpdf/internal/fonts"
	"docxpdf/internal/images"
	"docxpdf/internal/model"
	"docxpdf/internal/pdfw"
)

// resourcePool assigns stable PDF resource names to the fonts and images
// a conversion actually uses, and owns the Image Embedder call so every
// distinct image's bytes are finalized (§4.6) exactly once regardless of
// how many paragraphs reference it.
type resourcePool struct {
	fm        *faceMeasurer
	fontNames map[faceKey]pdfw.Name
	nextFont  int

	imgOpts   images.Options
	imgNames  map[string]pdfw.Name
	imgData   map[string]model.EmbeddedImage
	imgOK     map[string]bool
	nextImage int

	log *zap.Logger
}

func newResourcePool(fm *faceMeasurer, imgOpts images.Options, log *zap.Logger) *resourcePool {
	return &resourcePool{
		fm:        fm,
		fontNames: map[faceKey]pdfw.Name{},
		imgNames:  map[string]pdfw.Name{},
		imgData:   map[string]model.EmbeddedImage{},
		imgOK:     map[string]bool{},
		imgOpts:   imgOpts,
		log:       log,
	}
}

func (p *resourcePool) fontName(family string, bold, italic bool) pdfw.Name {
	k := faceKey{familyChain: family, bold: bold, italic: italic}
	if n, ok := p.fontNames[k]; ok {
		return n
	}
	n := pdfw.Name(fmt.Sprintf("F%d", p.nextFont))
	p.nextFont++
	p.fontNames[k] = n
	return n
}

func (p *resourcePool) faces() map[string]*fonts.Face {
	out := make(map[string]*fonts.Face, len(p.fontNames))
	for k, n := range p.fontNames {
		out[string(n)] = p.fm.faceFor(k.familyChain, k.bold, k.italic)
	}
	return out
}

// imageName finalizes img (once per distinct byte content) and returns
// its resource name plus whether it embeds at all; ok=false means the
// caller must draw the grey placeholder instead (§4.4 Failure
// semantics).
func (p *resourcePool) imageName(img model.EmbeddedImage) (pdfw.Name, bool) {
	key := string(img.Data)
	if n, ok := p.imgNames[key]; ok {
		return n, p.imgOK[key]
	}
	finalized, ok := images.Finalize(img, p.imgOpts, p.log)
	n := pdfw.Name(fmt.Sprintf("Im%d", p.nextImage))
	p.nextImage++
	p.imgNames[key] = n
	p.imgOK[key] = ok
	if ok {
		p.imgData[key] = finalized
	}
	return n, ok
}

func (p *resourcePool) images() map[string]model.EmbeddedImage {
	out := make(map[string]model.EmbeddedImage, len(p.imgData))
	for key, n := range p.imgNames {
		if p.imgOK[key] {
			out[string(n)] = p.imgData[key]
		}
	}
	return out
}
