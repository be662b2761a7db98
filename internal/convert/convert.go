// Package convert is the top-level orchestration glue (spec §1/§5): it
// wires the Document Parser, Font Service, Layout Engine, Paginator and
// PDF writer into one call, the way fbc/convert.Run wires FB2 parsing
// through to an output-format writer in the teacher pipeline.
package convert

import (
	"archive/zip"
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"docxpdf/internal/archive"
	"docxpdf/internal/config"
	"docxpdf/internal/docxerr"
	"docxpdf/internal/fonts"
	"docxpdf/internal/paginate"
	"docxpdf/internal/wml"
)

// Run converts one docx package read from r (size bytes long) into a PDF
// written to w. sourceName is a debug label only (e.g. the input file's
// base name). It never returns an error for a font or image problem —
// only for the docxerr Kinds described in §7 (Io, InvalidDocx, XmlParse,
// Pdf); every other defect degrades to a fallback and a warn log.
func Run(ctx context.Context, r io.ReaderAt, size int64, sourceName string, w io.Writer, cfg *config.DocumentConfig, log *zap.Logger) error {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return docxerr.New(docxerr.Io, fmt.Errorf("open docx package: %w", err))
	}
	container := archive.Open(zr)

	doc, err := wml.Parse(container, sourceName, wml.Options{
		DefaultFamily: firstOf(cfg.FallbackFonts, "Liberation Sans;DejaVu Sans;Helvetica"),
		DefaultSizePt: 12,
	}, log)
	if err != nil {
		return err
	}

	// Font directory discovery is out of scope (§1): the Font Service only
	// ever resolves against fonts embedded in the package itself, falling
	// through to Helvetica for everything else.
	index := fonts.NewMemIndex()

	pdfBytes, err := paginate.Paginate(doc, index, paginate.Options{
		FallbackFonts:         cfg.FallbackFonts,
		JPEGQuality:           cfg.Images.JPEGQuality,
		RemovePNGTransparency: cfg.Images.RemovePNGTransparency,
	}, log)
	if err != nil {
		return docxerr.New(docxerr.Pdf, err)
	}

	if _, err := w.Write(pdfBytes); err != nil {
		return docxerr.New(docxerr.Io, fmt.Errorf("write output: %w", err))
	}
	return nil
}

func firstOf(chain []string, fallback string) string {
	if len(chain) == 0 {
		return fallback
	}
	joined := chain[0]
	for _, c := range chain[1:] {
		joined += ";" + c
	}
	return joined
}
