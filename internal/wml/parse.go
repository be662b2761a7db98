package wml

import (
	"github.com/beevik/etree"
	"go.uber.org/zap"

	"docxpdf/internal/archive"
	"docxpdf/internal/docxerr"
	"docxpdf/internal/model"
)

// docParser threads the resolved style/numbering/theme/relationship
// context through every part-specific parsing function in this package.
// One docParser is constructed per conversion and is not reused.
type docParser struct {
	container *archive.Container
	rels      archive.Relationships // current part's relationship table
	styles    *Stylesheet
	numbering *Numbering
	theme     Theme
	log       *zap.Logger

	defaultFamily          string
	defaultSizePt          float64
	defaultLineSpacingMult float64
}

const (
	documentPartPath = "word/document.xml"
	stylesPartPath   = "word/styles.xml"
	numberingPath    = "word/numbering.xml"
	fontTablePath    = "word/fontTable.xml"
	footnotesPath    = "word/footnotes.xml"
)

// Options configures hardcoded built-ins the cascade falls back to when
// neither inline properties, styles, nor document defaults supply a value
// (§4.1 "fixed point of ... document defaults ▷ hardcoded built-ins").
type Options struct {
	DefaultFamily string  // e.g. "Liberation Sans;DejaVu Sans;Helvetica"
	DefaultSizePt float64 // e.g. 12
}

// Parse turns an opened docx container into a model.Document. It fails
// with docxerr only for the four kinds described in §7: Io, InvalidDocx,
// XmlParse, Pdf. Every other missing or malformed part is defaulted and
// logged (never fatal).
func Parse(c *archive.Container, sourceName string, opts Options, log *zap.Logger) (*model.Document, error) {
	docData, found, err := c.ReadPart(documentPartPath)
	if err != nil {
		return nil, docxerr.WithPath(docxerr.Io, documentPartPath, err)
	}
	if !found || len(docData) == 0 {
		return nil, docxerr.WithPath(docxerr.InvalidDocx, documentPartPath, nil)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(docData); err != nil {
		return nil, docxerr.WithPath(docxerr.XmlParse, documentPartPath, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, docxerr.WithPath(docxerr.InvalidDocx, documentPartPath, nil)
	}
	body := root.SelectElement("body")
	if body == nil {
		return nil, docxerr.WithPath(docxerr.InvalidDocx, documentPartPath, nil)
	}

	dp := &docParser{
		container:              c,
		log:                    log,
		defaultFamily:          firstNonEmpty(opts.DefaultFamily, "Helvetica"),
		defaultSizePt:          firstNonZero(opts.DefaultSizePt, 12),
		defaultLineSpacingMult: 1.0,
	}

	docRelsData, _, _ := c.ReadPart(archive.RelsPathFor(documentPartPath))
	dp.rels, _ = archive.ParseRelationships(docRelsData, "word")

	themeData := readFirstTheme(c)
	dp.theme = parseTheme(themeData, log)

	stylesData, _, _ := c.ReadPart(stylesPartPath)
	dp.styles = parseStylesheet(stylesData, dp.theme, log)

	numberingData, _, _ := c.ReadPart(numberingPath)
	dp.numbering = parseNumbering(numberingData, log)

	fontTableData, _, _ := c.ReadPart(fontTablePath)
	fontTableRelsData, _, _ := c.ReadPart(archive.RelsPathFor(fontTablePath))
	fontTableRels, _ := archive.ParseRelationships(fontTableRelsData, "word")
	embeddedFonts := resolveEmbeddedFonts(fontTableData, fontTableRels, c, log)

	footnotes := dp.parseFootnotes()

	sections, err := dp.parseSections(body)
	if err != nil {
		return nil, err
	}

	return &model.Document{
		Sections:               sections,
		DefaultLineSpacingMult:  dp.defaultLineSpacingMult,
		EmbeddedFonts:           embeddedFonts,
		Footnotes:               footnotes,
		SourceName:              sourceName,
	}, nil
}

// parseSections walks body's direct children, splitting into Sections at
// each paragraph whose pPr carries a sectPr (all but the last section are
// recorded this way; the final section's sectPr is body's own trailing
// child, per OOXML convention).
func (dp *docParser) parseSections(body *etree.Element) ([]model.Section, error) {
	var sections []model.Section
	var blocks []model.Block

	for _, child := range body.ChildElements() {
		switch child.Tag {
		case "p":
			blocks = append(blocks, model.ParagraphBlock(paragraphPtr(dp.parseParagraph(child))))
			if pPr := child.SelectElement("pPr"); pPr != nil {
				if sectPr := pPr.SelectElement("sectPr"); sectPr != nil {
					sections = append(sections, model.Section{
						Properties: dp.parseSectionProperties(sectPr),
						Blocks:     blocks,
					})
					blocks = nil
				}
			}
		case "tbl":
			t := dp.parseTable(child)
			blocks = append(blocks, model.TableBlock(&t))
		case "sectPr":
			sections = append(sections, model.Section{
				Properties: dp.parseSectionProperties(child),
				Blocks:     blocks,
			})
			blocks = nil
		}
	}

	if len(blocks) > 0 || len(sections) == 0 {
		sections = append(sections, model.Section{
			Properties: dp.parseSectionProperties(nil),
			Blocks:     blocks,
		})
	}
	return sections, nil
}

func paragraphPtr(p model.Paragraph) *model.Paragraph { return &p }

func (dp *docParser) parseFootnotes() map[string]model.Footnote {
	out := map[string]model.Footnote{}
	data, found, _ := dp.container.ReadPart(footnotesPath)
	if !found || len(data) == 0 {
		return out
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		if dp.log != nil {
			dp.log.Warn("Malformed footnotes.xml, ignoring", zap.Error(err))
		}
		return out
	}
	root := doc.Root()
	if root == nil {
		return out
	}

	prevRels := dp.rels
	if partRels, ok := dp.readPartRels(footnotesPath); ok {
		dp.rels = partRels
	}
	defer func() { dp.rels = prevRels }()

	for _, fnEl := range root.SelectElements("footnote") {
		if _, hasType := attrStr(fnEl, "type"); hasType {
			continue // separator/continuationSeparator entries
		}
		id, ok := attrStr(fnEl, "id")
		if !ok {
			continue
		}
		var fn model.Footnote
		for _, pEl := range fnEl.SelectElements("p") {
			fn.Paragraphs = append(fn.Paragraphs, dp.parseParagraph(pEl))
		}
		out[id] = fn
	}
	return out
}

// readPartRels loads the companion .rels file for an arbitrary part (used
// by header/footer/footnote parsing, whose own hyperlink/image references
// are relative to that part, not word/document.xml).
func (dp *docParser) readPartRels(partPath string) (archive.Relationships, bool) {
	data, found, err := dp.container.ReadPart(archive.RelsPathFor(partPath))
	if err != nil || !found {
		return nil, false
	}
	rels, err := archive.ParseRelationships(data, "word")
	if err != nil {
		return nil, false
	}
	return rels, true
}

func readFirstTheme(c *archive.Container) []byte {
	for _, name := range c.Names("word/theme/") {
		data, found, err := c.ReadPart(name)
		if err == nil && found && len(data) > 0 {
			return data
		}
	}
	return nil
}

func firstNonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func firstNonZero(v, fallback float64) float64 {
	if v != 0 {
		return v
	}
	return fallback
}
