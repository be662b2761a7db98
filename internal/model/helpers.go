package model

// EnsureParagraphMark guarantees the §3 invariant that every paragraph
// carries at least one Run, even when visually empty, so line height is
// always defined. fontSizePt/family should be the paragraph's resolved
// run-properties fixed point (the "paragraph mark" formatting).
func EnsureParagraphMark(p *Paragraph, family string, sizePt float64) {
	if len(p.Runs) > 0 {
		return
	}
	p.Runs = append(p.Runs, Run{
		Text:       "",
		FontFamily: family,
		FontSizePt: sizePt,
	})
}

// IsVisuallyEmpty reports whether a paragraph has no rendered content
// besides whitespace-only text and the synthetic paragraph-mark run.
func (p *Paragraph) IsVisuallyEmpty() bool {
	for _, r := range p.Runs {
		if r.InlineImage != nil || r.IsTab {
			return false
		}
		for _, c := range r.Text {
			if c != ' ' && c != '\t' {
				return false
			}
		}
	}
	return true
}

// ParagraphBlock and TableBlock wrap a Paragraph or a Table as a Block of
// the matching Kind.
func ParagraphBlock(p *Paragraph) Block { return Block{Kind: BlockParagraph, Paragraph: p} }
func TableBlock(t *Table) Block         { return Block{Kind: BlockTable, Table: t} }
