package paginate

import (
	"strconv"

	"docxpdf/internal/common"
	"docxpdf/internal/model"
)

// assignFootnoteNumbers scans body paragraphs (never header/footer/
// footnote content itself) in document order and returns the sequential
// display number for each footnote id, keyed by first appearance (§4.4
// Footnote rendering: "assigned... in the order their references first
// appear in document order").
func assignFootnoteNumbers(doc *model.Document) map[string]int {
	nums := map[string]int{}
	next := 1
	visit := func(p *model.Paragraph) {
		for i := range p.Runs {
			id := p.Runs[i].FootnoteID
			if id == "" {
				continue
			}
			if _, ok := nums[id]; !ok {
				nums[id] = next
				next++
			}
		}
	}
	for s := range doc.Sections {
		for b := range doc.Sections[s].Blocks {
			blk := &doc.Sections[s].Blocks[b]
			switch blk.Kind {
			case model.BlockParagraph:
				if blk.Paragraph != nil {
					visit(blk.Paragraph)
				}
			case model.BlockTable:
				if blk.Table != nil {
					for r := range blk.Table.Rows {
						for c := range blk.Table.Rows[r].Cells {
							cell := &blk.Table.Rows[r].Cells[c]
							for p := range cell.Paragraphs {
								visit(&cell.Paragraphs[p])
							}
						}
					}
				}
			}
		}
	}
	return nums
}

// substituteFields returns an ephemeral copy of p with field-code and
// footnote-reference runs resolved to literal text, never mutating p
// itself (§9 Design Notes: "ephemeral copies... pure function"). pageNum
// and totalPages are 1-based; totalPages may be 0 during the first pass,
// before the page count is known — callers must re-run this during the
// second, NUMPAGES-aware pass.
func substituteFields(p model.Paragraph, pageNum, totalPages int, footnoteNums map[string]int) model.Paragraph {
	out := p
	out.Runs = make([]model.Run, len(p.Runs))
	copy(out.Runs, p.Runs)

	for i := range out.Runs {
		r := &out.Runs[i]
		switch r.Field {
		case common.FieldPage:
			r.Text = strconv.Itoa(pageNum)
		case common.FieldNumPages:
			r.Text = strconv.Itoa(totalPages)
		}
		if r.FootnoteID != "" && !r.IsFootnoteBackref {
			if n, ok := footnoteNums[r.FootnoteID]; ok {
				r.Text = strconv.Itoa(n)
			}
		}
		if r.IsFootnoteBackref {
			if n, ok := footnoteNums[r.FootnoteID]; ok {
				r.Text = strconv.Itoa(n)
			}
		}
	}
	return out
}
