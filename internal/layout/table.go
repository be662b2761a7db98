package layout

import "docxpdf/internal/model"

// AutoFitColumns implements §4.3 Table auto-fit: columns whose content
// cannot fit their declared width are expanded to their minimum, and the
// deficit is recovered from other columns' slack, proportionally.
func AutoFitColumns(t *model.Table, m Measurer) []float64 {
	n := len(t.ColumnWidths)
	declared := make([]float64, n)
	copy(declared, t.ColumnWidths)
	if n == 0 {
		return declared
	}

	minWidths := make([]float64, n)
	for _, row := range t.Rows {
		col := 0
		for _, cell := range row.Cells {
			span := cell.GridSpan
			if span < 1 {
				span = 1
			}
			if span == 1 && col < n {
				w := longestWordWidth(cell, m) + t.CellMargin.Left + t.CellMargin.Right
				if w > minWidths[col] {
					minWidths[col] = w
				}
			}
			col += span
		}
	}

	widths := make([]float64, n)
	slack := make([]float64, n)
	var deficit, totalSlack float64
	for i := 0; i < n; i++ {
		if minWidths[i] > declared[i] {
			widths[i] = minWidths[i]
			deficit += minWidths[i] - declared[i]
		} else {
			widths[i] = declared[i]
			slack[i] = declared[i] - minWidths[i]
			totalSlack += slack[i]
		}
	}

	if deficit > 0 && totalSlack > 0 {
		factor := deficit / totalSlack
		if factor > 1 {
			factor = 1
		}
		for i := 0; i < n; i++ {
			if slack[i] > 0 {
				widths[i] -= slack[i] * factor
			}
		}
	}

	renormalize(widths, declared)
	return widths
}

// renormalize nudges widths so their sum matches declared's sum to
// within 0.01pt (§4.3 step 4), adding the whole difference to the
// widest column.
func renormalize(widths, declared []float64) {
	var total, target float64
	for i := range widths {
		total += widths[i]
		target += declared[i]
	}
	diff := target - total
	if diff > -0.005 && diff < 0.005 {
		return
	}
	widest := 0
	for i := range widths {
		if widths[i] > widths[widest] {
			widest = i
		}
	}
	widths[widest] += diff
}

func longestWordWidth(cell model.TableCell, m Measurer) float64 {
	var longest float64
	for _, p := range cell.Paragraphs {
		for _, r := range p.Runs {
			if r.InlineImage != nil {
				if r.InlineImage.DisplayWidth > longest {
					longest = r.InlineImage.DisplayWidth
				}
				continue
			}
			size, _ := effectiveSize(r.FontSizePt, r.VerticalAlign)
			for _, atom := range splitAtoms(r.Text) {
				if atom.isSpace {
					continue
				}
				w := wordWidth(m, r.FontFamily, r.Bold, r.Italic, size, atom.text)
				if w > longest {
					longest = w
				}
			}
		}
	}
	return longest
}
