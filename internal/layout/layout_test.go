package layout

import (
	"math"
	"testing"

	"docxpdf/internal/common"
	"docxpdf/internal/model"
)

// fixedMeasurer gives every character a fixed advance, independent of
// font/size, so test expectations are simple arithmetic.
type fixedMeasurer struct {
	advance    float64
	lineHeight float64
	ascent     float64
}

func (f fixedMeasurer) AdvancePt(family string, bold, italic bool, sizePt float64, r rune) float64 {
	if r == ' ' {
		return f.advance
	}
	return f.advance
}
func (f fixedMeasurer) LineHeightPt(family string, bold, italic bool, sizePt float64) float64 {
	return f.lineHeight
}
func (f fixedMeasurer) AscentPt(family string, bold, italic bool, sizePt float64) float64 {
	return f.ascent
}

func run(text string, size float64) model.Run {
	return model.Run{Text: text, FontFamily: "Test", FontSizePt: size}
}

func TestBreakLines_WrapsOnWordBoundary(t *testing.T) {
	m := fixedMeasurer{advance: 10, lineHeight: 12}
	runs := []model.Run{run("aa bb cc dd", 10)}
	lines := BreakLines(runs, 45, 0, m)
	if len(lines) < 2 {
		t.Fatalf("BreakLines() produced %d lines, want >= 2 for width 45", len(lines))
	}
	for _, l := range lines {
		if l.Width > 45+0.001 {
			t.Errorf("line width %v exceeds budget 45", l.Width)
		}
	}
}

func TestBreakLines_OverlongWordOverflows(t *testing.T) {
	m := fixedMeasurer{advance: 10, lineHeight: 12}
	runs := []model.Run{run("superlongword", 10)}
	lines := BreakLines(runs, 20, 0, m)
	if len(lines) != 1 {
		t.Fatalf("BreakLines() with one overlong word = %d lines, want 1", len(lines))
	}
}

func TestBreakLines_HangingAllowanceAppliesToFirstLineOnly(t *testing.T) {
	m := fixedMeasurer{advance: 10, lineHeight: 12}
	runs := []model.Run{run("aaaa bbbb cccc", 10)}
	lines := BreakLines(runs, 40, 50, m)
	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %d lines", len(lines))
	}
	// First line may use 40+50: "aaaa bbbb" = 90 fits there.
	if lines[0].Width <= 40 {
		t.Errorf("first line width = %v, want > 40 (hanging allowance used)", lines[0].Width)
	}
	for i, l := range lines[1:] {
		if l.Width > 40+0.001 {
			t.Errorf("line %d width = %v exceeds budget 40 (allowance leaked past first line)", i+1, l.Width)
		}
	}
}

func TestEffectiveSize_SuperscriptScalesAndOffsets(t *testing.T) {
	size, off := effectiveSize(10, common.VertSuperscript)
	if math.Abs(size-5.8) > 1e-9 {
		t.Errorf("superscript size = %v, want 5.8", size)
	}
	if math.Abs(off-3.5) > 1e-9 {
		t.Errorf("superscript offset = %v, want 3.5", off)
	}
}

func TestEffectiveSize_SubscriptOffsetsDown(t *testing.T) {
	_, off := effectiveSize(10, common.VertSubscript)
	if math.Abs(off-(-1.4)) > 1e-9 {
		t.Errorf("subscript offset = %v, want -1.4", off)
	}
}

func TestAutoFitColumns_PreservesTotalWidth(t *testing.T) {
	m := fixedMeasurer{advance: 10, lineHeight: 12}
	tbl := &model.Table{
		ColumnWidths: []float64{50, 50, 50},
		CellMargin:   model.CellMargin{Left: 2, Right: 2},
		Rows: []model.TableRow{{Cells: []model.TableCell{
			{GridSpan: 1, Paragraphs: []model.Paragraph{{Runs: []model.Run{run("averyverylongunbreakableword", 10)}}}},
			{GridSpan: 1, Paragraphs: []model.Paragraph{{Runs: []model.Run{run("ok", 10)}}}},
			{GridSpan: 1, Paragraphs: []model.Paragraph{{Runs: []model.Run{run("ok", 10)}}}},
		}}},
	}
	widths := AutoFitColumns(tbl, m)
	var total, declared float64
	for i, w := range widths {
		total += w
		declared += tbl.ColumnWidths[i]
	}
	if math.Abs(total-declared) > 0.01 {
		t.Errorf("AutoFitColumns() total = %v, want %v (within 0.01)", total, declared)
	}
	if widths[0] <= tbl.ColumnWidths[0] {
		t.Errorf("AutoFitColumns()[0] = %v, want expansion beyond declared %v", widths[0], tbl.ColumnWidths[0])
	}
}

func TestCellFirstBaselineY_TopAlign(t *testing.T) {
	y := CellFirstBaselineY(common.VAlignTop, 100, 2, 2, 50, 10, 8)
	want := 100.0 - 2 - 8
	if math.Abs(y-want) > 1e-9 {
		t.Errorf("CellFirstBaselineY(top) = %v, want %v", y, want)
	}
}

func TestCellFirstBaselineY_CenterAlign(t *testing.T) {
	y := CellFirstBaselineY(common.VAlignCenter, 100, 2, 2, 50, 10, 8)
	offset := math.Max(0, (50.0-2-2-10)/2)
	want := 100.0 - 2 - offset - 8
	if math.Abs(y-want) > 1e-9 {
		t.Errorf("CellFirstBaselineY(center) = %v, want %v", y, want)
	}
}

func TestResolveTabs_LeftStop(t *testing.T) {
	m := fixedMeasurer{advance: 10, lineHeight: 12}
	runs := []model.Run{
		run("ab", 10),
		{IsTab: true, FontFamily: "Test", FontSizePt: 10},
		run("cd", 10),
	}
	stops := []model.TabStop{{Position: 100, Align: common.TabLeft}}
	line := ResolveTabs(runs, stops, m)
	if len(line.Chunks) < 2 {
		t.Fatalf("ResolveTabs() produced %d chunks, want >= 2", len(line.Chunks))
	}
	last := line.Chunks[len(line.Chunks)-1]
	if math.Abs(last.X-100) > 1e-9 {
		t.Errorf("ResolveTabs() second segment X = %v, want 100 (left tab target)", last.X)
	}
}

func TestResolveTabs_NoStopFallsBackToDefaultGrid(t *testing.T) {
	m := fixedMeasurer{advance: 10, lineHeight: 12}
	runs := []model.Run{
		run("ab", 10),
		{IsTab: true, FontFamily: "Test", FontSizePt: 10},
		run("cd", 10),
	}
	line := ResolveTabs(runs, nil, m)
	last := line.Chunks[len(line.Chunks)-1]
	// cursor after "ab" (2 chars * 10 = 20); next 36pt grid position -> 36
	if math.Abs(last.X-36) > 1e-9 {
		t.Errorf("ResolveTabs() with no stops X = %v, want 36", last.X)
	}
}
