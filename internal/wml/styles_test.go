package wml

import (
	"testing"

	"docxpdf/internal/common"
)

func ptr[T any](v T) *T { return &v }

func stylesheetWithChain() *Stylesheet {
	ss := newStylesheet()
	ss.Styles["Base"] = &Style{
		ID:   "Base",
		Type: StyleParagraph,
		Para: ParaProps{Alignment: ptr(common.AlignLeft), IndentLeftTwips: ptr(100)},
		Run:  RunProps{FontFamily: ptr("Times New Roman"), Bold: ptr(false)},
	}
	ss.Styles["Child"] = &Style{
		ID:      "Child",
		Type:    StyleParagraph,
		BasedOn: "Base",
		Para:    ParaProps{IndentLeftTwips: ptr(200)}, // overrides Base's indent
		Run:     RunProps{Bold: ptr(true)},            // overrides Base's bold, keeps FontFamily
	}
	return ss
}

// Resolve folds an ancestor chain nearest-overrides-farthest: Child's own
// IndentLeftTwips/Bold win, but Base's FontFamily/Alignment are inherited
// since Child never sets them.
func TestStylesheet_Resolve_NearerOverridesFarther(t *testing.T) {
	ss := stylesheetWithChain()
	resolved := ss.Resolve("Child", nil)

	if resolved.Para.IndentLeftTwips == nil || *resolved.Para.IndentLeftTwips != 200 {
		t.Errorf("IndentLeftTwips = %v, want 200 (Child's override)", resolved.Para.IndentLeftTwips)
	}
	if resolved.Para.Alignment == nil || *resolved.Para.Alignment != common.AlignLeft {
		t.Errorf("Alignment = %v, want inherited AlignLeft from Base", resolved.Para.Alignment)
	}
	if resolved.Run.Bold == nil || *resolved.Run.Bold != true {
		t.Errorf("Bold = %v, want true (Child's override)", resolved.Run.Bold)
	}
	if resolved.Run.FontFamily == nil || *resolved.Run.FontFamily != "Times New Roman" {
		t.Errorf("FontFamily = %v, want inherited from Base", resolved.Run.FontFamily)
	}
}

// Resolving the same style id twice must be idempotent: the second call
// returns the memoized result from ss.resolved rather than re-folding the
// chain, and the folded properties themselves are identical either way.
func TestStylesheet_Resolve_Idempotent(t *testing.T) {
	ss := stylesheetWithChain()
	first := ss.Resolve("Child", nil)
	second := ss.Resolve("Child", nil)

	if first != second {
		t.Error("Resolve() returned a different *Style pointer on the second call, want the memoized one")
	}
	if *first.Para.IndentLeftTwips != *second.Para.IndentLeftTwips {
		t.Errorf("IndentLeftTwips differs across calls: %d vs %d", *first.Para.IndentLeftTwips, *second.Para.IndentLeftTwips)
	}
}

// Re-folding an already-cascaded Style's properties against themselves
// (merging a Style with itself) must be a no-op: every field survives
// unchanged since override==base for each pointer.
func TestMergeParaProps_SelfMergeIsNoOp(t *testing.T) {
	ss := stylesheetWithChain()
	resolved := ss.Resolve("Child", nil)

	merged := mergeParaProps(resolved.Para, resolved.Para)
	if *merged.IndentLeftTwips != *resolved.Para.IndentLeftTwips {
		t.Errorf("IndentLeftTwips = %d after self-merge, want %d", *merged.IndentLeftTwips, *resolved.Para.IndentLeftTwips)
	}
	if *merged.Alignment != *resolved.Para.Alignment {
		t.Errorf("Alignment = %v after self-merge, want %v", *merged.Alignment, *resolved.Para.Alignment)
	}
}

func TestMergeRunProps_SelfMergeIsNoOp(t *testing.T) {
	ss := stylesheetWithChain()
	resolved := ss.Resolve("Child", nil)

	merged := mergeRunProps(resolved.Run, resolved.Run)
	if *merged.Bold != *resolved.Run.Bold {
		t.Errorf("Bold = %v after self-merge, want %v", *merged.Bold, *resolved.Run.Bold)
	}
	if *merged.FontFamily != *resolved.Run.FontFamily {
		t.Errorf("FontFamily = %v after self-merge, want %v", *merged.FontFamily, *resolved.Run.FontFamily)
	}
}

// A style that is (transitively) based on itself must not deadlock or
// infinitely recurse; the cycle is broken and the style's own properties
// still resolve.
func TestStylesheet_Resolve_BreaksCycle(t *testing.T) {
	ss := newStylesheet()
	ss.Styles["A"] = &Style{ID: "A", BasedOn: "B", Para: ParaProps{IndentLeftTwips: ptr(10)}}
	ss.Styles["B"] = &Style{ID: "B", BasedOn: "A", Para: ParaProps{IndentRightTwips: ptr(20)}}

	resolved := ss.Resolve("A", nil)
	if resolved.Para.IndentLeftTwips == nil || *resolved.Para.IndentLeftTwips != 10 {
		t.Errorf("IndentLeftTwips = %v, want 10", resolved.Para.IndentLeftTwips)
	}
}

func TestStylesheet_Resolve_EmptyIDReturnsZeroValue(t *testing.T) {
	ss := stylesheetWithChain()
	resolved := ss.Resolve("", nil)
	if resolved.Para.IndentLeftTwips != nil || resolved.Run.Bold != nil {
		t.Error("Resolve(\"\") should return a Style with no properties set")
	}
}

// ParagraphProperties folds inline over style over document defaults:
// inline wins even when a style (with inheritance from its own ancestor)
// also sets the same field.
func TestStylesheet_ParagraphProperties_InlineWinsOverStyle(t *testing.T) {
	ss := stylesheetWithChain()
	ss.DocDefaultP = ParaProps{IndentRightTwips: ptr(999)}

	inline := ParaProps{IndentLeftTwips: ptr(300)}
	got := ss.ParagraphProperties(inline, "Child", nil)

	if *got.IndentLeftTwips != 300 {
		t.Errorf("IndentLeftTwips = %d, want 300 (inline override)", *got.IndentLeftTwips)
	}
	if *got.IndentRightTwips != 999 {
		t.Errorf("IndentRightTwips = %d, want 999 (inherited doc default)", *got.IndentRightTwips)
	}
	if *got.Alignment != common.AlignLeft {
		t.Errorf("Alignment = %v, want AlignLeft (inherited from Base via Child)", *got.Alignment)
	}
}

// RunProperties folds inline over character style over paragraph style's
// run properties over document defaults.
func TestStylesheet_RunProperties_CharStyleOverridesParaStyle(t *testing.T) {
	ss := stylesheetWithChain()
	ss.Styles["Emph"] = &Style{ID: "Emph", Type: StyleCharacter, Run: RunProps{Italic: ptr(true)}}

	got := ss.RunProperties(RunProps{}, "Emph", "Child", nil)
	if got.Bold == nil || *got.Bold != true {
		t.Errorf("Bold = %v, want true (inherited from paragraph style Child)", got.Bold)
	}
	if got.Italic == nil || *got.Italic != true {
		t.Errorf("Italic = %v, want true (from character style Emph)", got.Italic)
	}
	if got.FontFamily == nil || *got.FontFamily != "Times New Roman" {
		t.Errorf("FontFamily = %v, want inherited from Base", got.FontFamily)
	}
}
