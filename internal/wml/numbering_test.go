package wml

import (
	"testing"

	"docxpdf/internal/common"
)

func singleLevelNumbering(start int) *Numbering {
	n := newNumbering()
	n.numToAbstract[1] = 1
	n.abstracts[1] = &abstractNum{Levels: map[int]LevelDef{
		0: {Start: start, LvlText: "%1."},
	}}
	return n
}

func TestNumbering_Label_Monotonic(t *testing.T) {
	n := singleLevelNumbering(1)
	for i, want := range []string{"1.", "2.", "3."} {
		if got := n.Label(1, 0); got != want {
			t.Errorf("Label() call %d = %q, want %q", i+1, got, want)
		}
	}
}

func TestNumbering_Label_RespectsStart(t *testing.T) {
	n := singleLevelNumbering(5)
	if got := n.Label(1, 0); got != "5." {
		t.Errorf("Label() = %q, want %q", got, "5.")
	}
	if got := n.Label(1, 0); got != "6." {
		t.Errorf("Label() = %q, want %q", got, "6.")
	}
}

// Dropping back to a shallower level must reset every deeper level's
// counter so the next visit to that deeper level restarts from its own
// Start value, per §4.1's per-(numId, level) counter semantics.
func TestNumbering_Label_DeeperLevelResetsOnOutdent(t *testing.T) {
	n := newNumbering()
	n.numToAbstract[1] = 1
	n.abstracts[1] = &abstractNum{Levels: map[int]LevelDef{
		0: {Start: 1, LvlText: "%1."},
		1: {Start: 1, LvlText: "%1.%2."},
	}}

	if got := n.Label(1, 0); got != "1." {
		t.Fatalf("level 0 first = %q, want 1.", got)
	}
	if got := n.Label(1, 1); got != "1.1." {
		t.Fatalf("level 1 first = %q, want 1.1.", got)
	}
	if got := n.Label(1, 1); got != "1.2." {
		t.Fatalf("level 1 second = %q, want 1.2.", got)
	}
	// Back to level 0: level 1's counter must reset.
	if got := n.Label(1, 0); got != "2." {
		t.Fatalf("level 0 second = %q, want 2.", got)
	}
	if got := n.Label(1, 1); got != "2.1." {
		t.Fatalf("level 1 after outdent = %q, want 2.1. (counter did not reset)", got)
	}
}

// Two distinct numId instances of the same abstract numbering definition
// (e.g. two separate bulleted/numbered lists sharing one abstractNumId)
// must not share counters.
func TestNumbering_Label_IndependentNumIDs(t *testing.T) {
	n := newNumbering()
	n.abstracts[1] = &abstractNum{Levels: map[int]LevelDef{0: {Start: 1, LvlText: "%1."}}}
	n.numToAbstract[1] = 1
	n.numToAbstract[2] = 1

	if got := n.Label(1, 0); got != "1." {
		t.Fatalf("numId 1 first = %q, want 1.", got)
	}
	if got := n.Label(2, 0); got != "1." {
		t.Fatalf("numId 2 first = %q, want 1. (shared counter with numId 1)", got)
	}
	if got := n.Label(1, 0); got != "2." {
		t.Fatalf("numId 1 second = %q, want 2.", got)
	}
}

func TestNumbering_Label_UnresolvableReturnsEmpty(t *testing.T) {
	n := newNumbering()
	if got := n.Label(99, 0); got != "" {
		t.Errorf("Label() for unknown numId = %q, want empty", got)
	}
}

func TestFormatCounter_Decimal(t *testing.T) {
	if got := formatCounter(3, common.NumFormatDecimal); got != "3" {
		t.Errorf("formatCounter(3, decimal) = %q, want 3", got)
	}
}

func TestFormatCounter_DecimalZero(t *testing.T) {
	if got := formatCounter(3, common.NumFormatDecimalZero); got != "03" {
		t.Errorf("formatCounter(3, decimalZero) = %q, want 03", got)
	}
}

func TestLetterBase26(t *testing.T) {
	cases := map[int]string{1: "a", 26: "z", 27: "aa", 28: "ab", 52: "az", 53: "ba"}
	for v, want := range cases {
		if got := letterBase26(v, false); got != want {
			t.Errorf("letterBase26(%d) = %q, want %q", v, got, want)
		}
	}
	if got := letterBase26(1, true); got != "A" {
		t.Errorf("letterBase26(1, upper) = %q, want A", got)
	}
}

func TestRoman(t *testing.T) {
	cases := map[int]string{1: "I", 4: "IV", 9: "IX", 14: "XIV", 1994: "MCMXCIV", 3999: "MMMCMXCIX"}
	for v, want := range cases {
		if got := roman(v); got != want {
			t.Errorf("roman(%d) = %q, want %q", v, got, want)
		}
	}
}

func TestRoman_OutOfRangeFallsBackToDecimal(t *testing.T) {
	if got := roman(4000); got != "4000" {
		t.Errorf("roman(4000) = %q, want 4000", got)
	}
}

func TestBulletGlyph_UnmappedPUAFallsBackToBullet(t *testing.T) {
	if got := bulletGlyph(string(rune(0xF999))); got != "•" {
		t.Errorf("bulletGlyph(unmapped PUA) = %q, want bullet", got)
	}
}

func TestBulletGlyph_PUAMapping(t *testing.T) {
	if got := bulletGlyph(string(rune(0xF06C))); got != "●" {
		t.Errorf("bulletGlyph(PUA circle) = %q, want circle", got)
	}
	if got := bulletGlyph(""); got != "•" {
		t.Errorf("bulletGlyph(PUA bullet) = %q, want •", got)
	}
	if got := bulletGlyph(""); got != "•" {
		t.Errorf("bulletGlyph(empty) = %q, want •", got)
	}
	if got := bulletGlyph("x"); got != "x" {
		t.Errorf("bulletGlyph(plain rune) = %q, want x", got)
	}
}
