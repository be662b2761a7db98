package fonts

import (
	"testing"

	"docxpdf/internal/model"
)

func TestSplitFamilyChain(t *testing.T) {
	got := splitFamilyChain(" Liberation Sans ; DejaVu Sans ;;Helvetica")
	want := []string{"Liberation Sans", "DejaVu Sans", "Helvetica"}
	if len(got) != len(want) {
		t.Fatalf("splitFamilyChain() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("splitFamilyChain()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestResolve_FallsBackToHelvetica(t *testing.T) {
	svc := NewService(NewMemIndex(), nil, []string{"Helvetica"}, nil)
	f := svc.Resolve("NoSuchFamily", false, false, map[rune]bool{'A': true})
	if !f.Helvetica {
		t.Fatalf("Resolve() with no candidates = %+v, want Helvetica fallback", f)
	}
	if f.BaseName != "Helvetica" {
		t.Errorf("BaseName = %q, want Helvetica", f.BaseName)
	}
}

func TestResolve_BoldItalicHelveticaName(t *testing.T) {
	svc := NewService(NewMemIndex(), nil, nil, nil)
	f := svc.Resolve("Arial", true, true, nil)
	if f.BaseName != "Helvetica-BoldOblique" {
		t.Errorf("BaseName = %q, want Helvetica-BoldOblique", f.BaseName)
	}
}

func TestResolve_UnparseableEmbeddedFallsThroughToIndex(t *testing.T) {
	idx := NewMemIndex()
	idx.Add("times new roman", false, false, []byte("index-bytes-not-a-real-font-either"))
	embedded := map[model.FontKey][]byte{
		{FamilyLower: "times new roman"}: []byte("not-a-real-font"),
	}

	// Neither candidate parses as a real sfnt face; resolution should
	// still terminate at the Helvetica fallback rather than panicking.
	svc := NewService(idx, embedded, nil, nil)
	f := svc.Resolve("Times New Roman", false, false, map[rune]bool{'A': true})
	if !f.Helvetica {
		t.Fatalf("Resolve() with unparseable embedded+index bytes = %+v, want Helvetica fallback", f)
	}
}

func TestWinAnsiWidth_Space(t *testing.T) {
	if w := winAnsiWidth(' '); w != 278 {
		t.Errorf("winAnsiWidth(' ') = %d, want 278", w)
	}
}

func TestWinAnsiWidth_Unrepresentable(t *testing.T) {
	if w := winAnsiWidth('漢'); w != 0 {
		t.Errorf("winAnsiWidth(CJK) = %d, want 0", w)
	}
}

func TestRuneToWinAnsi_Bullet(t *testing.T) {
	b, ok := runeToWinAnsi('•')
	if !ok {
		t.Fatal("runeToWinAnsi(bullet) not ok")
	}
	if b != 0x95 {
		t.Errorf("runeToWinAnsi(bullet) = %#x, want 0x95", b)
	}
}

func TestWinAnsiRoundTrip_ASCII(t *testing.T) {
	for _, r := range "Hello, World!" {
		b, ok := runeToWinAnsi(r)
		if !ok {
			t.Fatalf("runeToWinAnsi(%q) not ok", r)
		}
		if got := winAnsiToRune(b); got != r {
			t.Errorf("round trip %q -> %#x -> %q", r, b, got)
		}
	}
}
