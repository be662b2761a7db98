// Package model is the Document Model (spec §3): a language-neutral tree
// of sections, blocks, runs, images and section properties produced once
// by the parser and consumed read-only by the paginator. No field here is
// interpreted by this package — it is pure data, the way fb2.FictionBook
// and content.Content are pure data in the teacher pipeline.
package model

import "docxpdf/internal/common"

// Document is the root of the parsed WML package.
type Document struct {
	Sections []Section

	// DefaultLineSpacingMult is the document default line-spacing
	// multiplier, used when no paragraph or style overrides it.
	DefaultLineSpacingMult float64

	// EmbeddedFonts maps (lowercased family, bold, italic) to raw
	// deobfuscated font bytes carried inside the container.
	EmbeddedFonts map[FontKey][]byte

	// Footnotes maps a footnote id to its body.
	Footnotes map[string]Footnote

	// SourceName is a debug label only (e.g. the archive's base name);
	// never interpreted semantically.
	SourceName string
}

// FontKey identifies an embedded or resolved font face.
type FontKey struct {
	FamilyLower string
	Bold        bool
	Italic      bool
}

// Section is a document region sharing page geometry, headers/footers
// and column layout.
type Section struct {
	Properties SectionProperties
	Blocks     []Block
}

// HeaderFooterSet holds the (possibly absent) header/footer variants for
// a section.
type HeaderFooterSet struct {
	Default *HeaderFooter
	First   *HeaderFooter
}

// ColumnSpec is one column's declared width and the gap following it.
type ColumnSpec struct {
	Width     float64 // pt
	SpaceAfter float64 // pt
}

// ColumnsConfig describes a section's multi-column layout.
type ColumnsConfig struct {
	Columns []ColumnSpec
	Sep     bool // draw a vertical separator line between columns
}

// SectionProperties carries page geometry and section-level behavior.
type SectionProperties struct {
	PageWidth, PageHeight float64 // pt
	MarginTop, MarginBottom, MarginLeft, MarginRight float64
	HeaderMargin, FooterMargin float64

	Header HeaderFooterSet
	Footer HeaderFooterSet

	DifferentFirstPage bool

	LinePitch float64 // pt, document grid line pitch (0 if none)
	Break     common.SectionBreakType

	Columns *ColumnsConfig // nil => single column spanning the text width
}

// TextWidth is the page width minus left/right margins.
func (sp SectionProperties) TextWidth() float64 {
	return sp.PageWidth - sp.MarginLeft - sp.MarginRight
}

// BlockKind tags the Block sum type.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockTable
)

// Block is a tagged union: exactly one of Paragraph/Table is meaningful,
// selected by Kind. Modeled as a struct with both pointers (one nil)
// rather than an interface, since the paginator needs to inspect kind far
// more often than it needs polymorphic dispatch (§9 Design Notes).
type Block struct {
	Kind      BlockKind
	Paragraph *Paragraph
	Table     *Table
}

// LineSpacing is the tagged union described in spec §3.
type LineSpacing struct {
	Kind  common.LineSpacingKind
	Value float64 // multiplier for Auto, points for Exact/AtLeast
}

// BorderSide is one edge of a border record.
type BorderSide struct {
	Present bool
	WidthPt float64
	ColorRGB uint32 // 0xRRGGBB
}

// Borders bundles the four (or five, including "between") edges a
// paragraph or cell can declare.
type Borders struct {
	Top, Bottom, Left, Right, Between BorderSide
}

// Shading is a solid fill; Auto/none both resolve to Transparent=true.
type Shading struct {
	Transparent bool
	ColorRGB    uint32
}

// Paragraph is a top-level Block or a leaf of a TableCell/Footnote/HeaderFooter.
type Paragraph struct {
	Runs []Run

	SpaceBefore, SpaceAfter float64 // pt
	Alignment               common.Alignment

	IndentLeft, IndentRight, IndentHanging, IndentFirstLine float64 // pt; Hanging and FirstLine are mutually exclusive per WML, but both fields exist so the layout engine can pick whichever is set.

	ListLabel string // resolved numbering/bullet text; "" if none

	ContextualSpacing bool
	KeepNext          bool
	KeepLines         bool

	LineSpacing LineSpacing

	BlockImage *EmbeddedImage // paragraph consisting solely of an image

	BordersBox Borders
	Shading    Shading

	PageBreakBefore   bool
	ColumnBreakBefore bool

	TabStops []TabStop

	ExtraLineBreaks int // count of explicit <br/> within the paragraph

	Floating []FloatingImage
}

// TabStop is one declared tab position.
type TabStop struct {
	Position float64 // pt, from the left text margin
	Align    common.TabAlignment
	Leader   rune // 0 if none
}

// Run is a maximal span of identically formatted inline content.
type Run struct {
	Text string

	FontFamily string // may be a ";"-joined fallback chain
	FontSizePt float64

	Bold, Italic, Underline, Strike, Caps, SmallCaps, Hidden bool

	ColorRGB uint32
	ColorAuto bool // "auto" => render as black

	HighlightRGB uint32
	HasHighlight bool

	IsTab bool

	VerticalAlign common.VertAlign

	Field common.FieldCode // FieldNone unless this run is a placeholder

	HyperlinkURL string

	InlineImage *EmbeddedImage

	FootnoteID string // non-empty if this run is a footnote reference mark
	IsFootnoteBackref bool
}

// Table is a grid of rows and cells.
type Table struct {
	ColumnWidths []float64 // pt, declared widths before auto-fit
	Rows         []TableRow
	Indent       float64 // pt
	CellMargin   CellMargin
}

// CellMargin is the default cell padding box for a table.
type CellMargin struct {
	Top, Left, Bottom, Right float64
}

// RowHeightKind tags how a row's height is constrained.
type RowHeightKind int

const (
	RowHeightAuto RowHeightKind = iota
	RowHeightExact
	RowHeightAtLeast
)

// TableRow is one row of cells.
type TableRow struct {
	Cells      []TableCell
	HeightKind RowHeightKind
	Height     float64 // pt; meaningful when HeightKind != RowHeightAuto
}

// TableCell is one cell of a row.
type TableCell struct {
	Width      float64 // pt, nominal (pre auto-fit) width
	Paragraphs []Paragraph
	BordersBox Borders
	Shading    Shading
	GridSpan   int
	VMerge     common.VMerge
	VAlign     common.CellVAlign
}

// EmbeddedImage is raw decoded image data plus its intrinsic and display
// dimensions.
type EmbeddedImage struct {
	Data          []byte
	Format        common.ImageFormat
	PixelWidth    int
	PixelHeight   int
	DisplayWidth  float64 // pt
	DisplayHeight float64 // pt
}

// FloatingImage anchors an image relative to the page/column/margin/paragraph.
type FloatingImage struct {
	Image EmbeddedImage

	HOffset float64
	HAnchor common.HorizontalAnchor

	VOffset float64
	VAnchor common.VerticalAnchor

	BehindDoc bool
}

// HeaderFooter is an ordered sequence of paragraphs rendered in the
// header/footer margin area.
type HeaderFooter struct {
	Paragraphs []Paragraph
}

// Footnote is the body referenced by a footnote-mark run.
type Footnote struct {
	Paragraphs []Paragraph
}
