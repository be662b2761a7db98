// Package wml is the Document Parser (spec §4.1): it walks the OOXML
// WordprocessingML parts and produces a model.Document with all styles,
// numbering, theme fonts and embedded-font obfuscation resolved and all
// lengths converted to points.
//
// Every inheritable attribute is modeled as a pointer (Option[T]); a style
// cascade is a fold that keeps the nearest non-nil value (§9 Design
// Notes — "do not use sentinel values").
package wml

import (
	"docxpdf/internal/common"
	"docxpdf/internal/model"
)

// RunProps are the run-level formatting attributes that cascade through
// character styles, paragraph-style run properties, and document
// defaults (§4.1 "Formatting for each run").
type RunProps struct {
	FontFamily     *string
	FontSizeHalfPt *int
	Bold           *bool
	Italic         *bool
	Underline      *bool
	Strike         *bool
	Caps           *bool
	SmallCaps      *bool
	Hidden         *bool
	ColorRGB       *uint32
	ColorAuto      *bool
	HighlightRGB   *uint32
	HasHighlight   *bool
	VertAlign      *common.VertAlign
}

// mergeRunProps returns a RunProps where each field is taken from
// override if set, else from base — "nearer overrides farther".
func mergeRunProps(base, override RunProps) RunProps {
	return RunProps{
		FontFamily:     firstPtr(override.FontFamily, base.FontFamily),
		FontSizeHalfPt: firstPtr(override.FontSizeHalfPt, base.FontSizeHalfPt),
		Bold:           firstPtr(override.Bold, base.Bold),
		Italic:         firstPtr(override.Italic, base.Italic),
		Underline:      firstPtr(override.Underline, base.Underline),
		Strike:         firstPtr(override.Strike, base.Strike),
		Caps:           firstPtr(override.Caps, base.Caps),
		SmallCaps:      firstPtr(override.SmallCaps, base.SmallCaps),
		Hidden:         firstPtr(override.Hidden, base.Hidden),
		ColorRGB:       firstPtr(override.ColorRGB, base.ColorRGB),
		ColorAuto:      firstPtr(override.ColorAuto, base.ColorAuto),
		HighlightRGB:   firstPtr(override.HighlightRGB, base.HighlightRGB),
		HasHighlight:   firstPtr(override.HasHighlight, base.HasHighlight),
		VertAlign:      firstPtr(override.VertAlign, base.VertAlign),
	}
}

// ParaProps are the paragraph-level formatting attributes that cascade
// through paragraph styles and document defaults.
type ParaProps struct {
	Alignment         *common.Alignment
	SpaceBeforeTwips  *int
	SpaceAfterTwips   *int
	ContextualSpacing *bool
	KeepNext          *bool
	KeepLines         *bool
	IndentLeftTwips   *int
	IndentRightTwips  *int
	IndentHangTwips   *int
	IndentFirstTwips  *int
	LineSpacingAutoMult   *float64
	LineSpacingExactPt    *float64
	LineSpacingAtLeastPt  *float64
	Borders               *model.Borders
	Shading               *model.Shading
}

func mergeParaProps(base, override ParaProps) ParaProps {
	return ParaProps{
		Alignment:            firstPtr(override.Alignment, base.Alignment),
		SpaceBeforeTwips:     firstPtr(override.SpaceBeforeTwips, base.SpaceBeforeTwips),
		SpaceAfterTwips:      firstPtr(override.SpaceAfterTwips, base.SpaceAfterTwips),
		ContextualSpacing:    firstPtr(override.ContextualSpacing, base.ContextualSpacing),
		KeepNext:             firstPtr(override.KeepNext, base.KeepNext),
		KeepLines:            firstPtr(override.KeepLines, base.KeepLines),
		IndentLeftTwips:      firstPtr(override.IndentLeftTwips, base.IndentLeftTwips),
		IndentRightTwips:     firstPtr(override.IndentRightTwips, base.IndentRightTwips),
		IndentHangTwips:      firstPtr(override.IndentHangTwips, base.IndentHangTwips),
		IndentFirstTwips:     firstPtr(override.IndentFirstTwips, base.IndentFirstTwips),
		LineSpacingAutoMult:  firstPtr(override.LineSpacingAutoMult, base.LineSpacingAutoMult),
		LineSpacingExactPt:   firstPtr(override.LineSpacingExactPt, base.LineSpacingExactPt),
		LineSpacingAtLeastPt: firstPtr(override.LineSpacingAtLeastPt, base.LineSpacingAtLeastPt),
		Borders:              firstPtr(override.Borders, base.Borders),
		Shading:              firstPtr(override.Shading, base.Shading),
	}
}

// firstPtr returns the first non-nil pointer, or nil if both are nil.
func firstPtr[T any](vals ...*T) *T {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

// firstSet returns the dereferenced value of the first non-nil pointer in
// ptrs (checked in order, highest priority first), falling back to
// hardcoded when none is set. This is the "fixed point of inline ▷ style
// ▷ document defaults ▷ hardcoded built-ins" fold from §4.1.
func firstSet[T any](hardcoded T, ptrs ...*T) T {
	for _, p := range ptrs {
		if p != nil {
			return *p
		}
	}
	return hardcoded
}
