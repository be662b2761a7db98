package wml

import "go.uber.org/zap"

// StyleType discriminates the three style kinds the styles dictionary
// carries.
type StyleType int

const (
	StyleParagraph StyleType = iota
	StyleCharacter
	StyleTable
)

// Style is one <w:style> entry, pre-cascade.
type Style struct {
	ID      string
	Type    StyleType
	BasedOn string
	Para    ParaProps
	Run     RunProps
}

// Stylesheet is the full styles.xml dictionary, keyed by style id, plus
// document defaults.
type Stylesheet struct {
	Styles       map[string]*Style
	DocDefault   RunProps
	DocDefaultP  ParaProps

	resolved map[string]*Style // memoized cascade results
}

func newStylesheet() *Stylesheet {
	return &Stylesheet{Styles: map[string]*Style{}, resolved: map[string]*Style{}}
}

// Resolve returns the style's fully-cascaded properties: the ancestor
// chain is walked from furthest ancestor to nearest (basedOn links),
// accumulating inherited optional fields so that nearer overrides farther
// (§4.1 Style graph resolution). A self-referencing or circular basedOn
// chain is broken at the repeat.
func (ss *Stylesheet) Resolve(id string, log *zap.Logger) *Style {
	if id == "" {
		return &Style{}
	}
	if r, ok := ss.resolved[id]; ok {
		return r
	}
	chain := ss.ancestorChain(id, log)

	resolved := &Style{ID: id}
	if len(chain) > 0 {
		resolved.Type = chain[len(chain)-1].Type
	}
	for _, s := range chain {
		resolved.Para = mergeParaProps(resolved.Para, s.Para)
		resolved.Run = mergeRunProps(resolved.Run, s.Run)
	}
	ss.resolved[id] = resolved
	return resolved
}

// ancestorChain returns [furthestAncestor, ..., style] for id, breaking on
// a cycle (a style that (transitively) is based on itself).
func (ss *Stylesheet) ancestorChain(id string, log *zap.Logger) []*Style {
	visited := map[string]bool{}
	var chain []*Style
	cur := id
	for cur != "" {
		if visited[cur] {
			if log != nil {
				log.Warn("Cyclic style basedOn chain detected, breaking", zap.String("style", cur))
			}
			break
		}
		visited[cur] = true
		s, ok := ss.Styles[cur]
		if !ok {
			break
		}
		chain = append([]*Style{s}, chain...)
		cur = s.BasedOn
	}
	return chain
}

// ParagraphProperties computes the fixed point described in §4.1: inline
// paragraph properties ▷ style properties (with inheritance) ▷ document
// defaults ▷ hardcoded built-ins.
func (ss *Stylesheet) ParagraphProperties(inline ParaProps, styleID string, log *zap.Logger) ParaProps {
	style := ss.Resolve(styleID, log)
	return mergeParaProps(mergeParaProps(ss.DocDefaultP, style.Para), inline)
}

// RunProperties computes the run-level fixed point: inline run properties
// ▷ character-style properties ▷ paragraph-style run properties ▷
// document defaults.
func (ss *Stylesheet) RunProperties(inline RunProps, charStyleID, paraStyleID string, log *zap.Logger) RunProps {
	paraStyle := ss.Resolve(paraStyleID, log)
	charStyle := ss.Resolve(charStyleID, log)
	acc := mergeRunProps(ss.DocDefault, paraStyle.Run)
	acc = mergeRunProps(acc, charStyle.Run)
	return mergeRunProps(acc, inline)
}
