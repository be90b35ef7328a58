package classify

import (
	"github.com/gnolang/voidcaster/internal/ctree"
	"github.com/gnolang/voidcaster/internal/types"
)

// State is what a node knows about its immediate parent. It is passed by
// value, one level at a time: a node derives its children's State from its
// own kind and never forwards the State it received.
type State struct {
	// VoidCastAbove is set when the parent is a cast to void.
	VoidCastAbove bool
	// Cast is the token extent of that cast. Valid iff VoidCastAbove.
	Cast types.Extent
	// DiscardContext is set when the parent is a statement list or a case
	// label, i.e. the node's value is thrown away.
	DiscardContext bool
}

// childState computes the state handed to the children of n.
func childState(n ctree.Node) State {
	switch n.Kind() {
	case ctree.KindCompoundStmt, ctree.KindCaseStmt:
		return State{DiscardContext: true}
	case ctree.KindCastExpr:
		if n.Type().Kind != ctree.TypeVoid {
			break
		}
		// a cast without tokens of its own cannot be removed
		if ext := CastExtent(n); ext.Start.IsValid() {
			return State{VoidCastAbove: true, Cast: ext}
		}
	}
	return State{}
}

// CastExtent returns the extent of the cast operator itself: the run of
// leading tokens annotated with the cast's own kind and type. For
// "(void)foo()" that is "(void)".
func CastExtent(cast ctree.Node) types.Extent {
	var ext types.Extent
	kind, ty := cast.Kind(), cast.Type()
	for i, tok := range cast.Tokens() {
		if tok.Kind != kind || tok.Type != ty {
			break
		}
		if i == 0 {
			ext.Start = tok.Extent.Start
		}
		ext.End = tok.Extent.End
	}
	return ext
}
