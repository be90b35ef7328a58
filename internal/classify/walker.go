// Package classify walks a C syntax tree and decides, for every call
// expression, whether its result is correctly used, dropped without a cast
// to void, or pointlessly cast to void.
package classify

import (
	"go.uber.org/zap"

	"github.com/gnolang/voidcaster/internal/ctree"
	"github.com/gnolang/voidcaster/internal/types"
)

// Reporter receives findings. MissingCast and SuperfluousCast are called
// once per finding, in traversal order; an error stops the walk.
type Reporter interface {
	MissingCast(file, fn string, at types.Location) error
	SuperfluousCast(file, fn string, cast types.Extent) error
	Unresolved(file, fn string, at types.Location)
}

// Walker classifies calls in a tree.
type Walker struct {
	reporter Reporter
	logger   *zap.Logger
}

// NewWalker creates a walker reporting to r.
func NewWalker(r Reporter, logger *zap.Logger) *Walker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Walker{reporter: r, logger: logger}
}

// Visit classifies n and, recursively, all of its children. The root is
// visited with the zero State.
func (w *Walker) Visit(n ctree.Node, st State) error {
	if n.Kind() == ctree.KindCallExpr {
		if err := w.call(n, st); err != nil {
			return err
		}
	}

	kids := childState(n)
	for _, child := range n.Children() {
		if err := w.Visit(child, kids); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) call(n ctree.Node, st State) error {
	c := Classify(n, st)
	w.logger.Debug("classified call",
		zap.String("file", n.File()),
		zap.Stringer("at", n.Location()),
		zap.String("function", n.Spelling()),
		zap.Stringer("result", c),
	)

	switch c := c.(type) {
	case MissingCast:
		return w.reporter.MissingCast(n.File(), n.Spelling(), c.At)
	case SuperfluousCast:
		return w.reporter.SuperfluousCast(n.File(), n.Spelling(), c.Cast)
	case Unknown:
		if c.Reason.Warns() {
			w.reporter.Unresolved(n.File(), n.Spelling(), n.Location())
		}
	case OkValueUsed, OkValueDiscardedAsVoid:
	default:
		panic("classify: unhandled classification " + c.String())
	}
	return nil
}

// Classify decides the verdict for a call node given what its parent
// told it.
func Classify(call ctree.Node, st State) Classification {
	d := call.Callee()
	switch {
	case d == nil:
		return Unknown{Reason: NoDeclaration}
	case d.Macro:
		return Unknown{Reason: MacroCall}
	case !d.Prototyped:
		return Unknown{Reason: NoPrototype}
	}

	switch d.Result.Kind {
	case ctree.TypeVoid:
		if st.VoidCastAbove {
			return SuperfluousCast{Cast: st.Cast}
		}
		return OkValueDiscardedAsVoid{}
	case ctree.TypeInvalid, ctree.TypeUnexposed:
		return Unknown{Reason: OpaqueResult}
	default:
		if st.DiscardContext && !st.VoidCastAbove {
			return MissingCast{At: call.Location()}
		}
		return OkValueUsed{}
	}
}
