package classify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/voidcaster/internal/ctree"
	"github.com/gnolang/voidcaster/internal/types"
)

// fakeNode is a hand-built cursor.
type fakeNode struct {
	kind     ctree.Kind
	typ      ctree.Type
	loc      types.Location
	name     string
	callee   *ctree.Decl
	tokens   []ctree.Token
	children []ctree.Node
}

func (f *fakeNode) Kind() ctree.Kind         { return f.kind }
func (f *fakeNode) Type() ctree.Type         { return f.typ }
func (f *fakeNode) Location() types.Location { return f.loc }
func (f *fakeNode) Extent() types.Extent     { return types.Extent{Start: f.loc, End: f.loc} }
func (f *fakeNode) File() string             { return "test.c" }
func (f *fakeNode) Spelling() string         { return f.name }
func (f *fakeNode) Children() []ctree.Node   { return f.children }
func (f *fakeNode) Callee() *ctree.Decl      { return f.callee }
func (f *fakeNode) Tokens() []ctree.Token    { return f.tokens }

var (
	voidType = ctree.Type{Kind: ctree.TypeVoid, Spelling: "void"}
	intType  = ctree.Type{Kind: ctree.TypeConcrete, Spelling: "int"}
)

func loc(line, col int) types.Location { return types.Location{Line: line, Column: col} }

func call(name string, result ctree.Type, at types.Location, args ...ctree.Node) *fakeNode {
	return &fakeNode{
		kind:     ctree.KindCallExpr,
		typ:      result,
		loc:      at,
		name:     name,
		callee:   &ctree.Decl{Name: name, Result: result, Prototyped: true},
		children: args,
	}
}

func block(children ...ctree.Node) *fakeNode {
	return &fakeNode{kind: ctree.KindCompoundStmt, children: children}
}

func other(kind ctree.Kind, children ...ctree.Node) *fakeNode {
	return &fakeNode{kind: kind, children: children}
}

// voidCast builds "(void)" at line/col followed by the operand.
func voidCast(line, col int, operand ctree.Node) *fakeNode {
	tok := func(text string, c int) ctree.Token {
		return ctree.Token{
			Text: text,
			Kind: ctree.KindCastExpr,
			Type: voidType,
			Extent: types.Extent{
				Start: loc(line, c),
				End:   loc(line, c+len(text)),
			},
		}
	}
	return &fakeNode{
		kind: ctree.KindCastExpr,
		typ:  voidType,
		loc:  loc(line, col),
		tokens: []ctree.Token{
			tok("(", col),
			tok("void", col+1),
			tok(")", col+5),
			{Text: operand.Spelling(), Kind: ctree.KindDeclRefExpr, Extent: types.Extent{Start: loc(line, col+6), End: loc(line, col+9)}},
		},
		children: []ctree.Node{operand},
	}
}

type finding struct {
	kind string
	fn   string
	at   types.Location
	ext  types.Extent
}

type recorder struct {
	findings []finding
	err      error
}

func (r *recorder) MissingCast(_, fn string, at types.Location) error {
	r.findings = append(r.findings, finding{kind: "missing", fn: fn, at: at})
	return r.err
}

func (r *recorder) SuperfluousCast(_, fn string, cast types.Extent) error {
	r.findings = append(r.findings, finding{kind: "superfluous", fn: fn, ext: cast})
	return r.err
}

func (r *recorder) Unresolved(_, fn string, at types.Location) {
	r.findings = append(r.findings, finding{kind: "unknown", fn: fn, at: at})
}

func visit(t *testing.T, root ctree.Node) []finding {
	t.Helper()
	rec := &recorder{}
	require.NoError(t, NewWalker(rec, nil).Visit(root, State{}))
	return rec.findings
}

func TestMissingCastInBlock(t *testing.T) {
	t.Parallel()
	root := other(ctree.KindTranslationUnit,
		other(ctree.KindFunctionDecl, block(call("foo", intType, loc(3, 2)))),
	)

	got := visit(t, root)
	require.Len(t, got, 1)
	assert.Equal(t, finding{kind: "missing", fn: "foo", at: loc(3, 2)}, got[0])
}

func TestMissingCastInCaseLabel(t *testing.T) {
	t.Parallel()
	root := block(other(ctree.KindStmt,
		block(other(ctree.KindCaseStmt, call("printf", intType, loc(5, 3)))),
	))

	got := visit(t, root)
	require.Len(t, got, 1)
	assert.Equal(t, "missing", got[0].kind)
	assert.Equal(t, loc(5, 3), got[0].at)
}

func TestSuperfluousCast(t *testing.T) {
	t.Parallel()
	root := block(voidCast(2, 2, call("bar", voidType, loc(2, 8))))

	got := visit(t, root)
	require.Len(t, got, 1)
	assert.Equal(t, "superfluous", got[0].kind)
	assert.Equal(t, "bar", got[0].fn)
	assert.Equal(t, types.Extent{Start: loc(2, 2), End: loc(2, 8)}, got[0].ext)
}

func TestNoReportForOperands(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		root ctree.Node
	}{
		{
			name: "assignment",
			root: block(other(ctree.KindExpr, other(ctree.KindDeclRefExpr), call("foo", intType, loc(1, 5)))),
		},
		{
			name: "condition",
			root: block(other(ctree.KindStmt, other(ctree.KindExpr, call("foo", intType, loc(1, 5))), block())),
		},
		{
			name: "argument",
			root: block(call("bar", voidType, loc(1, 1), call("foo", intType, loc(1, 5)))),
		},
		{
			name: "casted concrete call",
			root: block(voidCast(1, 1, call("foo", intType, loc(1, 7)))),
		},
		{
			name: "void call as statement",
			root: block(call("bar", voidType, loc(1, 1))),
		},
		{
			name: "void call cast inside parentheses",
			root: block(voidCast(1, 1, other(ctree.KindParenExpr, call("bar", voidType, loc(1, 8))))),
		},
		{
			name: "comma operator is not followed",
			root: block(other(ctree.KindCommaExpr, call("foo", intType, loc(1, 1)), other(ctree.KindExpr))),
		},
		{
			name: "unbraced if body",
			root: block(other(ctree.KindStmt, other(ctree.KindExpr), call("foo", intType, loc(2, 3)))),
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Empty(t, visit(t, tt.root))
		})
	}
}

func TestContextIsNotInherited(t *testing.T) {
	t.Parallel()
	// the nested call's parent is the outer call, not the block
	inner := call("foo", intType, loc(1, 5))
	root := block(call("bar", intType, loc(1, 1), inner))

	got := visit(t, root)
	require.Len(t, got, 1)
	assert.Equal(t, "bar", got[0].fn)
}

func TestUnknownCallee(t *testing.T) {
	t.Parallel()
	undeclared := &fakeNode{kind: ctree.KindCallExpr, name: "nowhere", loc: loc(4, 2)}
	noProto := call("old", intType, loc(5, 2))
	noProto.callee.Prototyped = false

	got := visit(t, block(undeclared, noProto))
	require.Len(t, got, 2)
	assert.Equal(t, finding{kind: "unknown", fn: "nowhere", at: loc(4, 2)}, got[0])
	assert.Equal(t, finding{kind: "unknown", fn: "old", at: loc(5, 2)}, got[1])
}

func TestUnknownCalleeStillVisitsArguments(t *testing.T) {
	t.Parallel()
	undeclared := &fakeNode{
		kind:     ctree.KindCallExpr,
		name:     "nowhere",
		loc:      loc(1, 1),
		children: []ctree.Node{block(call("foo", intType, loc(1, 12)))},
	}

	got := visit(t, block(undeclared))
	require.Len(t, got, 2)
	assert.Equal(t, "unknown", got[0].kind)
	assert.Equal(t, "missing", got[1].kind)
}

func TestSilentUnknowns(t *testing.T) {
	t.Parallel()
	macro := call("assert", intType, loc(1, 1))
	macro.callee.Macro = true
	opaque := call("fp", ctree.Type{Kind: ctree.TypeInvalid}, loc(2, 1))
	typedefd := call("get", ctree.Type{Kind: ctree.TypeUnexposed, Spelling: "size_t"}, loc(3, 1))

	assert.Empty(t, visit(t, block(macro, opaque, typedefd)))
}

func TestReporterErrorStopsWalk(t *testing.T) {
	t.Parallel()
	stop := errors.New("stop")
	rec := &recorder{err: stop}
	root := block(call("a", intType, loc(1, 1)), call("b", intType, loc(2, 1)))

	err := NewWalker(rec, nil).Visit(root, State{})
	assert.ErrorIs(t, err, stop)
	assert.Len(t, rec.findings, 1)
}

func TestClassify(t *testing.T) {
	t.Parallel()
	cast := types.Extent{Start: loc(1, 1), End: loc(1, 7)}
	tests := []struct {
		name   string
		result ctree.Type
		state  State
		want   Classification
	}{
		{"void with cast", voidType, State{VoidCastAbove: true, Cast: cast}, SuperfluousCast{Cast: cast}},
		{"void without cast", voidType, State{DiscardContext: true}, OkValueDiscardedAsVoid{}},
		{"int discarded", intType, State{DiscardContext: true}, MissingCast{At: loc(1, 7)}},
		{"int cast", intType, State{VoidCastAbove: true, Cast: cast}, OkValueUsed{}},
		{"int used", intType, State{}, OkValueUsed{}},
		{"opaque", ctree.Type{Kind: ctree.TypeUnexposed}, State{DiscardContext: true}, Unknown{Reason: OpaqueResult}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Classify(call("f", tt.result, loc(1, 7)), tt.state))
		})
	}
}

func TestCastExtentStopsAtOperand(t *testing.T) {
	t.Parallel()
	n := voidCast(3, 5, call("bar", voidType, loc(3, 11)))
	assert.Equal(t, types.Extent{Start: loc(3, 5), End: loc(3, 11)}, CastExtent(n))
}
