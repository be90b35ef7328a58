package ctree

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/gnolang/voidcaster/internal/types"
)

// node adapts a tree-sitter node to the Node interface.
type node struct {
	tree *Tree
	n    *sitter.Node
}

var _ Node = (*node)(nil)

func kindOf(n *sitter.Node) Kind {
	t := n.Type()
	switch t {
	case "translation_unit":
		return KindTranslationUnit
	case "compound_statement":
		return KindCompoundStmt
	case "case_statement":
		return KindCaseStmt
	case "cast_expression":
		return KindCastExpr
	case "call_expression":
		return KindCallExpr
	case "comma_expression":
		return KindCommaExpr
	case "parenthesized_expression":
		return KindParenExpr
	case "identifier":
		return KindDeclRefExpr
	case "function_definition":
		return KindFunctionDecl
	case "declaration", "type_definition":
		return KindDecl
	}
	switch {
	case strings.HasSuffix(t, "_statement"):
		return KindStmt
	case strings.HasSuffix(t, "_expression"), strings.HasSuffix(t, "_literal"):
		return KindExpr
	}
	return KindOther
}

func (x *node) Kind() Kind { return kindOf(x.n) }

func (x *node) Type() Type {
	switch x.n.Type() {
	case "cast_expression":
		return x.tree.descriptorType(x.n.ChildByFieldName("type"))
	case "call_expression":
		if d := x.Callee(); d != nil {
			return d.Result
		}
	case "parenthesized_expression":
		if x.n.NamedChildCount() == 1 {
			return (&node{tree: x.tree, n: x.n.NamedChild(0)}).Type()
		}
	}
	return Type{}
}

func (x *node) Location() types.Location { return location(x.n.StartPoint()) }

func (x *node) Extent() types.Extent {
	return types.Extent{Start: location(x.n.StartPoint()), End: location(x.n.EndPoint())}
}

func (x *node) File() string { return x.tree.file }

func (x *node) Spelling() string {
	switch x.n.Type() {
	case "call_expression":
		if fn := x.n.ChildByFieldName("function"); fn != nil {
			return x.tree.text(stripParens(fn))
		}
	case "identifier":
		return x.tree.text(x.n)
	}
	return ""
}

// Children returns the named children, skipping comments. Expression
// statements are transparent: their expression takes their place, so a
// call used as a statement is a direct child of its block.
func (x *node) Children() []Node {
	var out []Node
	var add func(n *sitter.Node)
	add = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			switch child.Type() {
			case "comment":
				continue
			case "expression_statement":
				add(child)
				continue
			}
			out = append(out, &node{tree: x.tree, n: child})
		}
	}
	add(x.n)
	return out
}

func (x *node) Callee() *Decl {
	if x.n.Type() != "call_expression" {
		return nil
	}
	fn := x.n.ChildByFieldName("function")
	if fn == nil {
		return nil
	}
	fn = stripParens(fn)
	if fn.Type() != "identifier" {
		// calls through pointers and members have no declaration
		// whose result we could inspect
		return objectDecl(x.tree.text(fn))
	}
	return x.tree.syms.resolve(x.tree.text(fn), fn.StartByte())
}

// Tokens returns the leaf tokens of the node, each annotated with the
// innermost cursor enclosing it. Comments are not tokens.
func (x *node) Tokens() []Token {
	var toks []Token
	walk(x.n, func(n *sitter.Node) bool {
		if n.ChildCount() > 0 {
			return true
		}
		if n.Type() == "comment" || n.IsMissing() || n.StartByte() == n.EndByte() {
			return false
		}
		owner := &node{tree: x.tree, n: x.owner(n)}
		toks = append(toks, Token{
			Text: x.tree.text(n),
			Kind: owner.Kind(),
			Type: owner.Type(),
			Extent: types.Extent{
				Start: location(n.StartPoint()),
				End:   location(n.EndPoint()),
			},
		})
		return false
	})
	return toks
}

// owner finds the cursor a leaf token belongs to, never looking past x.
func (x *node) owner(leaf *sitter.Node) *sitter.Node {
	cur := leaf
	if !cur.IsNamed() {
		cur = cur.Parent()
	}
	for cur != nil {
		if sameNode(cur, x.n) || isCursor(cur) {
			return cur
		}
		cur = cur.Parent()
	}
	return x.n
}

// nonCursors are syntax nodes that belong to the enclosing cursor rather
// than forming one of their own: type names, abstract declarators and
// argument lists.
var nonCursors = map[string]bool{
	"type_descriptor":                   true,
	"primitive_type":                    true,
	"sized_type_specifier":              true,
	"type_identifier":                   true,
	"type_qualifier":                    true,
	"struct_specifier":                  true,
	"union_specifier":                   true,
	"enum_specifier":                    true,
	"abstract_pointer_declarator":       true,
	"abstract_array_declarator":         true,
	"abstract_function_declarator":      true,
	"abstract_parenthesized_declarator": true,
	"argument_list":                     true,
	"parameter_list":                    true,
	"string_content":                    true,
	"escape_sequence":                   true,
}

func isCursor(n *sitter.Node) bool {
	return n.IsNamed() && !nonCursors[n.Type()]
}

func sameNode(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

func stripParens(n *sitter.Node) *sitter.Node {
	for n.Type() == "parenthesized_expression" && n.NamedChildCount() == 1 {
		n = n.NamedChild(0)
	}
	return n
}

func (t *Tree) text(n *sitter.Node) string {
	return n.Content(t.src)
}

// descriptorType classifies the type named in a cast.
func (t *Tree) descriptorType(desc *sitter.Node) Type {
	if desc == nil {
		return Type{}
	}
	spelling := t.text(desc)
	if desc.ChildByFieldName("declarator") != nil {
		// pointer, array or function type
		return Type{Kind: TypeConcrete, Spelling: spelling}
	}
	spec := desc.ChildByFieldName("type")
	if spec == nil {
		return Type{Kind: TypeUnexposed, Spelling: spelling}
	}
	ty := classifySpecifier(spec, t.src, t.syms.typedefs)
	ty.Spelling = spelling
	return ty
}
