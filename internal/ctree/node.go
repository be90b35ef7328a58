// Package ctree exposes a parsed C translation unit as a tree of cursors:
// node kinds, type classification, source locations, callee resolution
// and annotated token streams. Parsing is backed by tree-sitter.
package ctree

import (
	"github.com/gnolang/voidcaster/internal/types"
)

// Kind is the syntactic category of a node.
type Kind int

const (
	KindOther Kind = iota
	KindTranslationUnit
	KindCompoundStmt
	KindCaseStmt
	KindCastExpr
	KindCallExpr
	KindCommaExpr
	KindParenExpr
	KindDeclRefExpr
	KindFunctionDecl
	KindDecl
	KindStmt
	KindExpr
)

var kindNames = [...]string{
	KindOther:           "Other",
	KindTranslationUnit: "TranslationUnit",
	KindCompoundStmt:    "CompoundStmt",
	KindCaseStmt:        "CaseStmt",
	KindCastExpr:        "CStyleCastExpr",
	KindCallExpr:        "CallExpr",
	KindCommaExpr:       "CommaExpr",
	KindParenExpr:       "ParenExpr",
	KindDeclRefExpr:     "DeclRefExpr",
	KindFunctionDecl:    "FunctionDecl",
	KindDecl:            "Decl",
	KindStmt:            "Stmt",
	KindExpr:            "Expr",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Invalid"
}

// TypeKind classifies a type for the purpose of result checking.
type TypeKind int

const (
	// TypeInvalid means no type could be determined.
	TypeInvalid TypeKind = iota
	// TypeUnexposed is a type that exists but cannot be classified,
	// e.g. a typedef whose definition was never seen.
	TypeUnexposed
	// TypeVoid carries no value.
	TypeVoid
	// TypeConcrete is any value-carrying type.
	TypeConcrete
)

func (k TypeKind) String() string {
	switch k {
	case TypeInvalid:
		return "Invalid"
	case TypeUnexposed:
		return "Unexposed"
	case TypeVoid:
		return "Void"
	case TypeConcrete:
		return "Concrete"
	}
	return "Unknown"
}

// Type is a classified type together with its spelling. Two types are
// equal iff both fields are equal.
type Type struct {
	Kind     TypeKind
	Spelling string
}

// Decl is the resolved declaration of a called function.
type Decl struct {
	Name string
	// Result is the declared result type.
	Result Type
	// Prototyped is false for declarations with an empty parameter list,
	// which declare nothing about the parameters.
	Prototyped bool
	// Macro is set when the callee is a function-like macro.
	Macro    bool
	File     string
	Location types.Location
}

// Token is a lexical token annotated with the cursor it belongs to.
type Token struct {
	Text   string
	Kind   Kind
	Type   Type
	Extent types.Extent
}

// Node is a cursor into a parsed translation unit.
type Node interface {
	Kind() Kind
	// Type is the type of an expression node. For a cast it is the
	// target type.
	Type() Type
	Location() types.Location
	Extent() types.Extent
	File() string
	// Spelling is the callee name for calls and the source text of
	// identifiers; empty for other nodes.
	Spelling() string
	Children() []Node
	// Callee resolves the declaration of the function a call refers to.
	// It returns nil if the call target cannot be resolved.
	Callee() *Decl
	// Tokens returns the annotated tokens covering the node's extent.
	Tokens() []Token
}
