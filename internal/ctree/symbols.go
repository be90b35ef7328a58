package ctree

import (
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/gnolang/voidcaster/internal/types"
)

// maxMacroHops bounds how many object-like macro bodies are followed while
// resolving a callee name.
const maxMacroHops = 8

type funcEntry struct {
	decl   Decl
	offset uint32
}

type objectEntry struct {
	offset uint32
}

type macroEntry struct {
	fnLike bool
	body   string
	offset uint32
}

// scope holds the object names declared inside one function definition,
// parameters included.
type scope struct {
	start, end uint32
	names      map[string]struct{}
}

// symbolTable indexes the declarations visible in a translation unit. Each
// entry remembers the byte offset in the main file from which it is
// visible; declarations coming from headers are visible from the
// #include directive on.
type symbolTable struct {
	funcs    map[string][]funcEntry
	objects  map[string][]objectEntry
	typedefs map[string]Type
	macros   map[string][]macroEntry
	scopes   []scope
}

func newSymbolTable() *symbolTable {
	return &symbolTable{
		funcs:    make(map[string][]funcEntry),
		objects:  make(map[string][]objectEntry),
		typedefs: make(map[string]Type),
		macros:   make(map[string][]macroEntry),
	}
}

func (s *symbolTable) addFunc(d Decl, offset uint32) {
	s.funcs[d.Name] = append(s.funcs[d.Name], funcEntry{decl: d, offset: offset})
}

func (s *symbolTable) addObject(name string, offset uint32) {
	s.objects[name] = append(s.objects[name], objectEntry{offset: offset})
}

func (s *symbolTable) addMacro(name string, m macroEntry) {
	s.macros[name] = append(s.macros[name], m)
}

// define registers a command-line macro definition of the form NAME,
// NAME=VALUE or NAME(ARGS)=VALUE.
func (s *symbolTable) define(def, value string) {
	name := def
	fnLike := false
	if i := strings.IndexByte(def, '('); i >= 0 {
		name = def[:i]
		fnLike = true
	}
	s.addMacro(name, macroEntry{fnLike: fnLike, body: strings.TrimSpace(value)})
}

func (s *symbolTable) finish() {
	for name := range s.funcs {
		entries := s.funcs[name]
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].offset < entries[j].offset })
	}
}

// resolve looks up the function a call at offset refers to.
func (s *symbolTable) resolve(name string, at uint32) *Decl {
	return s.resolveHops(name, at, 0)
}

func (s *symbolTable) resolveHops(name string, at uint32, hops int) *Decl {
	if m, ok := s.macroAt(name, at); ok {
		if m.fnLike {
			return &Decl{Name: name, Macro: true, Prototyped: true}
		}
		if isIdentifier(m.body) && m.body != name && hops < maxMacroHops {
			return s.resolveHops(m.body, at, hops+1)
		}
		// expands to something we cannot follow
		return &Decl{Name: name, Macro: true, Prototyped: true}
	}

	if s.isLocal(name, at) {
		return objectDecl(name)
	}

	var found *Decl
	prototyped := false
	for _, e := range s.funcs[name] {
		if e.offset > at {
			break
		}
		d := e.decl
		found = &d
		prototyped = prototyped || d.Prototyped
	}
	if found != nil {
		found.Prototyped = prototyped
		return found
	}

	for _, o := range s.objects[name] {
		if o.offset <= at {
			return objectDecl(name)
		}
	}
	return nil
}

func (s *symbolTable) macroAt(name string, at uint32) (macroEntry, bool) {
	var found macroEntry
	ok := false
	for _, m := range s.macros[name] {
		if m.offset <= at {
			found = m
			ok = true
		}
	}
	return found, ok
}

func (s *symbolTable) isLocal(name string, at uint32) bool {
	for _, sc := range s.scopes {
		if at < sc.start || at >= sc.end {
			continue
		}
		if _, ok := sc.names[name]; ok {
			return true
		}
	}
	return false
}

// objectDecl describes a callee that is a variable, e.g. a function
// pointer. Its result type is not known.
func objectDecl(name string) *Decl {
	return &Decl{Name: name, Prototyped: true}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// declInfo is what a declarator says about the entity it declares.
type declInfo struct {
	name string
	// isFunc is set when the declarator declares a function rather than
	// an object.
	isFunc bool
	// derived is set when the declared function returns a pointer (or
	// another derived type) of its base type.
	derived bool
	params  *sitter.Node
	node    *sitter.Node
}

// collector fills a symbol table from one parsed file.
type collector struct {
	table *symbolTable
	src   []byte
	file  string
	// visibleAt is non-nil for headers and pins every declaration to the
	// offset of the #include directive in the main file.
	visibleAt *uint32
	include   func(n *sitter.Node, offset uint32)
}

func (c *collector) offset(n *sitter.Node) uint32 {
	if c.visibleAt != nil {
		return *c.visibleAt
	}
	return n.StartByte()
}

func (c *collector) text(n *sitter.Node) string {
	return n.Content(c.src)
}

// collectTopLevel walks file-scope items, descending into preprocessor
// conditionals and linkage blocks. All conditional branches are taken.
func (c *collector) collectTopLevel(n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "declaration":
			c.declaration(child, true)
		case "function_definition":
			c.functionDefinition(child)
		case "type_definition":
			c.typeDefinition(child)
		case "preproc_def":
			c.objectMacro(child)
		case "preproc_function_def":
			if name := child.ChildByFieldName("name"); name != nil {
				c.table.addMacro(c.text(name), macroEntry{fnLike: true, offset: c.offset(child)})
			}
		case "preproc_include":
			if c.include != nil {
				c.include(child, c.offset(child))
			}
		case "preproc_if", "preproc_ifdef", "preproc_else", "preproc_elif", "preproc_elifdef",
			"linkage_specification", "declaration_list":
			c.collectTopLevel(child)
		}
	}
}

func (c *collector) objectMacro(n *sitter.Node) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return
	}
	body := ""
	if v := n.ChildByFieldName("value"); v != nil {
		body = strings.TrimSpace(c.text(v))
	}
	c.table.addMacro(c.text(name), macroEntry{body: body, offset: c.offset(n)})
}

// declaration records every declarator of a declaration. fileScope
// declarations of objects are recorded as file-scope objects.
func (c *collector) declaration(n *sitter.Node, fileScope bool) {
	base := c.baseType(n.ChildByFieldName("type"))
	for _, d := range fieldChildren(n, "declarator") {
		info := c.declarator(d)
		if info.name == "" {
			continue
		}
		if info.isFunc {
			c.table.addFunc(c.funcDecl(info, base), c.offset(n))
			continue
		}
		if fileScope {
			c.table.addObject(info.name, c.offset(n))
		}
	}
}

func (c *collector) functionDefinition(n *sitter.Node) {
	base := c.baseType(n.ChildByFieldName("type"))
	d := n.ChildByFieldName("declarator")
	if d == nil {
		return
	}
	info := c.declarator(d)
	if info.isFunc && info.name != "" {
		c.table.addFunc(c.funcDecl(info, base), c.offset(n))
	}
	if c.visibleAt != nil {
		return
	}

	sc := scope{start: n.StartByte(), end: n.EndByte(), names: make(map[string]struct{})}
	if info.params != nil {
		for i := 0; i < int(info.params.NamedChildCount()); i++ {
			p := info.params.NamedChild(i)
			if p.Type() != "parameter_declaration" {
				continue
			}
			if pd := p.ChildByFieldName("declarator"); pd != nil {
				if pi := c.declarator(pd); pi.name != "" {
					sc.names[pi.name] = struct{}{}
				}
			}
		}
	}
	// K&R parameter declarations sit between the declarator and the body
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child.Type() == "declaration" {
			c.localNames(child, sc.names)
		}
	}
	if body := n.ChildByFieldName("body"); body != nil {
		walk(body, func(x *sitter.Node) bool {
			if x.Type() == "declaration" {
				c.localNames(x, sc.names)
				return false
			}
			return true
		})
	}
	c.table.scopes = append(c.table.scopes, sc)
}

func (c *collector) localNames(decl *sitter.Node, names map[string]struct{}) {
	for _, d := range fieldChildren(decl, "declarator") {
		if info := c.declarator(d); info.name != "" && !info.isFunc {
			names[info.name] = struct{}{}
		}
	}
}

func (c *collector) typeDefinition(n *sitter.Node) {
	base := c.baseType(n.ChildByFieldName("type"))
	for _, d := range fieldChildren(n, "declarator") {
		name, derived, fn := typedefName(d, c.src)
		if name == "" {
			continue
		}
		switch {
		case fn:
			c.table.typedefs[name] = Type{Kind: TypeUnexposed, Spelling: name}
		case derived:
			c.table.typedefs[name] = Type{Kind: TypeConcrete, Spelling: name}
		default:
			c.table.typedefs[name] = Type{Kind: base.Kind, Spelling: name}
		}
	}
}

func (c *collector) funcDecl(info declInfo, base Type) Decl {
	result := base
	if info.derived {
		result = Type{Kind: TypeConcrete, Spelling: base.Spelling + " *"}
	}
	loc := types.Location{}
	if info.node != nil {
		loc = location(info.node.StartPoint())
	}
	return Decl{
		Name:       info.name,
		Result:     result,
		Prototyped: hasPrototype(info.params),
		File:       c.file,
		Location:   loc,
	}
}

// declarator unwraps a (possibly nested) declarator.
func (c *collector) declarator(d *sitter.Node) declInfo {
	if d == nil {
		return declInfo{}
	}
	switch d.Type() {
	case "identifier", "field_identifier", "type_identifier":
		return declInfo{name: c.text(d), node: d}
	case "function_declarator":
		inner := d.ChildByFieldName("declarator")
		if inner != nil && inner.Type() == "identifier" {
			return declInfo{
				name:   c.text(inner),
				isFunc: true,
				params: d.ChildByFieldName("parameters"),
				node:   inner,
			}
		}
		info := c.declarator(inner)
		if info.isFunc {
			// a function returning a function pointer
			info.derived = true
		}
		return info
	case "pointer_declarator":
		info := c.declarator(d.ChildByFieldName("declarator"))
		if info.isFunc {
			info.derived = true
		}
		return info
	case "array_declarator":
		info := c.declarator(d.ChildByFieldName("declarator"))
		info.isFunc = false
		return info
	default:
		inner := d.ChildByFieldName("declarator")
		if inner == nil && d.NamedChildCount() > 0 {
			inner = d.NamedChild(0)
		}
		return c.declarator(inner)
	}
}

// baseType classifies the type specifier of a declaration.
func (c *collector) baseType(t *sitter.Node) Type {
	if t == nil {
		return Type{Kind: TypeInvalid}
	}
	return classifySpecifier(t, c.src, c.table.typedefs)
}

func classifySpecifier(t *sitter.Node, src []byte, typedefs map[string]Type) Type {
	text := t.Content(src)
	switch t.Type() {
	case "primitive_type":
		if text == "void" {
			return Type{Kind: TypeVoid, Spelling: text}
		}
		return Type{Kind: TypeConcrete, Spelling: text}
	case "sized_type_specifier", "struct_specifier", "union_specifier", "enum_specifier":
		return Type{Kind: TypeConcrete, Spelling: text}
	case "type_identifier":
		if td, ok := typedefs[text]; ok {
			return td
		}
		return Type{Kind: TypeUnexposed, Spelling: text}
	}
	return Type{Kind: TypeUnexposed, Spelling: text}
}

// typedefName extracts the declared name of a typedef declarator.
func typedefName(d *sitter.Node, src []byte) (name string, derived, fn bool) {
	for d != nil {
		switch d.Type() {
		case "type_identifier", "identifier":
			return d.Content(src), derived, fn
		case "pointer_declarator", "array_declarator":
			derived = true
		case "function_declarator":
			if !derived {
				fn = true
			}
		}
		next := d.ChildByFieldName("declarator")
		if next == nil && d.NamedChildCount() > 0 {
			next = d.NamedChild(0)
		}
		d = next
	}
	return "", false, false
}

// hasPrototype reports whether a parameter list declares its parameters.
// An empty list is an old-style declaration.
func hasPrototype(params *sitter.Node) bool {
	if params == nil {
		return false
	}
	for i := 0; i < int(params.NamedChildCount()); i++ {
		if params.NamedChild(i).Type() != "comment" {
			return true
		}
	}
	// "..." alone is an anonymous child in some grammar versions
	for i := 0; i < int(params.ChildCount()); i++ {
		if params.Child(i).Type() == "..." {
			return true
		}
	}
	return false
}

func fieldChildren(n *sitter.Node, field string) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.FieldNameForChild(i) == field {
			out = append(out, n.Child(i))
		}
	}
	return out
}

// walk visits n and its descendants in order. Returning false from fn
// skips the children of the visited node.
func walk(n *sitter.Node, fn func(*sitter.Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		walk(n.Child(i), fn)
	}
}

func location(p sitter.Point) types.Location {
	return types.Location{Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}
