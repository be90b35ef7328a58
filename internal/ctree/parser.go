package ctree

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// maxIncludeDepth bounds nested #include processing.
const maxIncludeDepth = 32

// Parser parses C source files into trees. Headers named by #include
// directives are parsed for their declarations only.
type Parser struct {
	IncludePaths       []string
	SystemIncludePaths []string
	// Defines maps macro names (optionally with a parameter list) to
	// their replacement text, like -D on a compiler command line.
	Defines map[string]string
	Logger  *zap.Logger
	// Fs is where sources and headers are read from.
	Fs afero.Fs
}

// NewParser creates a parser with the given search paths and macros.
func NewParser(includePaths, systemIncludePaths []string, defines map[string]string, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{
		IncludePaths:       includePaths,
		SystemIncludePaths: systemIncludePaths,
		Defines:            defines,
		Logger:             logger,
		Fs:                 afero.NewOsFs(),
	}
}

// Tree is a parsed translation unit.
type Tree struct {
	file  string
	src   []byte
	ts    *sitter.Tree
	syms  *symbolTable
	diags []Diagnostic
}

// Root returns the translation unit cursor.
func (t *Tree) Root() Node {
	return &node{tree: t, n: t.ts.RootNode()}
}

// Diagnostics returns the problems found while parsing the main file and
// resolving its includes, in source order.
func (t *Tree) Diagnostics() []Diagnostic { return t.diags }

// HasErrors reports whether any diagnostic is error-severity.
func (t *Tree) HasErrors() bool {
	for _, d := range t.diags {
		if d.Severity >= DiagnosticError {
			return true
		}
	}
	return false
}

// Source returns the bytes that were parsed.
func (t *Tree) Source() []byte { return t.src }

// File returns the path of the main file.
func (t *Tree) File() string { return t.file }

// Close releases the underlying syntax tree.
func (t *Tree) Close() {
	if t.ts != nil {
		t.ts.Close()
		t.ts = nil
	}
}

// Parse reads and parses filename.
func (p *Parser) Parse(ctx context.Context, filename string) (*Tree, error) {
	src, err := afero.ReadFile(p.Fs, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFileOpen, filename, err)
	}
	return p.ParseSource(ctx, filename, src)
}

// ParseSource parses src as if it were the contents of filename.
// Quoted includes are still resolved relative to filename's directory.
func (p *Parser) ParseSource(ctx context.Context, filename string, src []byte) (*Tree, error) {
	sp := sitter.NewParser()
	defer sp.Close()
	sp.SetLanguage(c.GetLanguage())

	ts, err := sp.ParseCtx(ctx, nil, scrubAttributes(src, p.emptyMacros()))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrProvider, filename, err)
	}
	if ts == nil {
		return nil, fmt.Errorf("%w: %s: no tree produced", ErrProvider, filename)
	}

	t := &Tree{
		file: filename,
		src:  src,
		ts:   ts,
		syms: newSymbolTable(),
	}
	for name, value := range p.Defines {
		t.syms.define(name, value)
	}
	t.diags = syntaxDiagnostics(filename, ts.RootNode())

	r := &includeResolver{
		parser: p,
		sp:     sp,
		ctx:    ctx,
		tree:   t,
		seen:   map[string]bool{},
	}
	if abs, err := filepath.Abs(filename); err == nil {
		r.seen[abs] = true
	}

	col := &collector{table: t.syms, src: src, file: filename}
	col.include = func(n *sitter.Node, offset uint32) {
		r.include(filepath.Dir(filename), n, src, offset, 1)
	}
	col.collectTopLevel(ts.RootNode())
	t.syms.finish()

	p.Logger.Debug("parsed file",
		zap.String("file", filename),
		zap.Int("diagnostics", len(t.diags)),
		zap.Int("functions", len(t.syms.funcs)),
	)
	return t, nil
}

// syntaxDiagnostics reports ERROR and MISSING nodes as errors.
func syntaxDiagnostics(file string, root *sitter.Node) []Diagnostic {
	var diags []Diagnostic
	if root == nil || !root.HasError() {
		return nil
	}
	walk(root, func(n *sitter.Node) bool {
		switch {
		case n.IsMissing():
			diags = append(diags, Diagnostic{
				Severity: DiagnosticError,
				File:     file,
				Location: location(n.StartPoint()),
				Message:  fmt.Sprintf("expected '%s'", n.Type()),
			})
			return false
		case n.Type() == "ERROR":
			diags = append(diags, Diagnostic{
				Severity: DiagnosticError,
				File:     file,
				Location: location(n.StartPoint()),
				Message:  "syntax error",
			})
			return false
		}
		return n.HasError()
	})
	return diags
}

type includeResolver struct {
	parser *Parser
	sp     *sitter.Parser
	ctx    context.Context
	tree   *Tree
	seen   map[string]bool
}

// include parses the header named by an #include directive and records
// its declarations as visible from offset.
func (r *includeResolver) include(dir string, n *sitter.Node, src []byte, offset uint32, depth int) {
	pathNode := n.ChildByFieldName("path")
	if pathNode == nil {
		return
	}
	raw := pathNode.Content(src)
	quoted := pathNode.Type() == "string_literal"
	name := strings.Trim(raw, "\"<>")
	if name == "" {
		return
	}

	header, ok := r.find(dir, name, quoted)
	if !ok && depth > 1 {
		r.parser.Logger.Debug("nested include not found", zap.String("include", name), zap.String("dir", dir))
		return
	}
	if !ok {
		r.tree.diags = append(r.tree.diags, Diagnostic{
			Severity: DiagnosticWarning,
			File:     r.tree.file,
			Location: location(n.StartPoint()),
			Message:  fmt.Sprintf("'%s' file not found", name),
		})
		r.parser.Logger.Debug("include not found", zap.String("include", name), zap.String("dir", dir))
		return
	}
	if r.seen[header] {
		return
	}
	r.seen[header] = true
	if depth > maxIncludeDepth {
		r.parser.Logger.Warn("include nesting too deep", zap.String("include", header))
		return
	}

	hsrc, err := afero.ReadFile(r.parser.Fs, header)
	if err != nil {
		r.parser.Logger.Debug("cannot read header", zap.String("header", header), zap.Error(err))
		return
	}
	ht, err := r.sp.ParseCtx(r.ctx, nil, scrubAttributes(hsrc, r.parser.emptyMacros()))
	if err != nil || ht == nil {
		r.parser.Logger.Debug("cannot parse header", zap.String("header", header), zap.Error(err))
		return
	}
	defer ht.Close()

	at := offset
	col := &collector{table: r.tree.syms, src: hsrc, file: header, visibleAt: &at}
	col.include = func(inner *sitter.Node, _ uint32) {
		r.include(filepath.Dir(header), inner, hsrc, offset, depth+1)
	}
	col.collectTopLevel(ht.RootNode())
}

func (r *includeResolver) find(dir, name string, quoted bool) (string, bool) {
	if filepath.IsAbs(name) {
		return name, r.fileExists(name)
	}
	var search []string
	if quoted {
		search = append(search, dir)
	}
	search = append(search, r.parser.IncludePaths...)
	search = append(search, r.parser.SystemIncludePaths...)
	for _, d := range search {
		candidate := filepath.Join(d, name)
		if r.fileExists(candidate) {
			if abs, err := filepath.Abs(candidate); err == nil {
				return abs, true
			}
			return candidate, true
		}
	}
	return "", false
}

func (r *includeResolver) fileExists(path string) bool {
	info, err := r.parser.Fs.Stat(path)
	return err == nil && !info.IsDir()
}

// emptyMacros returns the names of object-like defines without a value.
// They expand to nothing and are blanked before parsing.
func (p *Parser) emptyMacros() map[string]bool {
	empty := make(map[string]bool)
	for name, value := range p.Defines {
		if strings.TrimSpace(value) == "" && isIdentifier(name) {
			empty[name] = true
		}
	}
	return empty
}
