package ctree

import "strings"

// toolchainMacros are header macros that expand to nothing or to
// attributes. Without a preprocessor the grammar sees them as stray
// identifiers and loses the declarations around them.
var toolchainMacros = map[string]bool{
	"__BEGIN_DECLS":          true,
	"__END_DECLS":            true,
	"__BEGIN_NAMESPACE_STD":  true,
	"__END_NAMESPACE_STD":    true,
	"__THROW":                true,
	"__THROWNL":              true,
	"__wur":                  true,
	"__extension__":          true,
	"__restrict":             true,
	"__restrict_arr":         true,
	"__nonnull":              true,
	"__attribute__":          true,
	"__attribute":            true,
	"__asm__":                true,
	"__asm":                  true,
	"__LEAF":                 true,
	"__attr_access":          true,
	"__attr_dealloc":         true,
	"__attr_dealloc_free":    true,
	"__attribute_pure__":     true,
	"__attribute_const__":    true,
	"__attribute_malloc__":   true,
	"__returns_nonnull":      true,
	"__extern_inline":        true,
	"__extern_always_inline": true,
	"__always_inline":        true,
	"__fortify_function":     true,
}

var cKeywords = map[string]bool{
	"auto": true, "break": true, "case": true, "char": true, "const": true,
	"continue": true, "default": true, "do": true, "double": true, "else": true,
	"enum": true, "extern": true, "float": true, "for": true, "goto": true,
	"if": true, "inline": true, "int": true, "long": true, "register": true,
	"restrict": true, "return": true, "short": true, "signed": true,
	"sizeof": true, "static": true, "struct": true, "switch": true,
	"typedef": true, "union": true, "unsigned": true, "void": true,
	"volatile": true, "while": true, "_Bool": true, "_Noreturn": true,
	"_Alignas": true, "_Atomic": true, "_Thread_local": true,
}

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokPunct
	tokOther
)

type rawToken struct {
	kind       tokenKind
	start, end int
}

// scrubAttributes returns src with attribute macros at file scope blanked
// out. Two forms are recognised: the names in toolchainMacros and empty,
// each with its parenthesised arguments; and runs of macro-like names
// between the closing parenthesis of a declarator and the ";", "," or "{"
// that ends it. Blanked bytes become spaces, so every offset, line and
// column stays valid for the original source.
func scrubAttributes(src []byte, empty map[string]bool) []byte {
	toks := lexFileScope(src)
	blank := make([]bool, len(toks))

	text := func(i int) string { return string(src[toks[i].start:toks[i].end]) }
	isPunct := func(i int, p string) bool {
		return i < len(toks) && toks[i].kind == tokPunct && text(i) == p
	}
	// group returns the index of the ")" closing the group opened at i.
	group := func(i int) int {
		depth := 0
		for j := i; j < len(toks); j++ {
			switch {
			case isPunct(j, "("):
				depth++
			case isPunct(j, ")"):
				depth--
				if depth == 0 {
					return j
				}
			}
		}
		return len(toks) - 1
	}
	mark := func(from, to int) {
		for k := from; k <= to; k++ {
			blank[k] = true
		}
	}

	braces, parens := 0, 0
	for i := 0; i < len(toks); i++ {
		switch {
		case isPunct(i, "{"):
			braces++
			continue
		case isPunct(i, "}"):
			if braces > 0 {
				braces--
			}
			continue
		}
		if braces > 0 {
			continue
		}

		if toks[i].kind == tokIdent && (toolchainMacros[text(i)] || empty[text(i)]) {
			end := i
			if isPunct(i+1, "(") {
				end = group(i + 1)
			}
			mark(i, end)
			i = end
			continue
		}

		switch {
		case isPunct(i, "("):
			parens++
		case isPunct(i, ")"):
			if parens > 0 {
				parens--
			}
			if parens == 0 {
				if end, ok := attributeRun(toks, i+1, text, isPunct, group); ok {
					mark(i+1, end)
					i = end
				}
			}
		}
	}

	out := make([]byte, len(src))
	copy(out, src)
	for i, t := range toks {
		if !blank[i] {
			continue
		}
		for k := t.start; k < t.end; k++ {
			if out[k] != '\n' {
				out[k] = ' '
			}
		}
	}
	return out
}

// attributeRun reports the last token of a run of macro-like names, each
// optionally followed by an argument group, starting at i and ending a
// declarator.
func attributeRun(toks []rawToken, i int, text func(int) string,
	isPunct func(int, string) bool, group func(int) int,
) (int, bool) {
	end := -1
	j := i
	for j < len(toks) && toks[j].kind == tokIdent && isAttributeName(text(j)) {
		end = j
		if isPunct(j+1, "(") {
			end = group(j + 1)
		}
		j = end + 1
	}
	if end < 0 {
		return 0, false
	}
	if isPunct(j, ";") || isPunct(j, ",") || isPunct(j, "{") {
		return end, true
	}
	return 0, false
}

// isAttributeName reports whether name looks like a macro: reserved
// (leading underscore) or upper case. Keywords never are.
func isAttributeName(name string) bool {
	if cKeywords[name] {
		return false
	}
	if strings.HasPrefix(name, "_") {
		return true
	}
	letters := false
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			letters = true
		case r == '_', r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return letters && len(name) > 1
}

// lexFileScope splits src into identifiers and punctuation. Comments,
// preprocessor lines and literals are skipped or kept whole so that their
// contents never look like code.
func lexFileScope(src []byte) []rawToken {
	var toks []rawToken
	lineStart := true
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '\n':
			lineStart = true
			i++
			continue
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			i++
			continue
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			i = skipLine(src, i)
			continue
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(string(src[i+2:]), "*/")
			if end < 0 {
				return toks
			}
			i += end + 4
			continue
		case c == '#' && lineStart:
			i = skipDirective(src, i)
			continue
		}
		lineStart = false

		switch {
		case isIdentStart(c):
			j := i + 1
			for j < len(src) && (isIdentStart(src[j]) || (src[j] >= '0' && src[j] <= '9')) {
				j++
			}
			toks = append(toks, rawToken{kind: tokIdent, start: i, end: j})
			i = j
		case c >= '0' && c <= '9':
			j := i + 1
			for j < len(src) && (isIdentStart(src[j]) || (src[j] >= '0' && src[j] <= '9') || src[j] == '.') {
				j++
			}
			toks = append(toks, rawToken{kind: tokOther, start: i, end: j})
			i = j
		case c == '"' || c == '\'':
			j := i + 1
			for j < len(src) && src[j] != c && src[j] != '\n' {
				if src[j] == '\\' {
					j++
				}
				j++
			}
			if j < len(src) && src[j] == c {
				j++
			}
			if j > len(src) {
				j = len(src)
			}
			toks = append(toks, rawToken{kind: tokOther, start: i, end: j})
			i = j
		default:
			toks = append(toks, rawToken{kind: tokPunct, start: i, end: i + 1})
			i++
		}
	}
	return toks
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func skipLine(src []byte, i int) int {
	for i < len(src) && src[i] != '\n' {
		i++
	}
	return i
}

// skipDirective skips a preprocessor line and its continuations.
func skipDirective(src []byte, i int) int {
	for i < len(src) {
		switch {
		case src[i] == '\\' && i+1 < len(src) && src[i+1] == '\n':
			i += 2
		case src[i] == '\\' && i+2 < len(src) && src[i+1] == '\r' && src[i+2] == '\n':
			i += 3
		case src[i] == '\n':
			return i
		default:
			i++
		}
	}
	return i
}
