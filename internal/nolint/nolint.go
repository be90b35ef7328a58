// Package nolint finds suppression comments in C sources. A comment of the
// form "//nolint" or "/* nolint:rule1,rule2 */" silences findings: inline,
// for the lines it shares with code; on a line of its own, for itself and
// the following line.
package nolint

import (
	"fmt"
	"strings"

	"github.com/gnolang/voidcaster/internal/ctree"
)

const nolintPrefix = "nolint"

// Manager manages nolint scopes and checks if a line is nolinted.
type Manager struct {
	scopes []nolintScope
}

// nolintScope is a range of lines where nolint applies.
type nolintScope struct {
	rules      map[string]struct{}
	start, end int
}

// ParseComments collects the nolint directives among comments.
func ParseComments(comments []ctree.Comment) *Manager {
	manager := Manager{}
	for _, c := range comments {
		ns, err := parseComment(c)
		if err != nil {
			// ignore ordinary and malformed comments
			continue
		}
		manager.scopes = append(manager.scopes, ns)
	}
	return &manager
}

func parseComment(c ctree.Comment) (nolintScope, error) {
	var ns nolintScope
	text := commentBody(c.Text)

	if !strings.HasPrefix(text, nolintPrefix) {
		return ns, fmt.Errorf("not a nolint comment")
	}
	rest := text[len(nolintPrefix):]

	// either a list of rules after a colon, or nothing for all rules
	if len(rest) > 0 && rest[0] != ':' {
		return ns, fmt.Errorf("invalid nolint comment format")
	}
	if len(rest) > 0 {
		rest = strings.TrimSpace(rest[1:])
		if rest == "" {
			return ns, fmt.Errorf("invalid nolint comment: no rules specified after colon")
		}
	}
	ns.rules = parseIgnoreRuleNames(rest)

	ns.start = c.Extent.Start.Line
	ns.end = c.Extent.End.Line
	if !c.Inline {
		ns.end++
	}
	return ns, nil
}

// commentBody strips comment delimiters and surrounding space.
func commentBody(text string) string {
	switch {
	case strings.HasPrefix(text, "//"):
		text = text[2:]
	case strings.HasPrefix(text, "/*"):
		text = strings.TrimSuffix(text[2:], "*/")
	}
	return strings.TrimSpace(text)
}

// parseIgnoreRuleNames parses the rule list of a nolint comment.
func parseIgnoreRuleNames(text string) map[string]struct{} {
	rulesMap := make(map[string]struct{})
	if text == "" {
		return rulesMap
	}
	for _, rule := range strings.Split(text, ",") {
		rule = strings.TrimSpace(rule)
		if rule != "" {
			rulesMap[rule] = struct{}{}
		}
	}
	return rulesMap
}

// IsNolint checks if findings of rule on line are silenced.
func (m *Manager) IsNolint(line int, ruleName string) bool {
	if m == nil {
		return false
	}
	for _, ns := range m.scopes {
		if line < ns.start || line > ns.end {
			continue
		}
		// no rules listed means all rules
		if len(ns.rules) == 0 {
			return true
		}
		if _, exists := ns.rules[ruleName]; exists {
			return true
		}
	}
	return false
}
