package types

import "fmt"

// Location is a position in a source file. Line and Column are 1-based and
// Column counts bytes, not runes.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Start is the location of the first byte of a file.
var Start = Location{Line: 1, Column: 1}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Compare orders locations by line, then column.
func (l Location) Compare(o Location) int {
	switch {
	case l.Line < o.Line:
		return -1
	case l.Line > o.Line:
		return 1
	case l.Column < o.Column:
		return -1
	case l.Column > o.Column:
		return 1
	}
	return 0
}

func (l Location) Less(o Location) bool { return l.Compare(o) < 0 }

func (l Location) IsValid() bool { return l.Line > 0 && l.Column > 0 }

// Extent spans a construct. End is the position immediately following its
// last character.
type Extent struct {
	Start Location `json:"start"`
	End   Location `json:"end"`
}

func (e Extent) String() string {
	return e.Start.String() + "-" + e.End.String()
}

// Severity of a reported issue.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	}
	return "UNKNOWN"
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Issue represents a finding in a C source file.
type Issue struct {
	Rule       string   `json:"rule"`
	Filename   string   `json:"filename"`
	Function   string   `json:"function"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
	Severity   Severity `json:"severity"`
	Start      Location `json:"start"`
	End        Location `json:"end"`
}

// rule names
const (
	RuleMissingCast     = "missing-void-cast"
	RuleSuperfluousCast = "superfluous-void-cast"
	RuleUnresolved      = "unresolved-callee"
)
