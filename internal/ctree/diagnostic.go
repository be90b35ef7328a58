package ctree

import (
	"errors"
	"fmt"

	"github.com/gnolang/voidcaster/internal/types"
)

var (
	// ErrFileOpen is returned when a source file cannot be read.
	ErrFileOpen = errors.New("file could not be opened")
	// ErrProvider is returned when the parser itself fails.
	ErrProvider = errors.New("parser failure")
)

// DiagnosticSeverity orders diagnostics; anything at or above
// DiagnosticError aborts processing.
type DiagnosticSeverity int

const (
	DiagnosticNote DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticNote:
		return "note"
	case DiagnosticWarning:
		return "warning"
	default:
		return "error"
	}
}

// Diagnostic is a problem found while parsing.
type Diagnostic struct {
	Severity DiagnosticSeverity
	File     string
	Location types.Location
	Message  string
}

// String formats the diagnostic the way C compilers do.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Location.Line, d.Location.Column, d.Severity, d.Message)
}
