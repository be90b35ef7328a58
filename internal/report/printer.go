// Package report renders findings for people and for tools.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/gnolang/voidcaster/internal/ctree"
	"github.com/gnolang/voidcaster/internal/types"
)

var (
	fileStyle    = color.New(color.FgCyan, color.Bold)
	messageStyle = color.New(color.FgRed, color.Bold)
	warningStyle = color.New(color.FgHiYellow, color.Bold)
	errorStyle   = color.New(color.FgRed, color.Bold)
	noteStyle    = color.New(color.FgHiBlue, color.Bold)
)

// Printer writes one line per finding.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{out: w}
}

func (p *Printer) MissingCast(file, fn string, at types.Location) error {
	_, err := fmt.Fprintf(p.out, "%s %s\n",
		prefix(file, at),
		messageStyle.Sprintf("Missing cast to void when calling function %s.", fn),
	)
	return err
}

func (p *Printer) SuperfluousCast(file, fn string, cast types.Extent) error {
	_, err := fmt.Fprintf(p.out, "%s %s\n",
		prefix(file, cast.Start),
		messageStyle.Sprintf("Pointless cast to void when calling function %s.", fn),
	)
	return err
}

func (p *Printer) Unresolved(file, fn string, at types.Location) {
	fmt.Fprintf(p.out, "%s %s can't check call to %s (can't find original definition).\n",
		prefix(file, at), warningStyle.Sprint("Warning:"), fn)
}

// Diagnostics prints parser diagnostics in the usual compiler format.
func (p *Printer) Diagnostics(diags []ctree.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(p.out, "%s %s %s\n", prefix(d.File, d.Location), severityStyle(d.Severity).Sprintf("%s:", d.Severity), d.Message)
	}
}

// Abort prints diagnostics followed by the notice that the file was not
// processed.
func (p *Printer) Abort(diags []ctree.Diagnostic) {
	p.Diagnostics(diags)
	fmt.Fprintln(p.out, "Aborting parse.")
}

func prefix(file string, at types.Location) string {
	return fileStyle.Sprintf("%s:%s:", file, at)
}

func severityStyle(s ctree.DiagnosticSeverity) *color.Color {
	switch s {
	case ctree.DiagnosticError:
		return errorStyle
	case ctree.DiagnosticWarning:
		return warningStyle
	default:
		return noteStyle
	}
}
