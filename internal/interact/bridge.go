// Package interact asks the operator to confirm each proposed fix and
// queues the accepted ones.
package interact

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/gnolang/voidcaster/internal/patch"
	"github.com/gnolang/voidcaster/internal/report"
	"github.com/gnolang/voidcaster/internal/types"
)

// ErrInputClosed is returned when input ends while waiting for an answer.
// Nothing should be applied after it.
var ErrInputClosed = errors.New("input closed")

const voidCast = "(void)"

// Bridge implements classify.Reporter by prompting for every finding.
type Bridge struct {
	in     *bufio.Reader
	out    io.Writer
	queue  *patch.Queue
	warn   *report.Printer
	logger *zap.Logger
}

// NewBridge creates a bridge reading answers from in and writing prompts
// to out. Accepted fixes are added to queue.
func NewBridge(in io.Reader, out io.Writer, queue *patch.Queue, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{
		in:     bufio.NewReader(in),
		out:    out,
		queue:  queue,
		warn:   report.NewPrinter(out),
		logger: logger,
	}
}

// WarnTo sends warnings about calls that cannot be checked to p instead
// of the prompt output.
func (b *Bridge) WarnTo(p *report.Printer) {
	if p != nil {
		b.warn = p
	}
}

func (b *Bridge) MissingCast(file, fn string, at types.Location) error {
	line := b.lines(file, at.Line, 1)
	fix := patch.Insert{Path: file, At: at, Text: voidCast}
	after := b.preview(line, patch.Insert{Path: file, At: types.Location{Line: 1, Column: at.Column}, Text: voidCast})

	fmt.Fprintf(b.out, "\nFile %s, line %d:\n", file, at.Line)
	fmt.Fprintf(b.out, "Missing cast to void when calling function '%s'.\n", fn)
	fmt.Fprintf(b.out, "The line, currently:\n%s", report.Snippet(at.Line, line, at.Column))
	fmt.Fprintf(b.out, "The line, after its modification:\n%s\n", after)

	return b.confirm(fix)
}

func (b *Bridge) SuperfluousCast(file, fn string, cast types.Extent) error {
	count := cast.End.Line - cast.Start.Line + 1
	lines := b.lines(file, cast.Start.Line, count)
	fix := patch.Remove{Path: file, From: cast.Start, To: cast.End}
	after := b.preview(lines, patch.Remove{
		Path: file,
		From: types.Location{Line: 1, Column: cast.Start.Column},
		To:   types.Location{Line: count, Column: cast.End.Column},
	})

	fmt.Fprintf(b.out, "\nFile %s, lines %d through %d:\n", file, cast.Start.Line, cast.End.Line)
	fmt.Fprintf(b.out, "Superfluous cast to void when calling function '%s'.\n", fn)
	fmt.Fprintf(b.out, "The lines, currently:\n%s\n", lines)
	fmt.Fprintf(b.out, "The lines, after their modification:\n%s\n", after)

	return b.confirm(fix)
}

func (b *Bridge) Unresolved(file, fn string, at types.Location) {
	b.warn.Unresolved(file, fn, at)
}

func (b *Bridge) confirm(fix patch.Modification) error {
	fmt.Fprint(b.out, "Apply fix? (y/n) ")
	yes, err := b.ask()
	if err != nil {
		return err
	}
	if yes {
		b.queue.Add(fix)
		b.logger.Debug("queued fix", zap.Stringer("fix", fix))
	}
	return nil
}

// ask reads answers until one is recognised.
func (b *Bridge) ask() (bool, error) {
	for {
		answer, err := b.in.ReadString('\n')
		if answer != "" {
			switch strings.ToLower(strings.TrimSpace(answer)) {
			case "y", "yes":
				return true, nil
			case "n", "no":
				return false, nil
			}
		}
		if err != nil {
			fmt.Fprintln(b.out, "Okay, exiting.")
			if !errors.Is(err, io.EOF) {
				return false, fmt.Errorf("%w: %v", ErrInputClosed, err)
			}
			return false, ErrInputClosed
		}
		fmt.Fprint(b.out, "Please answer y (yes) or n (no): ")
	}
}

// lines loads source text for display. Failures are logged and yield an
// empty preview.
func (b *Bridge) lines(file string, first, count int) string {
	text, err := fetchLines(file, first, count)
	if err != nil {
		b.logger.Warn("cannot load source lines", zap.String("file", file), zap.Int("line", first), zap.Error(err))
		return ""
	}
	return text
}

// preview applies mod, whose locations are relative to text, to text.
func (b *Bridge) preview(text string, mod patch.Modification) string {
	out, err := patch.ApplyBytes([]byte(text), []patch.Modification{mod})
	if err != nil {
		b.logger.Debug("cannot render preview", zap.Stringer("fix", mod), zap.Error(err))
		return text
	}
	return string(out)
}
