// Package patch queues textual edits to source files and applies them in a
// single forward pass per file.
package patch

import (
	"fmt"

	"github.com/gnolang/voidcaster/internal/types"
)

// Modification is a confirmed edit to one file: either an Insert or a
// Remove.
type Modification interface {
	// File is the path of the file to edit.
	File() string
	// Anchor is the characteristic location used for ordering.
	Anchor() types.Location
	fmt.Stringer
	modification()
}

// Insert writes Text immediately before the byte at At.
type Insert struct {
	Path string
	At   types.Location
	Text string
}

// Remove drops the bytes from From up to To. To is the position following
// the last removed byte, as in an Extent.
type Remove struct {
	Path string
	From types.Location
	To   types.Location
}

func (m Insert) File() string { return m.Path }
func (m Remove) File() string { return m.Path }

func (m Insert) Anchor() types.Location { return m.At }
func (m Remove) Anchor() types.Location { return m.From }

func (m Insert) String() string {
	return fmt.Sprintf("%s:%s: insert %q", m.Path, m.At, m.Text)
}

func (m Remove) String() string {
	return fmt.Sprintf("%s:%s: remove up to %s", m.Path, m.From, m.To)
}

func (Insert) modification() {}
func (Remove) modification() {}

// end returns the location the read cursor rests at after m is applied.
func end(m Modification) types.Location {
	switch m := m.(type) {
	case Insert:
		return m.At
	case Remove:
		return m.To
	default:
		panic(fmt.Sprintf("patch: unknown modification %T", m))
	}
}

// rank orders modifications sharing an anchor: inserts come first so that
// text inserted at the start of a removed range survives.
func rank(m Modification) int {
	switch m.(type) {
	case Insert:
		return 0
	case Remove:
		return 1
	default:
		panic(fmt.Sprintf("patch: unknown modification %T", m))
	}
}
