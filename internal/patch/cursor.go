package patch

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/gnolang/voidcaster/internal/types"
)

var (
	// ErrUnexpectedEOF is returned when a file ends before an edit's
	// location.
	ErrUnexpectedEOF = errors.New("end of file before target location")
	// ErrNoSuchLocation is returned when a location lies beyond the end of
	// its line.
	ErrNoSuchLocation = errors.New("location does not exist in file")
)

// cursor reads a file forward one byte at a time, tracking the location
// of the next unread byte.
type cursor struct {
	r   *bufio.Reader
	pos types.Location
}

func newCursor(r io.Reader) *cursor {
	return &cursor{r: bufio.NewReader(r), pos: types.Start}
}

// advance consumes bytes until the cursor rests at target. Consumed bytes
// are copied to w unless w is nil.
func (c *cursor) advance(target types.Location, w io.ByteWriter) error {
	for c.pos.Less(target) {
		b, err := c.r.ReadByte()
		if err == io.EOF {
			return fmt.Errorf("%w: at %s, looking for %s", ErrUnexpectedEOF, c.pos, target)
		}
		if err != nil {
			return err
		}
		if w != nil {
			if err := w.WriteByte(b); err != nil {
				return err
			}
		}
		if b == '\n' {
			c.pos.Line++
			c.pos.Column = 1
		} else {
			c.pos.Column++
		}
	}
	if c.pos != target {
		return fmt.Errorf("%w: %s (line ends before it)", ErrNoSuchLocation, target)
	}
	return nil
}

// rest copies everything left to w.
func (c *cursor) rest(w io.Writer) error {
	_, err := c.r.WriteTo(w)
	return err
}
