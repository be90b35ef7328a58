package interact

import (
	"fmt"
	"io"

	"golang.org/x/exp/mmap"
)

// fetchLines returns count lines of path starting at line first, without
// the trailing newline. The file is mapped read-only for the duration of
// the call.
func fetchLines(path string, first, count int) (string, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return "", err
	}
	defer r.Close()

	n := r.Len()
	i, line := 0, 1
	for ; i < n && line < first; i++ {
		if r.At(i) == '\n' {
			line++
		}
	}
	if line < first {
		return "", fmt.Errorf("line %d past end of source file %s", first, path)
	}

	start := i
	for ; i < n; i++ {
		if r.At(i) == '\n' {
			count--
			if count <= 0 {
				break
			}
		}
	}

	buf := make([]byte, i-start)
	if _, err := r.ReadAt(buf, int64(start)); err != nil && err != io.EOF {
		return "", err
	}
	return string(buf), nil
}
