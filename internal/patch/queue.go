package patch

import (
	"errors"
	"fmt"
	"sort"
)

// ErrOverlap is returned when edits to one file overlap. The engine only
// moves forward through a file and cannot apply such a set.
var ErrOverlap = errors.New("overlapping modifications")

// Queue collects confirmed modifications until they are applied.
type Queue struct {
	mods []Modification
}

// Add appends m to the queue.
func (q *Queue) Add(m Modification) {
	q.mods = append(q.mods, m)
}

// Len returns the number of queued modifications.
func (q *Queue) Len() int { return len(q.mods) }

// Items returns the queued modifications in insertion order.
func (q *Queue) Items() []Modification {
	out := make([]Modification, len(q.mods))
	copy(out, q.mods)
	return out
}

// Reset drops all queued modifications.
func (q *Queue) Reset() { q.mods = nil }

// Sorted returns the modifications ordered by file, then anchor. Equal
// keys keep their queue order.
func (q *Queue) Sorted() []Modification {
	out := q.Items()
	sortModifications(out)
	return out
}

func sortModifications(mods []Modification) {
	sort.SliceStable(mods, func(i, j int) bool {
		a, b := mods[i], mods[j]
		if a.File() != b.File() {
			return a.File() < b.File()
		}
		if c := a.Anchor().Compare(b.Anchor()); c != 0 {
			return c < 0
		}
		return rank(a) < rank(b)
	})
}

// fileEdits is the contiguous run of sorted modifications for one file.
type fileEdits struct {
	path string
	mods []Modification
}

// groupByFile splits sorted modifications into per-file runs.
func groupByFile(sorted []Modification) []fileEdits {
	var groups []fileEdits
	for _, m := range sorted {
		if n := len(groups); n > 0 && groups[n-1].path == m.File() {
			groups[n-1].mods = append(groups[n-1].mods, m)
			continue
		}
		groups = append(groups, fileEdits{path: m.File(), mods: []Modification{m}})
	}
	return groups
}

// validate checks that sorted edits to one file never require the cursor
// to move backwards.
func validate(mods []Modification) error {
	for i, m := range mods {
		if end(m).Less(m.Anchor()) {
			return fmt.Errorf("%w: %s ends before it starts", ErrOverlap, m)
		}
		if i > 0 && m.Anchor().Less(end(mods[i-1])) {
			return fmt.Errorf("%w: %s and %s", ErrOverlap, mods[i-1], m)
		}
	}
	return nil
}
