package patch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/voidcaster/internal/types"
)

func TestQueueSorted(t *testing.T) {
	t.Parallel()
	var q Queue
	q.Add(Remove{Path: "b.c", From: loc(2, 1), To: loc(2, 7)})
	q.Add(Insert{Path: "a.c", At: loc(3, 5), Text: "(void)"})
	q.Add(Remove{Path: "a.c", From: loc(1, 1), To: loc(1, 7)})
	q.Add(Insert{Path: "a.c", At: loc(1, 1), Text: "x"})
	q.Add(Insert{Path: "a.c", At: loc(1, 1), Text: "y"})

	got := q.Sorted()
	want := []Modification{
		Insert{Path: "a.c", At: loc(1, 1), Text: "x"},
		Insert{Path: "a.c", At: loc(1, 1), Text: "y"},
		Remove{Path: "a.c", From: loc(1, 1), To: loc(1, 7)},
		Insert{Path: "a.c", At: loc(3, 5), Text: "(void)"},
		Remove{Path: "b.c", From: loc(2, 1), To: loc(2, 7)},
	}
	assert.Equal(t, want, got)

	// Sorted does not reorder the queue itself
	assert.Equal(t, "b.c", q.Items()[0].File())
	assert.Equal(t, 5, q.Len())

	q.Reset()
	assert.Zero(t, q.Len())
}

func TestGroupByFile(t *testing.T) {
	t.Parallel()
	mods := []Modification{
		Insert{Path: "a.c", At: loc(1, 1)},
		Insert{Path: "a.c", At: loc(2, 1)},
		Insert{Path: "b.c", At: loc(1, 1)},
	}
	groups := groupByFile(mods)
	require.Len(t, groups, 2)
	assert.Equal(t, "a.c", groups[0].path)
	assert.Len(t, groups[0].mods, 2)
	assert.Equal(t, "b.c", groups[1].path)
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		mods    []Modification
		wantErr bool
	}{
		{
			name: "disjoint",
			mods: []Modification{
				Remove{Path: "a.c", From: loc(1, 1), To: loc(1, 7)},
				Insert{Path: "a.c", At: loc(1, 7), Text: "x"},
			},
		},
		{
			name: "insert at start of removal",
			mods: []Modification{
				Insert{Path: "a.c", At: loc(1, 1), Text: "x"},
				Remove{Path: "a.c", From: loc(1, 1), To: loc(1, 7)},
			},
		},
		{
			name: "insert inside removal",
			mods: []Modification{
				Remove{Path: "a.c", From: loc(1, 1), To: loc(1, 7)},
				Insert{Path: "a.c", At: loc(1, 3), Text: "x"},
			},
			wantErr: true,
		},
		{
			name: "backwards removal",
			mods: []Modification{
				Remove{Path: "a.c", From: loc(2, 1), To: loc(1, 7)},
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := validate(tt.mods)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrOverlap)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// offsetLocation maps a byte offset in src to its line and column.
func offsetLocation(src string, off int) types.Location {
	l := types.Start
	for _, b := range []byte(src[:off]) {
		if b == '\n' {
			l.Line++
			l.Column = 1
		} else {
			l.Column++
		}
	}
	return l
}

const lawSource = "int f(void)\n{\n\tfoo();\n\t(void)bar();\n}\n"

func TestApplyBytesInsertLaw(t *testing.T) {
	t.Parallel()
	for off := 0; off <= len(lawSource); off++ {
		at := offsetLocation(lawSource, off)
		got, err := ApplyBytes([]byte(lawSource), []Modification{
			Insert{Path: "x.c", At: at, Text: "(void)"},
		})
		require.NoError(t, err, "offset %d", off)
		assert.Equal(t, lawSource[:off]+"(void)"+lawSource[off:], string(got), "offset %d", off)
	}
}

func TestApplyBytesRemoveLaw(t *testing.T) {
	t.Parallel()
	for from := 0; from <= len(lawSource); from++ {
		for to := from; to <= len(lawSource); to += 3 {
			got, err := ApplyBytes([]byte(lawSource), []Modification{
				Remove{Path: "x.c", From: offsetLocation(lawSource, from), To: offsetLocation(lawSource, to)},
			})
			require.NoError(t, err, "range %d-%d", from, to)
			assert.Equal(t, lawSource[:from]+lawSource[to:], string(got), "range %d-%d", from, to)
		}
	}
}

func TestApplyBytesRejectsOverlap(t *testing.T) {
	t.Parallel()
	_, err := ApplyBytes([]byte(lawSource), []Modification{
		Remove{Path: "x.c", From: loc(4, 2), To: loc(4, 8)},
		Remove{Path: "x.c", From: loc(4, 4), To: loc(4, 10)},
	})
	assert.ErrorIs(t, err, ErrOverlap)
}

func TestModificationString(t *testing.T) {
	t.Parallel()
	ins := Insert{Path: "a.c", At: loc(3, 2), Text: "(void)"}
	rem := Remove{Path: "a.c", From: loc(4, 2), To: loc(4, 8)}
	assert.True(t, strings.HasPrefix(ins.String(), "a.c:3:2: insert"))
	assert.True(t, strings.HasPrefix(rem.String(), "a.c:4:2: remove"))
}
