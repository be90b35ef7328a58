package interact

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/voidcaster/internal/patch"
	"github.com/gnolang/voidcaster/internal/report"
	"github.com/gnolang/voidcaster/internal/types"
)

func init() {
	color.NoColor = true
}

const source = "int f(void)\n{\n\tfoo();\n\t(\n\t\tvoid\n\t)bar();\n}\n"

func setup(t *testing.T, input string) (*Bridge, *patch.Queue, *bytes.Buffer, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.c")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))

	var q patch.Queue
	var out bytes.Buffer
	return NewBridge(strings.NewReader(input), &out, &q, nil), &q, &out, path
}

func TestMissingCastAccepted(t *testing.T) {
	t.Parallel()
	b, q, out, path := setup(t, "y\n")

	at := types.Location{Line: 3, Column: 2}
	require.NoError(t, b.MissingCast(path, "foo", at))

	require.Equal(t, 1, q.Len())
	assert.Equal(t, patch.Insert{Path: path, At: at, Text: "(void)"}, q.Items()[0])

	got := out.String()
	assert.Contains(t, got, "File "+path+", line 3:\n")
	assert.Contains(t, got, "Missing cast to void when calling function 'foo'.\n")
	assert.Contains(t, got, "3 |         foo();\n")
	assert.Contains(t, got, "The line, after its modification:\n\t(void)foo();\n")
	assert.True(t, strings.HasSuffix(got, "Apply fix? (y/n) "))
}

func TestSuperfluousCastAccepted(t *testing.T) {
	t.Parallel()
	b, q, out, path := setup(t, "YES\n")

	cast := types.Extent{
		Start: types.Location{Line: 4, Column: 2},
		End:   types.Location{Line: 6, Column: 3},
	}
	require.NoError(t, b.SuperfluousCast(path, "bar", cast))

	require.Equal(t, 1, q.Len())
	assert.Equal(t, patch.Remove{Path: path, From: cast.Start, To: cast.End}, q.Items()[0])

	got := out.String()
	assert.Contains(t, got, "File "+path+", lines 4 through 6:\n")
	assert.Contains(t, got, "The lines, currently:\n\t(\n\t\tvoid\n\t)bar();\n")
	assert.Contains(t, got, "The lines, after their modification:\n\tbar();\n")
}

func TestDeclined(t *testing.T) {
	t.Parallel()
	b, q, _, path := setup(t, "No\n")

	require.NoError(t, b.MissingCast(path, "foo", types.Location{Line: 3, Column: 2}))
	assert.Zero(t, q.Len())
}

func TestReprompt(t *testing.T) {
	t.Parallel()
	b, q, out, path := setup(t, "maybe\n\nyy\nn\n")

	require.NoError(t, b.MissingCast(path, "foo", types.Location{Line: 3, Column: 2}))
	assert.Zero(t, q.Len())
	assert.Equal(t, 3, strings.Count(out.String(), "Please answer y (yes) or n (no): "))
}

func TestInputClosed(t *testing.T) {
	t.Parallel()
	b, q, out, path := setup(t, "what\n")

	err := b.MissingCast(path, "foo", types.Location{Line: 3, Column: 2})
	require.ErrorIs(t, err, ErrInputClosed)
	assert.Zero(t, q.Len())
	assert.True(t, strings.HasSuffix(out.String(), "Okay, exiting.\n"))
}

func TestAnswerWithoutNewline(t *testing.T) {
	t.Parallel()
	b, q, _, path := setup(t, "y")

	require.NoError(t, b.MissingCast(path, "foo", types.Location{Line: 3, Column: 2}))
	assert.Equal(t, 1, q.Len())
}

func TestUnresolvedIsPrinted(t *testing.T) {
	t.Parallel()
	b, q, out, path := setup(t, "")

	b.Unresolved(path, "mystery", types.Location{Line: 3, Column: 2})
	assert.Zero(t, q.Len())
	assert.Equal(t, path+":3:2: Warning: can't check call to mystery (can't find original definition).\n", out.String())
}

func TestUnresolvedWarnTo(t *testing.T) {
	t.Parallel()
	b, _, out, path := setup(t, "")
	var warnings bytes.Buffer
	b.WarnTo(report.NewPrinter(&warnings))

	b.Unresolved(path, "mystery", types.Location{Line: 3, Column: 2})
	assert.Empty(t, out.String())
	assert.Equal(t, path+":3:2: Warning: can't check call to mystery (can't find original definition).\n", warnings.String())
}

func TestMissingFileStillPrompts(t *testing.T) {
	t.Parallel()
	var q patch.Queue
	var out bytes.Buffer
	b := NewBridge(strings.NewReader("y\n"), &out, &q, nil)

	path := filepath.Join(t.TempDir(), "gone.c")
	require.NoError(t, b.MissingCast(path, "foo", types.Location{Line: 1, Column: 1}))
	assert.Equal(t, 1, q.Len())
}

func TestFetchLines(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "lines.c")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))

	tests := []struct {
		first, count int
		want         string
	}{
		{1, 1, "int f(void)"},
		{3, 1, "\tfoo();"},
		{4, 3, "\t(\n\t\tvoid\n\t)bar();"},
		{7, 1, "}"},
		{8, 1, ""},
	}
	for _, tt := range tests {
		got, err := fetchLines(path, tt.first, tt.count)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := fetchLines(path, 20, 1)
	assert.Error(t, err)
}
