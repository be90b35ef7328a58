package patch

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const tempPattern = "voidcaster"

// Engine rewrites files according to queued modifications.
type Engine struct {
	fs           afero.Fs
	backupSuffix string
	tempDir      string
	fingerprints map[string]string
	progress     func(path string)
	logger       *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithBackupSuffix sets the suffix appended to backup file names.
func WithBackupSuffix(suffix string) Option {
	return func(e *Engine) {
		if suffix != "" {
			e.backupSuffix = suffix
		}
	}
}

// WithTempDir sets where rewritten files are staged. Empty means the
// system temporary directory.
func WithTempDir(dir string) Option {
	return func(e *Engine) { e.tempDir = dir }
}

// WithFingerprints enables the staleness check: a file whose current
// fingerprint differs from the recorded one is left alone.
func WithFingerprints(fp map[string]string) Option {
	return func(e *Engine) { e.fingerprints = fp }
}

// WithProgress registers a callback invoked after each file is handled.
func WithProgress(fn func(path string)) Option {
	return func(e *Engine) { e.progress = fn }
}

// WithLogger sets the engine's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine working on fs.
func NewEngine(fs afero.Fs, opts ...Option) *Engine {
	e := &Engine{
		fs:           fs,
		backupSuffix: DefaultBackupSuffix,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FileChange records a rewritten file.
type FileChange struct {
	Path   string
	Backup string
	Edits  int
}

// Result summarises an Apply call.
type Result struct {
	Changes []FileChange
	Failed  map[string]error
}

// Apply sorts mods and rewrites each affected file in one forward pass. A
// failure aborts the file it occurs in; files rewritten before stay
// rewritten. The returned error joins all per-file failures.
func (e *Engine) Apply(ctx context.Context, mods []Modification) (*Result, error) {
	res := &Result{Failed: make(map[string]error)}
	if len(mods) == 0 {
		return res, nil
	}

	sorted := make([]Modification, len(mods))
	copy(sorted, mods)
	sortModifications(sorted)

	var errs []error
	for _, fe := range groupByFile(sorted) {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		change, err := e.applyFile(fe)
		if err != nil {
			e.logger.Error("failed to apply modifications",
				zap.String("file", fe.path),
				zap.Int("edits", len(fe.mods)),
				zap.Error(err),
			)
			res.Failed[fe.path] = err
			errs = append(errs, err)
		} else {
			e.logger.Info("patched file",
				zap.String("file", change.Path),
				zap.String("backup", change.Backup),
				zap.Int("edits", change.Edits),
			)
			res.Changes = append(res.Changes, change)
		}
		if e.progress != nil {
			e.progress(fe.path)
		}
	}
	return res, errors.Join(errs...)
}

func (e *Engine) applyFile(fe fileEdits) (FileChange, error) {
	change := FileChange{Path: fe.path, Edits: len(fe.mods)}

	if err := validate(fe.mods); err != nil {
		return change, fmt.Errorf("%s: %w", fe.path, err)
	}
	if err := checkFresh(e.fs, fe.path, e.fingerprints[fe.path]); err != nil {
		return change, err
	}

	src, err := e.fs.Open(fe.path)
	if err != nil {
		return change, fmt.Errorf("failed to open %s: %w", fe.path, err)
	}
	tmp, err := afero.TempFile(e.fs, e.tempDir, tempPattern)
	if err != nil {
		src.Close()
		return change, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	err = rewrite(src, tmp, fe.mods)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if info, serr := src.Stat(); serr == nil && err == nil {
		err = e.fs.Chmod(tmpName, info.Mode().Perm())
	}
	src.Close()
	if err != nil {
		_ = e.fs.Remove(tmpName)
		return change, fmt.Errorf("failed to rewrite %s: %w", fe.path, err)
	}

	backup, err := overwriteWithBackup(e.fs, fe.path, tmpName, e.backupSuffix)
	change.Backup = backup
	if err != nil {
		return change, err
	}
	return change, nil
}

// rewrite streams r to w applying sorted, validated modifications.
func rewrite(r io.Reader, w io.Writer, mods []Modification) error {
	out := bufio.NewWriter(w)
	cur := newCursor(r)

	for _, m := range mods {
		switch m := m.(type) {
		case Insert:
			if err := cur.advance(m.At, out); err != nil {
				return err
			}
			if _, err := out.WriteString(m.Text); err != nil {
				return err
			}
		case Remove:
			if err := cur.advance(m.From, out); err != nil {
				return err
			}
			if err := cur.advance(m.To, nil); err != nil {
				return err
			}
		default:
			panic(fmt.Sprintf("patch: unknown modification %T", m))
		}
	}

	if err := cur.rest(out); err != nil {
		return err
	}
	return out.Flush()
}

// ApplyBytes applies mods, which must all target the same file, to src
// and returns the result. It is the in-memory counterpart of Apply.
func ApplyBytes(src []byte, mods []Modification) ([]byte, error) {
	sorted := make([]Modification, len(mods))
	copy(sorted, mods)
	sortModifications(sorted)
	if err := validate(sorted); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := rewrite(bytes.NewReader(src), &buf, sorted); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
