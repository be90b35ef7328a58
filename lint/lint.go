// Package lint drives a voidcaster run: it parses each file, classifies its
// calls, hands findings to a sink and finally applies confirmed fixes.
package lint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/gnolang/voidcaster/internal/classify"
	"github.com/gnolang/voidcaster/internal/ctree"
	"github.com/gnolang/voidcaster/internal/interact"
	"github.com/gnolang/voidcaster/internal/nolint"
	"github.com/gnolang/voidcaster/internal/patch"
	"github.com/gnolang/voidcaster/internal/report"
	"github.com/gnolang/voidcaster/internal/types"
)

// ErrParse is returned when a file has error-severity diagnostics.
var ErrParse = errors.New("file could not be parsed")

// Session holds the state of one run. Files are processed strictly one
// after another.
type Session struct {
	config       Config
	parser       *ctree.Parser
	printer      *report.Printer
	sink         classify.Reporter
	queue        *patch.Queue
	fingerprints map[string]string
	findings     int
	seen         map[string]bool

	fs           afero.Fs
	parseTimeout time.Duration
	progress     func(path string)
	logger       *zap.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFs sets the filesystem sources and headers are read from and fixes
// are written to. Source lines shown by interactive prompts are always
// read from the operating system.
func WithFs(fs afero.Fs) Option {
	return func(s *Session) { s.fs = fs }
}

// WithParseTimeout bounds the time spent parsing a single file.
func WithParseTimeout(d time.Duration) Option {
	return func(s *Session) { s.parseTimeout = d }
}

// WithProgress registers a callback run after each patched file.
func WithProgress(fn func(path string)) Option {
	return func(s *Session) { s.progress = fn }
}

// New creates a session that prints findings and diagnostics to out.
func New(config Config, out io.Writer, opts ...Option) *Session {
	s := &Session{
		config:       config,
		printer:      report.NewPrinter(out),
		queue:        &patch.Queue{},
		fingerprints: make(map[string]string),
		seen:         make(map[string]bool),
		fs:           afero.NewOsFs(),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sink = s.printer
	s.parser = ctree.NewParser(config.IncludePaths, config.SystemIncludePaths, config.Defines, s.logger)
	s.parser.Fs = s.fs
	return s
}

// UseSink replaces the printer as the receiver of findings.
func (s *Session) UseSink(r classify.Reporter) { s.sink = r }

// Interactive makes the session ask for confirmation of every fix on
// out, reading answers from in. Warnings still go to the session's
// printer.
func (s *Session) Interactive(in io.Reader, out io.Writer) {
	b := interact.NewBridge(in, out, s.queue, s.logger)
	b.WarnTo(s.printer)
	s.sink = b
}

// Queue returns the confirmed fixes not yet applied.
func (s *Session) Queue() *patch.Queue { return s.queue }

// Suggested reports whether any missing or superfluous cast was found.
func (s *Session) Suggested() bool { return s.findings > 0 }

// Findings returns the number of missing or superfluous casts found.
func (s *Session) Findings() int { return s.findings }

// ProcessFiles processes each path in order. Directories are searched for
// C sources and headers. Processing stops at the first failing file.
func (s *Session) ProcessFiles(ctx context.Context, paths []string) error {
	for _, path := range paths {
		if err := s.ProcessPath(ctx, path); err != nil {
			if !errors.Is(err, interact.ErrInputClosed) {
				s.logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return err
		}
	}
	return nil
}

// ProcessPath processes a single file, or every C file below a directory.
func (s *Session) ProcessPath(ctx context.Context, path string) error {
	info, err := s.fs.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ctree.ErrFileOpen, path, err)
	}
	if !info.IsDir() {
		return s.ProcessFile(ctx, path)
	}

	var files []string
	err = afero.Walk(s.fs, path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && hasDesiredExtension(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ctree.ErrFileOpen, path, err)
	}

	for _, f := range files {
		if err := s.ProcessFile(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

// ProcessFile parses path and reports its findings to the sink. A file
// already processed in this session is skipped.
func (s *Session) ProcessFile(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := filepath.Clean(path)
	if s.seen[key] {
		s.logger.Debug("skipping file processed before", zap.String("file", path))
		return nil
	}
	s.seen[key] = true

	pctx := ctx
	if s.parseTimeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(ctx, s.parseTimeout)
		defer cancel()
	}

	tree, err := s.parser.Parse(pctx, path)
	if err != nil {
		return err
	}
	defer tree.Close()

	if tree.HasErrors() {
		s.printer.Abort(tree.Diagnostics())
		return fmt.Errorf("%w: %s", ErrParse, path)
	}
	s.printer.Diagnostics(tree.Diagnostics())

	s.fingerprints[path] = patch.Fingerprint(tree.Source())

	f := &filter{
		Reporter: s.sink,
		nolint:   nolint.ParseComments(tree.Comments()),
		n:        &s.findings,
	}
	w := classify.NewWalker(f, s.logger)
	return w.Visit(tree.Root(), classify.State{})
}

// ApplyEdits applies all confirmed fixes and empties the queue. Files
// that changed since they were parsed are left alone.
func (s *Session) ApplyEdits(ctx context.Context) (*patch.Result, error) {
	engine := patch.NewEngine(s.fs,
		patch.WithBackupSuffix(s.config.BackupSuffix),
		patch.WithTempDir(s.config.TempDir),
		patch.WithFingerprints(s.fingerprints),
		patch.WithProgress(s.progress),
		patch.WithLogger(s.logger),
	)
	res, err := engine.Apply(ctx, s.queue.Items())
	s.queue.Reset()
	return res, err
}

// filter drops findings silenced by nolint comments and tallies the
// rest on their way to the sink.
type filter struct {
	classify.Reporter
	nolint *nolint.Manager
	n      *int
}

func (f *filter) MissingCast(file, fn string, at types.Location) error {
	if f.nolint.IsNolint(at.Line, types.RuleMissingCast) {
		return nil
	}
	*f.n++
	return f.Reporter.MissingCast(file, fn, at)
}

func (f *filter) SuperfluousCast(file, fn string, cast types.Extent) error {
	if f.nolint.IsNolint(cast.Start.Line, types.RuleSuperfluousCast) {
		return nil
	}
	*f.n++
	return f.Reporter.SuperfluousCast(file, fn, cast)
}

func (f *filter) Unresolved(file, fn string, at types.Location) {
	if f.nolint.IsNolint(at.Line, types.RuleUnresolved) {
		return
	}
	f.Reporter.Unresolved(file, fn, at)
}

var desiredExtensions = map[string]bool{
	".c": true,
	".h": true,
}

func hasDesiredExtension(path string) bool {
	return desiredExtensions[filepath.Ext(path)]
}
