package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/gnolang/voidcaster/internal/interact"
	"github.com/gnolang/voidcaster/internal/patch"
	"github.com/gnolang/voidcaster/internal/report"
	"github.com/gnolang/voidcaster/lint"
)

func run(cmd *cobra.Command, opts *options, paths []string) error {
	if opts.interactive && opts.jsonOutput {
		return fmt.Errorf("%w: --json cannot be combined with --interactive", errUsage)
	}
	if opts.outPath != "" && !opts.jsonOutput {
		return fmt.Errorf("%w: --output requires --json", errUsage)
	}
	cmd.SilenceUsage = true

	config, err := lint.LoadConfig(opts.cfgFile)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	opts.apply(&config)

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if !opts.noSystemInclude {
		builtin := lint.CompilerIncludePaths(ctx, afero.NewOsFs(), config.Compiler, logger)
		config.SystemIncludePaths = append(builtin, config.SystemIncludePaths...)
	}

	// findings, warnings and diagnostics go to stderr; the interactive
	// dialogue and the JSON report go to stdout
	var bar *progressbar.ProgressBar
	session := lint.New(config, cmd.ErrOrStderr(),
		lint.WithLogger(logger),
		lint.WithParseTimeout(opts.timeout),
		lint.WithProgress(func(string) {
			if bar != nil {
				_ = bar.Add(1)
			}
		}),
	)

	var collector *report.Collector
	switch {
	case opts.interactive:
		in := cmd.InOrStdin()
		if !isTerminal(in) {
			logger.Warn("standard input is not a terminal, answers are read from it line by line")
		}
		session.Interactive(in, out)
	case opts.jsonOutput:
		collector = report.NewCollector()
		session.UseSink(collector)
	}

	err = session.ProcessFiles(ctx, paths)
	if errors.Is(err, interact.ErrInputClosed) {
		return err
	}

	if opts.interactive && session.Queue().Len() > 0 {
		bar = newProgressBar(out, countFiles(session.Queue()))
		res, aerr := session.ApplyEdits(ctx)
		if bar != nil {
			_ = bar.Finish()
		}
		if aerr != nil {
			logger.Error("Some fixes could not be applied", zap.Error(aerr))
		}
		for _, c := range res.Changes {
			logger.Debug("applied fixes", zap.String("file", c.Path), zap.Int("edits", c.Edits))
		}
	}

	if collector != nil {
		if werr := writeJSON(out, opts.outPath, collector); werr != nil {
			logger.Error("Error writing JSON output", zap.Error(werr))
		}
	}

	if err != nil {
		return err
	}
	if opts.extendedStatus && !opts.interactive && session.Suggested() {
		return errSuggested
	}
	return nil
}

func writeJSON(out io.Writer, path string, c *report.Collector) error {
	if path == "" {
		return c.WriteJSON(out)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return c.WriteJSON(f)
}

// countFiles returns the number of distinct files the queue touches.
func countFiles(q *patch.Queue) int {
	files := make(map[string]struct{})
	for _, m := range q.Items() {
		files[m.File()] = struct{}{}
	}
	return len(files)
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// newProgressBar returns nil unless out is a terminal.
func newProgressBar(out io.Writer, files int) *progressbar.ProgressBar {
	if !isTerminal(out) {
		return nil
	}
	return progressbar.NewOptions(files,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("applying fixes"),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
