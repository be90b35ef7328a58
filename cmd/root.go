package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gnolang/voidcaster/lint"
)

const defaultTimeout = time.Minute

var logger = zap.NewNop()

type options struct {
	cfgFile  string
	timeout  time.Duration
	verbose  bool
	defines  []string
	includes []string

	noSystemInclude bool
	interactive     bool
	extendedStatus  bool
	jsonOutput      bool
	outPath         string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "voidcaster [flags] FILE...",
		Short: "voidcaster - proposes locations for casts to void in a C program",
		Long: `Reports calls whose result is silently dropped and casts to void that
wrap calls returning nothing. With -i, every proposed fix is shown and
applied to the file once confirmed; the original is kept as FILE~.

Exit status:
 0  if OK
 1  if command-line arguments were specified incorrectly
 2  if a file could not be opened
 3  if a file could not be parsed
 4  if -s is set and a suggestion was given
 5  if the C parser failed
 6  if memory management fails`,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("%w: no file specified", errUsage)
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(opts.verbose)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVarP(&opts.defines, "define", "D", nil, "macro to define, as NAME[=VALUE]")
	flags.StringArrayVarP(&opts.includes, "include", "I", nil, "add a path where the preprocessor shall search for includes")
	flags.BoolVarP(&opts.noSystemInclude, "no-system-include", "g", false, "don't search the system include paths")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "interactive mode")
	flags.BoolVarP(&opts.extendedStatus, "extended-status", "s", false, "exit with code 4 if a suggestion is given")
	flags.BoolVar(&opts.jsonOutput, "json", false, "output findings in JSON format")
	flags.StringVarP(&opts.outPath, "output", "o", "", "output path (when using JSON)")

	pflags := cmd.PersistentFlags()
	pflags.StringVarP(&opts.cfgFile, "config", "c", lint.DefaultConfigFile, "path to the configuration file")
	pflags.DurationVar(&opts.timeout, "timeout", defaultTimeout, "time limit for parsing a single file")
	pflags.BoolVarP(&opts.verbose, "verbose", "v", false, "log every classification")

	cmd.AddCommand(newInitCmd(opts))
	return cmd
}

// Execute runs the command line and returns the process exit status.
func Execute() int {
	return execute(newRootCmd())
}

func execute(cmd *cobra.Command) int {
	err := cmd.Execute()
	if err != nil && !isQuiet(err) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", cmd.Name(), err)
	}
	_ = logger.Sync()
	return exitCode(err)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return config.Build()
}

// apply merges the command-line settings into config.
func (o *options) apply(config *lint.Config) {
	config.IncludePaths = append(config.IncludePaths, o.includes...)
	if o.noSystemInclude {
		config.SystemIncludePaths = nil
	}
	if len(o.defines) > 0 && config.Defines == nil {
		config.Defines = make(map[string]string)
	}
	for _, d := range o.defines {
		name, value := parseDefine(d)
		config.Defines[name] = value
	}
}

// parseDefine splits NAME[=VALUE]. A macro without a value expands to 1.
func parseDefine(d string) (string, string) {
	name, value, ok := strings.Cut(d, "=")
	if !ok {
		value = "1"
	}
	return strings.TrimSpace(name), value
}
