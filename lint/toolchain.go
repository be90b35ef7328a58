package lint

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// CompilerIncludePaths asks compiler where its builtin headers live and
// which multiarch directories the system headers are split into. Paths
// that do not exist on fs are dropped. A compiler that cannot be run
// yields nil.
func CompilerIncludePaths(ctx context.Context, fs afero.Fs, compiler string, logger *zap.Logger) []string {
	if compiler == "" {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var paths []string
	builtin, err := askCompiler(ctx, compiler, "-print-file-name=include")
	switch {
	case err != nil:
		logger.Debug("cannot query compiler", zap.String("compiler", compiler), zap.Error(err))
		return nil
	case filepath.IsAbs(builtin):
		// gcc echoes the bare name back when it has no such file
		paths = append(paths, builtin)
	}

	if triple, err := askCompiler(ctx, compiler, "-print-multiarch"); err == nil && triple != "" {
		for _, dir := range DefaultSystemIncludePaths {
			paths = append(paths, filepath.Join(dir, triple))
		}
	}

	var out []string
	for _, p := range paths {
		if ok, _ := afero.DirExists(fs, p); ok {
			out = append(out, p)
		}
	}
	logger.Debug("compiler include paths", zap.String("compiler", compiler), zap.Strings("paths", out))
	return out
}

func askCompiler(ctx context.Context, compiler, flag string) (string, error) {
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, compiler, flag)
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(stdout.String()), nil
}
