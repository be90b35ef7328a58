package lint

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/voidcaster/internal/patch"
)

// DefaultConfigFile is read when no configuration path is given.
const DefaultConfigFile = ".voidcaster.yaml"

// DefaultSystemIncludePaths are searched after the user's include paths
// unless disabled.
var DefaultSystemIncludePaths = []string{"/usr/local/include", "/usr/include"}

// DefaultCompiler is asked for its builtin header directory.
const DefaultCompiler = "gcc"

// Config holds the settings shared by all files of a run.
type Config struct {
	Name               string            `yaml:"name"`
	IncludePaths       []string          `yaml:"include_paths,omitempty"`
	SystemIncludePaths []string          `yaml:"system_include_paths,omitempty"`
	Defines            map[string]string `yaml:"defines,omitempty"`
	BackupSuffix       string            `yaml:"backup_suffix"`
	TempDir            string            `yaml:"temp_dir,omitempty"`
	// Compiler is the C compiler whose builtin headers (stddef.h and
	// friends) are searched before the system paths. Empty disables it.
	Compiler string `yaml:"compiler,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Name:               "voidcaster",
		SystemIncludePaths: append([]string(nil), DefaultSystemIncludePaths...),
		BackupSuffix:       patch.DefaultBackupSuffix,
		Compiler:           DefaultCompiler,
	}
}

// LoadConfig reads the YAML configuration at path. A missing file yields
// the defaults; fields absent from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	return LoadConfigFs(afero.NewOsFs(), path)
}

// LoadConfigFs is LoadConfig reading from fs.
func LoadConfigFs(fs afero.Fs, path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		path = DefaultConfigFile
	}

	f, err := fs.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return config, err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&config); err != nil {
		return config, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if config.BackupSuffix == "" {
		config.BackupSuffix = patch.DefaultBackupSuffix
	}
	return config, nil
}

// WriteConfig stores config as YAML at path.
func WriteConfig(path string, config Config) error {
	d, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, d, 0o644)
}
