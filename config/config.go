package config

import (
	"errors"
	"io/fs"
	"minicc/common"
	"minicc/report"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
)

// Config is the toolchain and build configuration of a compilation.
type Config struct {
	// The commands (program followed by arguments) of the external tools.
	Preprocessor []string
	Assembler    []string
	Translator   []string

	// Whether to emit debug line information.
	Debug bool

	// The name of the log level.  This is empty if none was configured.
	LogLevel string

	// The name of the backend: either "native" or "llvm".
	Backend string

	// The path the configuration was loaded from.  This is empty for the
	// default configuration.
	Path string
}

// Enumeration of backend names.
const (
	BackendNative = "native"
	BackendLLVM   = "llvm"
)

// Default returns the configuration used when no configuration file exists.
func Default() *Config {
	return &Config{
		Preprocessor: []string{"gcc", "-E", "-P"},
		Assembler:    []string{"gcc"},
		Translator:   []string{"llc"},
		Backend:      BackendNative,
	}
}

// tomlConfig represents a configuration file as it is encoded in TOML.
type tomlConfig struct {
	Toolchain tomlToolchain `toml:"toolchain"`
	Build     tomlBuild     `toml:"build"`
}

type tomlToolchain struct {
	Preprocessor []string `toml:"preprocessor"`
	Assembler    []string `toml:"assembler"`
	Translator   []string `toml:"translator"`
}

type tomlBuild struct {
	Debug    bool   `toml:"debug"`
	LogLevel string `toml:"loglevel"`
	Backend  string `toml:"backend"`
}

// Load loads the configuration for compiling inputPath.  If explicitPath is
// given, that file must exist.  Otherwise, the configuration file beside the
// input is used if there is one and the defaults if there is not.
func Load(inputPath, explicitPath string) (*Config, error) {
	if explicitPath != "" {
		return LoadFile(explicitPath)
	}

	path := FilePath(inputPath, explicitPath)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}

	return LoadFile(path)
}

// FilePath returns the path of the configuration file Load reads for
// inputPath.
func FilePath(inputPath, explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}

	return filepath.Join(filepath.Dir(inputPath), common.ConfigFileName)
}

// LoadFile loads and validates the configuration file at path.  Fields the
// file leaves out keep their default values.
func LoadFile(path string) (*Config, error) {
	buff, err := os.ReadFile(path)
	if err != nil {
		return nil, report.IOError(err, "unable to read configuration file `%s`", path)
	}

	tomlCfg := &tomlConfig{}
	if err := toml.Unmarshal(buff, tomlCfg); err != nil {
		return nil, report.Raise(report.KindIO, nil, "error parsing configuration file `%s`: %s", path, err)
	}

	cfg := Default()
	cfg.Path = path

	for _, field := range []struct {
		name string
		dest *[]string
		cmd  []string
	}{
		{"preprocessor", &cfg.Preprocessor, tomlCfg.Toolchain.Preprocessor},
		{"assembler", &cfg.Assembler, tomlCfg.Toolchain.Assembler},
		{"translator", &cfg.Translator, tomlCfg.Toolchain.Translator},
	} {
		if field.cmd == nil {
			continue
		}

		if len(field.cmd) == 0 || strings.TrimSpace(field.cmd[0]) == "" {
			return nil, report.Raise(report.KindIO, nil, "configuration file `%s`: %s command must name a program", path, field.name)
		}

		*field.dest = field.cmd
	}

	cfg.Debug = tomlCfg.Build.Debug

	if tomlCfg.Build.LogLevel != "" {
		if _, ok := report.LogLevelNames[tomlCfg.Build.LogLevel]; !ok {
			return nil, report.Raise(report.KindIO, nil, "configuration file `%s`: unknown log level `%s`", path, tomlCfg.Build.LogLevel)
		}

		cfg.LogLevel = tomlCfg.Build.LogLevel
	}

	switch tomlCfg.Build.Backend {
	case "":
	case BackendNative, BackendLLVM:
		cfg.Backend = tomlCfg.Build.Backend
	default:
		return nil, report.Raise(report.KindIO, nil, "configuration file `%s`: unknown backend `%s`", path, tomlCfg.Build.Backend)
	}

	return cfg, nil
}
