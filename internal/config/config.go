// Package config loads funcbind.yaml, the optional project configuration of
// the funcbind CLI. Command-line flags override values read here.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file searched for by FindConfig.
const FileName = "funcbind.yaml"

// Config represents the top-level funcbind.yaml configuration.
type Config struct {
	// Sources lists the directories holding CUE function definitions.
	// Defaults to the directory containing funcbind.yaml.
	Sources []string `yaml:"sources,omitempty"`

	// Package is the package clause of the generated registration file.
	// Defaults to "functions".
	Package string `yaml:"package,omitempty"`

	// Qualifier is the local name of the bindings package in generated code.
	// Empty means the package's own name.
	Qualifier string `yaml:"qualifier,omitempty"`

	// Output is the directory generated Go code is written to.
	// Defaults to "gen".
	Output string `yaml:"output,omitempty"`

	// Manifests is the directory function.json manifests are written to,
	// one subdirectory per function. Defaults to Output.
	Manifests string `yaml:"manifests,omitempty"`

	// RegistrationFile is the file name of the registration table inside
	// Output. Defaults to "registrations.go".
	RegistrationFile string `yaml:"registration_file,omitempty"`

	// Cache is the path of the SQLite build cache.
	// Defaults to ".funcbind/cache.db".
	Cache string `yaml:"cache,omitempty"`

	// Dir is the directory relative paths are resolved against. It is the
	// directory of the file the config was loaded from.
	Dir string `yaml:"-"`
}

// Default returns the configuration used when no funcbind.yaml exists.
func Default(dir string) *Config {
	cfg := &Config{Dir: dir}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses a funcbind.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses funcbind.yaml content from bytes.
// The path argument names the file in errors and sets Dir.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// An empty file decodes to io.EOF and means all defaults.
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.Dir = filepath.Dir(path)
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for funcbind.yaml starting from dir and walking up to
// parent directories. Returns an empty path and nil error if none is found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range []string{FileName, "funcbind.yml"} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// validate checks the configuration for semantic errors.
func (c *Config) validate(path string) error {
	if c.Package != "" && !token.IsIdentifier(c.Package) {
		return fmt.Errorf("%s: package %q is not a valid Go identifier", path, c.Package)
	}
	if c.Qualifier != "" && !token.IsIdentifier(c.Qualifier) {
		return fmt.Errorf("%s: qualifier %q is not a valid Go identifier", path, c.Qualifier)
	}
	if c.RegistrationFile != "" {
		if filepath.Base(c.RegistrationFile) != c.RegistrationFile {
			return fmt.Errorf("%s: registration_file %q must be a file name, not a path", path, c.RegistrationFile)
		}
		if filepath.Ext(c.RegistrationFile) != ".go" {
			return fmt.Errorf("%s: registration_file %q must end in .go", path, c.RegistrationFile)
		}
	}
	for i, src := range c.Sources {
		if src == "" {
			return fmt.Errorf("%s: sources[%d] is empty", path, i)
		}
	}
	return nil
}

func (c *Config) setDefaults() {
	if len(c.Sources) == 0 {
		c.Sources = []string{"."}
	}
	if c.Package == "" {
		c.Package = "functions"
	}
	if c.Output == "" {
		c.Output = "gen"
	}
	if c.RegistrationFile == "" {
		c.RegistrationFile = "registrations.go"
	}
	if c.Cache == "" {
		c.Cache = filepath.Join(".funcbind", "cache.db")
	}
}

// Path resolves p against the config directory. Absolute paths are returned
// unchanged.
func (c *Config) Path(p string) string {
	if filepath.IsAbs(p) || c.Dir == "" {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// SourceDirs returns the resolved source directories.
func (c *Config) SourceDirs() []string {
	dirs := make([]string, len(c.Sources))
	for i, s := range c.Sources {
		dirs[i] = c.Path(s)
	}
	return dirs
}

// RegistrationPath returns the resolved path of the registration table.
func (c *Config) RegistrationPath() string {
	return filepath.Join(c.Path(c.Output), c.RegistrationFile)
}

// ManifestDir returns the resolved manifest directory, which is the output
// directory unless manifests is set.
func (c *Config) ManifestDir() string {
	if c.Manifests == "" {
		return c.Path(c.Output)
	}
	return c.Path(c.Manifests)
}

// CachePath returns the resolved build cache path.
func (c *Config) CachePath() string {
	return c.Path(c.Cache)
}
