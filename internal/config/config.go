// Package config handles pathq configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/roach88/pathq/internal/ir"
)

// FileName is the project-local config file looked up in the working directory.
const FileName = "pathq.toml"

// Config represents pathq configuration.
type Config struct {
	// RootType is the type IRI applied to requests that do not set one.
	// Empty means ir.DefaultRootType.
	RootType string `toml:"root_type"`

	// Prefixes are declared for every request. A request's own declaration
	// of the same short name wins.
	Prefixes map[string]string `toml:"prefixes"`

	// Journal is the SQLite database compilations are recorded in.
	// Empty disables journaling unless --journal is given.
	Journal string `toml:"journal"`

	// Workers is the batch pool size. Zero selects GOMAXPROCS.
	Workers int `toml:"workers"`

	// MaxCriteria bounds the criteria of one request. Zero keeps the engine default.
	MaxCriteria int `toml:"max_criteria"`
}

// Load loads the configuration from path. With an empty path it tries
// FileName in the working directory and then DefaultPath, and returns an
// empty config if neither exists.
func Load(path string) (*Config, error) {
	if path != "" {
		return LoadFrom(path)
	}
	for _, candidate := range []string{FileName, DefaultPath()} {
		if _, err := os.Stat(candidate); err == nil {
			return LoadFrom(candidate)
		}
	}
	return &Config{}, nil
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// DefaultPath returns the user config path (~/.config/pathq/config.toml).
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "pathq", "config.toml")
	}
	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "pathq", "config.toml")
	}
	return FileName
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.MaxCriteria < 0 {
		errs = append(errs, fmt.Errorf("max_criteria must not be negative, got %d", c.MaxCriteria))
	}
	for short, ns := range c.Prefixes {
		if ns == "" {
			errs = append(errs, fmt.Errorf("prefix %q has an empty namespace", short))
		}
		if !ir.ValidPrefixName(short) {
			errs = append(errs, fmt.Errorf("%w: %q", ir.ErrInvalidPrefix, short))
		}
	}
	return errors.Join(errs...)
}

// PrefixTable returns the configured prefixes as a table.
func (c *Config) PrefixTable() *ir.PrefixTable {
	return ir.PrefixTableOf(c.Prefixes)
}

// Apply fills the defaults of req from the config and returns the result.
// req itself is not modified.
func (c *Config) Apply(req ir.Request) ir.Request {
	if c == nil {
		return req
	}
	prefixes := req.Prefixes.Clone()
	c.PrefixTable().Each(func(short, ns string) {
		if _, ok := prefixes.Lookup(short); !ok {
			// Cannot conflict: short is unbound.
			_ = prefixes.Add(short, ns)
		}
	})
	req.Prefixes = prefixes
	if req.RootType == "" {
		req.RootType = c.RootType
	}
	return req
}

// Template is written by `pathq init`.
const Template = `# pathq configuration

# Type IRI every result must have (defaults to oa:Annotation)
# root_type = "http://www.w3.org/ns/oa#Annotation"

# SQLite journal of compilations (history/replay)
# journal = ".pathq/journal.db"

# Batch worker pool size (0 = number of CPUs)
# workers = 0

# Criteria allowed per request (0 = built-in default)
# max_criteria = 256

# Prefixes declared for every request
# [prefixes]
# oa = "http://www.w3.org/ns/oa#"
# dcterms = "http://purl.org/dc/terms/"
`

// CreateDefault writes Template to path unless a file already exists there.
func CreateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(Template), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
