package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// ConfigEnv overrides the config file location.
const ConfigEnv = "SUBS_ANALYZER_CONFIG"

const envPrefix = "SUBS_ANALYZER_"

type StorageConfig struct {
	// Backend is one of file, sqlite or memory. Defaults to file.
	Backend string `yaml:"backend,omitempty" validate:"omitempty,oneof=file sqlite memory"`
	// Path is a directory for the file backend and a database file for sqlite.
	Path string `yaml:"path,omitempty"`
}

type Config struct {
	Storage StorageConfig `yaml:"storage"`

	// Locale controls number formatting, e.g. "sv-SE". Empty means detect from the OS.
	Locale string `yaml:"locale,omitempty"`

	LogLevel string `yaml:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`

	// Seed replaces the built-in example records shown on first start.
	Seed []Record `yaml:"seed,omitempty"`
}

// DefaultConfigPath returns the config file path: $SUBS_ANALYZER_CONFIG if
// set, otherwise ~/.subs-analyzer/config.yaml
func DefaultConfigPath() string {
	if p := os.Getenv(ConfigEnv); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".subs-analyzer", "config.yaml")
}

// DefaultDataDir returns ~/.subs-analyzer
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".subs-analyzer"
	}
	return filepath.Join(home, ".subs-analyzer")
}

// NewDefaultConfig returns the config used when no config file exists.
func NewDefaultConfig() *Config {
	return &Config{
		Storage:  StorageConfig{Backend: BackendFile},
		LogLevel: "info",
	}
}

// LoadConfig reads the config at path. A missing file is not an error; the
// defaults are used instead. Environment overrides are applied on top and
// the result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(envPrefix + "STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv(envPrefix + "STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(envPrefix + "LOCALE"); v != "" {
		c.Locale = v
	}
}

func (c *Config) applyDefaults() {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendFile
	}
	if c.Storage.Path == "" {
		switch c.Storage.Backend {
		case BackendSQLite:
			c.Storage.Path = filepath.Join(DefaultDataDir(), "subs.db")
		case BackendFile:
			c.Storage.Path = filepath.Join(DefaultDataDir(), "data")
		}
	}
	c.Storage.Path = expandHome(c.Storage.Path)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field values against their allowed sets.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s: %q is not one of [%s]", fe.Namespace(), fe.Value(), fe.Param())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	// Create parent directories if they don't exist
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
