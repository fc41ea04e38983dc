package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/harrylevesque/emailforms/internal/crypto"
	"github.com/harrylevesque/emailforms/internal/logging"
	"github.com/harrylevesque/emailforms/internal/storage"
)

// Config is the client configuration, corresponding to ~/.emailforms/config.yml.
type Config struct {
	APIURL  string        `yaml:"api_url" koanf:"api_url"`
	Origin  string        `yaml:"origin" koanf:"origin"`
	Storage StorageConfig `yaml:"storage" koanf:"storage"`
	Log     LogConfig     `yaml:"log" koanf:"log"`
}

type StorageConfig struct {
	Backend string `yaml:"backend" koanf:"backend"`
	Path    string `yaml:"path" koanf:"path"`
	Encrypt bool   `yaml:"encrypt" koanf:"encrypt"`
	KeyHex  string `yaml:"key_hex" koanf:"key_hex"`
}

type LogConfig struct {
	Level string `yaml:"level" koanf:"level"`
	File  string `yaml:"file" koanf:"file"`
}

// DefaultPath returns ~/.emailforms/config.yml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".emailforms.yml"
	}
	return filepath.Join(home, ".emailforms", "config.yml")
}

// DefaultConfig returns a Config pointing at a local backend.
func DefaultConfig() *Config {
	return &Config{
		APIURL: "http://localhost:5000/api",
		Origin: "http://localhost:5000",
		Storage: StorageConfig{
			Backend: storage.BackendFile,
			Path:    storage.DefaultPath(),
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (EMAILFORMS_*, nested keys joined by "__",
// e.g. EMAILFORMS_STORAGE__BACKEND).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider("EMAILFORMS_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "EMAILFORMS_"))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validBackends = map[string]bool{
	storage.BackendFile:   true,
	storage.BackendSQLite: true,
	storage.BackendMemory: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url is required")
	}
	if _, err := url.ParseRequestURI(c.APIURL); err != nil {
		return fmt.Errorf("invalid api_url %q: %w", c.APIURL, err)
	}
	if c.Origin != "" {
		u, err := url.Parse(c.Origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid origin %q: must be scheme://host", c.Origin)
		}
	}
	if !validBackends[c.Storage.Backend] {
		return fmt.Errorf("invalid storage.backend %q: must be one of file, sqlite, memory", c.Storage.Backend)
	}
	if c.Storage.Encrypt {
		if c.Storage.Backend != storage.BackendFile {
			return fmt.Errorf("storage.encrypt is only supported by the file backend")
		}
		if _, err := crypto.ParseKeyHex(c.Storage.KeyHex); err != nil {
			return fmt.Errorf("storage.key_hex: %w", err)
		}
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}
	return nil
}

// StorageKey returns the decoded storage key, or nil when encryption is off.
func (c *Config) StorageKey() ([]byte, error) {
	if !c.Storage.Encrypt {
		return nil, nil
	}
	return crypto.ParseKeyHex(c.Storage.KeyHex)
}
