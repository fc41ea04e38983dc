package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:5000/api", cfg.APIURL)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.NoError(t, cfg.Validate())
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	original := DefaultConfig()
	original.APIURL = "https://forms.example.com/api"
	original.Origin = "https://forms.example.com"
	original.Storage.Backend = "sqlite"
	original.Storage.Path = "/tmp/forms.db"
	original.Log.Level = "debug"

	require.NoError(t, original.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().APIURL, cfg.APIURL)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("EMAILFORMS_API_URL", "http://10.0.0.2:5000/api")
	t.Setenv("EMAILFORMS_STORAGE__BACKEND", "memory")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yml"))
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.2:5000/api", cfg.APIURL)
	assert.Equal(t, "memory", cfg.Storage.Backend)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{"missing api url", func(c *Config) { c.APIURL = "" }, "api_url is required"},
		{"relative api url", func(c *Config) { c.APIURL = "api" }, "invalid api_url"},
		{"bad origin", func(c *Config) { c.Origin = "localhost" }, "invalid origin"},
		{"bad backend", func(c *Config) { c.Storage.Backend = "redis" }, "storage.backend"},
		{"encrypt without key", func(c *Config) { c.Storage.Encrypt = true }, "storage.key_hex"},
		{"encrypt on sqlite", func(c *Config) {
			c.Storage.Encrypt = true
			c.Storage.Backend = "sqlite"
		}, "only supported by the file backend"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.errSub), err.Error())
		})
	}
}

func TestStorageKey(t *testing.T) {
	cfg := DefaultConfig()
	key, err := cfg.StorageKey()
	require.NoError(t, err)
	assert.Nil(t, key)

	cfg.Storage.Encrypt = true
	cfg.Storage.KeyHex = strings.Repeat("ab", 32)
	require.NoError(t, cfg.Validate())
	key, err = cfg.StorageKey()
	require.NoError(t, err)
	assert.Len(t, key, 32)
}
