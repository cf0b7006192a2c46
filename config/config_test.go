package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"CONFIG", "MODEL", "MODEL_DIR", "DOWNLOAD_URL", "TOP_K", "QUERIES", "INDEX", "LIMIT", "LOG_LEVEL"} {
		t.Setenv(envPrefix+key, "")
		require.NoError(t, os.Unsetenv(envPrefix+key))
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "neighbors.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GENSIM_DATA_DIR", "/data/gensim")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, "/data/gensim", cfg.ModelDir)
	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, []string{"gato", "perro", "casa", "avión"}, cfg.Queries)
	assert.Equal(t, "brute", cfg.Index)
	assert.NoError(t, cfg.Validate())
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
model: glove-wiki-gigaword-50
top_k: 3
queries: [king, queen]
index: cover
limit: 1000
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "glove-wiki-gigaword-50", cfg.Model)
	assert.Equal(t, 3, cfg.TopK)
	assert.Equal(t, []string{"king", "queen"}, cfg.Queries)
	assert.Equal(t, "cover", cfg.Index)
	assert.Equal(t, 1000, cfg.Limit)
	assert.Equal(t, DefaultDownloadURL, cfg.DownloadURL, "unset keys keep defaults")

	t.Setenv("NEIGHBORS_TOP_K", "7")
	t.Setenv("NEIGHBORS_QUERIES", " gato, ,casa ")
	t.Setenv("NEIGHBORS_MODEL", "sqlite:/tmp/space.db")

	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.TopK)
	assert.Equal(t, []string{"gato", "casa"}, cfg.Queries)
	assert.Equal(t, "sqlite:/tmp/space.db", cfg.Model)
	assert.Equal(t, "cover", cfg.Index)

	t.Setenv("NEIGHBORS_DOWNLOAD_URL", "")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.DownloadURL, "set but empty disables downloads")
}

func TestLoadConfigFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEIGHBORS_CONFIG", writeFile(t, "top_k: 2\n"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.TopK)
}

func TestLoadErrors(t *testing.T) {
	tests := map[string]struct {
		setup func(t *testing.T) string
	}{
		"missing-file": {setup: func(t *testing.T) string {
			return filepath.Join(t.TempDir(), "absent.yaml")
		}},
		"bad-yaml": {setup: func(t *testing.T) string {
			return writeFile(t, "top_k: [unterminated\n")
		}},
		"bad-int": {setup: func(t *testing.T) string {
			t.Setenv("NEIGHBORS_TOP_K", "five")
			return ""
		}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(tt.setup(t))
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := map[string]struct {
		mutate  func(c *Config)
		wantErr string
	}{
		"valid":        {mutate: func(c *Config) {}},
		"empty-model":  {mutate: func(c *Config) { c.Model = " " }, wantErr: "model is required"},
		"zero-top-k":   {mutate: func(c *Config) { c.TopK = 0 }, wantErr: "top_k must be positive"},
		"no-queries":   {mutate: func(c *Config) { c.Queries = nil }, wantErr: "at least one query"},
		"bad-index":    {mutate: func(c *Config) { c.Index = "hnsw" }, wantErr: "unknown kind"},
		"neg-limit":    {mutate: func(c *Config) { c.Limit = -1 }, wantErr: "limit must not be negative"},
		"bad-loglevel": {mutate: func(c *Config) { c.LogLevel = "chatty" }, wantErr: "unknown level"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
