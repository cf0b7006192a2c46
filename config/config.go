// Package config loads the neighbor reporter settings from defaults, an
// optional YAML file, a .env file and NEIGHBORS_* environment variables, in
// that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/DanielSebasCM/research-stay-2024/index"
	"github.com/DanielSebasCM/research-stay-2024/internal/logging"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultModel is the gensim-data dataset loaded when no model is set.
	DefaultModel = "word2vec-google-news-300"
	// DefaultDownloadURL is the gensim-data release root datasets are fetched from.
	DefaultDownloadURL = "https://github.com/RaRe-Technologies/gensim-data/releases/download"
	// DefaultTopK is the number of neighbors reported per query.
	DefaultTopK = 5

	envPrefix = "NEIGHBORS_"
)

// DefaultQueries are reported when no queries are configured.
var DefaultQueries = []string{"gato", "perro", "casa", "avión"}

// Config holds the reporter settings. Load layers the YAML file and
// environment over Default.
type Config struct {
	Model       string   `yaml:"model"`
	ModelDir    string   `yaml:"model_dir"`
	DownloadURL string   `yaml:"download_url"`
	TopK        int      `yaml:"top_k"`
	Queries     []string `yaml:"queries"`
	Index       string   `yaml:"index"`
	Limit       int      `yaml:"limit"`
	LogLevel    string   `yaml:"log_level"`
}

// Default returns the settings that reproduce the stock report.
func Default() *Config {
	return &Config{
		Model:       DefaultModel,
		ModelDir:    defaultModelDir(),
		DownloadURL: DefaultDownloadURL,
		TopK:        DefaultTopK,
		Queries:     append([]string(nil), DefaultQueries...),
		Index:       string(index.KindBrute),
		LogLevel:    "info",
	}
}

// Load builds a Config. path names a YAML file; when empty NEIGHBORS_CONFIG
// is consulted, and when both are empty no file is read.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = os.Getenv(envPrefix + "CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Model = getEnv("MODEL", c.Model)
	c.ModelDir = getEnv("MODEL_DIR", c.ModelDir)
	// set but empty disables downloads
	if v, ok := os.LookupEnv(envPrefix + "DOWNLOAD_URL"); ok {
		c.DownloadURL = v
	}
	c.Index = getEnv("INDEX", c.Index)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	if v := os.Getenv(envPrefix + "QUERIES"); v != "" {
		c.Queries = splitList(v)
	}
	var err error
	if c.TopK, err = getEnvInt("TOP_K", c.TopK); err != nil {
		return err
	}
	if c.Limit, err = getEnvInt("LIMIT", c.Limit); err != nil {
		return err
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Model) == "" {
		errs = append(errs, errors.New("model is required"))
	}
	if c.TopK <= 0 {
		errs = append(errs, fmt.Errorf("top_k must be positive, got %d", c.TopK))
	}
	if len(c.Queries) == 0 {
		errs = append(errs, errors.New("at least one query is required"))
	}
	if _, err := index.ParseKind(c.Index); err != nil {
		errs = append(errs, err)
	}
	if c.Limit < 0 {
		errs = append(errs, fmt.Errorf("limit must not be negative, got %d", c.Limit))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// defaultModelDir follows the gensim-data layout: GENSIM_DATA_DIR when set,
// otherwise ~/gensim-data.
func defaultModelDir() string {
	if dir := os.Getenv("GENSIM_DATA_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, "gensim-data")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(envPrefix + key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("config: %s%s: %w", envPrefix, key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
