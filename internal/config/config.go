// Package config loads the charwatch YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the charwatch configuration.
type Config struct {
	API         APIConfig         `yaml:"api"`
	Collections CollectionsConfig `yaml:"collections"`
	Cache       CacheConfig       `yaml:"cache"`
	Crawl       CrawlConfig       `yaml:"crawl"`
	HTTP        HTTPConfig        `yaml:"http"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// APIConfig holds the hosted search index settings.
type APIConfig struct {
	Endpoint string `yaml:"endpoint"` // multi-search endpoint URL
	Key      string `yaml:"key"`      // static public API key
}

// CollectionsConfig names the remote collections queried.
type CollectionsConfig struct {
	// Primary is the collection used for trending and tag/rating lookups.
	Primary string `yaml:"primary"`
	// CreatedAtPriority is the ordered collection list consulted for
	// created_at lookups; earlier entries win.
	CreatedAtPriority []string `yaml:"created_at_priority"`
}

// CacheConfig holds the snapshot file paths, one per filter mode.
type CacheConfig struct {
	FilteredFile   string `yaml:"filtered_file"`
	UnfilteredFile string `yaml:"unfiltered_file"`
}

// CrawlConfig holds trending crawl settings.
type CrawlConfig struct {
	MaxPages int `yaml:"max_pages"`
}

// HTTPConfig holds the serve-surface settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Collections.Primary == "" {
		c.Collections.Primary = "public_characters_alias"
	}
	if len(c.Collections.CreatedAtPriority) == 0 {
		c.Collections.CreatedAtPriority = []string{
			"public_characters",
			"public_characters_alias",
		}
	}
	if c.Cache.FilteredFile == "" {
		c.Cache.FilteredFile = filepath.Join("data", "trending_filtered.json")
	}
	if c.Cache.UnfilteredFile == "" {
		c.Cache.UnfilteredFile = filepath.Join("data", "trending_unfiltered.json")
	}
	if c.Crawl.MaxPages <= 0 {
		c.Crawl.MaxPages = 10
	}
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.API.Endpoint == "" {
		return fmt.Errorf("api.endpoint is required")
	}
	if c.API.Key == "" {
		return fmt.Errorf("api.key is required")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Cache.FilteredFile == c.Cache.UnfilteredFile {
		return fmt.Errorf("cache.filtered_file and cache.unfiltered_file must differ")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
