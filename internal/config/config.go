package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the catalog search service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Index     IndexConfig     `yaml:"index"`
	Search    SearchConfig    `yaml:"search"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings. No keys disables auth.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CatalogConfig points at the offline artifacts.
type CatalogConfig struct {
	Path           string `yaml:"path"`            // parquet with rows and embeddings
	VectorizerPath string `yaml:"vectorizer_path"` // msgpack TF-IDF artifact
}

// IndexConfig holds ANN forest settings.
type IndexConfig struct {
	Trees      int   `yaml:"trees"`
	LeafSize   int   `yaml:"leaf_size"`
	Seed       int64 `yaml:"seed"`
	Dimensions int   `yaml:"dimensions"` // 0 = detect from the first usable embedding
}

// SearchConfig holds pipeline defaults and filter constants.
type SearchConfig struct {
	DefaultTopN      int     `yaml:"default_top_n"`
	DefaultShow      int     `yaml:"default_show"`
	MaxShow          int     `yaml:"max_show"`
	MatchRatio       float64 `yaml:"match_ratio"`
	DescriptionFloor float64 `yaml:"description_floor"`
	TFIDFFloor       float64 `yaml:"tfidf_floor"`
	TailPercent      int     `yaml:"tail_percent"`
}

// EmbeddingConfig holds the OpenAI-compatible query embedding provider.
type EmbeddingConfig struct {
	Provider         string `yaml:"provider"`
	BaseURL          string `yaml:"base_url"`
	APIKey           string `yaml:"api_key"`
	Model            string `yaml:"model"`
	Dimensions       int    `yaml:"dimensions"`
	QueryInstruction string `yaml:"query_instruction"`
	TimeoutSec       int    `yaml:"timeout_sec"`
}

// CacheConfig holds the query embedding cache. No addrs disables the cache.
type CacheConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a cache is configured.
func (c CacheConfig) Enabled() bool { return len(c.Addrs) > 0 }

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory, if present, is loaded first; variables
// already set in the process environment win.
func Load(env string) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
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
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Index.Trees <= 0 {
		c.Index.Trees = 10
	}
	if c.Index.LeafSize <= 0 {
		c.Index.LeafSize = 32
	}
	if c.Index.Seed == 0 {
		c.Index.Seed = 42
	}
	if c.Search.DefaultTopN <= 0 {
		c.Search.DefaultTopN = 3000
	}
	if c.Search.DefaultShow <= 0 {
		c.Search.DefaultShow = 200
	}
	if c.Search.MaxShow <= 0 {
		c.Search.MaxShow = 1000
	}
	if c.Search.MatchRatio <= 0 {
		c.Search.MatchRatio = 0.75
	}
	if c.Search.DescriptionFloor == 0 {
		c.Search.DescriptionFloor = 0.2
	}
	if c.Search.TFIDFFloor == 0 {
		c.Search.TFIDFFloor = 0.2
	}
	if c.Search.TailPercent == 0 {
		c.Search.TailPercent = 5
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 10
	}
	if c.Cache.TTLSec == 0 {
		c.Cache.TTLSec = 7 * 24 * 3600
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog.path is required")
	}
	if c.Catalog.VectorizerPath == "" {
		return fmt.Errorf("catalog.vectorizer_path is required")
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	if c.Index.Dimensions < 0 {
		return fmt.Errorf("index.dimensions must be >= 0, got %d", c.Index.Dimensions)
	}
	if c.Embedding.Dimensions > 0 && c.Index.Dimensions > 0 && c.Embedding.Dimensions != c.Index.Dimensions {
		return fmt.Errorf("embedding.dimensions (%d) must match index.dimensions (%d)",
			c.Embedding.Dimensions, c.Index.Dimensions)
	}
	if c.Search.MatchRatio > 1 {
		return fmt.Errorf("search.match_ratio must be in (0, 1], got %g", c.Search.MatchRatio)
	}
	if c.Search.TailPercent < 0 || c.Search.TailPercent >= 100 {
		return fmt.Errorf("search.tail_percent must be in [0, 100), got %d", c.Search.TailPercent)
	}
	if c.Search.DefaultShow > c.Search.MaxShow {
		return fmt.Errorf("search.default_show (%d) exceeds search.max_show (%d)",
			c.Search.DefaultShow, c.Search.MaxShow)
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
