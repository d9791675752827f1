package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds the pkgdex configuration shared by the API server and the sync CLI.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Index     IndexConfig     `yaml:"index"`
	Sync      SyncConfig      `yaml:"sync"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API keys for the admin routes.
type AuthConfig struct {
	AdminAPIKeys []string `yaml:"admin_api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds the system-of-record connection settings.
type DatabaseConfig struct {
	Driver             string `yaml:"driver"` // postgres, memory (default: postgres)
	DSN                string `yaml:"dsn"`
	MaxOpenConns       int    `yaml:"max_open_conns"`
	MaxIdleConns       int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeSec int    `yaml:"conn_max_lifetime_sec"`
	// SeedFile is a JSON catalog loaded by the memory driver.
	SeedFile string `yaml:"seed_file"`
}

// RedisConfig holds the full-text index and cache store settings.
type RedisConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds the embedding model settings.
type EmbeddingConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	Dimensions     int    `yaml:"dimensions"`
	TimeoutSec     int    `yaml:"timeout_sec"`
	LoadTimeoutSec int    `yaml:"load_timeout_sec"`
	// CacheTTLSec enables the query embedding cache when positive.
	CacheTTLSec int `yaml:"cache_ttl_sec"`
	// Optional prefixes for E5-style models ("query: ", "passage: ").
	QueryInstruction    string `yaml:"query_instruction"`
	DocumentInstruction string `yaml:"document_instruction"`
}

// SearchConfig holds search tuning.
type SearchConfig struct {
	SemanticMinSimilarity float64 `yaml:"semantic_min_similarity"`
	HybridMinSimilarity   float64 `yaml:"hybrid_min_similarity"`
	HybridSemanticShare   float64 `yaml:"hybrid_semantic_share"`
	KeywordWeight         float64 `yaml:"keyword_weight"`
	ExternalTimeoutMs     int     `yaml:"external_timeout_ms"`
	// Window caps the candidates ranked per full-text query.
	Window int `yaml:"window"`
}

// IndexConfig holds full-text index settings.
type IndexConfig struct {
	OneTypoMinLen  int `yaml:"one_typo_min_len"`
	TwoTypoMinLen  int `yaml:"two_typos_min_len"`
	ChunkSize      int `yaml:"chunk_size"`
	Workers        int `yaml:"workers"`
	HealthTimeoutS int `yaml:"health_timeout_sec"`
}

// SyncConfig holds batch job settings.
type SyncConfig struct {
	PageSize        int `yaml:"page_size"`
	CheckpointEvery int `yaml:"checkpoint_every"`
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
	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns <= 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetimeSec <= 0 {
		c.Database.ConnMaxLifetimeSec = 300
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "pkgdex:"
	}
	if c.Redis.ReadinessTimeout <= 0 {
		c.Redis.ReadinessTimeout = 10
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 384
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 10
	}
	if c.Embedding.LoadTimeoutSec <= 0 {
		c.Embedding.LoadTimeoutSec = 60
	}
	if c.Search.SemanticMinSimilarity <= 0 {
		c.Search.SemanticMinSimilarity = 0.3
	}
	if c.Search.HybridMinSimilarity <= 0 {
		c.Search.HybridMinSimilarity = 0.2
	}
	if c.Search.HybridSemanticShare <= 0 {
		c.Search.HybridSemanticShare = 0.6
	}
	if c.Search.KeywordWeight <= 0 {
		c.Search.KeywordWeight = 0.5
	}
	if c.Search.ExternalTimeoutMs <= 0 {
		c.Search.ExternalTimeoutMs = 5000
	}
	if c.Search.Window <= 0 {
		c.Search.Window = 1000
	}
	if c.Index.OneTypoMinLen <= 0 {
		c.Index.OneTypoMinLen = 5
	}
	if c.Index.TwoTypoMinLen <= 0 {
		c.Index.TwoTypoMinLen = 9
	}
	if c.Index.ChunkSize <= 0 {
		c.Index.ChunkSize = 500
	}
	if c.Index.Workers <= 0 {
		c.Index.Workers = 4
	}
	if c.Index.HealthTimeoutS <= 0 {
		c.Index.HealthTimeoutS = 3
	}
	if c.Sync.PageSize <= 0 {
		c.Sync.PageSize = 200
	}
	if c.Sync.CheckpointEvery <= 0 {
		c.Sync.CheckpointEvery = 100
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverPostgres, DriverMemory, c.Database.Driver)
	}
	if len(c.Redis.Addrs) == 0 {
		return fmt.Errorf("redis.addrs is required")
	}
	if c.Embedding.BaseURL == "" || c.Embedding.Model == "" {
		return fmt.Errorf("embedding.base_url and embedding.model are required")
	}
	if s := c.Search.HybridSemanticShare; s >= 1 {
		return fmt.Errorf("search.hybrid_semantic_share must be in (0,1), got %g", s)
	}
	if c.Search.SemanticMinSimilarity > 1 || c.Search.HybridMinSimilarity > 1 {
		return fmt.Errorf("search similarity floors must be in [0,1]")
	}
	if c.Index.TwoTypoMinLen <= c.Index.OneTypoMinLen {
		return fmt.Errorf("index.two_typos_min_len (%d) must exceed index.one_typo_min_len (%d)",
			c.Index.TwoTypoMinLen, c.Index.OneTypoMinLen)
	}
	return nil
}

// ConnMaxLifetime returns the pool connection lifetime.
func (d DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(d.ConnMaxLifetimeSec) * time.Second
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
