package pkgdex

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/pkgdex/internal/config"
)

// Option configures the Client.
type Option interface {
	apply(*config.Config)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*config.Config)

func (f optionFunc) apply(c *config.Config) { f(c) }

// clientOptions are settings that do not live in the service config.
type clientOptions struct {
	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithPostgres uses PostgreSQL (with pgvector) as the catalog store.
func WithPostgres(dsn string) Option {
	return optionFunc(func(c *config.Config) {
		c.Database.Driver = config.DriverPostgres
		c.Database.DSN = dsn
	})
}

// WithMemoryCatalog loads the catalog from a JSON seed file into memory.
// Embeddings written by SyncEmbeddings are lost on Close.
func WithMemoryCatalog(seedFile string) Option {
	return optionFunc(func(c *config.Config) {
		c.Database.Driver = config.DriverMemory
		c.Database.SeedFile = seedFile
	})
}

// WithRedis configures the Redis instance holding the full-text index.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *config.Config) {
		c.Redis.Addrs = []string{addr}
		c.Redis.Password = password
	})
}

// WithKeyPrefix namespaces every Redis key. Default: "pkgdex:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *config.Config) {
		c.Redis.KeyPrefix = prefix
	})
}

// WithEmbeddingServer configures the OpenAI-compatible embedding server.
// dims = 0 accepts whatever the model returns.
func WithEmbeddingServer(baseURL, apiKey, model string, dims int) Option {
	return optionFunc(func(c *config.Config) {
		c.Embedding.BaseURL = baseURL
		c.Embedding.APIKey = apiKey
		c.Embedding.Model = model
		c.Embedding.Dimensions = dims
	})
}

// WithQueryCache caches query embeddings in Redis for ttlSec seconds.
func WithQueryCache(ttlSec int) Option {
	return optionFunc(func(c *config.Config) {
		c.Embedding.CacheTTLSec = ttlSec
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return clientOption(func(o *clientOptions) { o.logger = l })
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return clientOption(func(o *clientOptions) { o.metricsReg = reg })
}

// clientOption is an Option that touches clientOptions instead of the config.
type clientOption func(*clientOptions)

func (clientOption) apply(*config.Config) {}
