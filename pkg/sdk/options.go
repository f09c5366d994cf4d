package flavorsearch

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	modelPath     string
	modelFormat   string
	datasetPath   string
	datasetFormat string

	defaultTopK int
	maxDistance int
	workers     int
	rawQuery    bool

	redisAddrs    []string
	redisPassword string
	cacheTTL      time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithModel sets the embedding artifact. format is one of auto, text, binary,
// msgpack; empty means auto (detected from the file extension).
func WithModel(path, format string) Option {
	return optionFunc(func(c *clientConfig) {
		c.modelPath = path
		c.modelFormat = format
	})
}

// WithDataset sets the recipe dataset. format is one of auto, csv, parquet;
// empty means auto.
func WithDataset(path, format string) Option {
	return optionFunc(func(c *clientConfig) {
		c.datasetPath = path
		c.datasetFormat = format
	})
}

// WithDefaultTopK sets the number of ranked hits for queries without TopK.
// Default: 50.
func WithDefaultTopK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultTopK = k
	})
}

// WithMaxDistance sets the maximum edit distance for spelling correction.
// Default: 2.
func WithMaxDistance(d int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxDistance = d
	})
}

// WithWorkers sets the scoring pool size. Default: runtime.NumCPU().
func WithWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.workers = n
	})
}

// WithRawQueries disables query normalization (lowercasing and dropping
// non-letters). Queries are then only split on whitespace.
func WithRawQueries() Option {
	return optionFunc(func(c *clientConfig) {
		c.rawQuery = true
	})
}

// WithRedis enables the ranked result cache on a Redis instance.
// ttl <= 0 uses one hour.
func WithRedis(addr, password string, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.redisAddrs = []string{addr}
		c.redisPassword = password
		c.cacheTTL = ttl
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
