// Package resultcache caches ranked search results in a key-value store.
package resultcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/flavorsearch/internal/db"
	"github.com/kailas-cloud/flavorsearch/internal/domain/search/result"
	"github.com/kailas-cloud/flavorsearch/internal/usecase/search"
)

// DefaultKeyPrefix namespaces cache keys.
const DefaultKeyPrefix = "flavorsearch:results:"

// store is the consumer interface for the result cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Config tunes the cache.
type Config struct {
	KeyPrefix string
	TTL       time.Duration
	// Fingerprint identifies the loaded model, corpus and query settings.
	// Entries written under another fingerprint are never read.
	Fingerprint string
}

// CachedExecutor caches rankings of an inner executor.
// Rankings are a pure function of the query and the immutable engine state,
// so a hit is always identical to a fresh execution.
type CachedExecutor struct {
	inner      search.Executor
	store      store
	cfg        Config
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

var _ search.Executor = (*CachedExecutor)(nil)

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"/"error"), passed explicitly.
func New(
	inner search.Executor,
	s store,
	cfg Config,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedExecutor {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedExecutor{
		inner:      inner,
		store:      s,
		cfg:        cfg,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Execute returns a cached ranking or runs the inner executor and caches its output.
// Cache failures never fail a query.
func (c *CachedExecutor) Execute(ctx context.Context, query string, topK int) (result.Ranking, error) {
	key := c.cacheKey(query, topK)

	if r, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return r, nil
	}
	c.incCache("miss")

	r, err := c.inner.Execute(ctx, query, topK)
	if err != nil {
		return result.Ranking{}, fmt.Errorf("execute query: %w", err)
	}

	c.putToCache(ctx, key, r)
	return r, nil
}

func (c *CachedExecutor) incCache(res string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(res).Inc()
	}
}

// cacheKey collapses whitespace first: the preprocessor splits on
// whitespace, so queries differing only in spacing rank identically.
func (c *CachedExecutor) cacheKey(query string, topK int) string {
	h := sha256.New()
	h.Write([]byte(c.cfg.Fingerprint))
	h.Write([]byte{'|'})
	h.Write([]byte(strings.Join(strings.Fields(query), " ")))
	h.Write([]byte{'|'})
	h.Write([]byte(strconv.Itoa(topK)))
	return c.cfg.KeyPrefix + hex.EncodeToString(h.Sum(nil))
}

func (c *CachedExecutor) getFromCache(ctx context.Context, key string) (result.Ranking, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.incCache("error")
			c.logger.Warn("Failed to get cached ranking", zap.String("key", key), zap.Error(err))
		}
		return result.Ranking{}, false
	}
	if len(data) == 0 {
		return result.Ranking{}, false
	}

	r, err := decodeRanking(data)
	if err != nil {
		c.incCache("error")
		c.logger.Warn("Failed to parse cached ranking", zap.String("key", key), zap.Error(err))
		return result.Ranking{}, false
	}
	return r, true
}

func (c *CachedExecutor) putToCache(ctx context.Context, key string, r result.Ranking) {
	data, err := encodeRanking(r)
	if err != nil {
		c.logger.Warn("Failed to encode ranking", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.cfg.TTL); err != nil {
		c.incCache("error")
		c.logger.Warn("Failed to cache ranking", zap.String("key", key), zap.Error(err))
	}
}

// Fingerprint hashes the identity of the engine state into a short string.
func Fingerprint(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(h[:8])
}
