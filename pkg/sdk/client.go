package flavorsearch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/flavorsearch/internal/bootstrap"
	"github.com/kailas-cloud/flavorsearch/internal/config"
	dbRedis "github.com/kailas-cloud/flavorsearch/internal/db/redis"
	"github.com/kailas-cloud/flavorsearch/internal/domain"
	"github.com/kailas-cloud/flavorsearch/internal/domain/search/request"
	"github.com/kailas-cloud/flavorsearch/internal/domain/search/result"
	"github.com/kailas-cloud/flavorsearch/internal/metrics"
	"github.com/kailas-cloud/flavorsearch/internal/repository/resultcache"
	healthuc "github.com/kailas-cloud/flavorsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/flavorsearch/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultSuggestLimit     = 10
)

// Internal interfaces, substituted in tests.
type searchUseCase interface {
	Search(ctx context.Context, req request.Request) (result.Page, error)
}

type completer interface {
	Complete(prefix string, limit int) []string
}

// Client is the flavorsearch SDK entry point.
// It is safe for concurrent use.
type Client struct {
	searchSvc searchUseCase
	completer completer
	healthSvc healthUseCase
	limits    request.Limits
	closers   []func()
	obs       *observer
}

// New loads the model and dataset and returns a ready Client.
// The provided context is used for the cache readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.modelPath == "" || cfg.datasetPath == "" {
		return nil, errors.New("flavorsearch: model and dataset paths required (use WithModel and WithDataset)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	engCfg := engineConfig(cfg)
	engine, err := bootstrap.Load(engCfg, zap.NewNop())
	if err != nil {
		return nil, fmt.Errorf("flavorsearch: %w", err)
	}

	c := &Client{
		completer: engine.Completer,
		limits:    engine.Limits,
		closers:   []func(){engine.Close},
		obs:       obs,
	}

	var exec searchuc.Executor = engine.Engine
	var cachePinger healthuc.CachePinger
	if engCfg.Cache.Enabled() {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    engCfg.Cache.Addrs,
			Password: engCfg.Cache.Password,
		})
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("flavorsearch: create redis store: %w", err)
		}
		c.closers = append(c.closers, store.Close)

		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			c.Close()
			return nil, fmt.Errorf("flavorsearch: cache not ready: %w", err)
		}

		exec = resultcache.New(exec, store, resultcache.Config{
			KeyPrefix:   engCfg.Cache.KeyPrefix,
			TTL:         engCfg.Cache.TTL(),
			Fingerprint: engine.Fingerprint(),
		}, metrics.ResultCacheTotal, zap.NewNop())
		cachePinger = store
	}

	c.searchSvc = engine.Service(exec)
	c.healthSvc = healthuc.New(engine, cachePinger)
	return c, nil
}

// engineConfig maps client options onto the service configuration.
func engineConfig(cfg *clientConfig) config.Config {
	var ec config.Config
	ec.Model.Path = cfg.modelPath
	ec.Model.Format = cfg.modelFormat
	ec.Dataset.Path = cfg.datasetPath
	ec.Dataset.Format = cfg.datasetFormat
	ec.Search.DefaultTopK = cfg.defaultTopK
	ec.Search.MaxDistance = cfg.maxDistance
	ec.Search.Workers = cfg.workers
	if cfg.rawQuery {
		normalize := false
		ec.Search.NormalizeQuery = &normalize
	}
	ec.Cache.Addrs = cfg.redisAddrs
	ec.Cache.Password = cfg.redisPassword
	if cfg.cacheTTL > 0 {
		ec.Cache.TTLSec = int(cfg.cacheTTL / time.Second)
	}
	ec.ApplyDefaults()
	return ec
}

// Close releases the scoring pool and the cache connection.
func (c *Client) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Search ranks the corpus against q.Text.
// Invalid parameters return an error matching ErrInvalidQuery.
func (c *Client) Search(ctx context.Context, q Query) (res Results, err error) {
	start := time.Now()
	defer func() { c.obs.observe(opSearch, start, len(res.Recipes), err) }()

	topK := q.TopK
	if topK == 0 {
		topK = c.limits.DefaultTopK
	}
	req, err := request.New(q.Text, topK, q.Page, q.Limit, c.limits)
	if err != nil {
		return Results{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}

	page, err := c.searchSvc.Search(ctx, req)
	if err != nil {
		return Results{}, fmt.Errorf("search: %w", err)
	}
	return toResults(&page), nil
}

// Suggest returns vocabulary words starting with prefix, for typeahead.
// limit <= 0 uses 10.
func (c *Client) Suggest(ctx context.Context, prefix string, limit int) (words []string) {
	start := time.Now()
	defer func() { c.obs.observe(opSuggest, start, len(words), nil) }()

	if limit <= 0 {
		limit = defaultSuggestLimit
	}
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" || ctx.Err() != nil {
		return nil
	}
	return c.completer.Complete(prefix, limit)
}

func toResults(p *result.Page) Results {
	res := Results{
		Recipes:        make([]Recipe, len(p.Hits)),
		CorrectedQuery: p.CorrectedQuery(),
		Total:          p.Total,
		Page:           p.Page,
		Limit:          p.Limit,
		HasMore:        p.HasMore,
	}
	for i := range p.Hits {
		h := &p.Hits[i]
		f := h.Document.Fields()
		res.Recipes[i] = Recipe{
			ID:           h.Document.ID(),
			Index:        f.SourceIndex,
			Title:        f.Title,
			ImageName:    f.ImageName,
			Instructions: f.Instructions,
			Ingredients:  f.Ingredients,
			Score:        h.Score,
		}
	}
	if len(p.Corrections) > 0 {
		res.Corrections = make([]Correction, len(p.Corrections))
		for i, cr := range p.Corrections {
			res.Corrections[i] = Correction{From: cr.From, To: cr.To}
		}
	}
	return res
}
