package search

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/flavorsearch/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/flavorsearch/internal/logger"
	"github.com/kailas-cloud/flavorsearch/internal/metrics"
)

// Engine answers queries against an immutable corpus and embedding table.
// It holds no per-query state and is safe for concurrent use.
type Engine struct {
	pre    *Preprocessor
	scorer *Scorer
	logger *zap.Logger
}

var _ Executor = (*Engine)(nil)

// NewEngine wires a preprocessor and scorer into an Engine.
func NewEngine(pre *Preprocessor, scorer *Scorer, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{pre: pre, scorer: scorer, logger: logger}
}

// Close releases the scoring pool.
func (e *Engine) Close() {
	e.scorer.Release()
}

// Execute preprocesses query, scores every document and returns the topK ranking.
// It fails on a canceled or expired ctx, or with ErrScoringFailed.
func (e *Engine) Execute(ctx context.Context, query string, topK int) (result.Ranking, error) {
	start := time.Now()

	tokens, corrections := e.pre.Preprocess(query)
	scored, oov, err := e.scorer.ScoreAll(ctx, tokens)
	if err != nil {
		status := "error"
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			status = "timeout"
		case errors.Is(err, context.Canceled):
			status = "canceled"
		}
		metrics.SearchQueriesTotal.WithLabelValues(status).Inc()
		return result.Ranking{}, err
	}
	ranked := Rank(scored, topK)

	elapsed := time.Since(start)
	metrics.SearchDuration.Observe(elapsed.Seconds())
	metrics.SearchQueriesTotal.WithLabelValues("ok").Inc()
	metrics.SpellCorrectionsTotal.Add(float64(len(corrections)))
	metrics.OOVTokensTotal.Add(float64(oov))

	logpkg.FromContext(ctx, e.logger).Debug("search executed",
		zap.String("query", query),
		zap.Strings("tokens", tokens),
		zap.Int("corrections", len(corrections)),
		zap.Int("oov_tokens", oov),
		zap.Int("scored", len(scored)),
		zap.Int("top_k", len(ranked)),
		zap.Duration("latency", elapsed),
	)

	return result.Ranking{Tokens: tokens, Corrections: corrections, Scored: ranked}, nil
}
