// Package bootstrap loads the model and corpus and assembles the search engine.
// It is shared by the HTTP server and the CLI.
package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/flavorsearch/internal/config"
	"github.com/kailas-cloud/flavorsearch/internal/corpus"
	"github.com/kailas-cloud/flavorsearch/internal/domain/search/request"
	"github.com/kailas-cloud/flavorsearch/internal/embedding"
	"github.com/kailas-cloud/flavorsearch/internal/metrics"
	"github.com/kailas-cloud/flavorsearch/internal/repository/resultcache"
	"github.com/kailas-cloud/flavorsearch/internal/spell"
	searchuc "github.com/kailas-cloud/flavorsearch/internal/usecase/search"
)

// Engine is the loaded, immutable search state.
type Engine struct {
	Table     *embedding.Table
	Corpus    *corpus.Store
	Corrector *spell.Corrector
	Completer *spell.Completer
	Engine    *searchuc.Engine
	Limits    request.Limits

	cfg config.Config
	// modelStamp and datasetStamp identify the files read by Load, so a file
	// replaced in place yields a new fingerprint even at the same size.
	modelStamp   string
	datasetStamp string
}

// Load reads the embedding table and dataset named by cfg and wires the
// preprocessing, scoring and ranking pipeline over them.
// Any load failure is returned; the engine never runs on partial state.
func Load(cfg config.Config, logger *zap.Logger) (*Engine, error) {
	modelFormat, err := embedding.ParseFormat(cfg.Model.Format)
	if err != nil {
		return nil, fmt.Errorf("model format: %w", err)
	}
	datasetFormat, err := corpus.ParseFormat(cfg.Dataset.Format)
	if err != nil {
		return nil, fmt.Errorf("dataset format: %w", err)
	}

	modelStamp := fileStamp(cfg.Model.Path)
	datasetStamp := fileStamp(cfg.Dataset.Path)

	start := time.Now()
	table, err := embedding.Load(cfg.Model.Path, modelFormat)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	logger.Info("Embedding table loaded",
		zap.String("path", cfg.Model.Path),
		zap.Int("vocabulary", table.Len()),
		zap.Int("dimensions", table.Dim()),
		zap.Duration("took", time.Since(start)),
	)

	start = time.Now()
	store, err := corpus.Load(cfg.Dataset.Path, datasetFormat)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	logger.Info("Dataset loaded",
		zap.String("path", cfg.Dataset.Path),
		zap.Int("documents", store.Len()),
		zap.Duration("took", time.Since(start)),
	)

	eng, err := New(cfg, table, store, logger)
	if err != nil {
		return nil, err
	}
	eng.modelStamp = modelStamp
	eng.datasetStamp = datasetStamp
	return eng, nil
}

// fileStamp is the size and modification time of path, or "" when it cannot be stat'ed.
func fileStamp(path string) string {
	fi, err := os.Stat(path)
	if err != nil {
		return ""
	}
	return strconv.FormatInt(fi.Size(), 10) + "@" + strconv.FormatInt(fi.ModTime().UnixNano(), 10)
}

// New assembles an Engine over an already loaded table and corpus.
func New(cfg config.Config, table *embedding.Table, store *corpus.Store, logger *zap.Logger) (*Engine, error) {
	corrector := spell.NewCorrector(table, cfg.Search.MaxDistance)
	scorer, err := searchuc.NewScorer(table, store.All(), searchuc.ScorerConfig{
		Workers:   cfg.Search.Workers,
		ChunkSize: cfg.Search.ChunkSize,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create scorer: %w", err)
	}

	metrics.CorpusDocuments.Set(float64(store.Len()))
	metrics.VocabularySize.Set(float64(table.Len()))

	return &Engine{
		Table:     table,
		Corpus:    store,
		Corrector: corrector,
		Completer: spell.NewCompleter(table.Tokens()),
		Engine: searchuc.NewEngine(
			searchuc.NewPreprocessor(corrector, cfg.Search.Normalize()), scorer, logger,
		),
		Limits: request.Limits{
			DefaultTopK:    cfg.Search.DefaultTopK,
			MaxTopK:        cfg.Search.MaxTopK,
			MaxQueryLength: cfg.Search.MaxQueryLength,
		},
		cfg: cfg,
	}, nil
}

// Service returns a search service over exec, which is the engine itself or a
// decorator around it.
func (e *Engine) Service(exec searchuc.Executor) *searchuc.Service {
	if exec == nil {
		exec = e.Engine
	}
	return searchuc.New(exec, e.Corpus)
}

// Fingerprint identifies the loaded files and every setting that changes rankings.
func (e *Engine) Fingerprint() string {
	return resultcache.Fingerprint(
		e.cfg.Model.Path,
		e.modelStamp,
		e.cfg.Dataset.Path,
		e.datasetStamp,
		strconv.Itoa(e.Table.Len()),
		strconv.Itoa(e.Table.Dim()),
		strconv.Itoa(e.Corpus.Len()),
		strconv.Itoa(e.Corrector.MaxDistance()),
		strconv.FormatBool(e.cfg.Search.Normalize()),
	)
}

// Documents returns the corpus size.
func (e *Engine) Documents() int { return e.Corpus.Len() }

// Vocabulary returns the embedding vocabulary size.
func (e *Engine) Vocabulary() int { return e.Table.Len() }

// Dimensions returns the embedding dimensionality.
func (e *Engine) Dimensions() int { return e.Table.Dim() }

// Close releases the scoring pool.
func (e *Engine) Close() { e.Engine.Close() }
