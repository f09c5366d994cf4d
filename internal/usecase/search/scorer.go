package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/flavorsearch/internal/domain/recipe"
	"github.com/kailas-cloud/flavorsearch/internal/domain/search/result"
)

// Epsilon is the probability floor; ln(Epsilon) is the lowest possible score.
const Epsilon = 1e-10

// DefaultChunkSize is the number of documents scored per pool task.
const DefaultChunkSize = 512

// ScorerConfig tunes parallel scoring.
type ScorerConfig struct {
	// Workers is the pool size. 0 selects runtime.NumCPU(); 1 scores inline.
	Workers   int
	ChunkSize int
}

// Scorer computes the log-likelihood relevance of every document for a query.
//
// For each in-vocabulary query token it takes the best cosine similarity over
// the document's in-vocabulary tokens, squashes it through a sigmoid, averages
// those probabilities and returns ln(max(avg, Epsilon)). Documents and queries
// with nothing to compare score exactly ln(Epsilon).
type Scorer struct {
	table     EmbeddingTable
	docs      [][]int
	pool      *ants.Pool
	chunkSize int
	logger    *zap.Logger
}

// NewScorer resolves every document token to its vocabulary id once, so
// queries never touch document strings.
func NewScorer(table EmbeddingTable, docs []recipe.Document, cfg ScorerConfig, logger *zap.Logger) (*Scorer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	chunk := cfg.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}

	s := &Scorer{
		table:     table,
		docs:      make([][]int, len(docs)),
		chunkSize: chunk,
		logger:    logger,
	}
	for i, d := range docs {
		s.docs[i] = vocabIDs(table, d.Tokens())
	}

	if workers > 1 {
		pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(p any) {
			logger.Error("scoring task panicked", zap.Any("panic", p))
		}))
		if err != nil {
			return nil, fmt.Errorf("create scoring pool: %w", err)
		}
		s.pool = pool
	}
	return s, nil
}

// Release stops the worker pool.
func (s *Scorer) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// vocabIDs maps tokens to distinct vocabulary ids, dropping unknown tokens.
// Duplicates cannot change a maximum, so they are removed.
func vocabIDs(table EmbeddingTable, tokens []string) []int {
	ids := make([]int, 0, len(tokens))
	seen := make(map[int]struct{}, len(tokens))
	for _, tok := range tokens {
		id, ok := table.ID(tok)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// queryIDs maps query tokens to vocabulary ids, keeping duplicates: a
// repeated query word weighs twice in the average.
func (s *Scorer) queryIDs(tokens []string) (ids []int, oov int) {
	ids = make([]int, 0, len(tokens))
	for _, tok := range tokens {
		if id, ok := s.table.ID(tok); ok {
			ids = append(ids, id)
		} else {
			oov++
		}
	}
	return ids, oov
}

// Score returns the relevance of document docID for the given query tokens.
func (s *Scorer) Score(query []string, docID int) float64 {
	q, _ := s.queryIDs(query)
	return s.score(q, s.docs[docID])
}

func (s *Scorer) score(query, doc []int) float64 {
	if len(query) == 0 || len(doc) == 0 {
		return math.Log(Epsilon)
	}

	var sum float64
	for _, q := range query {
		best := math.Inf(-1)
		for _, d := range doc {
			if sim := s.table.SimilarityByID(q, d); sim > best {
				best = sim
			}
		}
		sum += sigmoid(best)
	}

	avg := sum / float64(len(query))
	return math.Log(math.Max(avg, Epsilon))
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// ErrScoringFailed is returned when a scoring chunk panics. A partial
// ranking is never returned: unscored documents would hold a zero score,
// which outranks every real one.
var ErrScoringFailed = errors.New("scoring failed")

// ScoreAll scores every document, in id order. Scoring is pure, so work is
// split into chunks across the pool; a canceled context stops unstarted
// chunks and returns ctx.Err().
func (s *Scorer) ScoreAll(ctx context.Context, query []string) ([]result.Scored, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	q, oov := s.queryIDs(query)
	out := make([]result.Scored, len(s.docs))
	var failed atomic.Bool
	scoreRange := func(lo, hi int) {
		defer func() {
			if p := recover(); p != nil {
				failed.Store(true)
				s.logger.Error("scoring chunk panicked",
					zap.Int("from", lo), zap.Int("to", hi), zap.Any("panic", p))
			}
		}()
		for i := lo; i < hi; i++ {
			out[i] = result.Scored{ID: i, Score: s.score(q, s.docs[i])}
		}
	}

	if s.pool == nil || len(s.docs) <= s.chunkSize {
		scoreRange(0, len(s.docs))
	} else {
		var wg sync.WaitGroup
		for lo := 0; lo < len(s.docs); lo += s.chunkSize {
			hi := min(lo+s.chunkSize, len(s.docs))
			wg.Add(1)
			task := func() {
				defer wg.Done()
				if ctx.Err() != nil {
					return
				}
				scoreRange(lo, hi)
			}
			if err := s.pool.Submit(task); err != nil {
				s.logger.Debug("scoring pool unavailable, scoring inline", zap.Error(err))
				task()
			}
		}
		wg.Wait()
	}

	if err := ctx.Err(); err != nil {
		return nil, oov, err
	}
	if failed.Load() {
		return nil, oov, ErrScoringFailed
	}
	return out, oov, nil
}
