package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/flavorsearch/internal/domain/search/request"
	"github.com/kailas-cloud/flavorsearch/internal/domain/search/result"
)

// Service answers search requests: it ranks the corpus through an Executor,
// pages the ranking and attaches each document's display fields.
type Service struct {
	exec   Executor
	corpus Corpus
}

// New creates a search service.
func New(exec Executor, corpus Corpus) *Service {
	return &Service{exec: exec, corpus: corpus}
}

// Search ranks the corpus for req and returns the requested page of hits.
func (s *Service) Search(ctx context.Context, req request.Request) (result.Page, error) {
	ranking, err := s.exec.Execute(ctx, req.Query(), req.TopK())
	if err != nil {
		return result.Page{}, fmt.Errorf("execute query: %w", err)
	}

	items, hasMore := result.Paginate(ranking.Scored, req.Page(), req.Limit())
	hits := make([]result.Hit, 0, len(items))
	for _, sc := range items {
		doc, ok := s.corpus.Get(sc.ID)
		if !ok {
			return result.Page{}, fmt.Errorf("ranked document %d not in corpus", sc.ID)
		}
		hits = append(hits, result.Hit{Document: doc, Score: sc.Score})
	}

	limit := req.Limit()
	if limit == 0 {
		limit = len(ranking.Scored)
	}
	return result.Page{
		Hits:        hits,
		Tokens:      ranking.Tokens,
		Corrections: ranking.Corrections,
		Total:       len(ranking.Scored),
		Page:        req.Page(),
		Limit:       limit,
		HasMore:     hasMore,
	}, nil
}
