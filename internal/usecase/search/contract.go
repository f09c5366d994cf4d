package search

import (
	"context"

	"github.com/kailas-cloud/flavorsearch/internal/domain/recipe"
	"github.com/kailas-cloud/flavorsearch/internal/domain/search/result"
)

// EmbeddingTable is the read-only token similarity lookup used for scoring.
type EmbeddingTable interface {
	ID(token string) (int, bool)
	SimilarityByID(a, b int) float64
}

// Corrector maps out-of-vocabulary tokens to vocabulary tokens.
type Corrector interface {
	Suggest(token string) (string, bool)
}

// Corpus is the read-only document set.
type Corpus interface {
	All() []recipe.Document
	Get(id int) (recipe.Document, bool)
	Len() int
}

// Executor preprocesses a query and ranks the corpus against it.
type Executor interface {
	Execute(ctx context.Context, query string, topK int) (result.Ranking, error)
}
