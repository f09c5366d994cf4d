package request

import (
	"fmt"
	"unicode/utf8"
)

// Search parameter limits.
const (
	// MaxQueryLength is the default maximum query length in bytes.
	MaxQueryLength = 4096
	DefaultTopK    = 50
	MaxTopK        = 500
)

// Limits bounds the accepted search parameters.
type Limits struct {
	DefaultTopK    int
	MaxTopK        int
	MaxQueryLength int
}

// DefaultLimits returns the built-in limits.
func DefaultLimits() Limits {
	return Limits{DefaultTopK: DefaultTopK, MaxTopK: MaxTopK, MaxQueryLength: MaxQueryLength}
}

// Request is a validated search query.
type Request struct {
	query string
	topK  int
	page  int
	limit int
}

// New validates and normalizes search parameters.
// An empty query is valid and ranks the whole corpus at the floor score.
// topK above the maximum is clamped; limit 0 means one page holding all topK hits.
func New(query string, topK, page, limit int, lim Limits) (Request, error) {
	if lim.MaxQueryLength > 0 && len(query) > lim.MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d bytes)", lim.MaxQueryLength)
	}
	if !utf8.ValidString(query) {
		return Request{}, fmt.Errorf("query must be valid UTF-8")
	}
	if topK < 0 {
		return Request{}, fmt.Errorf("top_k must be non-negative, got %d", topK)
	}
	if lim.MaxTopK > 0 && topK > lim.MaxTopK {
		topK = lim.MaxTopK
	}
	if page < 0 {
		return Request{}, fmt.Errorf("page must be non-negative, got %d", page)
	}
	if limit < 0 {
		return Request{}, fmt.Errorf("limit must be non-negative, got %d", limit)
	}
	if limit > topK {
		limit = topK
	}

	return Request{query: query, topK: topK, page: page, limit: limit}, nil
}

// Query returns the raw query text.
func (r *Request) Query() string { return r.query }

// TopK returns the number of ranked documents to select.
func (r *Request) TopK() int { return r.topK }

// Page returns the 0-based page over the ranked hits.
func (r *Request) Page() int { return r.page }

// Limit returns the page size (0 = all hits on page 0).
func (r *Request) Limit() int { return r.limit }
