package result

import "github.com/kailas-cloud/flavorsearch/internal/domain/recipe"

// Scored is a document id with its relevance score (log-likelihood, <= 0).
type Scored struct {
	ID    int
	Score float64
}

// Hit is a ranked document with its display fields.
type Hit struct {
	Document recipe.Document
	Score    float64
}

// Correction records a query token replaced by the spelling corrector.
type Correction struct {
	From string
	To   string
}

// Ranking is the full ranked output of one query, before paging.
type Ranking struct {
	Tokens      []string
	Corrections []Correction
	Scored      []Scored
}

// Page is one page of ranked hits plus the query as the engine understood it.
type Page struct {
	Hits        []Hit
	Tokens      []string
	Corrections []Correction
	// Total is the number of ranked hits before paging (min(top_k, corpus size)).
	Total   int
	Page    int
	Limit   int
	HasMore bool
}

// CorrectedQuery joins the preprocessed tokens back into a query string.
func (p *Page) CorrectedQuery() string {
	n := 0
	for _, t := range p.Tokens {
		n += len(t) + 1
	}
	b := make([]byte, 0, n)
	for i, t := range p.Tokens {
		if i > 0 {
			b = append(b, ' ')
		}
		b = append(b, t...)
	}
	return string(b)
}

// Paginate slices ranked into the requested page. limit 0 returns everything on page 0.
func Paginate(ranked []Scored, page, limit int) (items []Scored, hasMore bool) {
	if limit <= 0 {
		if page > 0 {
			return nil, false
		}
		return ranked, false
	}
	// Compare before multiplying so a huge page cannot overflow the offset.
	if len(ranked) == 0 || page > (len(ranked)-1)/limit {
		return nil, false
	}
	start := page * limit
	end := start + min(limit, len(ranked)-start)
	return ranked[start:end], end < len(ranked)
}
