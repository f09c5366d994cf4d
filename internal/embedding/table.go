// Package embedding holds the pretrained word-embedding table.
//
// A Table is immutable once built and safe for any number of concurrent readers.
// Vectors are stored in one flat slice together with their unit-normalized copy,
// so cosine similarity on the hot path is a single dot product.
package embedding

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmptyVocabulary is returned when an artifact contains no tokens.
var ErrEmptyVocabulary = errors.New("embedding: empty vocabulary")

// Table maps vocabulary tokens to fixed-length vectors.
type Table struct {
	dim     int
	tokens  []string
	index   map[string]int
	vectors []float32
	unit    []float32
}

// New builds a Table from parallel token and vector slices.
// Duplicate tokens keep their first vector. Every vector must have length dim.
func New(dim int, tokens []string, vectors [][]float32) (*Table, error) {
	if len(tokens) != len(vectors) {
		return nil, fmt.Errorf("embedding: %d tokens but %d vectors", len(tokens), len(vectors))
	}
	b := newBuilder(dim, len(tokens))
	for i, tok := range tokens {
		if err := b.add(tok, vectors[i]); err != nil {
			return nil, err
		}
	}
	return b.build()
}

// Dim returns the vector dimensionality.
func (t *Table) Dim() int { return t.dim }

// Len returns the vocabulary size.
func (t *Table) Len() int { return len(t.tokens) }

// Tokens returns the vocabulary in load order. Callers must not modify the slice.
func (t *Table) Tokens() []string { return t.tokens }

// Token returns the token for id.
func (t *Table) Token(id int) string { return t.tokens[id] }

// ID returns the vocabulary position of token.
func (t *Table) ID(token string) (int, bool) {
	id, ok := t.index[token]
	return id, ok
}

// Contains reports whether token is in the vocabulary.
func (t *Table) Contains(token string) bool {
	_, ok := t.index[token]
	return ok
}

// Vector returns a copy of the raw vector for token. Unknown tokens get a zero vector.
func (t *Table) Vector(token string) []float32 {
	out := make([]float32, t.dim)
	if id, ok := t.index[token]; ok {
		copy(out, t.vectors[id*t.dim:(id+1)*t.dim])
	}
	return out
}

// Similarity returns the cosine similarity of two tokens in [-1, 1].
// It returns 0 when either token is out of vocabulary.
func (t *Table) Similarity(a, b string) float64 {
	ia, ok := t.index[a]
	if !ok {
		return 0
	}
	ib, ok := t.index[b]
	if !ok {
		return 0
	}
	return t.SimilarityByID(ia, ib)
}

// SimilarityByID returns the cosine similarity of two vocabulary ids.
// A zero-magnitude vector has similarity 0 with everything.
func (t *Table) SimilarityByID(a, b int) float64 {
	va := t.unit[a*t.dim : (a+1)*t.dim]
	vb := t.unit[b*t.dim : (b+1)*t.dim]
	var dot float64
	for i := range va {
		dot += float64(va[i]) * float64(vb[i])
	}
	if dot > 1 {
		return 1
	}
	if dot < -1 {
		return -1
	}
	return dot
}

// builder accumulates tokens while an artifact is decoded.
type builder struct {
	dim     int
	tokens  []string
	index   map[string]int
	vectors []float32
}

// maxPreallocTokens caps the capacity taken from an artifact header. The
// header count is only a hint; the builder grows past it as rows arrive.
const maxPreallocTokens = 1 << 20

func newBuilder(dim, capacity int) *builder {
	capacity = min(max(capacity, 0), maxPreallocTokens)
	if dim <= 0 || capacity > math.MaxInt/dim {
		capacity = 0
	}
	return &builder{
		dim:     dim,
		tokens:  make([]string, 0, capacity),
		index:   make(map[string]int, capacity),
		vectors: make([]float32, 0, capacity*max(dim, 0)),
	}
}

func (b *builder) add(token string, vec []float32) error {
	if len(vec) != b.dim {
		return fmt.Errorf("embedding: token %q has %d dimensions, want %d", token, len(vec), b.dim)
	}
	if token == "" {
		return fmt.Errorf("embedding: empty token")
	}
	if _, dup := b.index[token]; dup {
		return nil
	}
	for _, v := range vec {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return fmt.Errorf("embedding: token %q has non-finite component", token)
		}
	}
	b.index[token] = len(b.tokens)
	b.tokens = append(b.tokens, token)
	b.vectors = append(b.vectors, vec...)
	return nil
}

func (b *builder) build() (*Table, error) {
	if b.dim <= 0 {
		return nil, fmt.Errorf("embedding: invalid dimension %d", b.dim)
	}
	if len(b.tokens) == 0 {
		return nil, ErrEmptyVocabulary
	}

	unit := make([]float32, len(b.vectors))
	for id := range b.tokens {
		row := b.vectors[id*b.dim : (id+1)*b.dim]
		var norm float64
		for _, v := range row {
			norm += float64(v) * float64(v)
		}
		if norm == 0 {
			continue
		}
		inv := 1 / math.Sqrt(norm)
		out := unit[id*b.dim : (id+1)*b.dim]
		for i, v := range row {
			out[i] = float32(float64(v) * inv)
		}
	}

	return &Table{
		dim:     b.dim,
		tokens:  b.tokens,
		index:   b.index,
		vectors: b.vectors,
		unit:    unit,
	}, nil
}
