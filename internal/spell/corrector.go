// Package spell corrects out-of-vocabulary query tokens and completes
// vocabulary prefixes.
package spell

// DefaultMaxDistance is the largest edit distance accepted as a correction.
const DefaultMaxDistance = 2

// Vocabulary is the read-only token set the corrector draws candidates from.
type Vocabulary interface {
	Contains(token string) bool
	Tokens() []string
}

// Corrector replaces out-of-vocabulary tokens with their nearest vocabulary
// neighbour by edit distance. It is immutable and safe for concurrent use.
type Corrector struct {
	vocab       Vocabulary
	candidates  [][]rune
	maxDistance int
}

// NewCorrector precomputes the rune form of every vocabulary token.
// maxDistance <= 0 selects DefaultMaxDistance.
func NewCorrector(vocab Vocabulary, maxDistance int) *Corrector {
	if maxDistance <= 0 {
		maxDistance = DefaultMaxDistance
	}
	tokens := vocab.Tokens()
	candidates := make([][]rune, len(tokens))
	for i, tok := range tokens {
		candidates[i] = []rune(tok)
	}
	return &Corrector{vocab: vocab, candidates: candidates, maxDistance: maxDistance}
}

// MaxDistance returns the correction threshold.
func (c *Corrector) MaxDistance() int { return c.maxDistance }

// Correct returns token unchanged when it is in the vocabulary. Otherwise it
// returns the vocabulary token with minimal edit distance, provided that
// distance is within the threshold; ties go to the earliest token in
// vocabulary order. Tokens with no close neighbour are returned unchanged.
func (c *Corrector) Correct(token string) string {
	corrected, _ := c.Suggest(token)
	return corrected
}

// Suggest is Correct that also reports whether a replacement happened.
func (c *Corrector) Suggest(token string) (string, bool) {
	if token == "" || c.vocab.Contains(token) {
		return token, false
	}

	in := []rune(token)
	best := c.maxDistance + 1
	winner := -1
	for i, cand := range c.candidates {
		d, ok := boundedDistance(in, cand, best-1)
		if !ok || d >= best {
			continue
		}
		best = d
		winner = i
		if best <= 1 {
			// Distance 0 is impossible for an out-of-vocabulary token.
			break
		}
	}

	if winner < 0 {
		return token, false
	}
	return string(c.candidates[winner]), true
}
