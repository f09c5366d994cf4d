package search

import (
	"strings"
	"unicode"

	"github.com/kailas-cloud/flavorsearch/internal/domain/search/result"
)

// Preprocessor splits a raw query on whitespace and corrects each token.
// Tokens are never dropped: uncorrectable tokens pass through and are
// ignored later by the scorer.
type Preprocessor struct {
	corrector Corrector
	normalize bool
}

// NewPreprocessor creates a Preprocessor. When normalize is set the query is
// cleaned like the corpus (lowercase, digits and punctuation removed) before splitting.
func NewPreprocessor(corrector Corrector, normalize bool) *Preprocessor {
	return &Preprocessor{corrector: corrector, normalize: normalize}
}

// Preprocess returns the corrected tokens and the corrections applied.
func (p *Preprocessor) Preprocess(raw string) ([]string, []result.Correction) {
	if p.normalize {
		raw = Normalize(raw)
	}
	fields := strings.Fields(raw)
	tokens := make([]string, len(fields))
	var corrections []result.Correction
	for i, f := range fields {
		corrected, changed := p.corrector.Suggest(f)
		tokens[i] = corrected
		if changed {
			corrections = append(corrections, result.Correction{From: f, To: corrected})
		}
	}
	return tokens, corrections
}

// Normalize lowercases s, turns digits into spaces and drops every rune that
// is neither a letter nor whitespace.
func Normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			sb.WriteRune(unicode.ToLower(r))
		case unicode.IsDigit(r), unicode.IsSpace(r):
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}
