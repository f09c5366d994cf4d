package spell

import (
	"sort"

	"github.com/tchap/go-patricia/v2/patricia"
)

// Completer answers vocabulary prefix queries for search-box typeahead.
// Results follow vocabulary order, which for word2vec exports is frequency rank.
type Completer struct {
	trie *patricia.Trie
}

// NewCompleter indexes every token with its vocabulary rank.
func NewCompleter(tokens []string) *Completer {
	trie := patricia.NewTrie()
	for rank, tok := range tokens {
		trie.Insert(patricia.Prefix(tok), rank)
	}
	return &Completer{trie: trie}
}

// Complete returns up to limit vocabulary tokens starting with prefix,
// best-ranked first. An empty prefix returns nothing.
func (c *Completer) Complete(prefix string, limit int) []string {
	if prefix == "" || limit <= 0 {
		return nil
	}

	type ranked struct {
		token string
		rank  int
	}
	var matches []ranked
	_ = c.trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, item patricia.Item) error {
		rank, ok := item.(int)
		if !ok {
			return nil
		}
		matches = append(matches, ranked{token: string(p), rank: rank})
		return nil
	})

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].rank < matches[j].rank
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.token
	}
	return out
}
