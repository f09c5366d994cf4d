package search

import (
	"testing"

	"github.com/kailas-cloud/flavorsearch/internal/domain/recipe"
	"github.com/kailas-cloud/flavorsearch/internal/embedding"
	"github.com/kailas-cloud/flavorsearch/internal/spell"
)

// --- Fixtures ---

// testTable is a 2-d vocabulary: cheese and cheddar point the same way,
// pasta points the opposite way, recipe is orthogonal to both.
func testTable(t *testing.T) *embedding.Table {
	t.Helper()
	tbl, err := embedding.New(2,
		[]string{"cheese", "cheddar", "recipe", "pasta", "tomato"},
		[][]float32{{1, 0}, {0.9, 0.1}, {0, 1}, {-1, 0}, {0.6, -0.8}},
	)
	if err != nil {
		t.Fatalf("build table: %v", err)
	}
	return tbl
}

func testDocs() []recipe.Document {
	return []recipe.Document{
		recipe.New(0, []string{"pasta", "tomato"}, recipe.Fields{Title: "Tomato Pasta", SourceIndex: -1}),
		recipe.New(1, []string{"cheddar", "cheese", "recipe"}, recipe.Fields{Title: "Cheddar Bake", SourceIndex: -1}),
		recipe.New(2, []string{"unknownword"}, recipe.Fields{Title: "Mystery", SourceIndex: -1}),
		recipe.New(3, nil, recipe.Fields{Title: "Empty", SourceIndex: -1}),
	}
}

func newTestEngine(t *testing.T, cfg ScorerConfig) (*Engine, *Scorer) {
	t.Helper()
	tbl := testTable(t)
	scorer, err := NewScorer(tbl, testDocs(), cfg, nil)
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}
	eng := NewEngine(NewPreprocessor(spell.NewCorrector(tbl, 0), true), scorer, nil)
	t.Cleanup(eng.Close)
	return eng, scorer
}

// --- Mocks ---

type mockCorrector struct {
	fixes map[string]string
}

func (m *mockCorrector) Suggest(token string) (string, bool) {
	if to, ok := m.fixes[token]; ok {
		return to, true
	}
	return token, false
}

type mockCorpus struct {
	docs []recipe.Document
}

func (m *mockCorpus) All() []recipe.Document { return m.docs }

func (m *mockCorpus) Get(id int) (recipe.Document, bool) {
	if id < 0 || id >= len(m.docs) {
		return recipe.Document{}, false
	}
	return m.docs[id], true
}

func (m *mockCorpus) Len() int { return len(m.docs) }
