package spell

import "testing"

type sliceVocab struct {
	tokens []string
	set    map[string]struct{}
}

func newVocab(tokens ...string) *sliceVocab {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return &sliceVocab{tokens: tokens, set: set}
}

func (v *sliceVocab) Contains(token string) bool {
	_, ok := v.set[token]
	return ok
}

func (v *sliceVocab) Tokens() []string { return v.tokens }

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"recipe", "recipe", 0},
		{"recpie", "recipe", 2},
		{"chedder", "cheddar", 1},
		{"kitten", "sitting", 3},
		{"crème", "creme", 1},
	}
	for _, tc := range tests {
		if got := Levenshtein(tc.a, tc.b); got != tc.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestBoundedDistance_GivesUp(t *testing.T) {
	if _, ok := boundedDistance([]rune("kitten"), []rune("sitting"), 2); ok {
		t.Error("distance 3 must exceed limit 2")
	}
	if d, ok := boundedDistance([]rune("kitten"), []rune("sitting"), 3); !ok || d != 3 {
		t.Errorf("got %d, %v; want 3, true", d, ok)
	}
	if _, ok := boundedDistance([]rune("a"), []rune("abcd"), 2); ok {
		t.Error("length difference 3 must exceed limit 2")
	}
}

func TestCorrect_InVocabularyUnchanged(t *testing.T) {
	vocab := newVocab("recipe", "cheddar", "cheese", "recipes")
	c := NewCorrector(vocab, 0)
	for _, tok := range vocab.Tokens() {
		if got := c.Correct(tok); got != tok {
			t.Errorf("Correct(%q) = %q, in-vocabulary tokens must be unchanged", tok, got)
		}
	}
}

func TestCorrect_Scenario(t *testing.T) {
	c := NewCorrector(newVocab("recipe", "cheddar", "cheese", "cake", "chocolate"), DefaultMaxDistance)

	tests := map[string]string{
		"recpie":   "recipe",
		"chedder":  "cheddar",
		"cheese":   "cheese",
		"chocolat": "chocolate",
	}
	for in, want := range tests {
		if got := c.Correct(in); got != want {
			t.Errorf("Correct(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCorrect_NoCloseNeighbour(t *testing.T) {
	c := NewCorrector(newVocab("recipe", "cheddar"), DefaultMaxDistance)
	for _, tok := range []string{"zzzzzz", "spaghetti", ""} {
		got, changed := c.Suggest(tok)
		if got != tok || changed {
			t.Errorf("Suggest(%q) = %q, %v; want unchanged", tok, got, changed)
		}
	}
}

func TestCorrect_ReturnsMinimalDistance(t *testing.T) {
	vocab := newVocab("bake", "baked", "bakes", "baker", "brake", "cake")
	c := NewCorrector(vocab, DefaultMaxDistance)

	for _, in := range []string{"bakd", "bkae", "bakerr", "cakke", "bxkxe"} {
		got := c.Correct(in)
		if got == in {
			continue
		}
		d := Levenshtein(in, got)
		if d > DefaultMaxDistance {
			t.Errorf("Correct(%q) = %q at distance %d", in, got, d)
		}
		for _, tok := range vocab.Tokens() {
			if Levenshtein(in, tok) < d {
				t.Errorf("Correct(%q) = %q (d=%d) but %q is closer", in, got, d, tok)
			}
		}
	}
}

func TestCorrect_Deterministic(t *testing.T) {
	c := NewCorrector(newVocab("cat", "bat", "hat"), DefaultMaxDistance)
	first := c.Correct("xat")
	for i := 0; i < 20; i++ {
		if got := c.Correct("xat"); got != first {
			t.Fatalf("Correct not deterministic: %q then %q", first, got)
		}
	}
	if Levenshtein("xat", first) != 1 {
		t.Errorf("Correct(xat) = %q, want a distance-1 neighbour", first)
	}
}

func TestCorrect_CustomThreshold(t *testing.T) {
	c := NewCorrector(newVocab("recipe"), 1)
	if c.MaxDistance() != 1 {
		t.Fatalf("MaxDistance() = %d", c.MaxDistance())
	}
	if got := c.Correct("recpie"); got != "recpie" {
		t.Errorf("Correct(recpie) = %q, distance 2 exceeds threshold 1", got)
	}
}

func TestCompleter(t *testing.T) {
	c := NewCompleter([]string{"cheese", "chicken", "cake", "cheddar", "chili"})

	got := c.Complete("ch", 3)
	want := []string{"cheese", "chicken", "cheddar"}
	if len(got) != len(want) {
		t.Fatalf("Complete(ch) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Complete(ch)[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if got := c.Complete("che", 10); len(got) != 2 {
		t.Errorf("Complete(che) = %v", got)
	}
	if got := c.Complete("", 10); got != nil {
		t.Errorf("Complete(\"\") = %v, want nil", got)
	}
	if got := c.Complete("zz", 10); len(got) != 0 {
		t.Errorf("Complete(zz) = %v, want empty", got)
	}
}
