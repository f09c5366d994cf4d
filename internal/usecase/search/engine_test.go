package search

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/flavorsearch/internal/domain/search/result"
)

func ids(scored []result.Scored) []int {
	out := make([]int, len(scored))
	for i, s := range scored {
		out[i] = s.ID
	}
	return out
}

func TestEngine_Execute(t *testing.T) {
	eng, _ := newTestEngine(t, ScorerConfig{Workers: 1})

	ranking, err := eng.Execute(context.Background(), "cheese", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"cheese"}, ranking.Tokens)
	assert.Empty(t, ranking.Corrections)
	assert.Equal(t, []int{1, 0, 2, 3}, ids(ranking.Scored))
	assert.Equal(t, floor, ranking.Scored[2].Score)
	assert.Equal(t, floor, ranking.Scored[3].Score)
}

func TestEngine_CorrectsMisspelledQuery(t *testing.T) {
	eng, _ := newTestEngine(t, ScorerConfig{Workers: 1})

	ranking, err := eng.Execute(context.Background(), "recpie chedder cheese", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"recipe", "cheddar", "cheese"}, ranking.Tokens)
	assert.Equal(t, []result.Correction{
		{From: "recpie", To: "recipe"},
		{From: "chedder", To: "cheddar"},
	}, ranking.Corrections)

	require.Len(t, ranking.Scored, 2)
	assert.Equal(t, 1, ranking.Scored[0].ID)
	assert.InDelta(t, math.Log(sigmoid(1)), ranking.Scored[0].Score, 1e-6)
}

func TestEngine_EmptyQueryRanksByID(t *testing.T) {
	eng, _ := newTestEngine(t, ScorerConfig{Workers: 1})

	ranking, err := eng.Execute(context.Background(), "", 3)
	require.NoError(t, err)
	assert.Empty(t, ranking.Tokens)
	assert.Equal(t, []int{0, 1, 2}, ids(ranking.Scored))
	for _, s := range ranking.Scored {
		assert.Equal(t, floor, s.Score)
	}
}

func TestEngine_TopKLargerThanCorpus(t *testing.T) {
	eng, _ := newTestEngine(t, ScorerConfig{Workers: 1})

	ranking, err := eng.Execute(context.Background(), "pasta", 1000)
	require.NoError(t, err)
	assert.Len(t, ranking.Scored, len(testDocs()))
}

func TestEngine_ZeroTopK(t *testing.T) {
	eng, _ := newTestEngine(t, ScorerConfig{Workers: 1})

	ranking, err := eng.Execute(context.Background(), "pasta", 0)
	require.NoError(t, err)
	assert.Empty(t, ranking.Scored)
}

func TestEngine_Idempotent(t *testing.T) {
	eng, _ := newTestEngine(t, ScorerConfig{Workers: 2, ChunkSize: 1})

	first, err := eng.Execute(context.Background(), "Tomato & chedder", 4)
	require.NoError(t, err)
	for range 5 {
		again, err := eng.Execute(context.Background(), "Tomato & chedder", 4)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEngine_Canceled(t *testing.T) {
	eng, _ := newTestEngine(t, ScorerConfig{Workers: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := eng.Execute(ctx, "cheese", 5)
	require.ErrorIs(t, err, context.Canceled)
}
