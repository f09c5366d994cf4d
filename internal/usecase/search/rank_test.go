package search

import (
	"reflect"
	"testing"

	"github.com/kailas-cloud/flavorsearch/internal/domain/search/result"
)

func TestRank_OrderAndTies(t *testing.T) {
	in := []result.Scored{
		{ID: 0, Score: -2},
		{ID: 1, Score: -0.5},
		{ID: 2, Score: -2},
		{ID: 3, Score: -0.1},
		{ID: 4, Score: -0.5},
	}
	got := Rank(in, 5)
	want := []result.Scored{
		{ID: 3, Score: -0.1},
		{ID: 1, Score: -0.5},
		{ID: 4, Score: -0.5},
		{ID: 0, Score: -2},
		{ID: 2, Score: -2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Rank = %v, want %v", got, want)
	}
}

func TestRank_Length(t *testing.T) {
	in := []result.Scored{{ID: 0, Score: -1}, {ID: 1, Score: -2}, {ID: 2, Score: -3}}
	tests := []struct {
		topK int
		want int
	}{
		{-5, 0},
		{0, 0},
		{2, 2},
		{3, 3},
		{50, 3},
	}
	for _, tt := range tests {
		if got := Rank(in, tt.topK); len(got) != tt.want {
			t.Errorf("Rank(topK=%d) len = %d, want %d", tt.topK, len(got), tt.want)
		}
	}
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	in := []result.Scored{{ID: 0, Score: -3}, {ID: 1, Score: -1}}
	_ = Rank(in, 2)
	if in[0].ID != 0 || in[1].ID != 1 {
		t.Errorf("input reordered: %v", in)
	}
}

func TestRank_AllEqualScoresKeepIDOrder(t *testing.T) {
	in := make([]result.Scored, 10)
	for i := range in {
		in[i] = result.Scored{ID: 9 - i, Score: -23}
	}
	got := Rank(in, 4)
	for i, s := range got {
		if s.ID != i {
			t.Fatalf("position %d: id %d, want %d", i, s.ID, i)
		}
	}
}

func TestRank_Empty(t *testing.T) {
	if got := Rank(nil, 10); len(got) != 0 {
		t.Errorf("expected empty ranking, got %v", got)
	}
}
