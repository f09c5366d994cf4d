package resultcache

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/flavorsearch/internal/db"
	"github.com/kailas-cloud/flavorsearch/internal/domain/search/result"
)

type mockExecutor struct {
	ranking result.Ranking
	err     error
	calls   int
}

func (m *mockExecutor) Execute(_ context.Context, _ string, _ int) (result.Ranking, error) {
	m.calls++
	return m.ranking, m.err
}

// mockKVStore is an in-memory store; getErr/setErr force failures.
type mockKVStore struct {
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mockKVStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKVStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func newTestCache(t *testing.T, inner *mockExecutor, cfg Config) (*CachedExecutor, *mockKVStore, *prometheus.CounterVec) {
	t.Helper()
	ms := newMockKVStore()
	total := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_result_cache_total"}, []string{"result"})
	return New(inner, ms, cfg, total, zap.NewNop()), ms, total
}

func sampleRanking() result.Ranking {
	return result.Ranking{
		Tokens:      []string{"cheddar", "cheese"},
		Corrections: []result.Correction{{From: "chedder", To: "cheddar"}},
		Scored:      []result.Scored{{ID: 4, Score: -0.31}, {ID: 1, Score: -0.52}},
	}
}
