package resultcache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_MissThenHit(t *testing.T) {
	inner := &mockExecutor{ranking: sampleRanking()}
	ce, ms, total := newTestCache(t, inner, Config{TTL: time.Minute, Fingerprint: "fp"})
	ctx := context.Background()

	first, err := ce.Execute(ctx, "chedder cheese", 10)
	require.NoError(t, err)
	assert.Equal(t, sampleRanking(), first)
	require.Len(t, ms.data, 1)
	for k, ttl := range ms.ttls {
		assert.True(t, strings.HasPrefix(k, DefaultKeyPrefix))
		assert.Equal(t, time.Minute, ttl)
	}

	second, err := ce.Execute(ctx, "chedder cheese", 10)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)

	assert.InDelta(t, 1, testutil.ToFloat64(total.WithLabelValues("miss")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(total.WithLabelValues("hit")), 0)
}

func TestExecute_KeyDependsOnTopKAndFingerprint(t *testing.T) {
	a := &CachedExecutor{cfg: Config{KeyPrefix: "p:", Fingerprint: "one"}}
	b := &CachedExecutor{cfg: Config{KeyPrefix: "p:", Fingerprint: "two"}}

	assert.NotEqual(t, a.cacheKey("cheese", 10), a.cacheKey("cheese", 11))
	assert.NotEqual(t, a.cacheKey("cheese", 10), b.cacheKey("cheese", 10))
	assert.NotEqual(t, a.cacheKey("cheese", 10), a.cacheKey("cheddar", 10))
	assert.Equal(t, a.cacheKey("cheese  pasta", 10), a.cacheKey(" cheese pasta\t", 10))
}

func TestExecute_InnerErrorNotCached(t *testing.T) {
	inner := &mockExecutor{err: context.Canceled}
	ce, ms, _ := newTestCache(t, inner, Config{})

	_, err := ce.Execute(context.Background(), "cheese", 5)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ms.data)
}

func TestExecute_StoreFailuresBypassCache(t *testing.T) {
	inner := &mockExecutor{ranking: sampleRanking()}
	ce, ms, total := newTestCache(t, inner, Config{})
	ms.getErr = errors.New("connection refused")
	ms.setErr = errors.New("connection refused")

	r, err := ce.Execute(context.Background(), "cheese", 5)
	require.NoError(t, err)
	assert.Equal(t, sampleRanking(), r)
	assert.Equal(t, 1, inner.calls)
	assert.InDelta(t, 2, testutil.ToFloat64(total.WithLabelValues("error")), 0)
}

func TestExecute_CorruptEntryIsAMiss(t *testing.T) {
	inner := &mockExecutor{ranking: sampleRanking()}
	ce, ms, _ := newTestCache(t, inner, Config{})
	ms.data[ce.cacheKey("cheese", 5)] = []byte{0xc1}

	r, err := ce.Execute(context.Background(), "cheese", 5)
	require.NoError(t, err)
	assert.Equal(t, sampleRanking(), r)
	assert.Equal(t, 1, inner.calls)
}

func TestDecodeRanking_Rejects(t *testing.T) {
	data, err := encodeRanking(sampleRanking())
	require.NoError(t, err)
	_, err = decodeRanking(data)
	require.NoError(t, err)

	_, err = decodeRanking([]byte("not msgpack"))
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, Fingerprint("a", "b"), Fingerprint("a", "b"))
	assert.NotEqual(t, Fingerprint("a", "b"), Fingerprint("ab"))
	assert.Len(t, Fingerprint("x"), 16)
}
