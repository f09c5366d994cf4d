package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search engine Prometheus metrics.
var (
	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "flavorsearch",
			Name:      "search_duration_seconds",
			Help:      "Time spent preprocessing, scoring and ranking one query",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	SearchQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flavorsearch",
			Name:      "search_queries_total",
			Help:      "Total number of executed queries",
		},
		[]string{"status"}, // "ok" / "canceled" / "timeout" / "error"
	)

	SpellCorrectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "flavorsearch",
			Name:      "spell_corrections_total",
			Help:      "Query tokens replaced by their nearest vocabulary neighbour",
		},
	)

	OOVTokensTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "flavorsearch",
			Name:      "oov_tokens_total",
			Help:      "Query tokens left out of vocabulary after correction",
		},
	)

	ResultCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flavorsearch",
			Name:      "result_cache_total",
			Help:      "Result cache hits, misses and errors",
		},
		[]string{"result"}, // "hit" / "miss" / "error"
	)

	CorpusDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "flavorsearch",
			Name:      "corpus_documents",
			Help:      "Number of documents loaded into the corpus",
		},
	)

	VocabularySize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "flavorsearch",
			Name:      "vocabulary_size",
			Help:      "Number of tokens in the embedding table",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers the search engine metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchQueriesTotal)
	prometheus.MustRegister(SpellCorrectionsTotal)
	prometheus.MustRegister(OOVTokensTotal)
	prometheus.MustRegister(ResultCacheTotal)
	prometheus.MustRegister(CorpusDocuments)
	prometheus.MustRegister(VocabularySize)
	searchMetricsRegistered = true
}
