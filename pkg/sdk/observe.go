package flavorsearch

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/flavorsearch/internal/domain"
)

// SDK operation names, used as the "operation" metric label and log field.
const (
	opSearch  = "search"
	opSuggest = "suggest"
)

// Operation outcomes, used as the "status" metric label.
const (
	statusOK      = "ok"
	statusInvalid = "invalid" // rejected before ranking (ErrInvalidQuery)
	statusError   = "error"
)

// sdkMetrics holds prometheus metrics registered for the SDK.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	results    *prometheus.HistogramVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flavorsearch",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Embedded search and suggest calls by operation and status (ok, invalid, error).",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "flavorsearch",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "Wall time of embedded search (rank the whole corpus) and suggest (vocabulary prefix lookup) calls.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),
		results: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "flavorsearch",
			Subsystem: "sdk",
			Name:      "results_returned",
			Help:      "Recipes per search page and words per suggest call.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		}, []string{"operation"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.results); err != nil {
		return nil, err
	}
	for _, op := range []string{opSearch, opSuggest} {
		m.operations.WithLabelValues(op, statusOK)
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses the one a previous Client
// registered on the same registerer.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("flavorsearch: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("flavorsearch: register metric: %w", err)
	}
	return nil
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return statusOK
	case errors.Is(err, domain.ErrInvalidQuery):
		return statusInvalid
	default:
		return statusError
	}
}

// observer records search and suggest calls. A nil observer, or one built
// without a logger or registerer, drops the corresponding signal.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

// observe records one call of op that returned n items.
func (o *observer) observe(op string, start time.Time, n int, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	status := statusOf(err)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
		if err == nil {
			o.metrics.results.WithLabelValues(op).Observe(float64(n))
		}
	}

	if o.logger == nil {
		return
	}
	switch status {
	case statusOK:
		o.logger.Debug(op+" completed", "duration", dur, "results", n)
	case statusInvalid:
		o.logger.Debug(op+" rejected", "duration", dur, "error", err)
	default:
		o.logger.Warn(op+" failed", "duration", dur, "error", err)
	}
}
