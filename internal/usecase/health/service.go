package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the engine serves queries but an optional component failed.
	Degraded Status = "degraded"
	// Unhealthy indicates the engine cannot serve queries.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Stats is a snapshot of the loaded corpus and model.
type Stats struct {
	Documents  int
	Vocabulary int
	Dimensions int
}

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	Stats  Stats
}

// Service coordinates health checks.
type Service struct {
	engine EngineStats
	cache  CachePinger
}

// New creates a Service. cache can be nil when result caching is disabled.
func New(engine EngineStats, cache CachePinger) *Service {
	return &Service{engine: engine, cache: cache}
}

// Check reports engine readiness and optional cache connectivity.
// An empty corpus or vocabulary cannot answer queries and is Unhealthy.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	stats := Stats{
		Documents:  s.engine.Documents(),
		Vocabulary: s.engine.Vocabulary(),
		Dimensions: s.engine.Dimensions(),
	}

	if stats.Documents > 0 && stats.Vocabulary > 0 {
		checks["engine"] = CheckOK
	} else {
		checks["engine"] = CheckError
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks["cache"] = CheckError
		} else {
			checks["cache"] = CheckOK
		}
	}

	status := Healthy
	switch {
	case checks["engine"] == CheckError:
		status = Unhealthy
	case checks["cache"] == CheckError:
		status = Degraded
	}

	return Report{Status: status, Checks: checks, Stats: stats}
}

