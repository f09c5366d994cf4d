package flavorsearch

import (
	"context"

	healthuc "github.com/kailas-cloud/flavorsearch/internal/usecase/health"
)

// HealthStatus represents the aggregated engine health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component → "ok"/"error"
	Stats  Stats
}

// Health checks the engine and, when enabled, the result cache.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
		Stats: Stats{
			Documents:  report.Stats.Documents,
			Vocabulary: report.Stats.Vocabulary,
			Dimensions: report.Stats.Dimensions,
		},
	}
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
