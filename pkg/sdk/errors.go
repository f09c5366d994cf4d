package flavorsearch

import "github.com/kailas-cloud/flavorsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrModelLoad    = domain.ErrModelLoad
	ErrDatasetLoad  = domain.ErrDatasetLoad
	ErrInvalidQuery = domain.ErrInvalidQuery
)
