package health

import "context"

// CachePinger checks result cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// EngineStats describes the loaded search state.
type EngineStats interface {
	Documents() int
	Vocabulary() int
	Dimensions() int
}
