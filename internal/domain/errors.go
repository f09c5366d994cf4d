package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrModelLoad signals a missing, corrupt, or empty embedding artifact.
	ErrModelLoad = errors.New("model load failed")
	// ErrDatasetLoad signals a missing dataset or a dataset without required columns.
	ErrDatasetLoad = errors.New("dataset load failed")
	// ErrInvalidQuery signals a malformed search request at the transport boundary.
	ErrInvalidQuery = errors.New("invalid query")
)

// LoadError describes a startup load failure. It unwraps to both its kind
// (ErrModelLoad or ErrDatasetLoad) and the underlying cause.
type LoadError struct {
	Kind error
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewModelLoadError wraps err as an embedding artifact failure for path.
func NewModelLoadError(path string, err error) error {
	return &LoadError{Kind: ErrModelLoad, Path: path, Err: err}
}

// NewDatasetLoadError wraps err as a dataset snapshot failure for path.
func NewDatasetLoadError(path string, err error) error {
	return &LoadError{Kind: ErrDatasetLoad, Path: path, Err: err}
}
