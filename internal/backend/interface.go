package backend

import (
	"context"

	"finboard/internal/ports"
)

// Backend is everything the dashboard needs from a data source.
type Backend interface {
	ports.CategoryReader
	ports.TransactionStore
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (Backend, error)
}

// Type represents the kind of backend
type Type string

const (
	HTTPBackend   Type = "http"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is known
func (t Type) IsValid() bool {
	switch t {
	case HTTPBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
