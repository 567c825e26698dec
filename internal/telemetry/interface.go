package telemetry

import (
	"context"

	"github.com/eraceo/apmlive/internal/tracker"
)

// Collector defines the core domain interface
type Collector interface {
	Record(ctx context.Context, snapshot *tracker.Snapshot) error
	Close() error
}

// Repository defines the interface for snapshot storage
type Repository interface {
	Record(snapshot *tracker.Snapshot) error
	Close() error
}
