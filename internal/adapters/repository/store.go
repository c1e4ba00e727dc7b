// Package repository provides the persistent schedule cache: the last
// successfully synchronized state of every tracked schedule, keyed by
// schedule id, used for idempotence checks and window queries.
package repository

import (
	"context"

	"github.com/yymzk/calbridge/internal/domain/schedule"
)

// Store is the persistent schedule cache contract.
type Store interface {
	// Get returns the cached schedule for id, or nil when absent.
	// Absence is not an error.
	Get(ctx context.Context, id string) (*schedule.Schedule, error)

	// Set upserts the schedule keyed by its id, unconditionally
	// overwriting any prior cached value.
	Set(ctx context.Context, s schedule.Schedule) error

	// Remove deletes the schedule by id; removing an absent id is a no-op.
	Remove(ctx context.Context, id string) error

	// FindInRange returns cached schedules matching the historical
	// window predicate: stored start >= the serialized range start, OR
	// stored end < the serialized range end. This is deliberately not a
	// strict interval intersection; see SQLiteStore.FindInRange.
	FindInRange(ctx context.Context, start, end schedule.DateTime) ([]schedule.Schedule, error)

	// Close releases the underlying database handle.
	Close() error
}
