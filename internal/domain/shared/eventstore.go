package shared

import "context"

// EventStore is the append-only, per-stream event log. It is the single
// source of truth for aggregate state; projections and caches are derived
// from it and are always safe to rebuild by replaying.
type EventStore interface {
	// Append persists the events contiguously after expectedVersion and
	// returns the new stream version. The write is atomic: either every
	// event in the batch is persisted or none are. When the stored version
	// does not match expectedVersion, ErrConcurrencyConflict is returned
	// without retrying, so the caller can reload and retry.
	Append(ctx context.Context, streamID string, expectedVersion int, events []DomainEvent) (int, error)

	// Read returns the stream's events with version > fromVersion, ordered
	// by version ascending. fromVersion = 0 reads the whole stream.
	Read(ctx context.Context, streamID string, fromVersion int) ([]DomainEvent, error)
}
