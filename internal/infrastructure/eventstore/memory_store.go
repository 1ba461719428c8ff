package eventstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/ledger/backend/internal/domain/shared"
)

// MemoryEventStore is an in-memory implementation of shared.EventStore.
// It is suitable for tests and single-process development wiring; it honors
// the same contract as the relational store, including atomic batches and
// optimistic-concurrency conflicts.
type MemoryEventStore struct {
	mu      sync.RWMutex
	streams map[string][]shared.DomainEvent
}

// NewMemoryEventStore creates a new in-memory event store
func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{
		streams: make(map[string][]shared.DomainEvent),
	}
}

// Append persists the batch after expectedVersion or returns a conflict
func (s *MemoryEventStore) Append(ctx context.Context, streamID string, expectedVersion int, events []shared.DomainEvent) (int, error) {
	if len(events) == 0 {
		return expectedVersion, nil
	}
	for i, event := range events {
		wantVersion := expectedVersion + i + 1
		if event.Version() != wantVersion {
			return 0, fmt.Errorf("event %s has version %d, expected %d", event.EventType(), event.Version(), wantVersion)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stream := s.streams[streamID]
	if len(stream) != expectedVersion {
		return 0, shared.ErrConcurrencyConflict
	}
	s.streams[streamID] = append(stream, events...)
	return len(s.streams[streamID]), nil
}

// Read returns the stream's events with version > fromVersion in order
func (s *MemoryEventStore) Read(ctx context.Context, streamID string, fromVersion int) ([]shared.DomainEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stream := s.streams[streamID]
	if fromVersion >= len(stream) {
		return nil, nil
	}
	out := make([]shared.DomainEvent, len(stream)-fromVersion)
	copy(out, stream[fromVersion:])
	return out, nil
}

// StreamVersion returns the current version of a stream
func (s *MemoryEventStore) StreamVersion(streamID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.streams[streamID])
}

// Ensure MemoryEventStore implements EventStore
var _ shared.EventStore = (*MemoryEventStore)(nil)
