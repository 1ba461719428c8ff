package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// defaultConflictRetries bounds how often a command is replayed after an
// optimistic concurrency conflict before the conflict is surfaced.
const defaultConflictRetries = 3

// Executor runs commands against event-sourced aggregates: read the
// stream, rehydrate, mutate, append with optimistic concurrency, publish.
// Only concurrency conflicts are retried; domain rejections and
// infrastructure failures return immediately.
type Executor struct {
	store     shared.EventStore
	publisher shared.EventPublisher
	retries   int
	logger    *zap.Logger
}

// Option configures an Executor
type Option func(*Executor)

// WithConflictRetries overrides the conflict retry budget. Values below 1
// keep the default.
func WithConflictRetries(n int) Option {
	return func(ex *Executor) {
		if n > 0 {
			ex.retries = n
		}
	}
}

// NewExecutor creates a command executor
func NewExecutor(store shared.EventStore, publisher shared.EventPublisher, logger *zap.Logger, opts ...Option) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	ex := &Executor{store: store, publisher: publisher, retries: defaultConflictRetries, logger: logger}
	for _, opt := range opts {
		opt(ex)
	}
	return ex
}

// Execute runs one command against the stream identified by streamID.
// rehydrate receives the stream's history and returns the aggregate
// (history may be empty for creation commands); mutate applies the
// command and raises the resulting events. On ErrConcurrencyConflict the
// whole read-rehydrate-mutate cycle is repeated against the fresh stream,
// at most the executor's retry budget, so the command is re-validated
// against the state that actually won.
func Execute[T shared.Aggregate](ctx context.Context, ex *Executor, streamID string, rehydrate func(history []shared.DomainEvent) (T, error), mutate func(agg T) error) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= ex.retries; attempt++ {
		history, err := ex.store.Read(ctx, streamID, 0)
		if err != nil {
			return zero, fmt.Errorf("failed to read stream %s: %w", streamID, err)
		}

		agg, err := rehydrate(history)
		if err != nil {
			return zero, err
		}
		expected := agg.GetVersion()

		if err := mutate(agg); err != nil {
			return zero, err
		}

		pending := agg.UncommittedEvents()
		if len(pending) == 0 {
			return agg, nil
		}
		stampCorrelation(ctx, pending)

		if _, err := ex.store.Append(ctx, streamID, expected, pending); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				lastErr = err
				ex.logger.Debug("concurrency conflict, retrying command",
					zap.String("stream_id", streamID),
					zap.Int("attempt", attempt),
					zap.Int("expected_version", expected))
				continue
			}
			return zero, err
		}
		agg.ClearUncommittedEvents()

		if ex.publisher != nil {
			if err := ex.publisher.Publish(ctx, pending...); err != nil {
				// The events are durably appended; publishing is how
				// projections catch up synchronously. A failure here leaves
				// read models behind until rebuild, which outranks silence.
				return zero, fmt.Errorf("events appended but publish failed for %s: %w", streamID, err)
			}
		}
		return agg, nil
	}

	ex.logger.Warn("command exhausted conflict retries",
		zap.String("stream_id", streamID),
		zap.Int("retries", ex.retries))
	return zero, lastErr
}

// stampCorrelation links the batch to the originating request. Request IDs
// that are not UUIDs are skipped rather than invented.
func stampCorrelation(ctx context.Context, events []shared.DomainEvent) {
	requestID := logger.GetRequestID(ctx)
	if requestID == "" {
		return
	}
	corrID, err := uuid.Parse(requestID)
	if err != nil {
		return
	}
	for _, event := range events {
		if event.CorrelationID() == uuid.Nil {
			event.SetCorrelationID(corrID)
		}
	}
}
