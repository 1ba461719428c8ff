package eventstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/shared"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StoredEvent is the persisted form of a domain event. Rows are append-only:
// they are never updated or deleted. The unique (stream_id, version) index
// is the backstop that makes optimistic-concurrency appends safe even under
// racing transactions.
type StoredEvent struct {
	Sequence      uint64    `gorm:"primaryKey;autoIncrement"`
	EventID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	StreamID      string    `gorm:"size:150;not null;uniqueIndex:idx_stream_version,priority:1"`
	Version       int       `gorm:"not null;uniqueIndex:idx_stream_version,priority:2"`
	TenantID      uuid.UUID `gorm:"type:uuid;not null;index"`
	AggregateType string    `gorm:"size:50;not null"`
	AggregateID   uuid.UUID `gorm:"type:uuid;not null;index"`
	EventType     string    `gorm:"size:100;not null;index"`
	Payload       []byte    `gorm:"type:jsonb;not null"`
	Timestamp     time.Time `gorm:"not null"`
	CorrelationID uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (StoredEvent) TableName() string {
	return "stored_events"
}

// GormEventStore is the relational implementation of shared.EventStore
type GormEventStore struct {
	db         *gorm.DB
	serializer *Serializer
	logger     *zap.Logger
}

// NewGormEventStore creates a new GORM-backed event store
func NewGormEventStore(db *gorm.DB, serializer *Serializer, logger *zap.Logger) *GormEventStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormEventStore{
		db:         db,
		serializer: serializer,
		logger:     logger,
	}
}

// Append persists the batch contiguously after expectedVersion within one
// transaction. A stale expectedVersion, or a concurrent writer hitting the
// unique (stream_id, version) index first, surfaces as ErrConcurrencyConflict.
func (s *GormEventStore) Append(ctx context.Context, streamID string, expectedVersion int, events []shared.DomainEvent) (int, error) {
	if len(events) == 0 {
		return expectedVersion, nil
	}

	rows := make([]StoredEvent, 0, len(events))
	for i, event := range events {
		wantVersion := expectedVersion + i + 1
		if event.Version() != wantVersion {
			return 0, fmt.Errorf("event %s has version %d, expected %d", event.EventType(), event.Version(), wantVersion)
		}
		payload, err := s.serializer.Serialize(event)
		if err != nil {
			return 0, fmt.Errorf("failed to serialize event %s: %w", event.EventType(), err)
		}
		rows = append(rows, StoredEvent{
			EventID:       event.EventID(),
			StreamID:      streamID,
			Version:       event.Version(),
			TenantID:      event.TenantID(),
			AggregateType: event.AggregateType(),
			AggregateID:   event.AggregateID(),
			EventType:     event.EventType(),
			Payload:       payload,
			Timestamp:     event.OccurredAt(),
			CorrelationID: event.CorrelationID(),
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&StoredEvent{}).
			Where("stream_id = ?", streamID).
			Select("COALESCE(MAX(version), 0)").
			Scan(&currentVersion).Error; err != nil {
			return fmt.Errorf("failed to read stream version: %w", err)
		}
		if currentVersion != expectedVersion {
			return shared.ErrConcurrencyConflict
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent append won the race between our version check
			// and the insert; the unique index caught it
			return 0, shared.ErrConcurrencyConflict
		}
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			return 0, err
		}
		s.logger.Error("event append failed",
			zap.String("stream_id", streamID),
			zap.Int("expected_version", expectedVersion),
			zap.Error(err),
		)
		return 0, fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}

	return expectedVersion + len(events), nil
}

// Read returns the stream's events with version > fromVersion in order
func (s *GormEventStore) Read(ctx context.Context, streamID string, fromVersion int) ([]shared.DomainEvent, error) {
	var rows []StoredEvent
	if err := s.db.WithContext(ctx).
		Where("stream_id = ? AND version > ?", streamID, fromVersion).
		Order("version ASC").
		Find(&rows).Error; err != nil {
		s.logger.Error("event read failed",
			zap.String("stream_id", streamID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}

	events := make([]shared.DomainEvent, 0, len(rows))
	for _, row := range rows {
		event, err := s.serializer.Deserialize(row.EventType, row.Payload)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize event %d of stream %s: %w", row.Version, streamID, err)
		}
		events = append(events, event)
	}
	return events, nil
}

// ReadAll returns every stored event in append order; used to rebuild
// projections from scratch
func (s *GormEventStore) ReadAll(ctx context.Context, afterSequence uint64, limit int) ([]shared.DomainEvent, uint64, error) {
	var rows []StoredEvent
	query := s.db.WithContext(ctx).
		Where("sequence > ?", afterSequence).
		Order("sequence ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, afterSequence, fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}

	events := make([]shared.DomainEvent, 0, len(rows))
	lastSequence := afterSequence
	for _, row := range rows {
		event, err := s.serializer.Deserialize(row.EventType, row.Payload)
		if err != nil {
			return nil, lastSequence, fmt.Errorf("failed to deserialize event %s: %w", row.EventID, err)
		}
		events = append(events, event)
		lastSequence = row.Sequence
	}
	return events, lastSequence, nil
}

// Ensure GormEventStore implements EventStore
var _ shared.EventStore = (*GormEventStore)(nil)
