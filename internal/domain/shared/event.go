package shared

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents a state change that occurred in the domain.
// Events are immutable once appended to a stream and are strictly ordered
// per stream by their version.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	TenantID() uuid.UUID
	// Version is the event's position within its aggregate stream (1-based)
	Version() int
	SetVersion(version int)
	// CorrelationID links events produced by the same command/request
	CorrelationID() uuid.UUID
	SetCorrelationID(id uuid.UUID)
}

// BaseDomainEvent provides common fields for all domain events
type BaseDomainEvent struct {
	ID            uuid.UUID `json:"id"`
	Type          string    `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggID         uuid.UUID `json:"aggregate_id"`
	AggType       string    `json:"aggregate_type"`
	TenantIDValue uuid.UUID `json:"tenant_id"`
	StreamVersion int       `json:"version"`
	CorrID        uuid.UUID `json:"correlation_id,omitempty"`
}

// EventID returns the unique event identifier
func (e *BaseDomainEvent) EventID() uuid.UUID {
	return e.ID
}

// EventType returns the type of the event
func (e *BaseDomainEvent) EventType() string {
	return e.Type
}

// OccurredAt returns when the event occurred
func (e *BaseDomainEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID returns the ID of the aggregate that produced this event
func (e *BaseDomainEvent) AggregateID() uuid.UUID {
	return e.AggID
}

// AggregateType returns the type of the aggregate
func (e *BaseDomainEvent) AggregateType() string {
	return e.AggType
}

// TenantID returns the tenant ID
func (e *BaseDomainEvent) TenantID() uuid.UUID {
	return e.TenantIDValue
}

// Version returns the event's position within its aggregate stream
func (e *BaseDomainEvent) Version() int {
	return e.StreamVersion
}

// SetVersion sets the stream position; assigned by the aggregate when the
// event is raised, never after the event has been persisted
func (e *BaseDomainEvent) SetVersion(version int) {
	e.StreamVersion = version
}

// CorrelationID returns the correlation identifier
func (e *BaseDomainEvent) CorrelationID() uuid.UUID {
	return e.CorrID
}

// SetCorrelationID sets the correlation identifier
func (e *BaseDomainEvent) SetCorrelationID(id uuid.UUID) {
	e.CorrID = id
}

// NewBaseDomainEvent creates a new base domain event
func NewBaseDomainEvent(eventType, aggType string, aggID, tenantID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:            uuid.New(),
		Type:          eventType,
		Timestamp:     time.Now(),
		AggID:         aggID,
		AggType:       aggType,
		TenantIDValue: tenantID,
	}
}

// StreamID builds the canonical stream identifier for an aggregate instance.
// Format: {tenantID}:{aggregateType}:{aggregateID}
func StreamID(tenantID uuid.UUID, aggregateType string, aggregateID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", tenantID, aggregateType, aggregateID)
}
