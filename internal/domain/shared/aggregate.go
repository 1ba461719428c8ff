package shared

import (
	"github.com/google/uuid"
)

// Aggregate is the base interface for all event-sourced aggregate roots.
// An aggregate's state is derived entirely by folding its own event stream:
// commands validate against current state and raise new events; Apply is the
// pure reducer that mutates in-memory state from a single event.
type Aggregate interface {
	GetID() uuid.UUID
	GetTenantID() uuid.UUID
	AggregateType() string
	// GetVersion returns the version of the last applied event
	GetVersion() int
	SetVersion(version int)
	// UncommittedEvents returns events raised since the aggregate was loaded
	UncommittedEvents() []DomainEvent
	ClearUncommittedEvents()
	// Apply folds a single event into the aggregate state. It must be a pure
	// state transition: no validation, no side effects, no event emission.
	Apply(event DomainEvent) error
}

// AggregateBase provides common fields for event-sourced aggregate roots
type AggregateBase struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Version  int
	pending  []DomainEvent
}

// NewAggregateBase creates a new aggregate base at version zero
func NewAggregateBase(tenantID, id uuid.UUID) AggregateBase {
	return AggregateBase{
		ID:       id,
		TenantID: tenantID,
	}
}

// GetID returns the aggregate identifier
func (a *AggregateBase) GetID() uuid.UUID {
	return a.ID
}

// GetTenantID returns the owning tenant
func (a *AggregateBase) GetTenantID() uuid.UUID {
	return a.TenantID
}

// GetVersion returns the version of the last applied event
func (a *AggregateBase) GetVersion() int {
	return a.Version
}

// SetVersion sets the current version; used by the kernel during replay
func (a *AggregateBase) SetVersion(version int) {
	a.Version = version
}

// UncommittedEvents returns events raised since the aggregate was loaded
func (a *AggregateBase) UncommittedEvents() []DomainEvent {
	return a.pending
}

// ClearUncommittedEvents drops the pending events after they were persisted
func (a *AggregateBase) ClearUncommittedEvents() {
	a.pending = nil
}

// Raise assigns the next stream version to the event, folds it through the
// aggregate's reducer and records it as uncommitted. Command methods must
// fully validate before calling Raise so that a failed command leaves the
// aggregate unchanged.
func Raise(agg Aggregate, base *AggregateBase, event DomainEvent) error {
	event.SetVersion(base.Version + 1)
	if err := agg.Apply(event); err != nil {
		return err
	}
	base.Version++
	base.pending = append(base.pending, event)
	return nil
}

// LoadFromHistory rehydrates an aggregate by folding its ordered event
// stream from the beginning: state = fold(Apply, initialState, events)
func LoadFromHistory(agg Aggregate, events []DomainEvent) error {
	for _, event := range events {
		if err := agg.Apply(event); err != nil {
			return err
		}
		agg.SetVersion(event.Version())
	}
	return nil
}
