package accounting

import (
	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// JournalEntryCreatedEvent is raised when a new journal entry is drafted
type JournalEntryCreatedEvent struct {
	shared.BaseDomainEvent
	EntryNumber  string        `json:"entry_number"`
	FiscalPeriod string        `json:"fiscal_period"`
	Lines        []JournalLine `json:"lines"`
	ReversalOf   *uuid.UUID    `json:"reversal_of,omitempty"`
}

// EventType returns the event type name
func (e *JournalEntryCreatedEvent) EventType() string {
	return "JournalEntryCreated"
}

// NewJournalEntryCreatedEvent creates a new JournalEntryCreatedEvent
func NewJournalEntryCreatedEvent(j *JournalEntry, entryNumber, fiscalPeriod string, lines []JournalLine, reversalOf *uuid.UUID) *JournalEntryCreatedEvent {
	return &JournalEntryCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("JournalEntryCreated", JournalEntryAggregateType, j.ID, j.TenantID),
		EntryNumber:     entryNumber,
		FiscalPeriod:    fiscalPeriod,
		Lines:           lines,
		ReversalOf:      reversalOf,
	}
}

// JournalEntryPostedEvent is raised when a balanced draft entry is posted
type JournalEntryPostedEvent struct {
	shared.BaseDomainEvent
	EntryNumber  string          `json:"entry_number"`
	FiscalPeriod string          `json:"fiscal_period"`
	Lines        []JournalLine   `json:"lines"`
	TotalDebit   decimal.Decimal `json:"total_debit"`
	TotalCredit  decimal.Decimal `json:"total_credit"`
}

// EventType returns the event type name
func (e *JournalEntryPostedEvent) EventType() string {
	return "JournalEntryPosted"
}

// NewJournalEntryPostedEvent creates a new JournalEntryPostedEvent
func NewJournalEntryPostedEvent(j *JournalEntry) *JournalEntryPostedEvent {
	return &JournalEntryPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("JournalEntryPosted", JournalEntryAggregateType, j.ID, j.TenantID),
		EntryNumber:     j.EntryNumber,
		FiscalPeriod:    j.FiscalPeriod,
		Lines:           j.Lines,
		TotalDebit:      j.TotalDebit(),
		TotalCredit:     j.TotalCredit(),
	}
}

// JournalEntryReversedEvent is raised when a posted entry is reversed
type JournalEntryReversedEvent struct {
	shared.BaseDomainEvent
	EntryNumber      string    `json:"entry_number"`
	Reason           string    `json:"reason"`
	ReversingEntryID uuid.UUID `json:"reversing_entry_id"`
}

// EventType returns the event type name
func (e *JournalEntryReversedEvent) EventType() string {
	return "JournalEntryReversed"
}

// NewJournalEntryReversedEvent creates a new JournalEntryReversedEvent
func NewJournalEntryReversedEvent(j *JournalEntry, reason string, reversingEntryID uuid.UUID) *JournalEntryReversedEvent {
	return &JournalEntryReversedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("JournalEntryReversed", JournalEntryAggregateType, j.ID, j.TenantID),
		EntryNumber:      j.EntryNumber,
		Reason:           reason,
		ReversingEntryID: reversingEntryID,
	}
}
