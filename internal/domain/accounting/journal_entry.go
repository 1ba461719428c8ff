package accounting

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// JournalEntryAggregateType is the aggregate type name used in stream IDs
const JournalEntryAggregateType = "JournalEntry"

// EntryStatus represents the lifecycle status of a journal entry
type EntryStatus string

const (
	EntryStatusDraft    EntryStatus = "DRAFT"
	EntryStatusPosted   EntryStatus = "POSTED"
	EntryStatusReversed EntryStatus = "REVERSED"
)

// IsValid checks if the status is a valid EntryStatus
func (s EntryStatus) IsValid() bool {
	switch s {
	case EntryStatusDraft, EntryStatusPosted, EntryStatusReversed:
		return true
	}
	return false
}

// String returns the string representation of EntryStatus
func (s EntryStatus) String() string {
	return string(s)
}

// JournalLine is one debit or credit line of a journal entry. Exactly one
// of Debit or Credit is positive; the other is zero.
type JournalLine struct {
	AccountID uuid.UUID       `json:"account_id"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

// Swapped returns the line with debit and credit exchanged
func (l JournalLine) Swapped() JournalLine {
	return JournalLine{AccountID: l.AccountID, Debit: l.Credit, Credit: l.Debit}
}

// JournalEntry is a double-entry bookkeeping record aggregate root.
// Posted entries are immutable; corrections happen via a reversing entry
// with debits and credits swapped.
type JournalEntry struct {
	shared.AggregateBase
	EntryNumber    string
	FiscalPeriod   string
	Status         EntryStatus
	Lines          []JournalLine
	ReversalOf     *uuid.UUID // set on a synthetically created reversing entry
	ReversedBy     *uuid.UUID // set on the original once reversed
	ReversalReason string
}

// NewJournalEntry creates an empty journal entry aggregate for rehydration
// or first use
func NewJournalEntry(tenantID, entryID uuid.UUID) *JournalEntry {
	return &JournalEntry{
		AggregateBase: shared.NewAggregateBase(tenantID, entryID),
	}
}

// AggregateType returns the aggregate type name
func (j *JournalEntry) AggregateType() string {
	return JournalEntryAggregateType
}

// TotalDebit returns the sum of all debit amounts
func (j *JournalEntry) TotalDebit() decimal.Decimal {
	total := decimal.Zero
	for _, line := range j.Lines {
		total = total.Add(line.Debit)
	}
	return total
}

// TotalCredit returns the sum of all credit amounts
func (j *JournalEntry) TotalCredit() decimal.Decimal {
	total := decimal.Zero
	for _, line := range j.Lines {
		total = total.Add(line.Credit)
	}
	return total
}

// IsBalanced returns true when total debits equal total credits exactly
func (j *JournalEntry) IsBalanced() bool {
	return j.TotalDebit().Equal(j.TotalCredit())
}

// Create validates the lines and records the entry creation. Balance is not
// enforced here: a draft may be unbalanced until it is posted.
func (j *JournalEntry) Create(entryNumber, fiscalPeriod string, lines []JournalLine, reversalOf *uuid.UUID) error {
	if j.Status != "" {
		return shared.NewDomainError("ENTRY_EXISTS", fmt.Sprintf("Journal entry %s already exists", j.ID))
	}
	if entryNumber == "" {
		return shared.NewDomainError("INVALID_ENTRY_NUMBER", "Entry number cannot be empty")
	}
	if fiscalPeriod == "" {
		return shared.NewDomainError("INVALID_FISCAL_PERIOD", "Fiscal period cannot be empty")
	}
	if len(lines) < 2 {
		return shared.NewDomainError("INVALID_LINES", "A journal entry requires at least two lines")
	}
	for i, line := range lines {
		if line.AccountID == uuid.Nil {
			return shared.NewDomainError("INVALID_LINES", fmt.Sprintf("Line %d has no account", i+1))
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return shared.NewDomainError("INVALID_LINES", fmt.Sprintf("Line %d has a negative amount", i+1))
		}
		if line.Debit.IsPositive() == line.Credit.IsPositive() {
			return shared.NewDomainError("INVALID_LINES",
				fmt.Sprintf("Line %d must have exactly one of debit or credit set", i+1))
		}
	}

	return shared.Raise(j, &j.AggregateBase, NewJournalEntryCreatedEvent(j, entryNumber, fiscalPeriod, lines, reversalOf))
}

// Post validates the double-entry invariant and marks the entry posted.
// The tolerance is zero: debits must equal credits exactly.
func (j *JournalEntry) Post() error {
	if j.Status != EntryStatusDraft {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Only draft entries can be posted, entry %s is %s", j.EntryNumber, j.Status))
	}
	if !j.IsBalanced() {
		return shared.NewDomainError("UNBALANCED_ENTRY",
			fmt.Sprintf("Entry %s is unbalanced: debits %s, credits %s",
				j.EntryNumber, j.TotalDebit().StringFixed(2), j.TotalCredit().StringFixed(2)))
	}

	return shared.Raise(j, &j.AggregateBase, NewJournalEntryPostedEvent(j))
}

// Reverse marks a posted entry as reversed and records the id of the
// reversing entry the caller will create with swapped lines
func (j *JournalEntry) Reverse(reason string, reversingEntryID uuid.UUID) error {
	if j.Status != EntryStatusPosted {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Only posted entries can be reversed, entry %s is %s", j.EntryNumber, j.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Reversal reason is required")
	}
	if reversingEntryID == uuid.Nil {
		return shared.NewDomainError("INVALID_REVERSING_ENTRY", "Reversing entry ID cannot be empty")
	}

	return shared.Raise(j, &j.AggregateBase, NewJournalEntryReversedEvent(j, reason, reversingEntryID))
}

// SwappedLines returns a copy of the entry's lines with debits and credits
// exchanged, for building the reversing entry
func (j *JournalEntry) SwappedLines() []JournalLine {
	swapped := make([]JournalLine, len(j.Lines))
	for i, line := range j.Lines {
		swapped[i] = line.Swapped()
	}
	return swapped
}

// Apply folds a single event into the journal entry state
func (j *JournalEntry) Apply(event shared.DomainEvent) error {
	switch e := event.(type) {
	case *JournalEntryCreatedEvent:
		j.EntryNumber = e.EntryNumber
		j.FiscalPeriod = e.FiscalPeriod
		j.Lines = e.Lines
		j.ReversalOf = e.ReversalOf
		j.Status = EntryStatusDraft
	case *JournalEntryPostedEvent:
		j.Status = EntryStatusPosted
	case *JournalEntryReversedEvent:
		j.Status = EntryStatusReversed
		j.ReversedBy = &e.ReversingEntryID
		j.ReversalReason = e.Reason
	default:
		return fmt.Errorf("journal entry cannot apply event type %T", event)
	}
	return nil
}

// Ensure JournalEntry implements Aggregate
var _ shared.Aggregate = (*JournalEntry)(nil)
