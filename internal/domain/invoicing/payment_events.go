package invoicing

import (
	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/domain/shared/valueobject"
)

// PaymentCreatedEvent is raised when a new pending payment is created
type PaymentCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID *uuid.UUID        `json:"invoice_id,omitempty"`
	Amount    valueobject.Money `json:"amount"`
	Method    PaymentMethod     `json:"method"`
}

// EventType returns the event type name
func (e *PaymentCreatedEvent) EventType() string {
	return "PaymentCreated"
}

// NewPaymentCreatedEvent creates a new PaymentCreatedEvent
func NewPaymentCreatedEvent(p *Payment, invoiceID *uuid.UUID, amount valueobject.Money, method PaymentMethod) *PaymentCreatedEvent {
	return &PaymentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentCreated", PaymentAggregateType, p.ID, p.TenantID),
		InvoiceID:       invoiceID,
		Amount:          amount,
		Method:          method,
	}
}

// PaymentCompletedEvent is raised when a pending payment completes
type PaymentCompletedEvent struct {
	shared.BaseDomainEvent
	InvoiceID *uuid.UUID        `json:"invoice_id,omitempty"`
	Amount    valueobject.Money `json:"amount"`
}

// EventType returns the event type name
func (e *PaymentCompletedEvent) EventType() string {
	return "PaymentCompleted"
}

// NewPaymentCompletedEvent creates a new PaymentCompletedEvent
func NewPaymentCompletedEvent(p *Payment) *PaymentCompletedEvent {
	return &PaymentCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentCompleted", PaymentAggregateType, p.ID, p.TenantID),
		InvoiceID:       p.InvoiceID,
		Amount:          p.Amount,
	}
}

// PaymentFailedEvent is raised when a pending payment fails
type PaymentFailedEvent struct {
	shared.BaseDomainEvent
	Reason string `json:"reason"`
}

// EventType returns the event type name
func (e *PaymentFailedEvent) EventType() string {
	return "PaymentFailed"
}

// NewPaymentFailedEvent creates a new PaymentFailedEvent
func NewPaymentFailedEvent(p *Payment, reason string) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentFailed", PaymentAggregateType, p.ID, p.TenantID),
		Reason:          reason,
	}
}

// PaymentReconciledEvent is raised when a completed payment is matched
// against a bank statement entry
type PaymentReconciledEvent struct {
	shared.BaseDomainEvent
	BankReference string `json:"bank_reference"`
}

// EventType returns the event type name
func (e *PaymentReconciledEvent) EventType() string {
	return "PaymentReconciled"
}

// NewPaymentReconciledEvent creates a new PaymentReconciledEvent
func NewPaymentReconciledEvent(p *Payment, bankReference string) *PaymentReconciledEvent {
	return &PaymentReconciledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentReconciled", PaymentAggregateType, p.ID, p.TenantID),
		BankReference:   bankReference,
	}
}

// PaymentReversedEvent is raised when a completed payment is voided
type PaymentReversedEvent struct {
	shared.BaseDomainEvent
	Reason string `json:"reason"`
}

// EventType returns the event type name
func (e *PaymentReversedEvent) EventType() string {
	return "PaymentReversed"
}

// NewPaymentReversedEvent creates a new PaymentReversedEvent
func NewPaymentReversedEvent(p *Payment, reason string) *PaymentReversedEvent {
	return &PaymentReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentReversed", PaymentAggregateType, p.ID, p.TenantID),
		Reason:          reason,
	}
}
