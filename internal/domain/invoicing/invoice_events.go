package invoicing

import (
	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceCreatedEvent is raised when a new invoice is drafted
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	LineItems     []LineItem      `json:"line_items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}

// EventType returns the event type name
func (e *InvoiceCreatedEvent) EventType() string {
	return "InvoiceCreated"
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(i *Invoice, invoiceNumber string, customerID uuid.UUID, items []LineItem, subtotal, taxRate, taxAmount, grandTotal decimal.Decimal) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceCreated", InvoiceAggregateType, i.ID, i.TenantID),
		InvoiceNumber:   invoiceNumber,
		CustomerID:      customerID,
		LineItems:       items,
		Subtotal:        subtotal,
		TaxRate:         taxRate,
		TaxAmount:       taxAmount,
		GrandTotal:      grandTotal,
	}
}

// InvoiceApprovedEvent is raised when a draft invoice is approved
type InvoiceApprovedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
}

// EventType returns the event type name
func (e *InvoiceApprovedEvent) EventType() string {
	return "InvoiceApproved"
}

// NewInvoiceApprovedEvent creates a new InvoiceApprovedEvent
func NewInvoiceApprovedEvent(i *Invoice) *InvoiceApprovedEvent {
	return &InvoiceApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceApproved", InvoiceAggregateType, i.ID, i.TenantID),
		InvoiceNumber:   i.InvoiceNumber,
	}
}

// InvoicePaymentRecordedEvent is raised when a payment is applied to an invoice
type InvoicePaymentRecordedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	PaymentID     uuid.UUID       `json:"payment_id"`
	Amount        decimal.Decimal `json:"amount"`
	NewPaidAmount decimal.Decimal `json:"new_paid_amount"`
}

// EventType returns the event type name
func (e *InvoicePaymentRecordedEvent) EventType() string {
	return "InvoicePaymentRecorded"
}

// NewInvoicePaymentRecordedEvent creates a new InvoicePaymentRecordedEvent
func NewInvoicePaymentRecordedEvent(i *Invoice, paymentID uuid.UUID, amount, newPaidAmount decimal.Decimal) *InvoicePaymentRecordedEvent {
	return &InvoicePaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoicePaymentRecorded", InvoiceAggregateType, i.ID, i.TenantID),
		InvoiceNumber:   i.InvoiceNumber,
		PaymentID:       paymentID,
		Amount:          amount,
		NewPaidAmount:   newPaidAmount,
	}
}

// InvoiceFullyPaidEvent is raised exactly once, when the outstanding
// balance reaches zero; projections interpret it as status = Paid
type InvoiceFullyPaidEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}

// EventType returns the event type name
func (e *InvoiceFullyPaidEvent) EventType() string {
	return "InvoiceFullyPaid"
}

// NewInvoiceFullyPaidEvent creates a new InvoiceFullyPaidEvent
func NewInvoiceFullyPaidEvent(i *Invoice) *InvoiceFullyPaidEvent {
	return &InvoiceFullyPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceFullyPaid", InvoiceAggregateType, i.ID, i.TenantID),
		InvoiceNumber:   i.InvoiceNumber,
		GrandTotal:      i.GrandTotal,
	}
}

// InvoiceCancelledEvent is raised when an unpaid invoice is cancelled
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
	Reason        string `json:"reason"`
}

// EventType returns the event type name
func (e *InvoiceCancelledEvent) EventType() string {
	return "InvoiceCancelled"
}

// NewInvoiceCancelledEvent creates a new InvoiceCancelledEvent
func NewInvoiceCancelledEvent(i *Invoice, reason string) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceCancelled", InvoiceAggregateType, i.ID, i.TenantID),
		InvoiceNumber:   i.InvoiceNumber,
		Reason:          reason,
	}
}
