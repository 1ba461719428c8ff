package invoicing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/domain/tax"
	"github.com/shopspring/decimal"
)

// InvoiceAggregateType is the aggregate type name used in stream IDs
const InvoiceAggregateType = "Invoice"

// InvoiceStatus represents the lifecycle status of an invoice. Status is
// never set by a command directly; it is always the result of folding
// payment events.
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"
	InvoiceStatusApproved      InvoiceStatus = "APPROVED"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	InvoiceStatusCancelled     InvoiceStatus = "CANCELLED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusApproved, InvoiceStatusPartiallyPaid,
		InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// CanRecordPayment returns true if payments can be recorded in this status
func (s InvoiceStatus) CanRecordPayment() bool {
	return s == InvoiceStatusApproved || s == InvoiceStatusPartiallyPaid
}

// LineItem is one billable line of an invoice
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// Invoice is a customer invoice aggregate root
type Invoice struct {
	shared.AggregateBase
	InvoiceNumber string
	CustomerID    uuid.UUID
	LineItems     []LineItem
	Subtotal      decimal.Decimal
	TaxRate       decimal.Decimal
	TaxAmount     decimal.Decimal
	GrandTotal    decimal.Decimal
	PaidAmount    decimal.Decimal
	Status        InvoiceStatus
	CancelReason  string
}

// NewInvoice creates an empty invoice aggregate for rehydration or first use
func NewInvoice(tenantID, invoiceID uuid.UUID) *Invoice {
	return &Invoice{
		AggregateBase: shared.NewAggregateBase(tenantID, invoiceID),
	}
}

// AggregateType returns the aggregate type name
func (i *Invoice) AggregateType() string {
	return InvoiceAggregateType
}

// OutstandingAmount returns the remaining balance due
func (i *Invoice) OutstandingAmount() decimal.Decimal {
	return i.GrandTotal.Sub(i.PaidAmount)
}

// Create validates the line items, computes totals through the tax engine
// and records the invoice creation
func (i *Invoice) Create(invoiceNumber string, customerID uuid.UUID, items []LineItem, taxRate decimal.Decimal) error {
	if i.Status != "" {
		return shared.NewDomainError("INVOICE_EXISTS", fmt.Sprintf("Invoice %s already exists", i.ID))
	}
	if invoiceNumber == "" {
		return shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if customerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if len(items) == 0 {
		return shared.NewDomainError("INVALID_LINE_ITEMS", "An invoice requires at least one line item")
	}
	if taxRate.IsNegative() {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}

	subtotal := decimal.Zero
	normalized := make([]LineItem, len(items))
	for idx, item := range items {
		if item.Description == "" {
			return shared.NewDomainError("INVALID_LINE_ITEMS", fmt.Sprintf("Line item %d has no description", idx+1))
		}
		if !item.Quantity.IsPositive() {
			return shared.NewDomainError("INVALID_LINE_ITEMS", fmt.Sprintf("Line item %d quantity must be positive", idx+1))
		}
		if item.UnitPrice.IsNegative() {
			return shared.NewDomainError("INVALID_LINE_ITEMS", fmt.Sprintf("Line item %d unit price cannot be negative", idx+1))
		}
		amount := item.Quantity.Mul(item.UnitPrice).Round(2)
		normalized[idx] = LineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      amount,
		}
		subtotal = subtotal.Add(amount)
	}

	taxAmount := tax.CalculateVAT(subtotal, taxRate)
	grandTotal := subtotal.Add(taxAmount)

	return shared.Raise(i, &i.AggregateBase,
		NewInvoiceCreatedEvent(i, invoiceNumber, customerID, normalized, subtotal, taxRate, taxAmount, grandTotal))
}

// Approve moves a draft invoice into the approved state
func (i *Invoice) Approve() error {
	if i.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Only draft invoices can be approved, invoice %s is %s", i.InvoiceNumber, i.Status))
	}
	return shared.Raise(i, &i.AggregateBase, NewInvoiceApprovedEvent(i))
}

// RecordPayment records a payment against the invoice. A payment that would
// push paidAmount past grandTotal is rejected with an overpayment error;
// when the remaining balance reaches zero an InvoiceFullyPaid event is
// additionally raised, exactly once.
func (i *Invoice) RecordPayment(paymentID uuid.UUID, amount decimal.Decimal) error {
	if !i.Status.CanRecordPayment() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot record a payment on invoice %s in %s status", i.InvoiceNumber, i.Status))
	}
	if paymentID == uuid.Nil {
		return shared.NewDomainError("INVALID_PAYMENT", "Payment ID cannot be empty")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.Add(i.PaidAmount).GreaterThan(i.GrandTotal) {
		return shared.NewDomainError("OVERPAYMENT",
			fmt.Sprintf("Payment of %s exceeds outstanding balance %s on invoice %s",
				amount.StringFixed(2), i.OutstandingAmount().StringFixed(2), i.InvoiceNumber))
	}

	newPaid := i.PaidAmount.Add(amount)
	if err := shared.Raise(i, &i.AggregateBase, NewInvoicePaymentRecordedEvent(i, paymentID, amount, newPaid)); err != nil {
		return err
	}
	if i.OutstandingAmount().IsZero() {
		return shared.Raise(i, &i.AggregateBase, NewInvoiceFullyPaidEvent(i))
	}
	return nil
}

// Cancel cancels an invoice that has not received any payment
func (i *Invoice) Cancel(reason string) error {
	if i.Status != InvoiceStatusDraft && i.Status != InvoiceStatusApproved {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot cancel invoice %s in %s status", i.InvoiceNumber, i.Status))
	}
	if !i.PaidAmount.IsZero() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot cancel invoice %s with recorded payments", i.InvoiceNumber))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancellation reason is required")
	}
	return shared.Raise(i, &i.AggregateBase, NewInvoiceCancelledEvent(i, reason))
}

// Apply folds a single event into the invoice state
func (i *Invoice) Apply(event shared.DomainEvent) error {
	switch e := event.(type) {
	case *InvoiceCreatedEvent:
		i.InvoiceNumber = e.InvoiceNumber
		i.CustomerID = e.CustomerID
		i.LineItems = e.LineItems
		i.Subtotal = e.Subtotal
		i.TaxRate = e.TaxRate
		i.TaxAmount = e.TaxAmount
		i.GrandTotal = e.GrandTotal
		i.PaidAmount = decimal.Zero
		i.Status = InvoiceStatusDraft
	case *InvoiceApprovedEvent:
		i.Status = InvoiceStatusApproved
	case *InvoicePaymentRecordedEvent:
		i.PaidAmount = e.NewPaidAmount
		i.Status = InvoiceStatusPartiallyPaid
	case *InvoiceFullyPaidEvent:
		i.Status = InvoiceStatusPaid
	case *InvoiceCancelledEvent:
		i.Status = InvoiceStatusCancelled
		i.CancelReason = e.Reason
	default:
		return fmt.Errorf("invoice cannot apply event type %T", event)
	}
	return nil
}

// Ensure Invoice implements Aggregate
var _ shared.Aggregate = (*Invoice)(nil)
