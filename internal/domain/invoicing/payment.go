package invoicing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/domain/shared/valueobject"
)

// PaymentAggregateType is the aggregate type name used in stream IDs
const PaymentAggregateType = "Payment"

// PaymentStatus represents the state of a payment.
// Valid transitions: Pending -> Completed | Failed,
// Completed -> Reconciled | Reversed. Everything else is rejected.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusCompleted  PaymentStatus = "COMPLETED"
	PaymentStatusFailed     PaymentStatus = "FAILED"
	PaymentStatusReconciled PaymentStatus = "RECONCILED"
	PaymentStatusReversed   PaymentStatus = "REVERSED"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed,
		PaymentStatusReconciled, PaymentStatusReversed:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transitions are allowed
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusFailed || s == PaymentStatusReconciled || s == PaymentStatusReversed
}

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
	PaymentMethodMobileMoney  PaymentMethod = "MOBILE_MONEY"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodBankTransfer, PaymentMethodCard, PaymentMethodCash,
		PaymentMethodCheque, PaymentMethodMobileMoney:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// Payment is a customer payment aggregate root. It may optionally reference
// an invoice; applying the payment to that invoice is a separate, secondary
// step coordinated by the application layer. The amount carries its
// currency because payments arrive in whatever currency the payer used,
// unlike ledger figures which are kept in the books currency.
type Payment struct {
	shared.AggregateBase
	InvoiceID      *uuid.UUID
	Amount         valueobject.Money
	Method         PaymentMethod
	Status         PaymentStatus
	BankReference  string
	FailureReason  string
	ReversalReason string
}

// NewPayment creates an empty payment aggregate for rehydration or first use
func NewPayment(tenantID, paymentID uuid.UUID) *Payment {
	return &Payment{
		AggregateBase: shared.NewAggregateBase(tenantID, paymentID),
	}
}

// AggregateType returns the aggregate type name
func (p *Payment) AggregateType() string {
	return PaymentAggregateType
}

// Create validates and records the creation of a pending payment
func (p *Payment) Create(invoiceID *uuid.UUID, amount valueobject.Money, method PaymentMethod) error {
	if p.Status != "" {
		return shared.NewDomainError("PAYMENT_EXISTS", fmt.Sprintf("Payment %s already exists", p.ID))
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Payment method %q is not valid", method))
	}
	if invoiceID != nil && *invoiceID == uuid.Nil {
		return shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be the nil UUID")
	}

	return shared.Raise(p, &p.AggregateBase, NewPaymentCreatedEvent(p, invoiceID, amount, method))
}

// Complete marks a pending payment as completed
func (p *Payment) Complete() error {
	if p.Status != PaymentStatusPending {
		return p.invalidTransition(PaymentStatusCompleted)
	}
	return shared.Raise(p, &p.AggregateBase, NewPaymentCompletedEvent(p))
}

// Fail marks a pending payment as failed
func (p *Payment) Fail(reason string) error {
	if p.Status != PaymentStatusPending {
		return p.invalidTransition(PaymentStatusFailed)
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Failure reason is required")
	}
	return shared.Raise(p, &p.AggregateBase, NewPaymentFailedEvent(p, reason))
}

// Reconcile matches a completed payment against a bank statement entry
func (p *Payment) Reconcile(bankReference string) error {
	if p.Status != PaymentStatusCompleted {
		return p.invalidTransition(PaymentStatusReconciled)
	}
	if bankReference == "" {
		return shared.NewDomainError("INVALID_BANK_REFERENCE", "Bank reference is required")
	}
	return shared.Raise(p, &p.AggregateBase, NewPaymentReconciledEvent(p, bankReference))
}

// Reverse voids a completed payment
func (p *Payment) Reverse(reason string) error {
	if p.Status != PaymentStatusCompleted {
		return p.invalidTransition(PaymentStatusReversed)
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Reversal reason is required")
	}
	return shared.Raise(p, &p.AggregateBase, NewPaymentReversedEvent(p, reason))
}

func (p *Payment) invalidTransition(target PaymentStatus) error {
	return shared.NewDomainError("INVALID_STATE_TRANSITION",
		fmt.Sprintf("Payment %s cannot transition from %s to %s", p.ID, p.Status, target))
}

// Apply folds a single event into the payment state
func (p *Payment) Apply(event shared.DomainEvent) error {
	switch e := event.(type) {
	case *PaymentCreatedEvent:
		p.InvoiceID = e.InvoiceID
		p.Amount = e.Amount
		p.Method = e.Method
		p.Status = PaymentStatusPending
	case *PaymentCompletedEvent:
		p.Status = PaymentStatusCompleted
	case *PaymentFailedEvent:
		p.Status = PaymentStatusFailed
		p.FailureReason = e.Reason
	case *PaymentReconciledEvent:
		p.Status = PaymentStatusReconciled
		p.BankReference = e.BankReference
	case *PaymentReversedEvent:
		p.Status = PaymentStatusReversed
		p.ReversalReason = e.Reason
	default:
		return fmt.Errorf("payment cannot apply event type %T", event)
	}
	return nil
}

// Ensure Payment implements Aggregate
var _ shared.Aggregate = (*Payment)(nil)
