package eventstore

import (
	"github.com/ledger/backend/internal/domain/accounting"
	"github.com/ledger/backend/internal/domain/invoicing"
)

// NewDomainSerializer returns a serializer with every ledger event type
// registered. Adding a new event kind here is a compile-time-checked change
// because the registrations reference the concrete event structs.
func NewDomainSerializer() *Serializer {
	s := NewSerializer()

	// accounting
	s.Register("AccountCreated", &accounting.AccountCreatedEvent{})
	s.Register("AccountDeactivated", &accounting.AccountDeactivatedEvent{})
	s.Register("JournalEntryCreated", &accounting.JournalEntryCreatedEvent{})
	s.Register("JournalEntryPosted", &accounting.JournalEntryPostedEvent{})
	s.Register("JournalEntryReversed", &accounting.JournalEntryReversedEvent{})

	// invoicing
	s.Register("InvoiceCreated", &invoicing.InvoiceCreatedEvent{})
	s.Register("InvoiceApproved", &invoicing.InvoiceApprovedEvent{})
	s.Register("InvoicePaymentRecorded", &invoicing.InvoicePaymentRecordedEvent{})
	s.Register("InvoiceFullyPaid", &invoicing.InvoiceFullyPaidEvent{})
	s.Register("InvoiceCancelled", &invoicing.InvoiceCancelledEvent{})
	s.Register("PaymentCreated", &invoicing.PaymentCreatedEvent{})
	s.Register("PaymentCompleted", &invoicing.PaymentCompletedEvent{})
	s.Register("PaymentFailed", &invoicing.PaymentFailedEvent{})
	s.Register("PaymentReconciled", &invoicing.PaymentReconciledEvent{})
	s.Register("PaymentReversed", &invoicing.PaymentReversedEvent{})

	return s
}
