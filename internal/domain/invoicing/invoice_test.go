package invoicing

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr), "expected domain error, got %v", err)
	return domainErr.Code
}

func standardItems() []LineItem {
	return []LineItem{
		{Description: "Consulting", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(800)},
		{Description: "Travel", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(2000)},
	}
}

func newApprovedInvoice(t *testing.T) *Invoice {
	t.Helper()
	inv := NewInvoice(uuid.New(), uuid.New())
	require.NoError(t, inv.Create("INV-2026-0042", uuid.New(), standardItems(), decimal.NewFromFloat(0.15)))
	require.NoError(t, inv.Approve())
	return inv
}

func TestInvoiceCreate(t *testing.T) {
	t.Run("computes totals through the tax engine", func(t *testing.T) {
		inv := NewInvoice(uuid.New(), uuid.New())
		err := inv.Create("INV-2026-0042", uuid.New(), standardItems(), decimal.NewFromFloat(0.15))
		require.NoError(t, err)

		// 10 * 800 + 1 * 2000 = 10000, VAT 15% = 1500
		assert.True(t, inv.Subtotal.Equal(decimal.NewFromInt(10000)), "subtotal %s", inv.Subtotal)
		assert.True(t, inv.TaxAmount.Equal(decimal.NewFromInt(1500)), "tax %s", inv.TaxAmount)
		assert.True(t, inv.GrandTotal.Equal(decimal.NewFromInt(11500)), "total %s", inv.GrandTotal)
		assert.Equal(t, InvoiceStatusDraft, inv.Status)
		assert.True(t, inv.PaidAmount.IsZero())
	})

	t.Run("rounds line amounts to 2 decimal places", func(t *testing.T) {
		inv := NewInvoice(uuid.New(), uuid.New())
		items := []LineItem{
			{Description: "Metered usage", Quantity: decimal.NewFromFloat(3.333), UnitPrice: decimal.NewFromFloat(9.99)},
		}
		require.NoError(t, inv.Create("INV-2026-0001", uuid.New(), items, decimal.Zero))
		assert.True(t, inv.LineItems[0].Amount.Equal(decimal.NewFromFloat(33.30)), "amount %s", inv.LineItems[0].Amount)
	})

	t.Run("requires at least one line item", func(t *testing.T) {
		inv := NewInvoice(uuid.New(), uuid.New())
		err := inv.Create("INV-2026-0042", uuid.New(), nil, decimal.Zero)
		assert.Equal(t, "INVALID_LINE_ITEMS", domainCode(t, err))
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		inv := NewInvoice(uuid.New(), uuid.New())
		items := []LineItem{{Description: "Thing", Quantity: decimal.Zero, UnitPrice: decimal.NewFromInt(5)}}
		err := inv.Create("INV-2026-0042", uuid.New(), items, decimal.Zero)
		assert.Equal(t, "INVALID_LINE_ITEMS", domainCode(t, err))
	})

	t.Run("rejects negative tax rate", func(t *testing.T) {
		inv := NewInvoice(uuid.New(), uuid.New())
		err := inv.Create("INV-2026-0042", uuid.New(), standardItems(), decimal.NewFromFloat(-0.1))
		assert.Equal(t, "INVALID_TAX_RATE", domainCode(t, err))
	})

	t.Run("rejects duplicate creation", func(t *testing.T) {
		inv := NewInvoice(uuid.New(), uuid.New())
		require.NoError(t, inv.Create("INV-2026-0042", uuid.New(), standardItems(), decimal.Zero))
		err := inv.Create("INV-2026-0043", uuid.New(), standardItems(), decimal.Zero)
		assert.Equal(t, "INVOICE_EXISTS", domainCode(t, err))
	})
}

func TestInvoiceApprove(t *testing.T) {
	t.Run("approves a draft", func(t *testing.T) {
		inv := NewInvoice(uuid.New(), uuid.New())
		require.NoError(t, inv.Create("INV-2026-0042", uuid.New(), standardItems(), decimal.Zero))
		require.NoError(t, inv.Approve())
		assert.Equal(t, InvoiceStatusApproved, inv.Status)
	})

	t.Run("rejects double approval", func(t *testing.T) {
		inv := newApprovedInvoice(t)
		err := inv.Approve()
		assert.Equal(t, "INVALID_STATE", domainCode(t, err))
	})
}

func TestInvoiceRecordPayment(t *testing.T) {
	t.Run("partial payment", func(t *testing.T) {
		inv := newApprovedInvoice(t)

		require.NoError(t, inv.RecordPayment(uuid.New(), decimal.NewFromInt(5000)))
		assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
		assert.True(t, inv.OutstandingAmount().Equal(decimal.NewFromInt(6500)))
	})

	t.Run("full payment raises fully paid exactly once", func(t *testing.T) {
		inv := newApprovedInvoice(t)
		inv.ClearUncommittedEvents()

		require.NoError(t, inv.RecordPayment(uuid.New(), decimal.NewFromInt(11500)))

		events := inv.UncommittedEvents()
		require.Len(t, events, 2)
		assert.Equal(t, "InvoicePaymentRecorded", events[0].EventType())
		assert.Equal(t, "InvoiceFullyPaid", events[1].EventType())
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		assert.True(t, inv.OutstandingAmount().IsZero())
	})

	t.Run("two payments settle the invoice", func(t *testing.T) {
		inv := newApprovedInvoice(t)

		require.NoError(t, inv.RecordPayment(uuid.New(), decimal.NewFromInt(6500)))
		assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)

		require.NoError(t, inv.RecordPayment(uuid.New(), decimal.NewFromInt(5000)))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
	})

	t.Run("overpayment is rejected", func(t *testing.T) {
		inv := newApprovedInvoice(t)

		err := inv.RecordPayment(uuid.New(), decimal.NewFromFloat(11500.01))
		assert.Equal(t, "OVERPAYMENT", domainCode(t, err))
		assert.True(t, inv.PaidAmount.IsZero())
	})

	t.Run("overpayment across multiple payments is rejected", func(t *testing.T) {
		inv := newApprovedInvoice(t)
		require.NoError(t, inv.RecordPayment(uuid.New(), decimal.NewFromInt(11000)))

		err := inv.RecordPayment(uuid.New(), decimal.NewFromInt(501))
		assert.Equal(t, "OVERPAYMENT", domainCode(t, err))
	})

	t.Run("rejected on draft invoice", func(t *testing.T) {
		inv := NewInvoice(uuid.New(), uuid.New())
		require.NoError(t, inv.Create("INV-2026-0042", uuid.New(), standardItems(), decimal.Zero))

		err := inv.RecordPayment(uuid.New(), decimal.NewFromInt(100))
		assert.Equal(t, "INVALID_STATE", domainCode(t, err))
	})

	t.Run("rejected on paid invoice", func(t *testing.T) {
		inv := newApprovedInvoice(t)
		require.NoError(t, inv.RecordPayment(uuid.New(), decimal.NewFromInt(11500)))

		err := inv.RecordPayment(uuid.New(), decimal.NewFromInt(1))
		assert.Equal(t, "INVALID_STATE", domainCode(t, err))
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		inv := newApprovedInvoice(t)
		err := inv.RecordPayment(uuid.New(), decimal.Zero)
		assert.Equal(t, "INVALID_AMOUNT", domainCode(t, err))
	})
}

func TestInvoiceCancel(t *testing.T) {
	t.Run("cancels a draft", func(t *testing.T) {
		inv := NewInvoice(uuid.New(), uuid.New())
		require.NoError(t, inv.Create("INV-2026-0042", uuid.New(), standardItems(), decimal.Zero))
		require.NoError(t, inv.Cancel("ordered in error"))
		assert.Equal(t, InvoiceStatusCancelled, inv.Status)
		assert.Equal(t, "ordered in error", inv.CancelReason)
	})

	t.Run("cancels an approved invoice with no payments", func(t *testing.T) {
		inv := newApprovedInvoice(t)
		require.NoError(t, inv.Cancel("customer withdrew"))
		assert.Equal(t, InvoiceStatusCancelled, inv.Status)
	})

	t.Run("rejects cancelling a partially paid invoice", func(t *testing.T) {
		inv := newApprovedInvoice(t)
		require.NoError(t, inv.RecordPayment(uuid.New(), decimal.NewFromInt(100)))

		err := inv.Cancel("too late")
		assert.Equal(t, "INVALID_STATE", domainCode(t, err))
	})

	t.Run("requires a reason", func(t *testing.T) {
		inv := newApprovedInvoice(t)
		err := inv.Cancel("")
		assert.Equal(t, "INVALID_REASON", domainCode(t, err))
	})
}

func TestInvoiceRehydration(t *testing.T) {
	tenantID := uuid.New()
	invoiceID := uuid.New()

	source := NewInvoice(tenantID, invoiceID)
	require.NoError(t, source.Create("INV-2026-0042", uuid.New(), standardItems(), decimal.NewFromFloat(0.15)))
	require.NoError(t, source.Approve())
	require.NoError(t, source.RecordPayment(uuid.New(), decimal.NewFromInt(11500)))

	rehydrated := NewInvoice(tenantID, invoiceID)
	require.NoError(t, shared.LoadFromHistory(rehydrated, source.UncommittedEvents()))

	assert.Equal(t, InvoiceStatusPaid, rehydrated.Status)
	assert.True(t, rehydrated.PaidAmount.Equal(decimal.NewFromInt(11500)))
	assert.Equal(t, source.GetVersion(), rehydrated.GetVersion())
}
