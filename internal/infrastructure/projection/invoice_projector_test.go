package projection

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/invoicing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInvoice(t *testing.T, tenantID uuid.UUID) *invoicing.Invoice {
	t.Helper()
	invoice := invoicing.NewInvoice(tenantID, uuid.New())
	items := []invoicing.LineItem{
		{Description: "Consulting", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(800)},
		{Description: "Setup fee", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(2000)},
	}
	require.NoError(t, invoice.Create("INV-2026-0001", uuid.New(), items, decimal.NewFromFloat(0.15)))
	return invoice
}

func projectInvoice(t *testing.T, p *InvoiceProjector, invoice *invoicing.Invoice) {
	t.Helper()
	for _, event := range invoice.UncommittedEvents() {
		require.NoError(t, p.Handle(context.Background(), event))
	}
	invoice.ClearUncommittedEvents()
}

func TestInvoiceProjectorCreate(t *testing.T) {
	db := newTestDB(t)
	projector := NewInvoiceProjector(db, nil, nil)
	tenantID := uuid.New()

	invoice := newTestInvoice(t, tenantID)
	projectInvoice(t, projector, invoice)

	var row InvoiceProjection
	require.NoError(t, db.Where("id = ?", invoice.GetID()).First(&row).Error)
	assert.Equal(t, tenantID, row.TenantID)
	assert.Equal(t, "INV-2026-0001", row.InvoiceNumber)
	assert.Equal(t, invoicing.InvoiceStatusDraft, row.Status)
	assert.True(t, row.Subtotal.Equal(decimal.NewFromInt(10000)), "subtotal %s", row.Subtotal)
	assert.True(t, row.TaxAmount.Equal(decimal.NewFromInt(1500)), "tax %s", row.TaxAmount)
	assert.True(t, row.GrandTotal.Equal(decimal.NewFromInt(11500)), "total %s", row.GrandTotal)
	assert.True(t, row.PaidAmount.IsZero())
	assert.Len(t, []invoicing.LineItem(row.LineItems), 2)
}

func TestInvoiceProjectorPaymentFlow(t *testing.T) {
	db := newTestDB(t)
	projector := NewInvoiceProjector(db, nil, nil)
	tenantID := uuid.New()

	invoice := newTestInvoice(t, tenantID)
	require.NoError(t, invoice.Approve())
	projectInvoice(t, projector, invoice)

	var row InvoiceProjection
	require.NoError(t, db.Where("id = ?", invoice.GetID()).First(&row).Error)
	assert.Equal(t, invoicing.InvoiceStatusApproved, row.Status)

	// partial payment leaves the invoice partially paid
	require.NoError(t, invoice.RecordPayment(uuid.New(), decimal.NewFromInt(5000)))
	projectInvoice(t, projector, invoice)

	require.NoError(t, db.Where("id = ?", invoice.GetID()).First(&row).Error)
	assert.Equal(t, invoicing.InvoiceStatusPartiallyPaid, row.Status)
	assert.True(t, row.PaidAmount.Equal(decimal.NewFromInt(5000)), "paid %s", row.PaidAmount)

	// settling payment raises both the recorded and fully-paid events
	require.NoError(t, invoice.RecordPayment(uuid.New(), decimal.NewFromInt(6500)))
	projectInvoice(t, projector, invoice)

	require.NoError(t, db.Where("id = ?", invoice.GetID()).First(&row).Error)
	assert.Equal(t, invoicing.InvoiceStatusPaid, row.Status)
	assert.True(t, row.PaidAmount.Equal(decimal.NewFromInt(11500)), "paid %s", row.PaidAmount)
}

func TestInvoiceProjectorCancel(t *testing.T) {
	db := newTestDB(t)
	projector := NewInvoiceProjector(db, nil, nil)

	invoice := newTestInvoice(t, uuid.New())
	require.NoError(t, invoice.Approve())
	require.NoError(t, invoice.Cancel("order withdrawn"))
	projectInvoice(t, projector, invoice)

	var row InvoiceProjection
	require.NoError(t, db.Where("id = ?", invoice.GetID()).First(&row).Error)
	assert.Equal(t, invoicing.InvoiceStatusCancelled, row.Status)
	assert.Equal(t, "order withdrawn", row.CancelReason)
}

func TestInvoiceProjectorSkipsDuplicateDelivery(t *testing.T) {
	db := newTestDB(t)
	projector := NewInvoiceProjector(db, nil, nil)

	invoice := newTestInvoice(t, uuid.New())
	events := invoice.UncommittedEvents()
	for _, event := range events {
		require.NoError(t, projector.Handle(context.Background(), event))
		require.NoError(t, projector.Handle(context.Background(), event))
	}

	var count int64
	require.NoError(t, db.Model(&InvoiceProjection{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestInvoiceProjectorRejectsVersionGap(t *testing.T) {
	db := newTestDB(t)
	projector := NewInvoiceProjector(db, nil, nil)

	invoice := newTestInvoice(t, uuid.New())
	require.NoError(t, invoice.Approve())
	events := invoice.UncommittedEvents()

	err := projector.Handle(context.Background(), events[1])
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVersionGap)
}
