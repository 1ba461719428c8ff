package invoicing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/application/command"
	"github.com/ledger/backend/internal/domain/invoicing"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/infrastructure/eventstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type invoiceServiceFixture struct {
	store    *eventstore.MemoryEventStore
	service  *InvoiceService
	tenantID uuid.UUID
}

func newInvoiceServiceFixture(t *testing.T) *invoiceServiceFixture {
	t.Helper()
	store := eventstore.NewMemoryEventStore()
	return &invoiceServiceFixture{
		store:    store,
		service:  NewInvoiceService(command.NewExecutor(store, nil, nil), nil),
		tenantID: uuid.New(),
	}
}

func (f *invoiceServiceFixture) createInvoice(t *testing.T) *CreateInvoiceResult {
	t.Helper()
	result, err := f.service.CreateInvoice(context.Background(), CreateInvoiceRequest{
		TenantID:      f.tenantID,
		InvoiceNumber: "INV-2026-0001",
		CustomerID:    uuid.New(),
		LineItems: []invoicing.LineItem{
			{Description: "Consulting", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(800)},
			{Description: "Setup fee", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(2000)},
		},
		TaxRate: decimal.NewFromFloat(0.15),
	})
	require.NoError(t, err)
	return result
}

func (f *invoiceServiceFixture) loadInvoice(t *testing.T, invoiceID uuid.UUID) *invoicing.Invoice {
	t.Helper()
	history, err := f.store.Read(context.Background(), invoiceStreamID(f.tenantID, invoiceID), 0)
	require.NoError(t, err)
	invoice := invoicing.NewInvoice(f.tenantID, invoiceID)
	require.NoError(t, shared.LoadFromHistory(invoice, history))
	return invoice
}

func TestCreateInvoiceComputesTotals(t *testing.T) {
	f := newInvoiceServiceFixture(t)

	result := f.createInvoice(t)
	assert.True(t, result.Subtotal.Equal(decimal.NewFromInt(10000)), "subtotal %s", result.Subtotal)
	assert.True(t, result.TaxAmount.Equal(decimal.NewFromInt(1500)), "tax %s", result.TaxAmount)
	assert.True(t, result.GrandTotal.Equal(decimal.NewFromInt(11500)), "total %s", result.GrandTotal)

	invoice := f.loadInvoice(t, result.InvoiceID)
	assert.Equal(t, invoicing.InvoiceStatusDraft, invoice.Status)
}

func TestCreateInvoiceRejectsEmptyItems(t *testing.T) {
	f := newInvoiceServiceFixture(t)

	_, err := f.service.CreateInvoice(context.Background(), CreateInvoiceRequest{
		TenantID:      f.tenantID,
		InvoiceNumber: "INV-2026-0002",
		CustomerID:    uuid.New(),
		TaxRate:       decimal.NewFromFloat(0.15),
	})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_LINE_ITEMS", domainErr.Code)
}

func TestApproveInvoice(t *testing.T) {
	f := newInvoiceServiceFixture(t)

	result := f.createInvoice(t)
	require.NoError(t, f.service.ApproveInvoice(context.Background(), f.tenantID, result.InvoiceID))
	assert.Equal(t, invoicing.InvoiceStatusApproved, f.loadInvoice(t, result.InvoiceID).Status)
}

func TestApproveInvoiceNotFound(t *testing.T) {
	f := newInvoiceServiceFixture(t)

	err := f.service.ApproveInvoice(context.Background(), f.tenantID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRecordPaymentSettlesInvoice(t *testing.T) {
	f := newInvoiceServiceFixture(t)

	result := f.createInvoice(t)
	require.NoError(t, f.service.ApproveInvoice(context.Background(), f.tenantID, result.InvoiceID))

	require.NoError(t, f.service.RecordPayment(context.Background(), RecordPaymentRequest{
		TenantID:  f.tenantID,
		InvoiceID: result.InvoiceID,
		PaymentID: uuid.New(),
		Amount:    decimal.NewFromInt(5000),
	}))
	invoice := f.loadInvoice(t, result.InvoiceID)
	assert.Equal(t, invoicing.InvoiceStatusPartiallyPaid, invoice.Status)

	require.NoError(t, f.service.RecordPayment(context.Background(), RecordPaymentRequest{
		TenantID:  f.tenantID,
		InvoiceID: result.InvoiceID,
		PaymentID: uuid.New(),
		Amount:    decimal.NewFromInt(6500),
	}))
	invoice = f.loadInvoice(t, result.InvoiceID)
	assert.Equal(t, invoicing.InvoiceStatusPaid, invoice.Status)
	assert.True(t, invoice.PaidAmount.Equal(result.GrandTotal))
}

func TestRecordPaymentRejectsOverpayment(t *testing.T) {
	f := newInvoiceServiceFixture(t)

	result := f.createInvoice(t)
	require.NoError(t, f.service.ApproveInvoice(context.Background(), f.tenantID, result.InvoiceID))

	err := f.service.RecordPayment(context.Background(), RecordPaymentRequest{
		TenantID:  f.tenantID,
		InvoiceID: result.InvoiceID,
		PaymentID: uuid.New(),
		Amount:    result.GrandTotal.Add(decimal.NewFromFloat(0.01)),
	})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "OVERPAYMENT", domainErr.Code)
}

func TestCancelInvoice(t *testing.T) {
	f := newInvoiceServiceFixture(t)

	result := f.createInvoice(t)
	require.NoError(t, f.service.CancelInvoice(context.Background(), f.tenantID, result.InvoiceID, "order withdrawn"))
	assert.Equal(t, invoicing.InvoiceStatusCancelled, f.loadInvoice(t, result.InvoiceID).Status)
}

func TestCancelInvoiceNotFound(t *testing.T) {
	f := newInvoiceServiceFixture(t)

	err := f.service.CancelInvoice(context.Background(), f.tenantID, uuid.New(), "order withdrawn")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
