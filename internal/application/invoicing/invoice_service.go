package invoicing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/application/command"
	"github.com/ledger/backend/internal/domain/invoicing"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceService handles invoice commands
type InvoiceService struct {
	executor *command.Executor
	logger   *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(executor *command.Executor, logger *zap.Logger) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{executor: executor, logger: logger}
}

// CreateInvoiceRequest is a request to draft an invoice
type CreateInvoiceRequest struct {
	TenantID      uuid.UUID
	InvoiceNumber string
	CustomerID    uuid.UUID
	LineItems     []invoicing.LineItem
	TaxRate       decimal.Decimal
}

// CreateInvoiceResult reports the drafted invoice totals
type CreateInvoiceResult struct {
	InvoiceID  uuid.UUID       `json:"invoice_id"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxAmount  decimal.Decimal `json:"tax_amount"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// CreateInvoice drafts a new invoice with tax computed from the line items
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*CreateInvoiceResult, error) {
	invoiceID := uuid.New()
	streamID := invoiceStreamID(req.TenantID, invoiceID)

	invoice, err := command.Execute(ctx, s.executor, streamID,
		rehydrateInvoice(req.TenantID, invoiceID),
		func(inv *invoicing.Invoice) error {
			return inv.Create(req.InvoiceNumber, req.CustomerID, req.LineItems, req.TaxRate)
		})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice created",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("invoice_id", invoiceID.String()),
		zap.String("invoice_number", req.InvoiceNumber))
	return &CreateInvoiceResult{
		InvoiceID:  invoiceID,
		Subtotal:   invoice.Subtotal,
		TaxAmount:  invoice.TaxAmount,
		GrandTotal: invoice.GrandTotal,
	}, nil
}

// ApproveInvoice approves a draft invoice, making it eligible for payment
func (s *InvoiceService) ApproveInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) error {
	streamID := invoiceStreamID(tenantID, invoiceID)
	_, err := command.Execute(ctx, s.executor, streamID,
		rehydrateInvoice(tenantID, invoiceID),
		func(inv *invoicing.Invoice) error {
			if inv.GetVersion() == 0 {
				return shared.ErrNotFound
			}
			return inv.Approve()
		})
	if err != nil {
		return err
	}

	s.logger.Info("invoice approved",
		zap.String("tenant_id", tenantID.String()),
		zap.String("invoice_id", invoiceID.String()))
	return nil
}

// CancelInvoice cancels an unpaid invoice
func (s *InvoiceService) CancelInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID, reason string) error {
	streamID := invoiceStreamID(tenantID, invoiceID)
	_, err := command.Execute(ctx, s.executor, streamID,
		rehydrateInvoice(tenantID, invoiceID),
		func(inv *invoicing.Invoice) error {
			if inv.GetVersion() == 0 {
				return shared.ErrNotFound
			}
			return inv.Cancel(reason)
		})
	if err != nil {
		return err
	}

	s.logger.Info("invoice cancelled",
		zap.String("tenant_id", tenantID.String()),
		zap.String("invoice_id", invoiceID.String()))
	return nil
}

// RecordPaymentRequest is a request to apply a payment to an invoice
type RecordPaymentRequest struct {
	TenantID  uuid.UUID
	InvoiceID uuid.UUID
	PaymentID uuid.UUID
	Amount    decimal.Decimal
}

// RecordPayment applies a completed payment's amount to the invoice
func (s *InvoiceService) RecordPayment(ctx context.Context, req RecordPaymentRequest) error {
	streamID := invoiceStreamID(req.TenantID, req.InvoiceID)
	_, err := command.Execute(ctx, s.executor, streamID,
		rehydrateInvoice(req.TenantID, req.InvoiceID),
		func(inv *invoicing.Invoice) error {
			if inv.GetVersion() == 0 {
				return shared.ErrNotFound
			}
			return inv.RecordPayment(req.PaymentID, req.Amount)
		})
	return err
}

func invoiceStreamID(tenantID, invoiceID uuid.UUID) string {
	return shared.StreamID(tenantID, invoicing.InvoiceAggregateType, invoiceID)
}

func rehydrateInvoice(tenantID, invoiceID uuid.UUID) func([]shared.DomainEvent) (*invoicing.Invoice, error) {
	return func(history []shared.DomainEvent) (*invoicing.Invoice, error) {
		invoice := invoicing.NewInvoice(tenantID, invoiceID)
		if err := shared.LoadFromHistory(invoice, history); err != nil {
			return nil, fmt.Errorf("failed to rehydrate invoice: %w", err)
		}
		return invoice, nil
	}
}
