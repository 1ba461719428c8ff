package invoicing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/application/command"
	"github.com/ledger/backend/internal/domain/invoicing"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoicePaymentRecorder applies a completed payment to its invoice
type InvoicePaymentRecorder interface {
	RecordPayment(ctx context.Context, req RecordPaymentRequest) error
}

// IssueRecorder persists reconciliation issues for manual follow-up
type IssueRecorder interface {
	Record(ctx context.Context, tenantID, paymentID, invoiceID uuid.UUID, amount decimal.Decimal, reason string) error
}

// PaymentService handles payment commands. Completing a payment linked to
// an invoice spans two aggregates and degrades gracefully: the payment's
// completion always stands, and a rejected invoice update becomes a
// reconciliation issue instead of a rollback.
type PaymentService struct {
	executor *command.Executor
	invoices InvoicePaymentRecorder
	issues   IssueRecorder
	logger   *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(executor *command.Executor, invoices InvoicePaymentRecorder, issues IssueRecorder, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{executor: executor, invoices: invoices, issues: issues, logger: logger}
}

// CreatePaymentRequest is a request to create a pending payment. An empty
// currency falls back to the books default.
type CreatePaymentRequest struct {
	TenantID  uuid.UUID
	InvoiceID *uuid.UUID
	Amount    decimal.Decimal
	Currency  valueobject.Currency
	Method    invoicing.PaymentMethod
}

// CreatePaymentResult reports the created payment
type CreatePaymentResult struct {
	PaymentID uuid.UUID `json:"payment_id"`
}

// CreatePayment creates a new pending payment, optionally linked to an
// invoice
func (s *PaymentService) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResult, error) {
	currency := req.Currency
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	amount, err := valueobject.NewMoney(req.Amount, currency)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CURRENCY", err.Error())
	}

	paymentID := uuid.New()
	streamID := paymentStreamID(req.TenantID, paymentID)

	_, err = command.Execute(ctx, s.executor, streamID,
		rehydratePayment(req.TenantID, paymentID),
		func(p *invoicing.Payment) error {
			return p.Create(req.InvoiceID, amount, req.Method)
		})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment created",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("payment_id", paymentID.String()))
	return &CreatePaymentResult{PaymentID: paymentID}, nil
}

// CompletePayment marks a pending payment as completed and, when the
// payment is linked to an invoice, applies it there. The payment
// completion is committed first and never undone: money that arrived
// stays recorded even if the invoice rejects the application, in which
// case a reconciliation issue is filed for manual resolution.
func (s *PaymentService) CompletePayment(ctx context.Context, tenantID, paymentID uuid.UUID) error {
	streamID := paymentStreamID(tenantID, paymentID)
	payment, err := command.Execute(ctx, s.executor, streamID,
		rehydratePayment(tenantID, paymentID),
		func(p *invoicing.Payment) error {
			if p.GetVersion() == 0 {
				return shared.ErrNotFound
			}
			return p.Complete()
		})
	if err != nil {
		return err
	}

	if payment.InvoiceID == nil {
		s.logger.Info("payment completed",
			zap.String("tenant_id", tenantID.String()),
			zap.String("payment_id", paymentID.String()))
		return nil
	}

	invoiceID := *payment.InvoiceID
	recordErr := s.invoices.RecordPayment(ctx, RecordPaymentRequest{
		TenantID:  tenantID,
		InvoiceID: invoiceID,
		PaymentID: paymentID,
		Amount:    payment.Amount.Amount(),
	})
	if recordErr != nil {
		s.logger.Error("payment completed but invoice update failed",
			zap.String("tenant_id", tenantID.String()),
			zap.String("payment_id", paymentID.String()),
			zap.String("invoice_id", invoiceID.String()),
			zap.Error(recordErr))
		reason := fmt.Sprintf("invoice update rejected: %v", recordErr)
		if issueErr := s.issues.Record(ctx, tenantID, paymentID, invoiceID, payment.Amount.Amount(), reason); issueErr != nil {
			s.logger.Error("failed to record reconciliation issue",
				zap.String("payment_id", paymentID.String()),
				zap.Error(issueErr))
		}
		return nil
	}

	s.logger.Info("payment completed and applied to invoice",
		zap.String("tenant_id", tenantID.String()),
		zap.String("payment_id", paymentID.String()),
		zap.String("invoice_id", invoiceID.String()))
	return nil
}

// FailPayment marks a pending payment as failed
func (s *PaymentService) FailPayment(ctx context.Context, tenantID, paymentID uuid.UUID, reason string) error {
	streamID := paymentStreamID(tenantID, paymentID)
	_, err := command.Execute(ctx, s.executor, streamID,
		rehydratePayment(tenantID, paymentID),
		func(p *invoicing.Payment) error {
			if p.GetVersion() == 0 {
				return shared.ErrNotFound
			}
			return p.Fail(reason)
		})
	return err
}

// ReconcilePayment matches a completed payment against a bank statement
// entry
func (s *PaymentService) ReconcilePayment(ctx context.Context, tenantID, paymentID uuid.UUID, bankReference string) error {
	streamID := paymentStreamID(tenantID, paymentID)
	_, err := command.Execute(ctx, s.executor, streamID,
		rehydratePayment(tenantID, paymentID),
		func(p *invoicing.Payment) error {
			if p.GetVersion() == 0 {
				return shared.ErrNotFound
			}
			return p.Reconcile(bankReference)
		})
	return err
}

// ReversePayment voids a completed payment
func (s *PaymentService) ReversePayment(ctx context.Context, tenantID, paymentID uuid.UUID, reason string) error {
	streamID := paymentStreamID(tenantID, paymentID)
	_, err := command.Execute(ctx, s.executor, streamID,
		rehydratePayment(tenantID, paymentID),
		func(p *invoicing.Payment) error {
			if p.GetVersion() == 0 {
				return shared.ErrNotFound
			}
			return p.Reverse(reason)
		})
	if err != nil {
		return err
	}

	s.logger.Info("payment reversed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("payment_id", paymentID.String()))
	return nil
}

func paymentStreamID(tenantID, paymentID uuid.UUID) string {
	return shared.StreamID(tenantID, invoicing.PaymentAggregateType, paymentID)
}

func rehydratePayment(tenantID, paymentID uuid.UUID) func([]shared.DomainEvent) (*invoicing.Payment, error) {
	return func(history []shared.DomainEvent) (*invoicing.Payment, error) {
		payment := invoicing.NewPayment(tenantID, paymentID)
		if err := shared.LoadFromHistory(payment, history); err != nil {
			return nil, fmt.Errorf("failed to rehydrate payment: %w", err)
		}
		return payment, nil
	}
}
