package invoicing

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/invoicing"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/infrastructure/projection"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceReader reads invoice rows from the projection
type InvoiceReader interface {
	GetInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*projection.InvoiceProjection, error)
	ListInvoices(ctx context.Context, tenantID uuid.UUID, filter projection.InvoiceFilter) ([]projection.InvoiceProjection, error)
}

// PaymentReader reads payment rows from the projection
type PaymentReader interface {
	GetPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (*projection.PaymentProjection, error)
	ListByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]projection.PaymentProjection, error)
}

// InvoiceDTO is the read-model view of an invoice
type InvoiceDTO struct {
	ID            uuid.UUID               `json:"id"`
	InvoiceNumber string                  `json:"invoice_number"`
	CustomerID    uuid.UUID               `json:"customer_id"`
	LineItems     []invoicing.LineItem    `json:"line_items"`
	Subtotal      decimal.Decimal         `json:"subtotal"`
	TaxRate       decimal.Decimal         `json:"tax_rate"`
	TaxAmount     decimal.Decimal         `json:"tax_amount"`
	GrandTotal    decimal.Decimal         `json:"grand_total"`
	PaidAmount    decimal.Decimal         `json:"paid_amount"`
	Outstanding   decimal.Decimal         `json:"outstanding"`
	Status        invoicing.InvoiceStatus `json:"status"`
}

// PaymentDTO is the read-model view of a payment
type PaymentDTO struct {
	ID            uuid.UUID               `json:"id"`
	InvoiceID     *uuid.UUID              `json:"invoice_id,omitempty"`
	Amount        decimal.Decimal         `json:"amount"`
	Currency      string                  `json:"currency"`
	Method        invoicing.PaymentMethod `json:"method"`
	Status        invoicing.PaymentStatus `json:"status"`
	BankReference string                  `json:"bank_reference,omitempty"`
	FailureReason string                  `json:"failure_reason,omitempty"`
}

// QueryService serves invoice and payment lookups from the projections
// with a short-lived cache in front
type QueryService struct {
	invoices  InvoiceReader
	payments  PaymentReader
	cache     shared.Cache
	entityTTL time.Duration
	logger    *zap.Logger
}

// NewQueryService creates an invoicing query service
func NewQueryService(invoices InvoiceReader, payments PaymentReader, cache shared.Cache, entityTTL time.Duration, logger *zap.Logger) *QueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryService{invoices: invoices, payments: payments, cache: cache, entityTTL: entityTTL, logger: logger}
}

// GetInvoice returns one invoice
func (s *QueryService) GetInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceDTO, error) {
	key := shared.InvoiceCacheKey(tenantID, invoiceID)
	var cached InvoiceDTO
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	row, err := s.invoices.GetInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	dto := toInvoiceDTO(row)
	s.toCache(ctx, key, dto)
	return &dto, nil
}

// ListInvoices returns invoices matching the filter. Filtered listings
// bypass the cache; only the unfiltered listing is cached.
func (s *QueryService) ListInvoices(ctx context.Context, tenantID uuid.UUID, filter projection.InvoiceFilter) ([]InvoiceDTO, error) {
	unfiltered := filter.Status == nil && filter.CustomerID == nil && filter.Limit == 0 && filter.Offset == 0
	key := shared.InvoiceListCacheKey(tenantID)
	if unfiltered {
		var cached []InvoiceDTO
		if s.fromCache(ctx, key, &cached) {
			return cached, nil
		}
	}

	rows, err := s.invoices.ListInvoices(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	dtos := make([]InvoiceDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, toInvoiceDTO(&rows[i]))
	}
	if unfiltered {
		s.toCache(ctx, key, dtos)
	}
	return dtos, nil
}

// GetPayment returns one payment
func (s *QueryService) GetPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (*PaymentDTO, error) {
	key := shared.PaymentCacheKey(tenantID, paymentID)
	var cached PaymentDTO
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	row, err := s.payments.GetPayment(ctx, tenantID, paymentID)
	if err != nil {
		return nil, err
	}
	dto := toPaymentDTO(row)
	s.toCache(ctx, key, dto)
	return &dto, nil
}

// ListPaymentsByInvoice returns all payments linked to one invoice
func (s *QueryService) ListPaymentsByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]PaymentDTO, error) {
	key := shared.PaymentsByInvoiceCacheKey(tenantID, invoiceID)
	var cached []PaymentDTO
	if s.fromCache(ctx, key, &cached) {
		return cached, nil
	}

	rows, err := s.payments.ListByInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	dtos := make([]PaymentDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, toPaymentDTO(&rows[i]))
	}
	s.toCache(ctx, key, dtos)
	return dtos, nil
}

func (s *QueryService) fromCache(ctx context.Context, key string, target interface{}) bool {
	if s.cache == nil {
		return false
	}
	data, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !found {
		return false
	}
	if err := json.Unmarshal(data, target); err != nil {
		s.logger.Warn("cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *QueryService) toCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.entityTTL); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func toInvoiceDTO(row *projection.InvoiceProjection) InvoiceDTO {
	return InvoiceDTO{
		ID:            row.ID,
		InvoiceNumber: row.InvoiceNumber,
		CustomerID:    row.CustomerID,
		LineItems:     []invoicing.LineItem(row.LineItems),
		Subtotal:      row.Subtotal,
		TaxRate:       row.TaxRate,
		TaxAmount:     row.TaxAmount,
		GrandTotal:    row.GrandTotal,
		PaidAmount:    row.PaidAmount,
		Outstanding:   row.GrandTotal.Sub(row.PaidAmount),
		Status:        row.Status,
	}
}

func toPaymentDTO(row *projection.PaymentProjection) PaymentDTO {
	return PaymentDTO{
		ID:            row.ID,
		InvoiceID:     row.InvoiceID,
		Amount:        row.Amount,
		Currency:      row.Currency,
		Method:        row.Method,
		Status:        row.Status,
		BankReference: row.BankReference,
		FailureReason: row.FailureReason,
	}
}
