package projection

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/invoicing"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const invoiceProjectionName = "invoice"

// InvoiceProjector maintains the invoice read model. Status transitions
// here mirror the aggregate's fold: payment events move the row through
// PartiallyPaid and Paid without any command ever writing status directly.
type InvoiceProjector struct {
	db     *gorm.DB
	cache  shared.Cache
	logger *zap.Logger
}

// NewInvoiceProjector creates an invoice projector
func NewInvoiceProjector(db *gorm.DB, cache shared.Cache, logger *zap.Logger) *InvoiceProjector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceProjector{db: db, cache: cache, logger: logger}
}

// EventTypes returns the event types this projector subscribes to
func (p *InvoiceProjector) EventTypes() []string {
	return []string{
		"InvoiceCreated",
		"InvoiceApproved",
		"InvoicePaymentRecorded",
		"InvoiceFullyPaid",
		"InvoiceCancelled",
	}
}

// Handle applies one domain event to the invoice read model
func (p *InvoiceProjector) Handle(ctx context.Context, event shared.DomainEvent) error {
	var apply func(tx *gorm.DB) error
	switch e := event.(type) {
	case *invoicing.InvoiceCreatedEvent:
		apply = func(tx *gorm.DB) error {
			row := InvoiceProjection{
				ID:            e.AggregateID(),
				TenantID:      e.TenantID(),
				InvoiceNumber: e.InvoiceNumber,
				CustomerID:    e.CustomerID,
				LineItems:     InvoiceLineItems(e.LineItems),
				Subtotal:      e.Subtotal,
				TaxRate:       e.TaxRate,
				TaxAmount:     e.TaxAmount,
				GrandTotal:    e.GrandTotal,
				PaidAmount:    decimal.Zero,
				Status:        invoicing.InvoiceStatusDraft,
				LastVersion:   e.Version(),
				UpdatedAt:     time.Now().UTC(),
			}
			return tx.Create(&row).Error
		}
	case *invoicing.InvoiceApprovedEvent:
		apply = p.statusUpdate(e.AggregateID(), e.TenantID(), e.Version(), map[string]interface{}{
			"status": invoicing.InvoiceStatusApproved,
		})
	case *invoicing.InvoicePaymentRecordedEvent:
		apply = p.statusUpdate(e.AggregateID(), e.TenantID(), e.Version(), map[string]interface{}{
			"status":      invoicing.InvoiceStatusPartiallyPaid,
			"paid_amount": e.NewPaidAmount,
		})
	case *invoicing.InvoiceFullyPaidEvent:
		apply = p.statusUpdate(e.AggregateID(), e.TenantID(), e.Version(), map[string]interface{}{
			"status": invoicing.InvoiceStatusPaid,
		})
	case *invoicing.InvoiceCancelledEvent:
		apply = p.statusUpdate(e.AggregateID(), e.TenantID(), e.Version(), map[string]interface{}{
			"status":        invoicing.InvoiceStatusCancelled,
			"cancel_reason": e.Reason,
		})
	default:
		p.logger.Warn("invoice projector received unexpected event",
			zap.String("event_type", event.EventType()))
		return nil
	}

	streamID := shared.StreamID(event.TenantID(), event.AggregateType(), event.AggregateID())
	applied := false
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := guardVersion(tx, invoiceProjectionName, streamID, event.Version())
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		applied = true
		return apply(tx)
	})
	if err != nil || !applied {
		return err
	}
	return p.invalidate(ctx, event.TenantID(), event.AggregateID())
}

func (p *InvoiceProjector) statusUpdate(invoiceID, tenantID uuid.UUID, version int, updates map[string]interface{}) func(tx *gorm.DB) error {
	updates["last_version"] = version
	updates["updated_at"] = time.Now().UTC()
	return func(tx *gorm.DB) error {
		return tx.Model(&InvoiceProjection{}).
			Where("id = ? AND tenant_id = ?", invoiceID, tenantID).
			Updates(updates).Error
	}
}

func (p *InvoiceProjector) invalidate(ctx context.Context, tenantID, invoiceID uuid.UUID) error {
	if p.cache == nil {
		return nil
	}
	keys := []string{
		shared.InvoiceCacheKey(tenantID, invoiceID),
		shared.InvoiceListCacheKey(tenantID),
	}
	if err := p.cache.Invalidate(ctx, keys...); err != nil {
		p.logger.Warn("cache invalidation failed",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
	}
	return nil
}
