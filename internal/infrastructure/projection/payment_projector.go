package projection

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/invoicing"
	"github.com/ledger/backend/internal/domain/shared"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const paymentProjectionName = "payment"

// PaymentProjector maintains the payment read model
type PaymentProjector struct {
	db     *gorm.DB
	cache  shared.Cache
	logger *zap.Logger
}

// NewPaymentProjector creates a payment projector
func NewPaymentProjector(db *gorm.DB, cache shared.Cache, logger *zap.Logger) *PaymentProjector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentProjector{db: db, cache: cache, logger: logger}
}

// EventTypes returns the event types this projector subscribes to
func (p *PaymentProjector) EventTypes() []string {
	return []string{
		"PaymentCreated",
		"PaymentCompleted",
		"PaymentFailed",
		"PaymentReconciled",
		"PaymentReversed",
	}
}

// Handle applies one domain event to the payment read model
func (p *PaymentProjector) Handle(ctx context.Context, event shared.DomainEvent) error {
	var invoiceID *uuid.UUID
	var apply func(tx *gorm.DB) error
	switch e := event.(type) {
	case *invoicing.PaymentCreatedEvent:
		invoiceID = e.InvoiceID
		apply = func(tx *gorm.DB) error {
			row := PaymentProjection{
				ID:          e.AggregateID(),
				TenantID:    e.TenantID(),
				InvoiceID:   e.InvoiceID,
				Amount:      e.Amount.Amount(),
				Currency:    string(e.Amount.Currency()),
				Method:      e.Method,
				Status:      invoicing.PaymentStatusPending,
				LastVersion: e.Version(),
				UpdatedAt:   time.Now().UTC(),
			}
			return tx.Create(&row).Error
		}
	case *invoicing.PaymentCompletedEvent:
		invoiceID = e.InvoiceID
		apply = p.statusUpdate(e.AggregateID(), e.TenantID(), e.Version(), map[string]interface{}{
			"status": invoicing.PaymentStatusCompleted,
		})
	case *invoicing.PaymentFailedEvent:
		apply = p.statusUpdate(e.AggregateID(), e.TenantID(), e.Version(), map[string]interface{}{
			"status":         invoicing.PaymentStatusFailed,
			"failure_reason": e.Reason,
		})
	case *invoicing.PaymentReconciledEvent:
		apply = p.statusUpdate(e.AggregateID(), e.TenantID(), e.Version(), map[string]interface{}{
			"status":         invoicing.PaymentStatusReconciled,
			"bank_reference": e.BankReference,
		})
	case *invoicing.PaymentReversedEvent:
		apply = p.statusUpdate(e.AggregateID(), e.TenantID(), e.Version(), map[string]interface{}{
			"status":          invoicing.PaymentStatusReversed,
			"reversal_reason": e.Reason,
		})
	default:
		p.logger.Warn("payment projector received unexpected event",
			zap.String("event_type", event.EventType()))
		return nil
	}

	streamID := shared.StreamID(event.TenantID(), event.AggregateType(), event.AggregateID())
	applied := false
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := guardVersion(tx, paymentProjectionName, streamID, event.Version())
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

	// Failed and reversed events carry no invoice reference; the linked
	// invoice, when any, is read from the projection row itself.
	if invoiceID == nil {
		var row PaymentProjection
		if err := p.db.WithContext(ctx).
			Select("invoice_id").
			Where("id = ? AND tenant_id = ?", event.AggregateID(), event.TenantID()).
			First(&row).Error; err == nil {
			invoiceID = row.InvoiceID
		}
	}
	return p.invalidate(ctx, event.TenantID(), event.AggregateID(), invoiceID)
}

func (p *PaymentProjector) statusUpdate(paymentID, tenantID uuid.UUID, version int, updates map[string]interface{}) func(tx *gorm.DB) error {
	updates["last_version"] = version
	updates["updated_at"] = time.Now().UTC()
	return func(tx *gorm.DB) error {
		return tx.Model(&PaymentProjection{}).
			Where("id = ? AND tenant_id = ?", paymentID, tenantID).
			Updates(updates).Error
	}
}

func (p *PaymentProjector) invalidate(ctx context.Context, tenantID, paymentID uuid.UUID, invoiceID *uuid.UUID) error {
	if p.cache == nil {
		return nil
	}
	keys := []string{shared.PaymentCacheKey(tenantID, paymentID)}
	if invoiceID != nil {
		keys = append(keys, shared.PaymentsByInvoiceCacheKey(tenantID, *invoiceID))
	}
	if err := p.cache.Invalidate(ctx, keys...); err != nil {
		p.logger.Warn("cache invalidation failed",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
	}
	return nil
}
