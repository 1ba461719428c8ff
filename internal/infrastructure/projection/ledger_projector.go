package projection

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/accounting"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/domain/tax"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const ledgerProjectionName = "ledger"

// LedgerProjector maintains the accounting read models: account rows with
// running debit/credit totals, journal entry rows, and flattened journal
// lines for trial balance aggregation. Each event is applied inside one
// transaction together with the offset advance, so a crash mid-event never
// leaves a half-applied projection.
type LedgerProjector struct {
	db     *gorm.DB
	cache  shared.Cache
	logger *zap.Logger
}

// NewLedgerProjector creates a ledger projector
func NewLedgerProjector(db *gorm.DB, cache shared.Cache, logger *zap.Logger) *LedgerProjector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerProjector{db: db, cache: cache, logger: logger}
}

// EventTypes returns the event types this projector subscribes to
func (p *LedgerProjector) EventTypes() []string {
	return []string{
		"AccountCreated",
		"AccountDeactivated",
		"JournalEntryCreated",
		"JournalEntryPosted",
		"JournalEntryReversed",
	}
}

// Handle applies one domain event to the accounting read models
func (p *LedgerProjector) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *accounting.AccountCreatedEvent:
		return p.applyAccountCreated(ctx, e)
	case *accounting.AccountDeactivatedEvent:
		return p.applyAccountDeactivated(ctx, e)
	case *accounting.JournalEntryCreatedEvent:
		return p.applyEntryCreated(ctx, e)
	case *accounting.JournalEntryPostedEvent:
		return p.applyEntryPosted(ctx, e)
	case *accounting.JournalEntryReversedEvent:
		return p.applyEntryReversed(ctx, e)
	default:
		p.logger.Warn("ledger projector received unexpected event",
			zap.String("event_type", event.EventType()))
		return nil
	}
}

func (p *LedgerProjector) applyAccountCreated(ctx context.Context, e *accounting.AccountCreatedEvent) error {
	applied, err := p.inStream(ctx, e, func(tx *gorm.DB) error {
		row := AccountProjection{
			ID:          e.AccountID,
			TenantID:    e.TenantID(),
			Code:        e.Code,
			Name:        e.Name,
			Type:        e.AccountType,
			ParentID:    e.ParentID,
			IsActive:    true,
			DebitTotal:  decimal.Zero,
			CreditTotal: decimal.Zero,
			Balance:     decimal.Zero,
			LastVersion: e.Version(),
			UpdatedAt:   time.Now().UTC(),
		}
		return tx.Create(&row).Error
	})
	if err != nil || !applied {
		return err
	}
	return p.invalidate(ctx, e.TenantID(),
		shared.AccountCacheKey(e.TenantID(), e.AccountID),
		shared.AccountsByTypeCacheKey(e.TenantID(), e.AccountType.String()),
	)
}

func (p *LedgerProjector) applyAccountDeactivated(ctx context.Context, e *accounting.AccountDeactivatedEvent) error {
	var accountType accounting.AccountType
	applied, err := p.inStream(ctx, e, func(tx *gorm.DB) error {
		var account AccountProjection
		if err := tx.Where("id = ? AND tenant_id = ?", e.AccountID, e.TenantID()).
			First(&account).Error; err != nil {
			return fmt.Errorf("failed to load account %s: %w", e.AccountID, err)
		}
		accountType = account.Type
		return tx.Model(&AccountProjection{}).
			Where("id = ? AND tenant_id = ?", e.AccountID, e.TenantID()).
			Updates(map[string]interface{}{
				"is_active":    false,
				"last_version": e.Version(),
				"updated_at":   time.Now().UTC(),
			}).Error
	})
	if err != nil || !applied {
		return err
	}
	return p.invalidate(ctx, e.TenantID(),
		shared.AccountCacheKey(e.TenantID(), e.AccountID),
		shared.AccountsByTypeCacheKey(e.TenantID(), accountType.String()),
	)
}

func (p *LedgerProjector) applyEntryCreated(ctx context.Context, e *accounting.JournalEntryCreatedEvent) error {
	applied, err := p.inStream(ctx, e, func(tx *gorm.DB) error {
		period, err := tax.ParseFiscalPeriod(e.FiscalPeriod)
		if err != nil {
			return fmt.Errorf("entry %s has malformed fiscal period %q: %w", e.AggregateID(), e.FiscalPeriod, err)
		}
		row := JournalEntryProjection{
			ID:           e.AggregateID(),
			TenantID:     e.TenantID(),
			EntryNumber:  e.EntryNumber,
			FiscalPeriod: e.FiscalPeriod,
			FiscalYear:   period.FiscalYear,
			Status:       accounting.EntryStatusDraft,
			Lines:        JournalLines(e.Lines),
			TotalDebit:   sumDebits(e.Lines),
			TotalCredit:  sumCredits(e.Lines),
			ReversalOf:   e.ReversalOf,
			LastVersion:  e.Version(),
			UpdatedAt:    time.Now().UTC(),
		}
		return tx.Create(&row).Error
	})
	if err != nil || !applied {
		return err
	}
	return nil
}

// applyEntryPosted updates the entry row, flattens its lines, and folds
// each line into its account's running totals, all in one transaction.
// Account balances are therefore exact the moment the event is applied.
func (p *LedgerProjector) applyEntryPosted(ctx context.Context, e *accounting.JournalEntryPostedEvent) error {
	affected := make([]uuid.UUID, 0, len(e.Lines))
	affectedTypes := make(map[accounting.AccountType]struct{})
	applied, err := p.inStream(ctx, e, func(tx *gorm.DB) error {
		period, err := tax.ParseFiscalPeriod(e.FiscalPeriod)
		if err != nil {
			return fmt.Errorf("entry %s has malformed fiscal period %q: %w", e.AggregateID(), e.FiscalPeriod, err)
		}
		postedAt := e.OccurredAt()
		if err := tx.Model(&JournalEntryProjection{}).
			Where("id = ? AND tenant_id = ?", e.AggregateID(), e.TenantID()).
			Updates(map[string]interface{}{
				"status":       accounting.EntryStatusPosted,
				"posted_at":    postedAt,
				"last_version": e.Version(),
				"updated_at":   time.Now().UTC(),
			}).Error; err != nil {
			return fmt.Errorf("failed to update entry %s: %w", e.AggregateID(), err)
		}

		for _, line := range e.Lines {
			lineRow := JournalLineProjection{
				TenantID:   e.TenantID(),
				EntryID:    e.AggregateID(),
				AccountID:  line.AccountID,
				Debit:      line.Debit,
				Credit:     line.Credit,
				FiscalYear: period.FiscalYear,
				PostedAt:   postedAt,
			}
			if err := tx.Create(&lineRow).Error; err != nil {
				return fmt.Errorf("failed to insert line for account %s: %w", line.AccountID, err)
			}
			accountType, err := applyLineToAccount(tx, e.TenantID(), line)
			if err != nil {
				return err
			}
			affected = append(affected, line.AccountID)
			affectedTypes[accountType] = struct{}{}
		}
		return nil
	})
	if err != nil || !applied {
		return err
	}

	keys := []string{shared.TrialBalanceEpochKey(e.TenantID())}
	for _, accountID := range affected {
		keys = append(keys,
			shared.AccountCacheKey(e.TenantID(), accountID),
			shared.AccountBalanceCacheKey(e.TenantID(), accountID),
		)
	}
	// By-type listings carry balances too, so every touched type goes stale.
	for accountType := range affectedTypes {
		keys = append(keys, shared.AccountsByTypeCacheKey(e.TenantID(), accountType.String()))
	}
	return p.invalidate(ctx, e.TenantID(), keys...)
}

func (p *LedgerProjector) applyEntryReversed(ctx context.Context, e *accounting.JournalEntryReversedEvent) error {
	applied, err := p.inStream(ctx, e, func(tx *gorm.DB) error {
		return tx.Model(&JournalEntryProjection{}).
			Where("id = ? AND tenant_id = ?", e.AggregateID(), e.TenantID()).
			Updates(map[string]interface{}{
				"status":          accounting.EntryStatusReversed,
				"reversed_by":     e.ReversingEntryID,
				"reversal_reason": e.Reason,
				"last_version":    e.Version(),
				"updated_at":      time.Now().UTC(),
			}).Error
	})
	if err != nil || !applied {
		return err
	}
	return nil
}

// applyLineToAccount folds one posted line into the account's running
// totals. Balance follows the account type's normal side so debit-normal
// accounts report debits minus credits and credit-normal the inverse.
func applyLineToAccount(tx *gorm.DB, tenantID uuid.UUID, line accounting.JournalLine) (accounting.AccountType, error) {
	var account AccountProjection
	if err := tx.Where("id = ? AND tenant_id = ?", line.AccountID, tenantID).
		First(&account).Error; err != nil {
		return "", fmt.Errorf("failed to load account %s: %w", line.AccountID, err)
	}
	account.DebitTotal = account.DebitTotal.Add(line.Debit)
	account.CreditTotal = account.CreditTotal.Add(line.Credit)
	if account.Type.IsDebitNormal() {
		account.Balance = account.DebitTotal.Sub(account.CreditTotal)
	} else {
		account.Balance = account.CreditTotal.Sub(account.DebitTotal)
	}
	account.UpdatedAt = time.Now().UTC()
	return account.Type, tx.Model(&AccountProjection{}).
		Where("id = ? AND tenant_id = ?", account.ID, tenantID).
		Updates(map[string]interface{}{
			"debit_total":  account.DebitTotal,
			"credit_total": account.CreditTotal,
			"balance":      account.Balance,
			"updated_at":   account.UpdatedAt,
		}).Error
}

// inStream runs apply within a transaction guarded by the projection
// offset. Returns whether the event was applied (false means a duplicate
// delivery that was skipped).
func (p *LedgerProjector) inStream(ctx context.Context, event shared.DomainEvent, apply func(tx *gorm.DB) error) (bool, error) {
	streamID := shared.StreamID(event.TenantID(), event.AggregateType(), event.AggregateID())
	applied := false
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := guardVersion(tx, ledgerProjectionName, streamID, event.Version())
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		applied = true
		return apply(tx)
	})
	if err != nil {
		return false, err
	}
	if !applied {
		p.logger.Debug("skipping already applied event",
			zap.String("stream_id", streamID),
			zap.Int("version", event.Version()),
			zap.String("event_type", event.EventType()))
	}
	return applied, nil
}

func (p *LedgerProjector) invalidate(ctx context.Context, tenantID uuid.UUID, keys ...string) error {
	if p.cache == nil || len(keys) == 0 {
		return nil
	}
	if err := p.cache.Invalidate(ctx, keys...); err != nil {
		// Projection rows are already committed; a failed invalidation only
		// extends staleness until TTL, so log and move on.
		p.logger.Warn("cache invalidation failed",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
	}
	return nil
}

func sumDebits(lines []accounting.JournalLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Debit)
	}
	return total
}

func sumCredits(lines []accounting.JournalLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Credit)
	}
	return total
}
