package projection

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/tax"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EntryNumberSequence is a per-tenant, per-fiscal-year counter for journal
// entry numbers
type EntryNumberSequence struct {
	TenantID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	FiscalYear int       `gorm:"primaryKey"`
	NextValue  int64     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (EntryNumberSequence) TableName() string {
	return "entry_number_sequences"
}

// SequenceGenerator issues sequential journal entry numbers backed by a
// row-locked counter, so concurrent drafts in one fiscal year never share
// a number.
type SequenceGenerator struct {
	db *gorm.DB
}

// NewSequenceGenerator creates a sequence generator
func NewSequenceGenerator(db *gorm.DB) *SequenceGenerator {
	return &SequenceGenerator{db: db}
}

// Next returns the next entry number for the tenant and fiscal year,
// formatted as JE-FY2026-000042
func (g *SequenceGenerator) Next(ctx context.Context, tenantID uuid.UUID, period tax.FiscalPeriod) (string, error) {
	var value int64
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq EntryNumberSequence
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tenant_id = ? AND fiscal_year = ?", tenantID, period.FiscalYear).
			First(&seq).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			seq = EntryNumberSequence{TenantID: tenantID, FiscalYear: period.FiscalYear, NextValue: 1}
			if err := tx.Create(&seq).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		value = seq.NextValue
		return tx.Model(&EntryNumberSequence{}).
			Where("tenant_id = ? AND fiscal_year = ?", tenantID, period.FiscalYear).
			Update("next_value", seq.NextValue+1).Error
	})
	if err != nil {
		return "", fmt.Errorf("failed to advance entry number sequence: %w", err)
	}
	return fmt.Sprintf("JE-FY%d-%06d", period.FiscalYear, value), nil
}
