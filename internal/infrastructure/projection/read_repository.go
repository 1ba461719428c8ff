package projection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/accounting"
	"github.com/ledger/backend/internal/domain/invoicing"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountReadRepository reads the account projection tables
type AccountReadRepository struct {
	db *gorm.DB
}

// NewAccountReadRepository creates an account read repository
func NewAccountReadRepository(db *gorm.DB) *AccountReadRepository {
	return &AccountReadRepository{db: db}
}

// GetAccount returns one account row
func (r *AccountReadRepository) GetAccount(ctx context.Context, tenantID, accountID uuid.UUID) (*AccountProjection, error) {
	var row AccountProjection
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", accountID, tenantID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return &row, nil
}

// ListByType returns all accounts of one type ordered by code
func (r *AccountReadRepository) ListByType(ctx context.Context, tenantID uuid.UUID, accountType accounting.AccountType) ([]AccountProjection, error) {
	var rows []AccountProjection
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND type = ?", tenantID, accountType).
		Order("code ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by type: %w", err)
	}
	return rows, nil
}

// GetBalance returns the running balance of one account
func (r *AccountReadRepository) GetBalance(ctx context.Context, tenantID, accountID uuid.UUID) (decimal.Decimal, error) {
	row, err := r.GetAccount(ctx, tenantID, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return row.Balance, nil
}

// TrialBalanceRow is one account's aggregated activity for a trial balance
type TrialBalanceRow struct {
	AccountID   uuid.UUID
	Code        string
	Name        string
	Type        accounting.AccountType
	DebitTotal  decimal.Decimal
	CreditTotal decimal.Decimal
}

// TrialBalance aggregates posted journal lines per active account for one
// fiscal year up to asOf. Active accounts with no activity in the window
// appear with zero totals so the report covers the whole chart.
func (r *AccountReadRepository) TrialBalance(ctx context.Context, tenantID uuid.UUID, fiscalYear int, asOf time.Time) ([]TrialBalanceRow, error) {
	var rows []TrialBalanceRow
	err := r.db.WithContext(ctx).
		Table("account_projections AS a").
		Select("a.id AS account_id, a.code, a.name, a.type, COALESCE(SUM(l.debit), 0) AS debit_total, COALESCE(SUM(l.credit), 0) AS credit_total").
		Joins("LEFT JOIN journal_line_projections AS l ON l.account_id = a.id AND l.tenant_id = a.tenant_id AND l.fiscal_year = ? AND l.posted_at <= ?", fiscalYear, asOf).
		Where("a.tenant_id = ? AND a.is_active = ?", tenantID, true).
		Group("a.id, a.code, a.name, a.type").
		Order("a.code ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate trial balance: %w", err)
	}
	return rows, nil
}

// InvoiceReadRepository reads the invoice projection table
type InvoiceReadRepository struct {
	db *gorm.DB
}

// NewInvoiceReadRepository creates an invoice read repository
func NewInvoiceReadRepository(db *gorm.DB) *InvoiceReadRepository {
	return &InvoiceReadRepository{db: db}
}

// GetInvoice returns one invoice row
func (r *InvoiceReadRepository) GetInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceProjection, error) {
	var row InvoiceProjection
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", invoiceID, tenantID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query invoice: %w", err)
	}
	return &row, nil
}

// InvoiceFilter narrows an invoice listing
type InvoiceFilter struct {
	Status     *invoicing.InvoiceStatus
	CustomerID *uuid.UUID
	Limit      int
	Offset     int
}

// ListInvoices returns invoices for one tenant, newest first
func (r *InvoiceReadRepository) ListInvoices(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) ([]InvoiceProjection, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("updated_at DESC")
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	var rows []InvoiceProjection
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	return rows, nil
}

// PaymentReadRepository reads the payment projection table
type PaymentReadRepository struct {
	db *gorm.DB
}

// NewPaymentReadRepository creates a payment read repository
func NewPaymentReadRepository(db *gorm.DB) *PaymentReadRepository {
	return &PaymentReadRepository{db: db}
}

// GetPayment returns one payment row
func (r *PaymentReadRepository) GetPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (*PaymentProjection, error) {
	var row PaymentProjection
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", paymentID, tenantID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query payment: %w", err)
	}
	return &row, nil
}

// ListByInvoice returns all payments linked to one invoice
func (r *PaymentReadRepository) ListByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]PaymentProjection, error) {
	var rows []PaymentProjection
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND invoice_id = ?", tenantID, invoiceID).
		Order("updated_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query payments by invoice: %w", err)
	}
	return rows, nil
}

// ReconciliationIssueRepository records and lists reconciliation issues
type ReconciliationIssueRepository struct {
	db *gorm.DB
}

// NewReconciliationIssueRepository creates a reconciliation issue repository
func NewReconciliationIssueRepository(db *gorm.DB) *ReconciliationIssueRepository {
	return &ReconciliationIssueRepository{db: db}
}

// Record persists a new unresolved issue
func (r *ReconciliationIssueRepository) Record(ctx context.Context, tenantID, paymentID, invoiceID uuid.UUID, amount decimal.Decimal, reason string) error {
	issue := ReconciliationIssue{
		ID:        uuid.New(),
		TenantID:  tenantID,
		PaymentID: paymentID,
		InvoiceID: invoiceID,
		Amount:    amount,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&issue).Error; err != nil {
		return fmt.Errorf("failed to record reconciliation issue: %w", err)
	}
	return nil
}

// ListOpen returns unresolved issues for one tenant, oldest first
func (r *ReconciliationIssueRepository) ListOpen(ctx context.Context, tenantID uuid.UUID) ([]ReconciliationIssue, error) {
	var rows []ReconciliationIssue
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND resolved = ?", tenantID, false).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query reconciliation issues: %w", err)
	}
	return rows, nil
}

// Resolve marks an issue as handled
func (r *ReconciliationIssueRepository) Resolve(ctx context.Context, tenantID, issueID uuid.UUID) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&ReconciliationIssue{}).
		Where("id = ? AND tenant_id = ? AND resolved = ?", issueID, tenantID, false).
		Updates(map[string]interface{}{"resolved": true, "resolved_at": now})
	if result.Error != nil {
		return fmt.Errorf("failed to resolve reconciliation issue: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
