package projection

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/accounting"
	"github.com/ledger/backend/internal/domain/invoicing"
	"github.com/shopspring/decimal"
)

// Projection rows are denormalized, eventually consistent copies of
// aggregate state. They are written only by event handlers, never by
// commands, and every row carries the version of the last applied event so
// re-application is idempotent. The event stream stays authoritative: all
// tables here can be dropped and rebuilt by replay.

// JournalLines stores journal lines as a JSONB column
type JournalLines []accounting.JournalLine

// Value implements driver.Valuer for JSONB storage
func (l JournalLines) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB storage
func (l *JournalLines) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// InvoiceLineItems stores invoice line items as a JSONB column
type InvoiceLineItems []invoicing.LineItem

// Value implements driver.Valuer for JSONB storage
func (l InvoiceLineItems) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB storage
func (l *InvoiceLineItems) Scan(value interface{}) error {
	return scanJSON(value, l)
}

func scanJSON(value interface{}, target interface{}) error {
	if value == nil {
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan JSON column: unsupported type")
	}
	if len(bytes) == 0 {
		return nil
	}
	return json.Unmarshal(bytes, target)
}

// AccountProjection is the denormalized account read model. DebitTotal and
// CreditTotal accumulate posted journal lines; Balance is derived from them
// according to the account type's normal side, so balance queries are O(1)
// and never re-sum journal lines.
type AccountProjection struct {
	ID          uuid.UUID              `gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID              `gorm:"type:uuid;not null;index;uniqueIndex:idx_account_tenant_code,priority:1"`
	Code        string                 `gorm:"size:14;not null;uniqueIndex:idx_account_tenant_code,priority:2"`
	Name        string                 `gorm:"size:200;not null"`
	Type        accounting.AccountType `gorm:"size:20;not null;index"`
	ParentID    *uuid.UUID             `gorm:"type:uuid;index"`
	IsActive    bool                   `gorm:"not null;default:true"`
	DebitTotal  decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	CreditTotal decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	Balance     decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	LastVersion int                    `gorm:"not null"`
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (AccountProjection) TableName() string {
	return "account_projections"
}

// JournalEntryProjection is the denormalized journal entry read model
type JournalEntryProjection struct {
	ID             uuid.UUID              `gorm:"type:uuid;primaryKey"`
	TenantID       uuid.UUID              `gorm:"type:uuid;not null;index"`
	EntryNumber    string                 `gorm:"size:50;not null;index"`
	FiscalPeriod   string                 `gorm:"size:12;not null;index"`
	FiscalYear     int                    `gorm:"not null;index"`
	Status         accounting.EntryStatus `gorm:"size:20;not null;index"`
	Lines          JournalLines           `gorm:"type:jsonb;not null"`
	TotalDebit     decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	TotalCredit    decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	ReversalOf     *uuid.UUID             `gorm:"type:uuid"`
	ReversedBy     *uuid.UUID             `gorm:"type:uuid"`
	ReversalReason string                 `gorm:"size:500"`
	PostedAt       *time.Time
	LastVersion    int `gorm:"not null"`
	UpdatedAt      time.Time
}

// TableName returns the table name for GORM
func (JournalEntryProjection) TableName() string {
	return "journal_entry_projections"
}

// JournalLineProjection is one posted journal line, flattened for trial
// balance aggregation by fiscal year and as-of date
type JournalLineProjection struct {
	ID         uint64          `gorm:"primaryKey;autoIncrement"`
	TenantID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_line_tenant_year"`
	EntryID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Debit      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Credit     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	FiscalYear int             `gorm:"not null;index:idx_line_tenant_year"`
	PostedAt   time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (JournalLineProjection) TableName() string {
	return "journal_line_projections"
}

// InvoiceProjection is the denormalized invoice read model. Status is a
// derived projection of payment events, never written by a command.
type InvoiceProjection struct {
	ID            uuid.UUID               `gorm:"type:uuid;primaryKey"`
	TenantID      uuid.UUID               `gorm:"type:uuid;not null;index"`
	InvoiceNumber string                  `gorm:"size:50;not null;index"`
	CustomerID    uuid.UUID               `gorm:"type:uuid;not null;index"`
	LineItems     InvoiceLineItems        `gorm:"type:jsonb;not null"`
	Subtotal      decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	TaxRate       decimal.Decimal         `gorm:"type:decimal(8,6);not null"`
	TaxAmount     decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	GrandTotal    decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	PaidAmount    decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Status        invoicing.InvoiceStatus `gorm:"size:20;not null;index"`
	CancelReason  string                  `gorm:"size:500"`
	LastVersion   int                     `gorm:"not null"`
	UpdatedAt     time.Time
}

// TableName returns the table name for GORM
func (InvoiceProjection) TableName() string {
	return "invoice_projections"
}

// PaymentProjection is the denormalized payment read model
type PaymentProjection struct {
	ID             uuid.UUID               `gorm:"type:uuid;primaryKey"`
	TenantID       uuid.UUID               `gorm:"type:uuid;not null;index"`
	InvoiceID      *uuid.UUID              `gorm:"type:uuid;index"`
	Amount         decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Currency       string                  `gorm:"size:3;not null;default:USD"`
	Method         invoicing.PaymentMethod `gorm:"size:20;not null"`
	Status         invoicing.PaymentStatus `gorm:"size:20;not null;index"`
	BankReference  string                  `gorm:"size:100"`
	FailureReason  string                  `gorm:"size:500"`
	ReversalReason string                  `gorm:"size:500"`
	LastVersion    int                     `gorm:"not null"`
	UpdatedAt      time.Time
}

// TableName returns the table name for GORM
func (PaymentProjection) TableName() string {
	return "payment_projections"
}

// ReconciliationIssue records a failed secondary step of cross-aggregate
// coordination (e.g. a completed payment whose invoice update was rejected).
// The primary operation is never rolled back; these rows are worked off by
// out-of-band manual reconciliation.
type ReconciliationIssue struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reason     string          `gorm:"size:1000;not null"`
	Resolved   bool            `gorm:"not null;default:false;index"`
	ResolvedAt *time.Time
	CreatedAt  time.Time
}

// TableName returns the table name for GORM
func (ReconciliationIssue) TableName() string {
	return "reconciliation_issues"
}

// ProjectionOffset tracks the last applied event version per projection per
// stream; the idempotency guard for at-least-once delivery
type ProjectionOffset struct {
	ProjectionName string `gorm:"size:50;primaryKey"`
	StreamID       string `gorm:"size:150;primaryKey"`
	LastVersion    int    `gorm:"not null"`
	UpdatedAt      time.Time
}

// TableName returns the table name for GORM
func (ProjectionOffset) TableName() string {
	return "projection_offsets"
}

// Models returns every projection model for migration helpers
func Models() []interface{} {
	return []interface{}{
		&AccountProjection{},
		&JournalEntryProjection{},
		&JournalLineProjection{},
		&InvoiceProjection{},
		&PaymentProjection{},
		&ReconciliationIssue{},
		&ProjectionOffset{},
		&EntryNumberSequence{},
	}
}
