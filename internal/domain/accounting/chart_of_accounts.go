package accounting

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ChartOfAccountsAggregateType is the aggregate type name used in stream IDs
const ChartOfAccountsAggregateType = "ChartOfAccounts"

// AccountType represents the classification of a ledger account
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// IsValid checks if the account type is a valid AccountType
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity,
		AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// String returns the string representation of AccountType
func (t AccountType) String() string {
	return string(t)
}

// IsDebitNormal returns true for account types whose balance increases with
// debits (assets and expenses)
func (t AccountType) IsDebitNormal() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

// accountCodePattern is the hierarchical account code format: three
// 4-digit numeric segments separated by hyphens, e.g. "1234-5678-9012"
var accountCodePattern = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}$`)

// Account is an entry in the chart of accounts. Accounts are held in an
// id-indexed map on the aggregate and reference their parent by id only.
type Account struct {
	ID       uuid.UUID   `json:"id"`
	Code     string      `json:"code"`
	Name     string      `json:"name"`
	Type     AccountType `json:"type"`
	ParentID *uuid.UUID  `json:"parent_id,omitempty"`
	IsActive bool        `json:"is_active"`
}

// ChartOfAccounts is the per-tenant chart of accounts aggregate root.
// There is exactly one chart per tenant; its aggregate ID equals the tenant
// ID so the stream can be located without a lookup.
type ChartOfAccounts struct {
	shared.AggregateBase
	Accounts map[uuid.UUID]*Account
	byCode   map[string]uuid.UUID
}

// NewChartOfAccounts creates an empty chart aggregate for rehydration or
// first use
func NewChartOfAccounts(tenantID uuid.UUID) *ChartOfAccounts {
	return &ChartOfAccounts{
		AggregateBase: shared.NewAggregateBase(tenantID, tenantID),
		Accounts:      make(map[uuid.UUID]*Account),
		byCode:        make(map[string]uuid.UUID),
	}
}

// AggregateType returns the aggregate type name
func (c *ChartOfAccounts) AggregateType() string {
	return ChartOfAccountsAggregateType
}

// CreateAccount validates and records the creation of a new account
func (c *ChartOfAccounts) CreateAccount(accountID uuid.UUID, code, name string, accountType AccountType, parentID *uuid.UUID) error {
	if accountID == uuid.Nil {
		return shared.NewDomainError("INVALID_ACCOUNT_ID", "Account ID cannot be empty")
	}
	if _, exists := c.Accounts[accountID]; exists {
		return shared.NewDomainError("ACCOUNT_EXISTS", fmt.Sprintf("Account %s already exists", accountID))
	}
	if !accountCodePattern.MatchString(code) {
		return shared.NewDomainError("INVALID_ACCOUNT_CODE",
			fmt.Sprintf("Account code %q must match the format NNNN-NNNN-NNNN", code))
	}
	if _, exists := c.byCode[code]; exists {
		return shared.NewDomainError("DUPLICATE_ACCOUNT_CODE", fmt.Sprintf("Account code %s is already in use", code))
	}
	if name == "" {
		return shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot exceed 200 characters")
	}
	if !accountType.IsValid() {
		return shared.NewDomainError("INVALID_ACCOUNT_TYPE", fmt.Sprintf("Account type %q is not valid", accountType))
	}
	if parentID != nil {
		if err := c.validateParentChain(accountID, *parentID); err != nil {
			return err
		}
	}

	return shared.Raise(c, &c.AggregateBase, NewAccountCreatedEvent(c, accountID, code, name, accountType, parentID))
}

// DeactivateAccount records the deactivation of an account. The current
// balance is supplied by the command handler from the read model; an account
// with a nonzero balance cannot be deactivated.
func (c *ChartOfAccounts) DeactivateAccount(accountID uuid.UUID, reason string, currentBalance decimal.Decimal) error {
	account, exists := c.Accounts[accountID]
	if !exists {
		return shared.NewDomainError("ACCOUNT_NOT_FOUND", fmt.Sprintf("Account %s does not exist", accountID))
	}
	if !account.IsActive {
		return shared.NewDomainError("ACCOUNT_INACTIVE", fmt.Sprintf("Account %s is already inactive", account.Code))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Deactivation reason is required")
	}
	if !currentBalance.IsZero() {
		return shared.NewDomainError("ACCOUNT_HAS_BALANCE",
			fmt.Sprintf("Account %s has a nonzero balance of %s and cannot be deactivated", account.Code, currentBalance.StringFixed(2)))
	}

	return shared.Raise(c, &c.AggregateBase, NewAccountDeactivatedEvent(c, accountID, reason))
}

// validateParentChain checks that the parent exists in this tenant's chart
// and that walking the parent-id chain never loops back to the new account.
// Parents are referenced by id, never by pointer, so the walk is bounded by
// the chart size.
func (c *ChartOfAccounts) validateParentChain(accountID, parentID uuid.UUID) error {
	parent, exists := c.Accounts[parentID]
	if !exists {
		return shared.NewDomainError("PARENT_NOT_FOUND", fmt.Sprintf("Parent account %s does not exist", parentID))
	}
	if !parent.IsActive {
		return shared.NewDomainError("PARENT_INACTIVE", fmt.Sprintf("Parent account %s is inactive", parent.Code))
	}

	seen := map[uuid.UUID]bool{accountID: true}
	for current := &parentID; current != nil; {
		if seen[*current] {
			return shared.NewDomainError("PARENT_CYCLE",
				fmt.Sprintf("Parent chain of account %s contains a cycle", parentID))
		}
		seen[*current] = true
		ancestor, ok := c.Accounts[*current]
		if !ok {
			return shared.NewDomainError("PARENT_NOT_FOUND",
				fmt.Sprintf("Ancestor account %s does not exist", *current))
		}
		current = ancestor.ParentID
	}
	return nil
}

// Apply folds a single event into the chart state
func (c *ChartOfAccounts) Apply(event shared.DomainEvent) error {
	switch e := event.(type) {
	case *AccountCreatedEvent:
		account := &Account{
			ID:       e.AccountID,
			Code:     e.Code,
			Name:     e.Name,
			Type:     e.AccountType,
			ParentID: e.ParentID,
			IsActive: true,
		}
		c.Accounts[e.AccountID] = account
		c.byCode[e.Code] = e.AccountID
	case *AccountDeactivatedEvent:
		if account, ok := c.Accounts[e.AccountID]; ok {
			account.IsActive = false
		}
	default:
		return fmt.Errorf("chart of accounts cannot apply event type %T", event)
	}
	return nil
}

// Ensure ChartOfAccounts implements Aggregate
var _ shared.Aggregate = (*ChartOfAccounts)(nil)
