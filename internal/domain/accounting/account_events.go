package accounting

import (
	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/shared"
)

// AccountCreatedEvent is raised when a new account is added to the chart
type AccountCreatedEvent struct {
	shared.BaseDomainEvent
	AccountID   uuid.UUID   `json:"account_id"`
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	AccountType AccountType `json:"account_type"`
	ParentID    *uuid.UUID  `json:"parent_id,omitempty"`
}

// EventType returns the event type name
func (e *AccountCreatedEvent) EventType() string {
	return "AccountCreated"
}

// NewAccountCreatedEvent creates a new AccountCreatedEvent
func NewAccountCreatedEvent(c *ChartOfAccounts, accountID uuid.UUID, code, name string, accountType AccountType, parentID *uuid.UUID) *AccountCreatedEvent {
	return &AccountCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AccountCreated", ChartOfAccountsAggregateType, c.ID, c.TenantID),
		AccountID:       accountID,
		Code:            code,
		Name:            name,
		AccountType:     accountType,
		ParentID:        parentID,
	}
}

// AccountDeactivatedEvent is raised when an account is deactivated
type AccountDeactivatedEvent struct {
	shared.BaseDomainEvent
	AccountID uuid.UUID `json:"account_id"`
	Reason    string    `json:"reason"`
}

// EventType returns the event type name
func (e *AccountDeactivatedEvent) EventType() string {
	return "AccountDeactivated"
}

// NewAccountDeactivatedEvent creates a new AccountDeactivatedEvent
func NewAccountDeactivatedEvent(c *ChartOfAccounts, accountID uuid.UUID, reason string) *AccountDeactivatedEvent {
	return &AccountDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AccountDeactivated", ChartOfAccountsAggregateType, c.ID, c.TenantID),
		AccountID:       accountID,
		Reason:          reason,
	}
}
