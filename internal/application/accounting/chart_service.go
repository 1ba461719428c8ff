package accounting

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/application/command"
	"github.com/ledger/backend/internal/domain/accounting"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BalanceReader reads the current account balance from the read model.
// Deactivation consults it because the chart aggregate holds structure
// only; balances live in the ledger projection.
type BalanceReader interface {
	GetBalance(ctx context.Context, tenantID, accountID uuid.UUID) (decimal.Decimal, error)
}

// ChartService handles chart of accounts commands. The whole chart of one
// tenant is a single aggregate, so structural rules (code uniqueness,
// parent chains) are enforced inside one consistency boundary.
type ChartService struct {
	executor *command.Executor
	balances BalanceReader
	logger   *zap.Logger
}

// NewChartService creates a new ChartService
func NewChartService(executor *command.Executor, balances BalanceReader, logger *zap.Logger) *ChartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChartService{executor: executor, balances: balances, logger: logger}
}

// CreateAccountRequest is a request to add an account to the chart
type CreateAccountRequest struct {
	TenantID    uuid.UUID
	Code        string
	Name        string
	AccountType accounting.AccountType
	ParentID    *uuid.UUID
}

// CreateAccountResult reports the created account
type CreateAccountResult struct {
	AccountID uuid.UUID `json:"account_id"`
	Code      string    `json:"code"`
}

// CreateAccount adds a new account to the tenant's chart
func (s *ChartService) CreateAccount(ctx context.Context, req CreateAccountRequest) (*CreateAccountResult, error) {
	accountID := uuid.New()
	streamID := chartStreamID(req.TenantID)

	_, err := command.Execute(ctx, s.executor, streamID,
		rehydrateChart(req.TenantID),
		func(chart *accounting.ChartOfAccounts) error {
			return chart.CreateAccount(accountID, req.Code, req.Name, req.AccountType, req.ParentID)
		})
	if err != nil {
		return nil, err
	}

	s.logger.Info("account created",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("account_id", accountID.String()),
		zap.String("code", req.Code))
	return &CreateAccountResult{AccountID: accountID, Code: req.Code}, nil
}

// DeactivateAccountRequest is a request to deactivate an account
type DeactivateAccountRequest struct {
	TenantID  uuid.UUID
	AccountID uuid.UUID
	Reason    string
}

// DeactivateAccount deactivates an account. The balance check reads the
// projection, so a posting racing this command can slip through; the
// window is accepted because a deactivated account only blocks future
// postings and carries no financial effect of its own.
func (s *ChartService) DeactivateAccount(ctx context.Context, req DeactivateAccountRequest) error {
	balance, err := s.balances.GetBalance(ctx, req.TenantID, req.AccountID)
	if err != nil {
		return fmt.Errorf("failed to read account balance: %w", err)
	}

	streamID := chartStreamID(req.TenantID)
	_, err = command.Execute(ctx, s.executor, streamID,
		rehydrateChart(req.TenantID),
		func(chart *accounting.ChartOfAccounts) error {
			return chart.DeactivateAccount(req.AccountID, req.Reason, balance)
		})
	if err != nil {
		return err
	}

	s.logger.Info("account deactivated",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("account_id", req.AccountID.String()))
	return nil
}

func chartStreamID(tenantID uuid.UUID) string {
	return shared.StreamID(tenantID, accounting.ChartOfAccountsAggregateType, tenantID)
}

func rehydrateChart(tenantID uuid.UUID) func([]shared.DomainEvent) (*accounting.ChartOfAccounts, error) {
	return func(history []shared.DomainEvent) (*accounting.ChartOfAccounts, error) {
		chart := accounting.NewChartOfAccounts(tenantID)
		if err := shared.LoadFromHistory(chart, history); err != nil {
			return nil, fmt.Errorf("failed to rehydrate chart of accounts: %w", err)
		}
		return chart, nil
	}
}
