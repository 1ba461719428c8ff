package accounting

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/accounting"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/infrastructure/projection"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AccountReader reads account rows from the ledger projection
type AccountReader interface {
	GetAccount(ctx context.Context, tenantID, accountID uuid.UUID) (*projection.AccountProjection, error)
	ListByType(ctx context.Context, tenantID uuid.UUID, accountType accounting.AccountType) ([]projection.AccountProjection, error)
}

// AccountDTO is the read-model view of an account
type AccountDTO struct {
	ID       uuid.UUID              `json:"id"`
	Code     string                 `json:"code"`
	Name     string                 `json:"name"`
	Type     accounting.AccountType `json:"type"`
	ParentID *uuid.UUID             `json:"parent_id,omitempty"`
	IsActive bool                   `json:"is_active"`
	Balance  decimal.Decimal        `json:"balance"`
}

// AccountQueryService serves account lookups from the projection with a
// short-lived cache in front. Cached entries are invalidated synchronously
// by the ledger projector, so the TTL only bounds staleness when
// invalidation itself fails.
type AccountQueryService struct {
	accounts  AccountReader
	cache     shared.Cache
	entityTTL time.Duration
	logger    *zap.Logger
}

// NewAccountQueryService creates an account query service
func NewAccountQueryService(accounts AccountReader, cache shared.Cache, entityTTL time.Duration, logger *zap.Logger) *AccountQueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountQueryService{accounts: accounts, cache: cache, entityTTL: entityTTL, logger: logger}
}

// GetAccount returns one account
func (s *AccountQueryService) GetAccount(ctx context.Context, tenantID, accountID uuid.UUID) (*AccountDTO, error) {
	key := shared.AccountCacheKey(tenantID, accountID)
	var cached AccountDTO
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	row, err := s.accounts.GetAccount(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}
	dto := toAccountDTO(row)
	s.toCache(ctx, key, dto)
	return &dto, nil
}

// ListAccountsByType returns all accounts of one type ordered by code
func (s *AccountQueryService) ListAccountsByType(ctx context.Context, tenantID uuid.UUID, accountType accounting.AccountType) ([]AccountDTO, error) {
	if !accountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_TYPE", "Unknown account type")
	}

	key := shared.AccountsByTypeCacheKey(tenantID, accountType.String())
	var cached []AccountDTO
	if s.fromCache(ctx, key, &cached) {
		return cached, nil
	}

	rows, err := s.accounts.ListByType(ctx, tenantID, accountType)
	if err != nil {
		return nil, err
	}
	dtos := make([]AccountDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, toAccountDTO(&rows[i]))
	}
	s.toCache(ctx, key, dtos)
	return dtos, nil
}

// AccountBalanceDTO is the read-model view of one account balance
type AccountBalanceDTO struct {
	AccountID uuid.UUID       `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
	AsOf      time.Time       `json:"as_of"`
}

// GetAccountBalance returns the running balance of one account
func (s *AccountQueryService) GetAccountBalance(ctx context.Context, tenantID, accountID uuid.UUID) (*AccountBalanceDTO, error) {
	key := shared.AccountBalanceCacheKey(tenantID, accountID)
	var cached AccountBalanceDTO
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	row, err := s.accounts.GetAccount(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}
	dto := AccountBalanceDTO{AccountID: row.ID, Balance: row.Balance, AsOf: row.UpdatedAt}
	s.toCache(ctx, key, dto)
	return &dto, nil
}

// fromCache loads key into target, reporting a usable hit. Cache errors
// degrade to a miss.
func (s *AccountQueryService) fromCache(ctx context.Context, key string, target interface{}) bool {
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

func (s *AccountQueryService) toCache(ctx context.Context, key string, value interface{}) {
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

func toAccountDTO(row *projection.AccountProjection) AccountDTO {
	return AccountDTO{
		ID:       row.ID,
		Code:     row.Code,
		Name:     row.Name,
		Type:     row.Type,
		ParentID: row.ParentID,
		IsActive: row.IsActive,
		Balance:  row.Balance,
	}
}
