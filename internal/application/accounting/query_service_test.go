package accounting

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/accounting"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/infrastructure/cache"
	"github.com/ledger/backend/internal/infrastructure/projection"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAccountReader serves canned account rows and counts reads
type stubAccountReader struct {
	rows  map[uuid.UUID]*projection.AccountProjection
	reads int
}

func (s *stubAccountReader) GetAccount(ctx context.Context, tenantID, accountID uuid.UUID) (*projection.AccountProjection, error) {
	s.reads++
	row, ok := s.rows[accountID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return row, nil
}

func (s *stubAccountReader) ListByType(ctx context.Context, tenantID uuid.UUID, accountType accounting.AccountType) ([]projection.AccountProjection, error) {
	s.reads++
	var rows []projection.AccountProjection
	for _, row := range s.rows {
		if row.Type == accountType {
			rows = append(rows, *row)
		}
	}
	return rows, nil
}

func newAccountRow(accountType accounting.AccountType, balance int64) *projection.AccountProjection {
	return &projection.AccountProjection{
		ID:        uuid.New(),
		TenantID:  uuid.New(),
		Code:      "1000-0000-0001",
		Name:      "Cash",
		Type:      accountType,
		IsActive:  true,
		Balance:   decimal.NewFromInt(balance),
		UpdatedAt: time.Now().UTC(),
	}
}

func TestGetAccount(t *testing.T) {
	row := newAccountRow(accounting.AccountTypeAsset, 1500)
	reader := &stubAccountReader{rows: map[uuid.UUID]*projection.AccountProjection{row.ID: row}}
	service := NewAccountQueryService(reader, nil, 0, nil)

	dto, err := service.GetAccount(context.Background(), row.TenantID, row.ID)
	require.NoError(t, err)
	assert.Equal(t, row.ID, dto.ID)
	assert.Equal(t, "1000-0000-0001", dto.Code)
	assert.True(t, dto.Balance.Equal(decimal.NewFromInt(1500)))

	_, err = service.GetAccount(context.Background(), row.TenantID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGetAccountServesFromCache(t *testing.T) {
	row := newAccountRow(accounting.AccountTypeAsset, 1500)
	reader := &stubAccountReader{rows: map[uuid.UUID]*projection.AccountProjection{row.ID: row}}
	memCache := cache.NewMemoryCache()
	service := NewAccountQueryService(reader, memCache, time.Minute, nil)
	ctx := context.Background()

	_, err := service.GetAccount(ctx, row.TenantID, row.ID)
	require.NoError(t, err)
	dto, err := service.GetAccount(ctx, row.TenantID, row.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reader.reads, "second lookup is a cache hit")
	assert.True(t, dto.Balance.Equal(decimal.NewFromInt(1500)))

	// invalidation, as the projector performs it, forces a fresh read
	require.NoError(t, memCache.Invalidate(ctx, shared.AccountCacheKey(row.TenantID, row.ID)))
	_, err = service.GetAccount(ctx, row.TenantID, row.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reader.reads)
}

func TestListAccountsByType(t *testing.T) {
	row := newAccountRow(accounting.AccountTypeAsset, 100)
	reader := &stubAccountReader{rows: map[uuid.UUID]*projection.AccountProjection{row.ID: row}}
	service := NewAccountQueryService(reader, nil, 0, nil)

	dtos, err := service.ListAccountsByType(context.Background(), row.TenantID, accounting.AccountTypeAsset)
	require.NoError(t, err)
	require.Len(t, dtos, 1)
	assert.Equal(t, row.ID, dtos[0].ID)

	dtos, err = service.ListAccountsByType(context.Background(), row.TenantID, accounting.AccountTypeExpense)
	require.NoError(t, err)
	assert.Empty(t, dtos)
}

func TestListAccountsByTypeRejectsUnknownType(t *testing.T) {
	service := NewAccountQueryService(&stubAccountReader{}, nil, 0, nil)

	_, err := service.ListAccountsByType(context.Background(), uuid.New(), accounting.AccountType("PIGGYBANK"))
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_ACCOUNT_TYPE", domainErr.Code)
}

func TestGetAccountBalance(t *testing.T) {
	row := newAccountRow(accounting.AccountTypeRevenue, 4200)
	reader := &stubAccountReader{rows: map[uuid.UUID]*projection.AccountProjection{row.ID: row}}
	service := NewAccountQueryService(reader, nil, 0, nil)

	dto, err := service.GetAccountBalance(context.Background(), row.TenantID, row.ID)
	require.NoError(t, err)
	assert.Equal(t, row.ID, dto.AccountID)
	assert.True(t, dto.Balance.Equal(decimal.NewFromInt(4200)))
}
