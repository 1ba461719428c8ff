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

// stubTrialBalanceReader serves canned rows and counts reads
type stubTrialBalanceReader struct {
	rows  []projection.TrialBalanceRow
	err   error
	reads int
}

func (s *stubTrialBalanceReader) TrialBalance(ctx context.Context, tenantID uuid.UUID, fiscalYear int, asOf time.Time) ([]projection.TrialBalanceRow, error) {
	s.reads++
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func balancedRows() []projection.TrialBalanceRow {
	return []projection.TrialBalanceRow{
		{
			AccountID:   uuid.New(),
			Code:        "1000-0000-0001",
			Name:        "Cash",
			Type:        accounting.AccountTypeAsset,
			DebitTotal:  decimal.NewFromInt(1500),
			CreditTotal: decimal.Zero,
		},
		{
			AccountID:   uuid.New(),
			Code:        "4000-0000-0001",
			Name:        "Sales",
			Type:        accounting.AccountTypeRevenue,
			DebitTotal:  decimal.Zero,
			CreditTotal: decimal.NewFromInt(1500),
		},
	}
}

func TestTrialBalanceGenerate(t *testing.T) {
	reader := &stubTrialBalanceReader{rows: balancedRows()}
	service := NewTrialBalanceService(reader, nil, 0, nil)
	tenantID := uuid.New()

	report, err := service.Generate(context.Background(), tenantID, 2026, time.Now())
	require.NoError(t, err)

	assert.Equal(t, tenantID, report.TenantID)
	assert.Equal(t, 2026, report.FiscalYear)
	assert.True(t, report.TotalDebit.Equal(decimal.NewFromInt(1500)))
	assert.True(t, report.TotalCredit.Equal(decimal.NewFromInt(1500)))
	assert.True(t, report.IsBalanced)
	assert.True(t, report.Variance.IsZero())

	// sections follow statement ordering: assets before revenue
	require.Len(t, report.Sections, 2)
	assert.Equal(t, accounting.AccountTypeAsset, report.Sections[0].Type)
	assert.Equal(t, accounting.AccountTypeRevenue, report.Sections[1].Type)

	// credit-normal balance reads as credits minus debits
	revenue := report.Sections[1].Lines[0]
	assert.True(t, revenue.Balance.Equal(decimal.NewFromInt(1500)))
}

func TestTrialBalanceVarianceTolerance(t *testing.T) {
	tests := []struct {
		name     string
		variance decimal.Decimal
		balanced bool
	}{
		{"exact", decimal.Zero, true},
		{"under tolerance", decimal.NewFromFloat(0.009), true},
		{"at tolerance", decimal.NewFromFloat(0.01), false},
		{"over tolerance", decimal.NewFromFloat(0.02), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := balancedRows()
			rows[1].CreditTotal = rows[1].CreditTotal.Add(tt.variance)
			service := NewTrialBalanceService(&stubTrialBalanceReader{rows: rows}, nil, 0, nil)

			report, err := service.Generate(context.Background(), uuid.New(), 2026, time.Now())
			require.NoError(t, err)
			assert.Equal(t, tt.balanced, report.IsBalanced)
			assert.True(t, report.Variance.Equal(tt.variance), "variance %s", report.Variance)
		})
	}
}

func TestTrialBalanceOmitsEmptySections(t *testing.T) {
	rows := balancedRows()[:1]
	service := NewTrialBalanceService(&stubTrialBalanceReader{rows: rows}, nil, 0, nil)

	report, err := service.Generate(context.Background(), uuid.New(), 2026, time.Now())
	require.NoError(t, err)
	require.Len(t, report.Sections, 1)
	assert.Equal(t, accounting.AccountTypeAsset, report.Sections[0].Type)
	assert.False(t, report.IsBalanced)
}

func TestTrialBalanceCachesPerEpoch(t *testing.T) {
	reader := &stubTrialBalanceReader{rows: balancedRows()}
	memCache := cache.NewMemoryCache()
	service := NewTrialBalanceService(reader, memCache, time.Hour, nil)
	tenantID := uuid.New()
	asOf := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	_, err := service.Generate(ctx, tenantID, 2026, asOf)
	require.NoError(t, err)
	_, err = service.Generate(ctx, tenantID, 2026, asOf)
	require.NoError(t, err)
	assert.Equal(t, 1, reader.reads, "second generation is served from cache")

	// dropping the epoch marker, as projectors do after a posting, forces
	// a fresh read under a new epoch
	require.NoError(t, memCache.Invalidate(ctx, shared.TrialBalanceEpochKey(tenantID)))
	_, err = service.Generate(ctx, tenantID, 2026, asOf)
	require.NoError(t, err)
	assert.Equal(t, 2, reader.reads)
}

func TestTrialBalanceReaderErrorIsSurfaced(t *testing.T) {
	service := NewTrialBalanceService(&stubTrialBalanceReader{err: assert.AnError}, nil, 0, nil)

	_, err := service.Generate(context.Background(), uuid.New(), 2026, time.Now())
	assert.ErrorIs(t, err, assert.AnError)
}
