package projection

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/tax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceGeneratorIssuesSequentialNumbers(t *testing.T) {
	generator := NewSequenceGenerator(newTestDB(t))
	ctx := context.Background()
	tenantID := uuid.New()
	period := tax.FiscalPeriod{FiscalYear: 2026, Period: 2}

	first, err := generator.Next(ctx, tenantID, period)
	require.NoError(t, err)
	assert.Equal(t, "JE-FY2026-000001", first)

	second, err := generator.Next(ctx, tenantID, period)
	require.NoError(t, err)
	assert.Equal(t, "JE-FY2026-000002", second)
}

func TestSequenceGeneratorSeparatesCounters(t *testing.T) {
	generator := NewSequenceGenerator(newTestDB(t))
	ctx := context.Background()
	tenantID := uuid.New()

	_, err := generator.Next(ctx, tenantID, tax.FiscalPeriod{FiscalYear: 2026, Period: 5})
	require.NoError(t, err)

	// a new fiscal year starts its own counter
	number, err := generator.Next(ctx, tenantID, tax.FiscalPeriod{FiscalYear: 2027, Period: 1})
	require.NoError(t, err)
	assert.Equal(t, "JE-FY2027-000001", number)

	// counters do not leak across tenants
	number, err = generator.Next(ctx, uuid.New(), tax.FiscalPeriod{FiscalYear: 2026, Period: 5})
	require.NoError(t, err)
	assert.Equal(t, "JE-FY2026-000001", number)
}
