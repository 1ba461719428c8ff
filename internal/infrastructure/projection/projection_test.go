package projection

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/accounting"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the projection schema.
// The named shared-cache DSN keeps every pooled connection on the same
// database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(Models()...))
	return db
}

// seedAccounts drives the chart aggregate and returns its events, so the
// projector receives exactly what production publishes
func seedAccounts(t *testing.T, tenantID uuid.UUID, accounts map[uuid.UUID]accounting.AccountType) []shared.DomainEvent {
	t.Helper()
	chart := accounting.NewChartOfAccounts(tenantID)
	code := 1
	for accountID, accountType := range accounts {
		require.NoError(t, chart.CreateAccount(accountID,
			fmt.Sprintf("1000-0000-%04d", code), "Account", accountType, nil))
		code++
	}
	return chart.UncommittedEvents()
}
