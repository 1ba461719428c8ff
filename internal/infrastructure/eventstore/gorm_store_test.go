package eventstore

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/accounting"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newSQLiteStore(t *testing.T) *GormEventStore {
	t.Helper()
	// a named shared-cache DSN keeps every pooled connection on the same
	// in-memory database
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&StoredEvent{}))
	return NewGormEventStore(db, NewDomainSerializer(), nil)
}

func TestGormStoreAppendAndRead(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	tenantID := uuid.New()
	chart := accounting.NewChartOfAccounts(tenantID)
	accountID := uuid.New()
	require.NoError(t, chart.CreateAccount(accountID, "1000-0000-0001", "Cash", accounting.AccountTypeAsset, nil))
	streamID := shared.StreamID(tenantID, accounting.ChartOfAccountsAggregateType, tenantID)

	newVersion, err := store.Append(ctx, streamID, 0, chart.UncommittedEvents())
	require.NoError(t, err)
	assert.Equal(t, 1, newVersion)

	events, err := store.Read(ctx, streamID, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)

	created, ok := events[0].(*accounting.AccountCreatedEvent)
	require.True(t, ok, "got %T", events[0])
	assert.Equal(t, accountID, created.AccountID)
	assert.Equal(t, 1, created.Version())
}

func TestGormStoreStaleVersionConflicts(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	tenantID := uuid.New()
	chart := accounting.NewChartOfAccounts(tenantID)
	require.NoError(t, chart.CreateAccount(uuid.New(), "1000-0000-0001", "Cash", accounting.AccountTypeAsset, nil))
	streamID := shared.StreamID(tenantID, accounting.ChartOfAccountsAggregateType, tenantID)

	_, err := store.Append(ctx, streamID, 0, chart.UncommittedEvents())
	require.NoError(t, err)

	// second writer rehydrated before the first append landed
	stale := accounting.NewChartOfAccounts(tenantID)
	require.NoError(t, stale.CreateAccount(uuid.New(), "1000-0000-0002", "Bank", accounting.AccountTypeAsset, nil))

	_, err = store.Append(ctx, streamID, 0, stale.UncommittedEvents())
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	// the conflicting batch must not have been persisted
	events, err := store.Read(ctx, streamID, 0)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestGormStoreAppendsAreContiguous(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	tenantID := uuid.New()
	chart := accounting.NewChartOfAccounts(tenantID)
	require.NoError(t, chart.CreateAccount(uuid.New(), "1000-0000-0001", "Cash", accounting.AccountTypeAsset, nil))
	streamID := shared.StreamID(tenantID, accounting.ChartOfAccountsAggregateType, tenantID)

	_, err := store.Append(ctx, streamID, 0, chart.UncommittedEvents())
	require.NoError(t, err)
	chart.ClearUncommittedEvents()

	require.NoError(t, chart.CreateAccount(uuid.New(), "1000-0000-0002", "Bank", accounting.AccountTypeAsset, nil))
	require.NoError(t, chart.CreateAccount(uuid.New(), "2000-0000-0001", "Loans", accounting.AccountTypeLiability, nil))

	newVersion, err := store.Append(ctx, streamID, 1, chart.UncommittedEvents())
	require.NoError(t, err)
	assert.Equal(t, 3, newVersion)

	events, err := store.Read(ctx, streamID, 1)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, 2, events[0].Version())
	assert.Equal(t, 3, events[1].Version())
}

func TestGormStoreReadAll(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	tenantID := uuid.New()
	chart := accounting.NewChartOfAccounts(tenantID)
	require.NoError(t, chart.CreateAccount(uuid.New(), "1000-0000-0001", "Cash", accounting.AccountTypeAsset, nil))
	require.NoError(t, chart.CreateAccount(uuid.New(), "1000-0000-0002", "Bank", accounting.AccountTypeAsset, nil))
	streamID := shared.StreamID(tenantID, accounting.ChartOfAccountsAggregateType, tenantID)

	_, err := store.Append(ctx, streamID, 0, chart.UncommittedEvents())
	require.NoError(t, err)

	events, lastSequence, err := store.ReadAll(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, uint64(2), lastSequence)

	// resume after the first event
	events, _, err = store.ReadAll(ctx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestGormStoreMismatchedEventVersion(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	tenantID := uuid.New()
	chart := accounting.NewChartOfAccounts(tenantID)
	require.NoError(t, chart.CreateAccount(uuid.New(), "1000-0000-0001", "Cash", accounting.AccountTypeAsset, nil))
	streamID := shared.StreamID(tenantID, accounting.ChartOfAccountsAggregateType, tenantID)

	// event carries version 1 but the caller claims the stream is at 4
	_, err := store.Append(ctx, streamID, 4, chart.UncommittedEvents())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, shared.ErrConcurrencyConflict)
}

func TestGormStoreReadFailureMapsToStoreUnavailable(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	dialector := postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"})
	db, err := gorm.Open(dialector, &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	store := NewGormEventStore(db, NewDomainSerializer(), nil)

	mock.ExpectQuery(`SELECT \* FROM "stored_events"`).
		WillReturnError(assert.AnError)

	_, err = store.Read(context.Background(), "tenant:ChartOfAccounts:id", 0)
	assert.ErrorIs(t, err, shared.ErrStoreUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}
