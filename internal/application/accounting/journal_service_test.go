package accounting

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/application/command"
	"github.com/ledger/backend/internal/domain/accounting"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/domain/tax"
	"github.com/ledger/backend/internal/infrastructure/eventstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubNumberGenerator issues deterministic entry numbers
type stubNumberGenerator struct {
	next int64
}

func (g *stubNumberGenerator) Next(ctx context.Context, tenantID uuid.UUID, period tax.FiscalPeriod) (string, error) {
	g.next++
	return fmt.Sprintf("JE-FY%d-%06d", period.FiscalYear, g.next), nil
}

type journalServiceFixture struct {
	store    *eventstore.MemoryEventStore
	service  *JournalService
	tenantID uuid.UUID
}

func newJournalServiceFixture(t *testing.T) *journalServiceFixture {
	t.Helper()
	store := eventstore.NewMemoryEventStore()
	executor := command.NewExecutor(store, nil, nil)
	return &journalServiceFixture{
		store:    store,
		service:  NewJournalService(executor, store, &stubNumberGenerator{}, nil),
		tenantID: uuid.New(),
	}
}

func balancedLines(amount int64) []accounting.JournalLine {
	return []accounting.JournalLine{
		{AccountID: uuid.New(), Debit: decimal.NewFromInt(amount), Credit: decimal.Zero},
		{AccountID: uuid.New(), Debit: decimal.Zero, Credit: decimal.NewFromInt(amount)},
	}
}

func (f *journalServiceFixture) loadEntry(t *testing.T, entryID uuid.UUID) *accounting.JournalEntry {
	t.Helper()
	history, err := f.store.Read(context.Background(), entryStreamID(f.tenantID, entryID), 0)
	require.NoError(t, err)
	entry := accounting.NewJournalEntry(f.tenantID, entryID)
	require.NoError(t, shared.LoadFromHistory(entry, history))
	return entry
}

func TestCreateEntry(t *testing.T) {
	f := newJournalServiceFixture(t)

	result, err := f.service.CreateEntry(context.Background(), CreateEntryRequest{
		TenantID:  f.tenantID,
		EntryDate: time.Date(2025, time.August, 15, 0, 0, 0, 0, time.UTC),
		Lines:     balancedLines(1000),
	})
	require.NoError(t, err)
	assert.Equal(t, "JE-FY2026-000001", result.EntryNumber)
	assert.Equal(t, "FY2026-P02", result.FiscalPeriod)

	entry := f.loadEntry(t, result.EntryID)
	assert.Equal(t, accounting.EntryStatusDraft, entry.Status)
}

func TestCreateEntryRejectsInvalidLines(t *testing.T) {
	f := newJournalServiceFixture(t)

	_, err := f.service.CreateEntry(context.Background(), CreateEntryRequest{
		TenantID: f.tenantID,
		Lines:    balancedLines(1000)[:1],
	})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_LINES", domainErr.Code)
}

func TestPostEntry(t *testing.T) {
	f := newJournalServiceFixture(t)

	result, err := f.service.CreateEntry(context.Background(), CreateEntryRequest{
		TenantID: f.tenantID,
		Lines:    balancedLines(500),
	})
	require.NoError(t, err)

	require.NoError(t, f.service.PostEntry(context.Background(), f.tenantID, result.EntryID))
	assert.Equal(t, accounting.EntryStatusPosted, f.loadEntry(t, result.EntryID).Status)
}

func TestPostEntryRejectsUnbalancedDraft(t *testing.T) {
	f := newJournalServiceFixture(t)

	lines := balancedLines(500)
	lines[1].Credit = decimal.NewFromFloat(499.99)
	result, err := f.service.CreateEntry(context.Background(), CreateEntryRequest{
		TenantID: f.tenantID,
		Lines:    lines,
	})
	require.NoError(t, err)

	err = f.service.PostEntry(context.Background(), f.tenantID, result.EntryID)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "UNBALANCED_ENTRY", domainErr.Code)
}

func TestPostEntryNotFound(t *testing.T) {
	f := newJournalServiceFixture(t)

	err := f.service.PostEntry(context.Background(), f.tenantID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestReverseEntry(t *testing.T) {
	f := newJournalServiceFixture(t)

	created, err := f.service.CreateEntry(context.Background(), CreateEntryRequest{
		TenantID: f.tenantID,
		Lines:    balancedLines(1000),
	})
	require.NoError(t, err)
	require.NoError(t, f.service.PostEntry(context.Background(), f.tenantID, created.EntryID))

	reversed, err := f.service.ReverseEntry(context.Background(), ReverseEntryRequest{
		TenantID: f.tenantID,
		EntryID:  created.EntryID,
		Reason:   "duplicate booking",
	})
	require.NoError(t, err)
	assert.NotEqual(t, created.EntryID, reversed.ReversingEntryID)
	assert.NotEqual(t, created.EntryNumber, reversed.ReversingEntryNumber)

	original := f.loadEntry(t, created.EntryID)
	assert.Equal(t, accounting.EntryStatusReversed, original.Status)
	require.NotNil(t, original.ReversedBy)
	assert.Equal(t, reversed.ReversingEntryID, *original.ReversedBy)
	assert.Equal(t, "duplicate booking", original.ReversalReason)

	// the reversing entry is posted with every line's sides swapped
	reversing := f.loadEntry(t, reversed.ReversingEntryID)
	assert.Equal(t, accounting.EntryStatusPosted, reversing.Status)
	require.NotNil(t, reversing.ReversalOf)
	assert.Equal(t, created.EntryID, *reversing.ReversalOf)
	for i, line := range reversing.Lines {
		assert.True(t, line.Debit.Equal(original.Lines[i].Credit))
		assert.True(t, line.Credit.Equal(original.Lines[i].Debit))
	}
}

func TestReverseEntryRequiresPostedStatus(t *testing.T) {
	f := newJournalServiceFixture(t)

	created, err := f.service.CreateEntry(context.Background(), CreateEntryRequest{
		TenantID: f.tenantID,
		Lines:    balancedLines(100),
	})
	require.NoError(t, err)

	_, err = f.service.ReverseEntry(context.Background(), ReverseEntryRequest{
		TenantID: f.tenantID,
		EntryID:  created.EntryID,
		Reason:   "mistake",
	})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ENTRY_NOT_POSTED", domainErr.Code)
}

func TestReverseEntryNotFound(t *testing.T) {
	f := newJournalServiceFixture(t)

	_, err := f.service.ReverseEntry(context.Background(), ReverseEntryRequest{
		TenantID: f.tenantID,
		EntryID:  uuid.New(),
		Reason:   "mistake",
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
