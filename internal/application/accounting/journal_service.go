package accounting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/application/command"
	"github.com/ledger/backend/internal/domain/accounting"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/domain/tax"
	"go.uber.org/zap"
)

// EntryNumberGenerator issues journal entry numbers. Numbers are
// human-facing references, not identity; the aggregate ID is the identity.
type EntryNumberGenerator interface {
	Next(ctx context.Context, tenantID uuid.UUID, period tax.FiscalPeriod) (string, error)
}

// JournalService handles journal entry commands
type JournalService struct {
	executor *command.Executor
	store    shared.EventStore
	numbers  EntryNumberGenerator
	logger   *zap.Logger
}

// NewJournalService creates a new JournalService
func NewJournalService(executor *command.Executor, store shared.EventStore, numbers EntryNumberGenerator, logger *zap.Logger) *JournalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JournalService{executor: executor, store: store, numbers: numbers, logger: logger}
}

// CreateEntryRequest is a request to draft a journal entry
type CreateEntryRequest struct {
	TenantID  uuid.UUID
	EntryDate time.Time
	Lines     []accounting.JournalLine
}

// CreateEntryResult reports the drafted entry
type CreateEntryResult struct {
	EntryID      uuid.UUID `json:"entry_id"`
	EntryNumber  string    `json:"entry_number"`
	FiscalPeriod string    `json:"fiscal_period"`
}

// CreateEntry drafts a new journal entry in the fiscal period of its
// entry date. Drafts may be unbalanced; posting enforces balance.
func (s *JournalService) CreateEntry(ctx context.Context, req CreateEntryRequest) (*CreateEntryResult, error) {
	entryDate := req.EntryDate
	if entryDate.IsZero() {
		entryDate = time.Now().UTC()
	}
	period := tax.FiscalPeriodOf(entryDate)

	entryNumber, err := s.numbers.Next(ctx, req.TenantID, period)
	if err != nil {
		return nil, fmt.Errorf("failed to generate entry number: %w", err)
	}

	entryID := uuid.New()
	streamID := entryStreamID(req.TenantID, entryID)
	_, err = command.Execute(ctx, s.executor, streamID,
		rehydrateEntry(req.TenantID, entryID),
		func(entry *accounting.JournalEntry) error {
			return entry.Create(entryNumber, period.String(), req.Lines, nil)
		})
	if err != nil {
		return nil, err
	}

	s.logger.Info("journal entry drafted",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("entry_id", entryID.String()),
		zap.String("entry_number", entryNumber))
	return &CreateEntryResult{
		EntryID:      entryID,
		EntryNumber:  entryNumber,
		FiscalPeriod: period.String(),
	}, nil
}

// PostEntry posts a balanced draft entry to the ledger
func (s *JournalService) PostEntry(ctx context.Context, tenantID, entryID uuid.UUID) error {
	streamID := entryStreamID(tenantID, entryID)
	_, err := command.Execute(ctx, s.executor, streamID,
		rehydrateEntry(tenantID, entryID),
		func(entry *accounting.JournalEntry) error {
			if entry.GetVersion() == 0 {
				return shared.ErrNotFound
			}
			return entry.Post()
		})
	if err != nil {
		return err
	}

	s.logger.Info("journal entry posted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("entry_id", entryID.String()))
	return nil
}

// ReverseEntryRequest is a request to reverse a posted entry
type ReverseEntryRequest struct {
	TenantID uuid.UUID
	EntryID  uuid.UUID
	Reason   string
}

// ReverseEntryResult reports the reversing entry
type ReverseEntryResult struct {
	ReversingEntryID     uuid.UUID `json:"reversing_entry_id"`
	ReversingEntryNumber string    `json:"reversing_entry_number"`
}

// ReverseEntry reverses a posted entry by posting a new entry with every
// line's debit and credit swapped, then marking the original as reversed.
// The reversing entry lands in the fiscal period of the reversal date, not
// the original's period, so closed periods stay closed. The reversing
// entry is posted before the original is marked: once it posts, the ledger
// already nets to zero, and the original's status is bookkeeping.
func (s *JournalService) ReverseEntry(ctx context.Context, req ReverseEntryRequest) (*ReverseEntryResult, error) {
	original, err := s.loadEntry(ctx, req.TenantID, req.EntryID)
	if err != nil {
		return nil, err
	}
	if original.Status != accounting.EntryStatusPosted {
		return nil, shared.NewDomainError("ENTRY_NOT_POSTED", "Only posted entries can be reversed")
	}

	now := time.Now().UTC()
	period := tax.FiscalPeriodOf(now)
	reversingNumber, err := s.numbers.Next(ctx, req.TenantID, period)
	if err != nil {
		return nil, fmt.Errorf("failed to generate entry number: %w", err)
	}

	reversingID := uuid.New()
	swapped := original.SwappedLines()
	reversingStream := entryStreamID(req.TenantID, reversingID)
	_, err = command.Execute(ctx, s.executor, reversingStream,
		rehydrateEntry(req.TenantID, reversingID),
		func(entry *accounting.JournalEntry) error {
			if err := entry.Create(reversingNumber, period.String(), swapped, &req.EntryID); err != nil {
				return err
			}
			return entry.Post()
		})
	if err != nil {
		return nil, err
	}

	originalStream := entryStreamID(req.TenantID, req.EntryID)
	_, err = command.Execute(ctx, s.executor, originalStream,
		rehydrateEntry(req.TenantID, req.EntryID),
		func(entry *accounting.JournalEntry) error {
			return entry.Reverse(req.Reason, reversingID)
		})
	if err != nil {
		s.logger.Error("reversing entry posted but original not marked reversed",
			zap.String("tenant_id", req.TenantID.String()),
			zap.String("entry_id", req.EntryID.String()),
			zap.String("reversing_entry_id", reversingID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("reversing entry %s posted but marking original failed: %w", reversingID, err)
	}

	s.logger.Info("journal entry reversed",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("entry_id", req.EntryID.String()),
		zap.String("reversing_entry_id", reversingID.String()))
	return &ReverseEntryResult{
		ReversingEntryID:     reversingID,
		ReversingEntryNumber: reversingNumber,
	}, nil
}

func (s *JournalService) loadEntry(ctx context.Context, tenantID, entryID uuid.UUID) (*accounting.JournalEntry, error) {
	streamID := entryStreamID(tenantID, entryID)
	history, err := s.store.Read(ctx, streamID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to read stream %s: %w", streamID, err)
	}
	if len(history) == 0 {
		return nil, shared.ErrNotFound
	}
	entry := accounting.NewJournalEntry(tenantID, entryID)
	if err := shared.LoadFromHistory(entry, history); err != nil {
		return nil, fmt.Errorf("failed to rehydrate journal entry: %w", err)
	}
	return entry, nil
}

func entryStreamID(tenantID, entryID uuid.UUID) string {
	return shared.StreamID(tenantID, accounting.JournalEntryAggregateType, entryID)
}

func rehydrateEntry(tenantID, entryID uuid.UUID) func([]shared.DomainEvent) (*accounting.JournalEntry, error) {
	return func(history []shared.DomainEvent) (*accounting.JournalEntry, error) {
		entry := accounting.NewJournalEntry(tenantID, entryID)
		if err := shared.LoadFromHistory(entry, history); err != nil {
			return nil, fmt.Errorf("failed to rehydrate journal entry: %w", err)
		}
		return entry, nil
	}
}
