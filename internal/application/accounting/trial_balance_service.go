package accounting

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/accounting"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/infrastructure/projection"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// balanceTolerance is the largest absolute debit/credit variance a trial
// balance may carry and still report as balanced. Posted entries balance
// exactly, so any variance signals rounding in derived figures.
var balanceTolerance = decimal.NewFromFloat(0.01)

// TrialBalanceReader aggregates posted journal lines for trial balances
type TrialBalanceReader interface {
	TrialBalance(ctx context.Context, tenantID uuid.UUID, fiscalYear int, asOf time.Time) ([]projection.TrialBalanceRow, error)
}

// TrialBalanceLine is one account's row on the trial balance
type TrialBalanceLine struct {
	AccountID uuid.UUID       `json:"account_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Balance   decimal.Decimal `json:"balance"`
}

// TrialBalanceSection groups one account type's lines with subtotals
type TrialBalanceSection struct {
	Type        accounting.AccountType `json:"type"`
	Lines       []TrialBalanceLine     `json:"lines"`
	TotalDebit  decimal.Decimal        `json:"total_debit"`
	TotalCredit decimal.Decimal        `json:"total_credit"`
}

// TrialBalanceReport is the full trial balance for one fiscal year as of
// one date
type TrialBalanceReport struct {
	TenantID    uuid.UUID             `json:"tenant_id"`
	FiscalYear  int                   `json:"fiscal_year"`
	AsOf        time.Time             `json:"as_of"`
	Sections    []TrialBalanceSection `json:"sections"`
	TotalDebit  decimal.Decimal       `json:"total_debit"`
	TotalCredit decimal.Decimal       `json:"total_credit"`
	IsBalanced  bool                  `json:"is_balanced"`
	Variance    decimal.Decimal       `json:"variance"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// sectionOrder is the conventional statement ordering of account types
var sectionOrder = []accounting.AccountType{
	accounting.AccountTypeAsset,
	accounting.AccountTypeLiability,
	accounting.AccountTypeEquity,
	accounting.AccountTypeRevenue,
	accounting.AccountTypeExpense,
}

// TrialBalanceService generates trial balance reports with a longer-lived
// cache in front. Reports are cached per (fiscalYear, asOf) under an
// epoch-scoped key: projectors bump the tenant's epoch marker on every
// posting, so a fresh epoch orphans every previously cached report at
// once without enumerating their keys.
type TrialBalanceService struct {
	lines  TrialBalanceReader
	cache  shared.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewTrialBalanceService creates a trial balance service
func NewTrialBalanceService(lines TrialBalanceReader, cache shared.Cache, ttl time.Duration, logger *zap.Logger) *TrialBalanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrialBalanceService{lines: lines, cache: cache, ttl: ttl, logger: logger}
}

// Generate builds the trial balance for one fiscal year up to asOf
func (s *TrialBalanceService) Generate(ctx context.Context, tenantID uuid.UUID, fiscalYear int, asOf time.Time) (*TrialBalanceReport, error) {
	key := s.reportKey(ctx, tenantID, fiscalYear, asOf)
	if key != "" {
		if data, found, err := s.cache.Get(ctx, key); err == nil && found {
			var cached TrialBalanceReport
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	rows, err := s.lines.TrialBalance(ctx, tenantID, fiscalYear, asOf)
	if err != nil {
		return nil, err
	}
	report := buildReport(tenantID, fiscalYear, asOf, rows)

	if key != "" {
		if data, err := json.Marshal(report); err == nil {
			if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
				s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return report, nil
}

// reportKey folds the tenant's current epoch into the cache key. A missing
// epoch marker is initialized here; invalidation deletes the marker, which
// rotates every report key on the next read.
func (s *TrialBalanceService) reportKey(ctx context.Context, tenantID uuid.UUID, fiscalYear int, asOf time.Time) string {
	if s.cache == nil {
		return ""
	}
	epochKey := shared.TrialBalanceEpochKey(tenantID)
	epoch, found, err := s.cache.Get(ctx, epochKey)
	if err != nil {
		s.logger.Warn("cache read failed", zap.String("key", epochKey), zap.Error(err))
		return ""
	}
	if !found {
		epoch = []byte(uuid.NewString())
		if err := s.cache.Set(ctx, epochKey, epoch, s.ttl); err != nil {
			s.logger.Warn("cache write failed", zap.String("key", epochKey), zap.Error(err))
			return ""
		}
	}
	base := shared.TrialBalanceCacheKey(tenantID, fiscalYear, asOf.UTC().Format("2006-01-02"))
	return fmt.Sprintf("%s:%s", base, epoch)
}

func buildReport(tenantID uuid.UUID, fiscalYear int, asOf time.Time, rows []projection.TrialBalanceRow) *TrialBalanceReport {
	byType := make(map[accounting.AccountType][]TrialBalanceLine)
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero

	for _, row := range rows {
		balance := row.DebitTotal.Sub(row.CreditTotal)
		if !row.Type.IsDebitNormal() {
			balance = row.CreditTotal.Sub(row.DebitTotal)
		}
		byType[row.Type] = append(byType[row.Type], TrialBalanceLine{
			AccountID: row.AccountID,
			Code:      row.Code,
			Name:      row.Name,
			Debit:     row.DebitTotal,
			Credit:    row.CreditTotal,
			Balance:   balance,
		})
		totalDebit = totalDebit.Add(row.DebitTotal)
		totalCredit = totalCredit.Add(row.CreditTotal)
	}

	sections := make([]TrialBalanceSection, 0, len(sectionOrder))
	for _, accountType := range sectionOrder {
		lines := byType[accountType]
		if len(lines) == 0 {
			continue
		}
		sectionDebit := decimal.Zero
		sectionCredit := decimal.Zero
		for _, line := range lines {
			sectionDebit = sectionDebit.Add(line.Debit)
			sectionCredit = sectionCredit.Add(line.Credit)
		}
		sections = append(sections, TrialBalanceSection{
			Type:        accountType,
			Lines:       lines,
			TotalDebit:  sectionDebit,
			TotalCredit: sectionCredit,
		})
	}

	variance := totalDebit.Sub(totalCredit).Abs()
	return &TrialBalanceReport{
		TenantID:    tenantID,
		FiscalYear:  fiscalYear,
		AsOf:        asOf,
		Sections:    sections,
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		IsBalanced:  variance.LessThan(balanceTolerance),
		Variance:    variance,
		GeneratedAt: time.Now().UTC(),
	}
}
