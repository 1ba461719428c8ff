package tax

import (
	"fmt"
	"time"

	"github.com/ledger/backend/internal/domain/shared"
)

// The fiscal year runs from July 1 through June 30 and is named after the
// calendar year in which it ends: July 2025 falls in FY2026, period P01.
const (
	fiscalYearStartMonth = time.July
	periodsPerYear       = 12

	// filingDay is the day of the month following a period's end on which
	// taxes for that period fall due
	filingDay = 10
)

// FiscalPeriod identifies one month-long accounting period within a fiscal year
type FiscalPeriod struct {
	FiscalYear int `json:"fiscal_year"`
	Period     int `json:"period"` // 1..12, P01 = July
}

// FiscalPeriodOf returns the fiscal period containing the given date
func FiscalPeriodOf(date time.Time) FiscalPeriod {
	month := date.Month()
	year := date.Year()

	if month >= fiscalYearStartMonth {
		return FiscalPeriod{
			FiscalYear: year + 1,
			Period:     int(month-fiscalYearStartMonth) + 1,
		}
	}
	return FiscalPeriod{
		FiscalYear: year,
		Period:     int(month) + periodsPerYear - int(fiscalYearStartMonth) + 1,
	}
}

// ParseFiscalPeriod parses an identifier like "FY2026-P03"
func ParseFiscalPeriod(s string) (FiscalPeriod, error) {
	var p FiscalPeriod
	if _, err := fmt.Sscanf(s, "FY%d-P%02d", &p.FiscalYear, &p.Period); err != nil {
		return FiscalPeriod{}, shared.NewDomainError("INVALID_FISCAL_PERIOD",
			fmt.Sprintf("Invalid fiscal period identifier %q", s))
	}
	if p.Period < 1 || p.Period > periodsPerYear || p.FiscalYear < 1 {
		return FiscalPeriod{}, shared.NewDomainError("INVALID_FISCAL_PERIOD",
			fmt.Sprintf("Invalid fiscal period identifier %q", s))
	}
	return p, nil
}

// String returns the canonical identifier, e.g. "FY2026-P03"
func (p FiscalPeriod) String() string {
	return fmt.Sprintf("FY%d-P%02d", p.FiscalYear, p.Period)
}

// StartDate returns the first day of the period
func (p FiscalPeriod) StartDate() time.Time {
	month := time.Month(int(fiscalYearStartMonth) + p.Period - 1)
	year := p.FiscalYear - 1
	if month > time.December {
		month -= periodsPerYear
		year++
	}
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// EndDate returns the last day of the period
func (p FiscalPeriod) EndDate() time.Time {
	return p.StartDate().AddDate(0, 1, 0).AddDate(0, 0, -1)
}

// Next returns the following fiscal period
func (p FiscalPeriod) Next() FiscalPeriod {
	if p.Period == periodsPerYear {
		return FiscalPeriod{FiscalYear: p.FiscalYear + 1, Period: 1}
	}
	return FiscalPeriod{FiscalYear: p.FiscalYear, Period: p.Period + 1}
}

// DueDateOf returns the filing due date for the period: the 10th day of the
// month following the period's end, shifted forward when it lands on a
// weekend
func DueDateOf(p FiscalPeriod) time.Time {
	next := p.Next().StartDate()
	due := time.Date(next.Year(), next.Month(), filingDay, 0, 0, 0, 0, time.UTC)
	switch due.Weekday() {
	case time.Saturday:
		due = due.AddDate(0, 0, 2)
	case time.Sunday:
		due = due.AddDate(0, 0, 1)
	}
	return due
}

// FiscalYearOf returns the fiscal year containing the given date
func FiscalYearOf(date time.Time) int {
	return FiscalPeriodOf(date).FiscalYear
}

// FiscalYearStart returns the first day of the given fiscal year
func FiscalYearStart(fiscalYear int) time.Time {
	return time.Date(fiscalYear-1, fiscalYearStartMonth, 1, 0, 0, 0, 0, time.UTC)
}

// FiscalYearEnd returns the last day of the given fiscal year
func FiscalYearEnd(fiscalYear int) time.Time {
	return FiscalYearStart(fiscalYear).AddDate(1, 0, 0).AddDate(0, 0, -1)
}
