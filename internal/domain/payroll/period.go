package payroll

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

// Period is one calendar month of payroll.
type Period struct {
	Year  int
	Month time.Month
}

// NewPeriod validates a month/year pair taken from a request.
func NewPeriod(month, year int) (Period, error) {
	if month == 0 || year == 0 {
		return Period{}, ErrMonthYearRequired
	}
	if !validator.IsValidMonth(month) || !validator.IsValidYear(year) {
		return Period{}, ErrInvalidPeriod
	}
	return Period{Year: year, Month: time.Month(month)}, nil
}

func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the last calendar day of the month.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, -1)
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}
