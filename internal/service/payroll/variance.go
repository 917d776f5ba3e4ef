package payroll

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
)

// BusinessDays counts Monday through Friday in the month.
func BusinessDays(year, month int) int {
	p := payroll.Period{Year: year, Month: time.Month(month)}
	days := 0
	for d := p.Start(); !d.After(p.End()); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return days
}

// ExpectedHours is the standard workload of the month.
func ExpectedHours(year, month int) int {
	return BusinessDays(year, month) * attendance.StandardWorkdayHours
}

// VarianceCalculator compares the hours an employee actually worked in a month with ExpectedHours.
type VarianceCalculator struct {
	attendanceRepo attendance.AttendanceRepository
}

func NewVarianceCalculator(attendanceRepo attendance.AttendanceRepository) *VarianceCalculator {
	return &VarianceCalculator{attendanceRepo: attendanceRepo}
}

// Calculate returns actual - expected hours rounded half up. Only PRESENT days with a positive
// check-in to check-out span count. Failures are logged and yield 0.
func (c *VarianceCalculator) Calculate(ctx context.Context, employeeID int64, month, year int) int {
	p := payroll.Period{Year: year, Month: time.Month(month)}

	records, err := c.attendanceRepo.ListForEmployeePeriod(ctx, employeeID, p.Start(), p.End())
	if err != nil {
		slog.ErrorContext(ctx, "failed to calculate hour variance",
			"employee_id", employeeID,
			"month", month,
			"year", year,
			"error", err,
		)
		return 0
	}

	actual := 0.0
	for _, rec := range records {
		if rec.Mark != attendance.MarkPresent {
			continue
		}
		hours, ok := attendance.WorkedHours(rec.CheckIn, rec.CheckOut)
		if !ok || hours <= 0 {
			continue
		}
		actual += hours
	}

	return attendance.RoundHalfUp(actual - float64(ExpectedHours(year, month)))
}
