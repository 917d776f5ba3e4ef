package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PayrollTrend is the net payroll of one finalized month.
type PayrollTrend struct {
	Year  int
	Month int
	Total decimal.Decimal
}

// DepartmentHeadcount counts ACTIVE employees with an ACTIVE assignment in a department.
type DepartmentHeadcount struct {
	Name  string
	Staff int64
}

// DashboardRepository defines the interface for dashboard data access
type DashboardRepository interface {
	CountActiveEmployees(ctx context.Context) (int64, error)
	CountDepartments(ctx context.Context) (int64, error)

	// CountPendingLeave counts leave requests still PENDING
	CountPendingLeave(ctx context.Context) (int64, error)

	// TotalNetPayroll sums net salary of entries under finalized runs whose period starts in [from, to)
	TotalNetPayroll(ctx context.Context, from, to time.Time) (decimal.Decimal, error)

	// PayrollTrends groups finalized net salary by period month since the given date, oldest first
	PayrollTrends(ctx context.Context, since time.Time) ([]PayrollTrend, error)

	DepartmentHeadcounts(ctx context.Context) ([]DepartmentHeadcount, error)
}
