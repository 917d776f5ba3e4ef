package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type AttendanceRow struct {
	EmployeeID   int64
	EmployeeName string
	Date         time.Time
	Mark         string
	CheckIn      *string
	CheckOut     *string
}

type PayrollRow struct {
	EmployeeName string
	PayDate      *time.Time
	NetPaid      decimal.Decimal
}

type DepartmentRow struct {
	Name       string
	StaffCount int64
	Budget     decimal.Decimal
}

// ReportRepository defines the read-only queries behind reports
type ReportRepository interface {
	// ListAttendance returns every attendance row, newest date first, then by last and first name
	ListAttendance(ctx context.Context) ([]AttendanceRow, error)
	CountActiveEmployees(ctx context.Context) (int64, error)

	// ListFinalizedPayroll returns the newest entries under finalized runs, at most limit rows
	ListFinalizedPayroll(ctx context.Context, limit int) ([]PayrollRow, error)

	ListDepartments(ctx context.Context) ([]DepartmentRow, error)
}
