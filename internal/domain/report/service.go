package report

import (
	"context"
	"io"
)

type ReportService interface {
	AttendanceReport(ctx context.Context) (AttendanceReportResponse, error)

	// PayrollReport lists the latest PayrollReportLimit finalized entries
	PayrollReport(ctx context.Context) ([]PayrollReportRowResponse, error)

	DepartmentReport(ctx context.Context) ([]DepartmentReportRowResponse, error)

	// WritePayrollPDF renders the payroll view of one month as a PDF table
	WritePayrollPDF(ctx context.Context, month, year int, w io.Writer) error
}
