package payroll

import (
	"context"
	"io"
)

type PayrollService interface {
	// Period view
	GetEmployeesForPayroll(ctx context.Context, month, year int) ([]EmployeePayrollResponse, error)
	BulkUpdateEntries(ctx context.Context, req BulkUpdateEntriesRequest) (BulkUpdateResponse, error)

	// Entries
	GetEntry(ctx context.Context, id int64) (PayrollEntryResponse, error)
	WritePayslip(ctx context.Context, id int64, w io.Writer) error

	// Runs
	CreateRun(ctx context.Context, req CreateRunRequest) (CreateRunResponse, error)
	ListRuns(ctx context.Context) ([]PayrollRunResponse, error)
	ApproveRun(ctx context.Context, req ApproveRunRequest) (ApproveRunResponse, error)
	CancelRun(ctx context.Context, id int64) (PayrollRunResponse, error)
	EnsureMainRun(ctx context.Context, year, month int) (runID int64, created bool, err error)

	// Payment
	PayIndividual(ctx context.Context, req PayIndividualRequest) (PayIndividualResponse, error)
	PayAllUnpaid(ctx context.Context, req PayAllRequest) (PayAllResponse, error)

	// Lookups
	ListDeductionTypes(ctx context.Context) ([]DeductionType, error)
	ListBonusTypes(ctx context.Context) ([]BonusType, error)
}
