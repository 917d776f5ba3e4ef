package payroll

import (
	"context"
	"time"
)

type RunRepository interface {
	Create(ctx context.Context, run PayrollRun) (PayrollRun, error)
	GetByID(ctx context.Context, id int64) (PayrollRun, error)
	List(ctx context.Context) ([]PayrollRun, error)
	UpdateStatus(ctx context.Context, id int64, status RunStatus, payDate *time.Time) (PayrollRun, error)

	// FindMain returns the most recently created non-cancelled MAIN run of the period.
	FindMain(ctx context.Context, period Period) (PayrollRun, error)
	// FindIndividual returns the employee's non-cancelled INDIVIDUAL run of the period,
	// preferring a PAID run over the newest one.
	FindIndividual(ctx context.Context, employeeID int64, period Period) (PayrollRun, error)
	// ListIndividual returns non-cancelled INDIVIDUAL runs of the period, newest first.
	ListIndividual(ctx context.Context, period Period) ([]PayrollRun, error)
	CountPaidIndividual(ctx context.Context, period Period) (int, error)

	// LockEmployeePeriod serializes pay operations for one employee and period until the
	// surrounding transaction ends.
	LockEmployeePeriod(ctx context.Context, employeeID int64, period Period) error
}

type EntryRepository interface {
	Create(ctx context.Context, entry PayrollEntry) (PayrollEntry, error)
	GetByID(ctx context.Context, id int64) (PayrollEntry, error)
	Update(ctx context.Context, entry PayrollEntry) error
	Reparent(ctx context.Context, entryID, runID int64) error

	// ListByPeriod returns entries of every non-cancelled run of the period, newest run first.
	ListByPeriod(ctx context.Context, period Period) ([]PayrollEntry, error)
	FindByRunAndAssignment(ctx context.Context, runID, assignmentID int64) (PayrollEntry, error)
	// LatestMainEntry returns the assignment's entry from the newest non-cancelled MAIN run of the period.
	LatestMainEntry(ctx context.Context, assignmentID int64, period Period) (PayrollEntry, error)

	ListDeductions(ctx context.Context, entryIDs []int64) ([]Deduction, error)
	ListBonuses(ctx context.Context, entryIDs []int64) ([]Bonus, error)
	// ReplaceDeductions and ReplaceBonuses delete every existing row of the entry, then insert the given ones.
	ReplaceDeductions(ctx context.Context, entryID int64, deductions []Deduction) error
	ReplaceBonuses(ctx context.Context, entryID int64, bonuses []Bonus) error

	ListDeductionTypes(ctx context.Context) ([]DeductionType, error)
	ListBonusTypes(ctx context.Context) ([]BonusType, error)
}

// WorkforceRepository reads the employee and assignment rows payroll is computed for.
type WorkforceRepository interface {
	ListActiveEmployees(ctx context.Context) ([]PayrollEmployee, error)
	GetAssignment(ctx context.Context, assignmentID int64) (Assignment, error)
}
