package payroll

import "errors"

var (
	ErrMonthYearRequired           = errors.New("month and year are required")
	ErrPayIndividualFieldsRequired = errors.New("month, year, assignment_id, and employee_id are required")
	ErrInvalidPeriod               = errors.New("month must be between 1 and 12 and year between 2000 and 2100")
	ErrInvalidRunPeriod            = errors.New("period_end must not be before period_start")
	ErrPayrollEntryNotFound        = errors.New("payroll entry not found")
	ErrPayrollRunNotFound          = errors.New("payroll run not found")
	ErrAssignmentNotFound          = errors.New("employment assignment not found")
	ErrAssignmentMismatch          = errors.New("assignment does not belong to the employee")
	ErrInvalidRunStatus            = errors.New("invalid payroll run status")
	ErrIllegalStatusTransition     = errors.New("payroll run status transition not allowed")
	ErrIndividualRunExists         = errors.New("an individual payroll run already exists for this employee and period")
)
