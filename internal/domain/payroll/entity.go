package payroll

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RunStatus enum
type RunStatus string

const (
	RunStatusDraft     RunStatus = "DRAFT"
	RunStatusPaid      RunStatus = "PAID"
	RunStatusApproved  RunStatus = "APPROVED"
	RunStatusProcessed RunStatus = "PROCESSED"
	RunStatusCancelled RunStatus = "CANCELLED"
)

// ParseRunStatus accepts any casing and surrounding whitespace.
func ParseRunStatus(s string) (RunStatus, bool) {
	status := RunStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case RunStatusDraft, RunStatusPaid, RunStatusApproved, RunStatusProcessed, RunStatusCancelled:
		return status, true
	default:
		return "", false
	}
}

// IsFinalized reports whether stored net salaries under the run are frozen.
func (s RunStatus) IsFinalized() bool {
	return s == RunStatusPaid || s == RunStatusApproved || s == RunStatusProcessed
}

// CanTransitionTo encodes DRAFT -> {PAID, APPROVED, PROCESSED} and any -> CANCELLED.
// Nothing leaves CANCELLED and a finalized run never returns to DRAFT.
func (s RunStatus) CanTransitionTo(next RunStatus) bool {
	switch {
	case s == RunStatusCancelled:
		return false
	case next == RunStatusCancelled:
		return true
	case next == RunStatusDraft:
		return s == RunStatusDraft
	default:
		return next.IsFinalized()
	}
}

// RunKind distinguishes the batch run of a period from single-employee runs.
type RunKind string

const (
	RunKindMain       RunKind = "MAIN"
	RunKindIndividual RunKind = "INDIVIDUAL"
)

type PayrollRun struct {
	ID          int64
	PeriodStart time.Time
	PeriodEnd   time.Time
	PayDate     *time.Time
	Status      RunStatus
	Kind        RunKind
	EmployeeID  *int64 // set iff Kind is INDIVIDUAL
	Notes       *string
	CreatedBy   int64
	CreatedAt   time.Time
}

type PayrollEntry struct {
	ID                   int64
	RunID                int64
	AssignmentID         int64
	GrossSalary          decimal.Decimal
	BonusAmount          decimal.Decimal
	NetSalary            decimal.Decimal
	HourVariance         *int
	HourVarianceOverride bool
	Notes                *string

	// Joined fields
	EmployeeID     int64
	EmployeeName   *string
	DepartmentName *string
	PositionTitle  *string
	RunStatus      RunStatus
	RunKind        RunKind
	RunPayDate     *time.Time
	PeriodStart    time.Time
	PeriodEnd      time.Time
}

type Deduction struct {
	ID            int64
	EntryID       int64
	TypeID        int64
	TypeName      *string
	Amount        decimal.Decimal
	Reason        *string
	EffectiveDate time.Time
}

type Bonus struct {
	ID       int64
	EntryID  int64
	TypeID   int64
	TypeName *string
	Amount   decimal.Decimal
	Reason   *string
}

type DeductionType struct {
	ID          int64   `json:"deduction_type_id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type BonusType struct {
	ID          int64   `json:"bonus_type_id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// Assignment is the slice of employment_assignment the payroll engine needs.
type Assignment struct {
	ID          int64
	EmployeeID  int64
	StartSalary decimal.Decimal
}

// PayrollEmployee is an ACTIVE employee with an ACTIVE assignment.
type PayrollEmployee struct {
	EmployeeID          int64
	EmployeeName        string
	AssignmentID        int64
	StartSalary         decimal.Decimal
	DepartmentName      *string
	PositionTitle       *string
	HireDate            *time.Time
	AssignmentStartDate *time.Time
}

// EligibleFor reports whether the employee was on staff by the end of the period.
// Employees without any start date are always eligible.
func (e PayrollEmployee) EligibleFor(p Period) bool {
	start := e.HireDate
	if start == nil {
		start = e.AssignmentStartDate
	}
	if start == nil {
		return true
	}
	return !start.After(p.End())
}
