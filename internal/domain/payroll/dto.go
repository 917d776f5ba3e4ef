package payroll

import (
	"strconv"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// ========== REQUEST DTOs ==========

type DeductionInput struct {
	DeductionTypeID int64           `json:"deduction_type_id"`
	Amount          decimal.Decimal `json:"amount"`
	Reason          *string         `json:"reason,omitempty"`
	EffectiveDate   *string         `json:"effective_date,omitempty"`
}

type BulkEntryRequest struct {
	PayrollEntryID *int64           `json:"payroll_entry_id,omitempty"`
	AssignmentID   int64            `json:"assignment_id"`
	GrossSalary    *decimal.Decimal `json:"gross_salary,omitempty"`
	BonusAmount    *decimal.Decimal `json:"bonus_amount,omitempty"`
	NetSalary      *decimal.Decimal `json:"net_salary,omitempty"`
	HourVariance   *int             `json:"hour_variance,omitempty"`
	Remarks        *string          `json:"remarks,omitempty"`
	Deductions     []DeductionInput `json:"deductions"`
}

type BulkUpdateEntriesRequest struct {
	Month           int                `json:"month"`
	Year            int                `json:"year"`
	CreatedByUserID *int64             `json:"created_by_user_id,omitempty"`
	Entries         []BulkEntryRequest `json:"entries"`
}

// Validate checks the entries; the period itself is checked by NewPeriod.
func (r *BulkUpdateEntriesRequest) Validate() error {
	var errs validator.ValidationErrors

	for i, e := range r.Entries {
		if e.AssignmentID <= 0 {
			errs = append(errs, validator.ValidationError{Field: entryField(i, "assignment_id"), Message: "is required"})
		}
		if e.GrossSalary != nil && e.GrossSalary.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: entryField(i, "gross_salary"), Message: "must be non-negative"})
		}
		if e.BonusAmount != nil && e.BonusAmount.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: entryField(i, "bonus_amount"), Message: "must be non-negative"})
		}
		for j, d := range e.Deductions {
			if d.DeductionTypeID <= 0 {
				errs = append(errs, validator.ValidationError{Field: deductionField(i, j, "deduction_type_id"), Message: "is required"})
			}
			if d.Amount.IsNegative() {
				errs = append(errs, validator.ValidationError{Field: deductionField(i, j, "amount"), Message: "must be non-negative"})
			}
			if d.EffectiveDate != nil {
				if _, ok := validator.IsValidDate(*d.EffectiveDate); !ok {
					errs = append(errs, validator.ValidationError{Field: deductionField(i, j, "effective_date"), Message: "must be in YYYY-MM-DD format"})
				}
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CreateRunRequest struct {
	PeriodStart     string  `json:"period_start"`
	PeriodEnd       string  `json:"period_end"`
	Notes           *string `json:"notes,omitempty"`
	CreatedByUserID *int64  `json:"created_by_user_id,omitempty"`
}

func (r *CreateRunRequest) Validate() error {
	var errs validator.ValidationErrors

	start, startOK := validator.IsValidDate(r.PeriodStart)
	if !startOK {
		errs = append(errs, validator.ValidationError{Field: "period_start", Message: "must be in YYYY-MM-DD format"})
	}
	end, endOK := validator.IsValidDate(r.PeriodEnd)
	if !endOK {
		errs = append(errs, validator.ValidationError{Field: "period_end", Message: "must be in YYYY-MM-DD format"})
	}
	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "period_end", Message: ErrInvalidRunPeriod.Error()})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ApproveRunRequest struct {
	ID     int64   `json:"-"`
	Status *string `json:"status,omitempty"`
}

type PayIndividualRequest struct {
	Month           int    `json:"month"`
	Year            int    `json:"year"`
	AssignmentID    int64  `json:"assignment_id"`
	EmployeeID      int64  `json:"employee_id"`
	CreatedByUserID *int64 `json:"created_by_user_id,omitempty"`
}

type PayAllRequest struct {
	Month           int    `json:"month"`
	Year            int    `json:"year"`
	CreatedByUserID *int64 `json:"created_by_user_id,omitempty"`
}

// ========== RESPONSE DTOs ==========

// RemarksView keeps the remarks shape clients of the payroll screen expect.
type RemarksView struct {
	HourVariance         *int    `json:"hour_variance"`
	HourVarianceOverride bool    `json:"hour_variance_override"`
	OriginalRemarks      *string `json:"original_remarks"`
}

type DeductionResponse struct {
	DeductionID       int64           `json:"deduction_id,omitempty"`
	DeductionTypeID   int64           `json:"deduction_type_id"`
	DeductionTypeName *string         `json:"deduction_type_name"`
	Amount            decimal.Decimal `json:"amount"`
	Reason            *string         `json:"reason"`
	EffectiveDate     string          `json:"effective_date"`
}

type BonusResponse struct {
	BonusID       int64           `json:"bonus_id"`
	BonusTypeID   int64           `json:"bonus_type_id"`
	BonusTypeName *string         `json:"bonus_type_name"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        *string         `json:"reason"`
}

type EmployeePayrollResponse struct {
	EmployeeID            int64               `json:"employee_id"`
	EmployeeName          string              `json:"employee_name"`
	AssignmentID          int64               `json:"assignment_id"`
	GrossSalary           decimal.Decimal     `json:"gross_salary"`
	BonusAmount           decimal.Decimal     `json:"bonus_amount"`
	DepartmentName        *string             `json:"department_name"`
	PositionTitle         *string             `json:"position_title"`
	HireDate              *string             `json:"hire_date"`
	AssignmentStartDate   *string             `json:"assignment_start_date"`
	PayrollEntryID        *int64              `json:"payroll_entry_id"`
	PayrollRunID          *int64              `json:"payroll_run_id"`
	HourVariance          int                 `json:"hour_variance"`
	HourVarianceOverride  bool                `json:"hour_variance_override"`
	HourVarianceDeduction decimal.Decimal     `json:"hour_variance_deduction"`
	NetSalary             decimal.Decimal     `json:"net_salary"`
	Remarks               RemarksView         `json:"remarks"`
	Deductions            []DeductionResponse `json:"deductions"`
	RunStatus             RunStatus           `json:"run_status"`
	PayDate               *string             `json:"pay_date"`
}

type PayrollEntryResponse struct {
	ID                   int64               `json:"payroll_entry_id"`
	PayrollRunID         int64               `json:"payroll_run_id"`
	AssignmentID         int64               `json:"assignment_id"`
	EmployeeID           int64               `json:"employee_id"`
	EmployeeName         *string             `json:"employee_name"`
	GrossSalary          decimal.Decimal     `json:"gross_salary"`
	BonusAmount          decimal.Decimal     `json:"bonus_amount"`
	NetSalary            decimal.Decimal     `json:"net_salary"`
	HourVariance         *int                `json:"hour_variance"`
	HourVarianceOverride bool                `json:"hour_variance_override"`
	Remarks              RemarksView         `json:"remarks"`
	RunStatus            RunStatus           `json:"run_status"`
	RunKind              RunKind             `json:"run_kind"`
	PeriodStart          string              `json:"period_start"`
	PeriodEnd            string              `json:"period_end"`
	PayDate              *string             `json:"pay_date"`
	Deductions           []DeductionResponse `json:"deductions"`
	Bonuses              []BonusResponse     `json:"bonuses"`
}

type PayrollRunResponse struct {
	ID              int64     `json:"payroll_run_id"`
	PeriodStart     string    `json:"period_start"`
	PeriodEnd       string    `json:"period_end"`
	PayDate         *string   `json:"pay_date"`
	Status          RunStatus `json:"status"`
	RunKind         RunKind   `json:"run_kind"`
	EmployeeID      *int64    `json:"employee_id,omitempty"`
	Notes           *string   `json:"notes"`
	CreatedByUserID int64     `json:"created_by_user_id"`
	CreatedAt       time.Time `json:"created_at"`
}

type CreateRunResponse struct {
	PayrollRunID int64 `json:"payroll_run_id"`
}

type BulkUpdateResponse struct {
	Message      string `json:"message"`
	PayrollRunID int64  `json:"payroll_run_id"`
	SavedCount   int    `json:"saved_count"`
	SkippedCount int    `json:"skipped_count"`
}

type ApproveRunResponse struct {
	Message      string    `json:"message"`
	Status       RunStatus `json:"status"`
	PayDate      *string   `json:"pay_date"`
	PayrollRunID int64     `json:"payroll_run_id"`
}

type PayIndividualResponse struct {
	Message      string    `json:"message"`
	Status       RunStatus `json:"status"`
	PayDate      string    `json:"pay_date"`
	PayrollRunID int64     `json:"payroll_run_id"`
}

type PayAllResponse struct {
	Message           string    `json:"message"`
	Status            RunStatus `json:"status"`
	PayDate           string    `json:"pay_date"`
	PaidCount         int       `json:"paid_count"`
	SkippedCount      int       `json:"skipped_count"`
	VerifiedPaidCount int       `json:"verified_paid_count"`
}

// ========== MAPPERS ==========

func NewPayrollRunResponse(run PayrollRun) PayrollRunResponse {
	return PayrollRunResponse{
		ID:              run.ID,
		PeriodStart:     run.PeriodStart.Format(dateLayout),
		PeriodEnd:       run.PeriodEnd.Format(dateLayout),
		PayDate:         FormatDate(run.PayDate),
		Status:          run.Status,
		RunKind:         run.Kind,
		EmployeeID:      run.EmployeeID,
		Notes:           run.Notes,
		CreatedByUserID: run.CreatedBy,
		CreatedAt:       run.CreatedAt,
	}
}

func NewDeductionResponse(d Deduction) DeductionResponse {
	return DeductionResponse{
		DeductionID:       d.ID,
		DeductionTypeID:   d.TypeID,
		DeductionTypeName: d.TypeName,
		Amount:            d.Amount,
		Reason:            d.Reason,
		EffectiveDate:     d.EffectiveDate.Format(dateLayout),
	}
}

func NewBonusResponse(b Bonus) BonusResponse {
	return BonusResponse{
		BonusID:       b.ID,
		BonusTypeID:   b.TypeID,
		BonusTypeName: b.TypeName,
		Amount:        b.Amount,
		Reason:        b.Reason,
	}
}

// FormatDate renders an optional date as YYYY-MM-DD.
func FormatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func entryField(i int, name string) string {
	return "entries[" + strconv.Itoa(i) + "]." + name
}

func deductionField(i, j int, name string) string {
	return "entries[" + strconv.Itoa(i) + "].deductions[" + strconv.Itoa(j) + "]." + name
}
