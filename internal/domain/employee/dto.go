package employee

import (
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== REQUEST DTOs ==========

type CreateEmployeeRequest struct {
	EmployeeCode *string          `json:"employee_code,omitempty"`
	FirstName    string           `json:"first_name"`
	LastName     string           `json:"last_name"`
	Phone        *string          `json:"phone,omitempty"`
	Email        *string          `json:"email,omitempty"`
	HireDate     *string          `json:"hire_date,omitempty"`
	Status       *string          `json:"status,omitempty"`
	Address      *string          `json:"address,omitempty"`
	Nationality  *string          `json:"nationality,omitempty"`
	BloodType    *string          `json:"blood_type,omitempty"`
	NSSFNumber   *string          `json:"nssf_number,omitempty"`
	DepartmentID *int64           `json:"department_id,omitempty"`
	PositionID   *int64           `json:"position_id,omitempty"`
	StartSalary  *decimal.Decimal `json:"start_salary,omitempty"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.FirstName) {
		errs.Add("first_name", "first_name is required")
	}
	if validator.IsEmpty(r.LastName) {
		errs.Add("last_name", "last_name is required")
	}
	validateCommon(&errs, r.Email, r.HireDate, r.Status, r.StartSalary)

	return errs.Err()
}

type UpdateEmployeeRequest struct {
	ID           int64            `json:"-"`
	FirstName    string           `json:"first_name"`
	LastName     string           `json:"last_name"`
	Phone        string           `json:"phone"`
	Email        string           `json:"email"`
	HireDate     string           `json:"hire_date"`
	Status       *string          `json:"status,omitempty"`
	Address      *string          `json:"address,omitempty"`
	Nationality  *string          `json:"nationality,omitempty"`
	BloodType    *string          `json:"blood_type,omitempty"`
	NSSFNumber   *string          `json:"nssf_number,omitempty"`
	DepartmentID *int64           `json:"department_id,omitempty"`
	PositionID   *int64           `json:"position_id,omitempty"`
	StartSalary  *decimal.Decimal `json:"start_salary,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	required := map[string]string{
		"first_name": r.FirstName,
		"last_name":  r.LastName,
		"phone":      r.Phone,
		"email":      r.Email,
		"hire_date":  r.HireDate,
	}
	for _, field := range []string{"first_name", "last_name", "phone", "email", "hire_date"} {
		if validator.IsEmpty(required[field]) {
			errs.Add(field, field+" is required")
		}
	}
	if len(errs) > 0 {
		return errs
	}
	validateCommon(&errs, &r.Email, &r.HireDate, r.Status, r.StartSalary)

	return errs.Err()
}

func validateCommon(errs *validator.ValidationErrors, email, hireDate, status *string, salary *decimal.Decimal) {
	if email != nil && !validator.IsEmpty(*email) && !validator.IsValidEmail(*email) {
		errs.Add("email", "invalid email format")
	}
	if hireDate != nil && !validator.IsEmpty(*hireDate) {
		if _, ok := validator.IsValidDate(*hireDate); !ok {
			errs.Add("hire_date", "must be in YYYY-MM-DD format")
		}
	}
	if status != nil && !Status(*status).IsValid() {
		errs.Add("status", "must be one of ACTIVE, INACTIVE, TERMINATED")
	}
	if salary != nil && salary.IsNegative() {
		errs.Add("start_salary", "must not be negative")
	}
}

// ========== RESPONSE DTOs ==========

type EmployeeResponse struct {
	ID             int64            `json:"employee_id"`
	EmployeeCode   *string          `json:"employee_code,omitempty"`
	FirstName      string           `json:"first_name"`
	LastName       string           `json:"last_name"`
	Phone          *string          `json:"phone"`
	Email          *string          `json:"email"`
	HireDate       *string          `json:"hire_date"`
	Status         Status           `json:"status"`
	Address        *string          `json:"address"`
	Nationality    *string          `json:"nationality"`
	BloodType      *string          `json:"blood_type"`
	NSSFNumber     *string          `json:"nssf_number"`
	AssignmentID   *int64           `json:"assignment_id"`
	DepartmentID   *int64           `json:"department_id"`
	DepartmentName *string          `json:"department_name"`
	PositionID     *int64           `json:"position_id"`
	PositionTitle  *string          `json:"position_title"`
	StartSalary    *decimal.Decimal `json:"start_salary"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:             e.ID,
		EmployeeCode:   e.EmployeeCode,
		FirstName:      e.FirstName,
		LastName:       e.LastName,
		Phone:          e.Phone,
		Email:          e.Email,
		Status:         e.Status,
		Address:        e.Address,
		Nationality:    e.Nationality,
		BloodType:      e.BloodType,
		NSSFNumber:     e.NSSFNumber,
		AssignmentID:   e.AssignmentID,
		DepartmentID:   e.DepartmentID,
		DepartmentName: e.DepartmentName,
		PositionID:     e.PositionID,
		PositionTitle:  e.PositionTitle,
		StartSalary:    e.StartSalary,
	}
	if e.HireDate != nil {
		d := e.HireDate.Format(time.DateOnly)
		resp.HireDate = &d
	}
	return resp
}
