package department

import (
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateDepartmentRequest struct {
	Name                string           `json:"name"`
	Description         *string          `json:"description,omitempty"`
	Budget              *decimal.Decimal `json:"budget,omitempty"`
	ManagerAssignmentID *int64           `json:"manager_assignment_id,omitempty"`
}

func (r *CreateDepartmentRequest) Validate() error {
	return validateDepartment(r.Name, r.Budget)
}

type UpdateDepartmentRequest struct {
	ID                  int64            `json:"-"`
	Name                string           `json:"name"`
	Description         *string          `json:"description,omitempty"`
	Budget              *decimal.Decimal `json:"budget,omitempty"`
	ManagerAssignmentID *int64           `json:"manager_assignment_id,omitempty"`
}

func (r *UpdateDepartmentRequest) Validate() error {
	return validateDepartment(r.Name, r.Budget)
}

func validateDepartment(name string, budget *decimal.Decimal) error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(name) {
		errs.Add("name", "name is required")
	} else if len(name) > 100 {
		errs.Add("name", "name must not exceed 100 characters")
	}
	if budget != nil && budget.IsNegative() {
		errs.Add("budget", "budget must not be negative")
	}

	return errs.Err()
}

type DepartmentResponse struct {
	ID                  int64           `json:"department_id"`
	Name                string          `json:"name"`
	Description         *string         `json:"description"`
	Budget              decimal.Decimal `json:"budget"`
	ManagerAssignmentID *int64          `json:"manager_assignment_id"`
	StaffCount          int64           `json:"staff_count"`
	ManagerName         *string         `json:"manager_name"`
}

func NewDepartmentResponse(d Department) DepartmentResponse {
	return DepartmentResponse{
		ID:                  d.ID,
		Name:                d.Name,
		Description:         d.Description,
		Budget:              d.Budget,
		ManagerAssignmentID: d.ManagerAssignmentID,
		StaffCount:          d.StaffCount,
		ManagerName:         d.ManagerName,
	}
}
