package employee

import "context"

// EmployeeService defines business logic for employee records
type EmployeeService interface {
	ListEmployees(ctx context.Context) ([]EmployeeResponse, error)
	GetEmployee(ctx context.Context, id int64) (EmployeeResponse, error)

	// CreateEmployee inserts the employee and, when department and position are both given, its ACTIVE assignment
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)

	// UpdateEmployee rewrites the record and updates or opens the ACTIVE assignment
	UpdateEmployee(ctx context.Context, req UpdateEmployeeRequest) (EmployeeResponse, error)

	// TerminateEmployee marks the employee TERMINATED; rows are never deleted
	TerminateEmployee(ctx context.Context, id int64) error

	ListDepartmentEmployees(ctx context.Context, departmentID int64) ([]EmployeeResponse, error)
}
