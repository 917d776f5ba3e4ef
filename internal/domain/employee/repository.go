package employee

import "context"

type EmployeeRepository interface {
	List(ctx context.Context) ([]Employee, error)
	GetByID(ctx context.Context, id int64) (Employee, error)
	Create(ctx context.Context, e Employee) (Employee, error)
	Update(ctx context.Context, e Employee) error
	UpdateStatus(ctx context.Context, id int64, status Status) error

	// ListByDepartment returns employees holding an ACTIVE assignment in the department.
	ListByDepartment(ctx context.Context, departmentID int64) ([]Employee, error)

	GetActiveAssignment(ctx context.Context, employeeID int64) (Assignment, error)
	CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
	UpdateAssignment(ctx context.Context, a Assignment) error
}
