package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const (
	employeeCodeConstraint  = "uq_employee_code"
	employeeEmailConstraint = "uq_employee_email"
)

type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}

// employeeSelect joins the ACTIVE assignment, when there is one.
const employeeSelect = `
	SELECT e.employee_id, e.employee_code, e.first_name, e.last_name, e.phone, e.email,
		e.hire_date, e.status, e.address, e.nationality, e.blood_type, e.nssf_number,
		ea.assignment_id, ea.department_id, d.name, ea.position_id, p.title, ea.start_salary
	FROM employee e
	LEFT JOIN employment_assignment ea ON ea.employee_id = e.employee_id AND ea.status = 'ACTIVE'
	LEFT JOIN department d ON d.department_id = ea.department_id
	LEFT JOIN position p ON p.position_id = ea.position_id
`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.ID, &e.EmployeeCode, &e.FirstName, &e.LastName, &e.Phone, &e.Email,
		&e.HireDate, &e.Status, &e.Address, &e.Nationality, &e.BloodType, &e.NSSFNumber,
		&e.AssignmentID, &e.DepartmentID, &e.DepartmentName, &e.PositionID, &e.PositionTitle, &e.StartSalary,
	)
	return e, err
}

func (r *employeeRepository) queryEmployees(ctx context.Context, query string, args ...interface{}) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	employees := make([]employee.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return employees, nil
}

// List implements employee.EmployeeRepository.
func (r *employeeRepository) List(ctx context.Context) ([]employee.Employee, error) {
	return r.queryEmployees(ctx, employeeSelect+" ORDER BY e.last_name, e.first_name")
}

// ListByDepartment implements employee.EmployeeRepository.
func (r *employeeRepository) ListByDepartment(ctx context.Context, departmentID int64) ([]employee.Employee, error) {
	return r.queryEmployees(ctx, employeeSelect+`
		WHERE ea.department_id = $1 AND e.status = 'ACTIVE'
		ORDER BY e.last_name, e.first_name`, departmentID)
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByID(ctx context.Context, id int64) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	e, err := scanEmployee(q.QueryRow(ctx, employeeSelect+" WHERE e.employee_id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

// Create implements employee.EmployeeRepository.
func (r *employeeRepository) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employee (
			employee_code, first_name, last_name, phone, email, hire_date, status,
			address, nationality, blood_type, nssf_number
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING employee_id
	`

	err := q.QueryRow(ctx, query,
		e.EmployeeCode, e.FirstName, e.LastName, e.Phone, e.Email, e.HireDate, e.Status,
		e.Address, e.Nationality, e.BloodType, e.NSSFNumber,
	).Scan(&e.ID)
	if err != nil {
		return employee.Employee{}, mapEmployeeWriteError("create", err)
	}
	return e, nil
}

// Update implements employee.EmployeeRepository.
func (r *employeeRepository) Update(ctx context.Context, e employee.Employee) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employee SET
			first_name = $2, last_name = $3, phone = $4, email = $5, hire_date = $6, status = $7,
			address = $8, nationality = $9, blood_type = $10, nssf_number = $11
		WHERE employee_id = $1
	`

	tag, err := q.Exec(ctx, query,
		e.ID, e.FirstName, e.LastName, e.Phone, e.Email, e.HireDate, e.Status,
		e.Address, e.Nationality, e.BloodType, e.NSSFNumber,
	)
	if err != nil {
		return mapEmployeeWriteError("update", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// UpdateStatus implements employee.EmployeeRepository.
func (r *employeeRepository) UpdateStatus(ctx context.Context, id int64, status employee.Status) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, "UPDATE employee SET status = $2 WHERE employee_id = $1", id, status)
	if err != nil {
		return fmt.Errorf("failed to update employee status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func mapEmployeeWriteError(op string, err error) error {
	switch {
	case database.IsUniqueViolation(err, employeeCodeConstraint):
		return employee.ErrEmployeeCodeExists
	case database.IsUniqueViolation(err, employeeEmailConstraint):
		return employee.ErrEmailExists
	default:
		return fmt.Errorf("failed to %s employee: %w", op, err)
	}
}

// ========== ASSIGNMENTS ==========

// GetActiveAssignment implements employee.EmployeeRepository.
func (r *employeeRepository) GetActiveAssignment(ctx context.Context, employeeID int64) (employee.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT assignment_id, employee_id, department_id, position_id, start_date,
			start_salary, reference_salary, status
		FROM employment_assignment
		WHERE employee_id = $1 AND status = 'ACTIVE'
		ORDER BY start_date DESC, assignment_id DESC
		LIMIT 1
	`

	var a employee.Assignment
	err := q.QueryRow(ctx, query, employeeID).Scan(
		&a.ID, &a.EmployeeID, &a.DepartmentID, &a.PositionID, &a.StartDate,
		&a.StartSalary, &a.ReferenceSalary, &a.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Assignment{}, employee.ErrNoActiveAssignment
		}
		return employee.Assignment{}, fmt.Errorf("failed to get active assignment: %w", err)
	}
	return a, nil
}

// CreateAssignment implements employee.EmployeeRepository.
func (r *employeeRepository) CreateAssignment(ctx context.Context, a employee.Assignment) (employee.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employment_assignment (
			employee_id, department_id, position_id, start_date, start_salary, reference_salary, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING assignment_id
	`

	err := q.QueryRow(ctx, query,
		a.EmployeeID, a.DepartmentID, a.PositionID, a.StartDate, a.StartSalary, a.ReferenceSalary, a.Status,
	).Scan(&a.ID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return employee.Assignment{}, employee.ErrDepartmentNotFound
		}
		return employee.Assignment{}, fmt.Errorf("failed to create assignment: %w", err)
	}
	return a, nil
}

// UpdateAssignment implements employee.EmployeeRepository.
func (r *employeeRepository) UpdateAssignment(ctx context.Context, a employee.Assignment) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employment_assignment
		SET department_id = $2, position_id = $3, start_salary = $4, reference_salary = $5
		WHERE assignment_id = $1
	`

	tag, err := q.Exec(ctx, query, a.ID, a.DepartmentID, a.PositionID, a.StartSalary, a.ReferenceSalary)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return employee.ErrDepartmentNotFound
		}
		return fmt.Errorf("failed to update assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrNoActiveAssignment
	}
	return nil
}
