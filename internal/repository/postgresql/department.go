package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/master/department"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const departmentNameConstraint = "uq_department_name"

type departmentRepositoryImpl struct {
	db *database.DB
}

func NewDepartmentRepository(db *database.DB) department.DepartmentRepository {
	return &departmentRepositoryImpl{db: db}
}

// Staff counts ACTIVE employees on ACTIVE assignments; the manager name comes through the manager's assignment.
const departmentSelect = `
	SELECT d.department_id, d.name, d.description, d.budget, d.manager_assignment_id,
		COUNT(DISTINCT e.employee_id) AS staff_count,
		NULLIF(TRIM(CONCAT(mgr_e.first_name, ' ', mgr_e.last_name)), '') AS manager_name
	FROM department d
	LEFT JOIN employment_assignment ea ON ea.department_id = d.department_id AND ea.status = 'ACTIVE'
	LEFT JOIN employee e ON e.employee_id = ea.employee_id AND e.status = 'ACTIVE'
	LEFT JOIN employment_assignment mgr_ea ON mgr_ea.assignment_id = d.manager_assignment_id
	LEFT JOIN employee mgr_e ON mgr_e.employee_id = mgr_ea.employee_id
`

const departmentGroupBy = " GROUP BY d.department_id, mgr_e.first_name, mgr_e.last_name"

func scanDepartment(row pgx.Row) (department.Department, error) {
	var d department.Department
	err := row.Scan(&d.ID, &d.Name, &d.Description, &d.Budget, &d.ManagerAssignmentID, &d.StaffCount, &d.ManagerName)
	return d, err
}

// Create implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) Create(ctx context.Context, d department.Department) (department.Department, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO department (name, description, budget, manager_assignment_id)
		VALUES ($1, $2, $3, $4)
		RETURNING department_id
	`

	err := q.QueryRow(ctx, query, d.Name, d.Description, d.Budget, d.ManagerAssignmentID).Scan(&d.ID)
	if err != nil {
		return department.Department{}, mapDepartmentWriteError("create", err)
	}
	return d, nil
}

// GetByID implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) GetByID(ctx context.Context, id int64) (department.Department, error) {
	q := GetQuerier(ctx, r.db)

	d, err := scanDepartment(q.QueryRow(ctx, departmentSelect+" WHERE d.department_id = $1"+departmentGroupBy, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return department.Department{}, department.ErrDepartmentNotFound
		}
		return department.Department{}, fmt.Errorf("failed to get department: %w", err)
	}
	return d, nil
}

// List implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) List(ctx context.Context) ([]department.Department, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, departmentSelect+departmentGroupBy+" ORDER BY d.name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to get departments: %w", err)
	}
	defer rows.Close()

	departments := make([]department.Department, 0)
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, d)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return departments, nil
}

// Update implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) Update(ctx context.Context, d department.Department) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE department
		SET name = $2, description = $3, budget = $4, manager_assignment_id = $5
		WHERE department_id = $1
	`

	commandTag, err := q.Exec(ctx, query, d.ID, d.Name, d.Description, d.Budget, d.ManagerAssignmentID)
	if err != nil {
		return mapDepartmentWriteError("update", err)
	}

	if commandTag.RowsAffected() == 0 {
		return department.ErrDepartmentNotFound
	}

	return nil
}

func mapDepartmentWriteError(op string, err error) error {
	switch {
	case database.IsUniqueViolation(err, departmentNameConstraint):
		return department.ErrDepartmentNameExists
	case database.IsForeignKeyViolation(err):
		return department.ErrManagerNotFound
	default:
		return fmt.Errorf("failed to %s department: %w", op, err)
	}
}
