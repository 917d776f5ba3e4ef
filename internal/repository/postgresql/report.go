package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
)

type reportRepositoryImpl struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

func (r *reportRepositoryImpl) ListAttendance(ctx context.Context) ([]report.AttendanceRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ar.employee_id, e.first_name || ' ' || e.last_name, ar.attendance_date, ar.mark,
			to_char(ar.check_in, 'HH24:MI'), to_char(ar.check_out, 'HH24:MI')
		FROM attendance_record ar
		JOIN employee e ON e.employee_id = ar.employee_id
		ORDER BY ar.attendance_date DESC, e.last_name, e.first_name
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance report: %w", err)
	}
	defer rows.Close()

	result := make([]report.AttendanceRow, 0)
	for rows.Next() {
		var row report.AttendanceRow
		if err := rows.Scan(&row.EmployeeID, &row.EmployeeName, &row.Date, &row.Mark, &row.CheckIn, &row.CheckOut); err != nil {
			return nil, fmt.Errorf("failed to scan attendance report row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return result, nil
}

func (r *reportRepositoryImpl) CountActiveEmployees(ctx context.Context) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var n int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM employee WHERE status = 'ACTIVE'").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count active employees: %w", err)
	}
	return n, nil
}

func (r *reportRepositoryImpl) ListFinalizedPayroll(ctx context.Context, limit int) ([]report.PayrollRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT e.first_name || ' ' || e.last_name, pr.pay_date, pe.net_salary
		FROM payroll_entry pe
		JOIN payroll_run pr ON pr.payroll_run_id = pe.payroll_run_id
		JOIN employment_assignment ea ON ea.assignment_id = pe.assignment_id
		JOIN employee e ON e.employee_id = ea.employee_id
		WHERE pr.status IN ` + finalizedRunStatuses + `
		ORDER BY pr.pay_date DESC NULLS LAST, e.last_name, e.first_name
		LIMIT $1
	`

	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query payroll report: %w", err)
	}
	defer rows.Close()

	result := make([]report.PayrollRow, 0)
	for rows.Next() {
		var row report.PayrollRow
		if err := rows.Scan(&row.EmployeeName, &row.PayDate, &row.NetPaid); err != nil {
			return nil, fmt.Errorf("failed to scan payroll report row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return result, nil
}

func (r *reportRepositoryImpl) ListDepartments(ctx context.Context) ([]report.DepartmentRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT d.name, COUNT(DISTINCT e.employee_id), d.budget
		FROM department d
		LEFT JOIN employment_assignment ea ON ea.department_id = d.department_id AND ea.status = 'ACTIVE'
		LEFT JOIN employee e ON e.employee_id = ea.employee_id AND e.status = 'ACTIVE'
		GROUP BY d.department_id, d.name, d.budget
		ORDER BY d.name
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query department report: %w", err)
	}
	defer rows.Close()

	result := make([]report.DepartmentRow, 0)
	for rows.Next() {
		var row report.DepartmentRow
		if err := rows.Scan(&row.Name, &row.StaffCount, &row.Budget); err != nil {
			return nil, fmt.Errorf("failed to scan department report row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return result, nil
}
