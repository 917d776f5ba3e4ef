package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

// finalizedRunStatuses lists the run states whose net salaries count as paid out.
const finalizedRunStatuses = "('PAID', 'APPROVED', 'PROCESSED')"

type dashboardRepositoryImpl struct {
	db *database.DB
}

func NewDashboardRepository(db *database.DB) dashboard.DashboardRepository {
	return &dashboardRepositoryImpl{db: db}
}

func (r *dashboardRepositoryImpl) count(ctx context.Context, what, query string, args ...interface{}) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var n int64
	if err := q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", what, err)
	}
	return n, nil
}

func (r *dashboardRepositoryImpl) CountActiveEmployees(ctx context.Context) (int64, error) {
	return r.count(ctx, "active employees", "SELECT COUNT(*) FROM employee WHERE status = 'ACTIVE'")
}

func (r *dashboardRepositoryImpl) CountDepartments(ctx context.Context) (int64, error) {
	return r.count(ctx, "departments", "SELECT COUNT(*) FROM department")
}

func (r *dashboardRepositoryImpl) CountPendingLeave(ctx context.Context) (int64, error) {
	return r.count(ctx, "pending leave", "SELECT COUNT(*) FROM leave_request WHERE status = 'PENDING'")
}

// TotalNetPayroll sums net salary under finalized runs starting in [from, to)
func (r *dashboardRepositoryImpl) TotalNetPayroll(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(pe.net_salary), 0)
		FROM payroll_entry pe
		JOIN payroll_run pr ON pr.payroll_run_id = pe.payroll_run_id
		WHERE pr.status IN ` + finalizedRunStatuses + `
			AND pr.period_start >= $1 AND pr.period_start < $2
	`

	var total decimal.Decimal
	if err := q.QueryRow(ctx, query, from, to).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payroll: %w", err)
	}
	return total, nil
}

// PayrollTrends groups finalized net salary per period month, oldest first
func (r *dashboardRepositoryImpl) PayrollTrends(ctx context.Context, since time.Time) ([]dashboard.PayrollTrend, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXTRACT(YEAR FROM pr.period_start)::int AS year,
			EXTRACT(MONTH FROM pr.period_start)::int AS month,
			SUM(pe.net_salary) AS total
		FROM payroll_entry pe
		JOIN payroll_run pr ON pr.payroll_run_id = pe.payroll_run_id
		WHERE pr.status IN ` + finalizedRunStatuses + `
			AND pr.period_start >= $1
		GROUP BY 1, 2
		ORDER BY 1, 2
	`

	rows, err := q.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get payroll trends: %w", err)
	}
	defer rows.Close()

	trends := make([]dashboard.PayrollTrend, 0)
	for rows.Next() {
		var t dashboard.PayrollTrend
		if err := rows.Scan(&t.Year, &t.Month, &t.Total); err != nil {
			return nil, fmt.Errorf("failed to scan payroll trend: %w", err)
		}
		trends = append(trends, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return trends, nil
}

func (r *dashboardRepositoryImpl) DepartmentHeadcounts(ctx context.Context) ([]dashboard.DepartmentHeadcount, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT d.name, COUNT(DISTINCT e.employee_id) AS staff
		FROM department d
		LEFT JOIN employment_assignment ea ON ea.department_id = d.department_id AND ea.status = 'ACTIVE'
		LEFT JOIN employee e ON e.employee_id = ea.employee_id AND e.status = 'ACTIVE'
		GROUP BY d.department_id, d.name
		ORDER BY d.name
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get department headcounts: %w", err)
	}
	defer rows.Close()

	result := make([]dashboard.DepartmentHeadcount, 0)
	for rows.Next() {
		var h dashboard.DepartmentHeadcount
		if err := rows.Scan(&h.Name, &h.Staff); err != nil {
			return nil, fmt.Errorf("failed to scan department headcount: %w", err)
		}
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return result, nil
}
