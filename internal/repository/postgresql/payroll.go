package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// individualRunConstraint is the partial unique index on (period_start, employee_id) of live INDIVIDUAL runs.
const individualRunConstraint = "uq_payroll_run_individual_period"

func periodBounds(p payroll.Period) (time.Time, time.Time) {
	start := p.Start()
	return start, start.AddDate(0, 1, 0)
}

// ========== RUNS ==========

type payrollRunRepository struct {
	db *database.DB
}

func NewPayrollRunRepository(db *database.DB) payroll.RunRepository {
	return &payrollRunRepository{db: db}
}

const runColumns = `
	payroll_run_id, period_start, period_end, pay_date, status, run_kind,
	employee_id, notes, created_by_user_id, created_at
`

func scanRun(row pgx.Row) (payroll.PayrollRun, error) {
	var run payroll.PayrollRun
	err := row.Scan(
		&run.ID, &run.PeriodStart, &run.PeriodEnd, &run.PayDate, &run.Status, &run.Kind,
		&run.EmployeeID, &run.Notes, &run.CreatedBy, &run.CreatedAt,
	)
	return run, err
}

func (r *payrollRunRepository) queryRuns(ctx context.Context, query string, args ...interface{}) ([]payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payroll runs: %w", err)
	}
	defer rows.Close()

	runs := make([]payroll.PayrollRun, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payroll runs: %w", err)
	}
	return runs, nil
}

func (r *payrollRunRepository) getOne(ctx context.Context, query string, args ...interface{}) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	run, err := scanRun(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRun{}, payroll.ErrPayrollRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run: %w", err)
	}
	return run, nil
}

func (r *payrollRunRepository) Create(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_run (period_start, period_end, pay_date, status, run_kind, employee_id, notes, created_by_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + runColumns

	created, err := scanRun(q.QueryRow(ctx, query,
		run.PeriodStart, run.PeriodEnd, run.PayDate, run.Status, run.Kind, run.EmployeeID, run.Notes, run.CreatedBy,
	))
	if err != nil {
		if database.IsUniqueViolation(err, individualRunConstraint) {
			return payroll.PayrollRun{}, payroll.ErrIndividualRunExists
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to create payroll run: %w", err)
	}
	return created, nil
}

func (r *payrollRunRepository) GetByID(ctx context.Context, id int64) (payroll.PayrollRun, error) {
	return r.getOne(ctx, "SELECT "+runColumns+" FROM payroll_run WHERE payroll_run_id = $1", id)
}

func (r *payrollRunRepository) List(ctx context.Context) ([]payroll.PayrollRun, error) {
	return r.queryRuns(ctx, "SELECT "+runColumns+" FROM payroll_run ORDER BY period_start DESC, payroll_run_id DESC")
}

func (r *payrollRunRepository) UpdateStatus(ctx context.Context, id int64, status payroll.RunStatus, payDate *time.Time) (payroll.PayrollRun, error) {
	query := `
		UPDATE payroll_run SET status = $2, pay_date = $3
		WHERE payroll_run_id = $1
		RETURNING ` + runColumns
	return r.getOne(ctx, query, id, status, payDate)
}

func (r *payrollRunRepository) FindMain(ctx context.Context, period payroll.Period) (payroll.PayrollRun, error) {
	start, end := periodBounds(period)
	query := `
		SELECT ` + runColumns + `
		FROM payroll_run
		WHERE run_kind = 'MAIN' AND status <> 'CANCELLED'
		  AND period_start >= $1 AND period_start < $2
		ORDER BY created_at DESC, payroll_run_id DESC
		LIMIT 1
	`
	return r.getOne(ctx, query, start, end)
}

func (r *payrollRunRepository) FindIndividual(ctx context.Context, employeeID int64, period payroll.Period) (payroll.PayrollRun, error) {
	start, end := periodBounds(period)
	query := `
		SELECT ` + runColumns + `
		FROM payroll_run
		WHERE run_kind = 'INDIVIDUAL' AND status <> 'CANCELLED' AND employee_id = $3
		  AND period_start >= $1 AND period_start < $2
		ORDER BY (status = 'PAID') DESC, created_at DESC, payroll_run_id DESC
		LIMIT 1
	`
	return r.getOne(ctx, query, start, end, employeeID)
}

func (r *payrollRunRepository) ListIndividual(ctx context.Context, period payroll.Period) ([]payroll.PayrollRun, error) {
	start, end := periodBounds(period)
	query := `
		SELECT ` + runColumns + `
		FROM payroll_run
		WHERE run_kind = 'INDIVIDUAL' AND status <> 'CANCELLED'
		  AND period_start >= $1 AND period_start < $2
		ORDER BY created_at DESC, payroll_run_id DESC
	`
	return r.queryRuns(ctx, query, start, end)
}

func (r *payrollRunRepository) CountPaidIndividual(ctx context.Context, period payroll.Period) (int, error) {
	q := GetQuerier(ctx, r.db)
	start, end := periodBounds(period)

	query := `
		SELECT COUNT(DISTINCT employee_id)
		FROM payroll_run
		WHERE run_kind = 'INDIVIDUAL' AND status = 'PAID'
		  AND period_start >= $1 AND period_start < $2
	`

	var count int
	if err := q.QueryRow(ctx, query, start, end).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count paid individual runs: %w", err)
	}
	return count, nil
}

// LockEmployeePeriod takes a transaction-scoped advisory lock; outside a transaction it is released immediately.
func (r *payrollRunRepository) LockEmployeePeriod(ctx context.Context, employeeID int64, period payroll.Period) error {
	q := GetQuerier(ctx, r.db)

	key := fmt.Sprintf("payroll:%d:%s", employeeID, period.String())
	if _, err := q.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", key); err != nil {
		return fmt.Errorf("failed to lock employee period: %w", err)
	}
	return nil
}

// ========== ENTRIES ==========

type payrollEntryRepository struct {
	db *database.DB
}

func NewPayrollEntryRepository(db *database.DB) payroll.EntryRepository {
	return &payrollEntryRepository{db: db}
}

const entrySelect = `
	SELECT
		pe.payroll_entry_id, pe.payroll_run_id, pe.assignment_id,
		pe.gross_salary, pe.bonus_amount, pe.net_salary,
		pe.hour_variance, pe.hour_variance_override, pe.notes,
		ea.employee_id, e.first_name || ' ' || e.last_name, d.name, p.title,
		pr.status, pr.run_kind, pr.pay_date, pr.period_start, pr.period_end
	FROM payroll_entry pe
	JOIN payroll_run pr ON pr.payroll_run_id = pe.payroll_run_id
	JOIN employment_assignment ea ON ea.assignment_id = pe.assignment_id
	JOIN employee e ON e.employee_id = ea.employee_id
	LEFT JOIN department d ON d.department_id = ea.department_id
	LEFT JOIN position p ON p.position_id = ea.position_id
`

func scanEntry(row pgx.Row) (payroll.PayrollEntry, error) {
	var e payroll.PayrollEntry
	err := row.Scan(
		&e.ID, &e.RunID, &e.AssignmentID,
		&e.GrossSalary, &e.BonusAmount, &e.NetSalary,
		&e.HourVariance, &e.HourVarianceOverride, &e.Notes,
		&e.EmployeeID, &e.EmployeeName, &e.DepartmentName, &e.PositionTitle,
		&e.RunStatus, &e.RunKind, &e.RunPayDate, &e.PeriodStart, &e.PeriodEnd,
	)
	return e, err
}

func (r *payrollEntryRepository) getOne(ctx context.Context, query string, args ...interface{}) (payroll.PayrollEntry, error) {
	q := GetQuerier(ctx, r.db)

	entry, err := scanEntry(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollEntry{}, payroll.ErrPayrollEntryNotFound
		}
		return payroll.PayrollEntry{}, fmt.Errorf("failed to get payroll entry: %w", err)
	}
	return entry, nil
}

func (r *payrollEntryRepository) Create(ctx context.Context, entry payroll.PayrollEntry) (payroll.PayrollEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_entry (
			payroll_run_id, assignment_id, gross_salary, bonus_amount, net_salary,
			hour_variance, hour_variance_override, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING payroll_entry_id
	`

	err := q.QueryRow(ctx, query,
		entry.RunID, entry.AssignmentID, entry.GrossSalary, entry.BonusAmount, entry.NetSalary,
		entry.HourVariance, entry.HourVarianceOverride, entry.Notes,
	).Scan(&entry.ID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return payroll.PayrollEntry{}, payroll.ErrAssignmentNotFound
		}
		return payroll.PayrollEntry{}, fmt.Errorf("failed to create payroll entry: %w", err)
	}
	return entry, nil
}

func (r *payrollEntryRepository) GetByID(ctx context.Context, id int64) (payroll.PayrollEntry, error) {
	return r.getOne(ctx, entrySelect+" WHERE pe.payroll_entry_id = $1", id)
}

func (r *payrollEntryRepository) Update(ctx context.Context, entry payroll.PayrollEntry) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_entry SET
			payroll_run_id = $2,
			gross_salary = $3,
			bonus_amount = $4,
			net_salary = $5,
			hour_variance = $6,
			hour_variance_override = $7,
			notes = $8
		WHERE payroll_entry_id = $1
	`

	tag, err := q.Exec(ctx, query,
		entry.ID, entry.RunID, entry.GrossSalary, entry.BonusAmount, entry.NetSalary,
		entry.HourVariance, entry.HourVarianceOverride, entry.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to update payroll entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollEntryNotFound
	}
	return nil
}

func (r *payrollEntryRepository) Reparent(ctx context.Context, entryID, runID int64) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, "UPDATE payroll_entry SET payroll_run_id = $2 WHERE payroll_entry_id = $1", entryID, runID)
	if err != nil {
		return fmt.Errorf("failed to move payroll entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollEntryNotFound
	}
	return nil
}

func (r *payrollEntryRepository) ListByPeriod(ctx context.Context, period payroll.Period) ([]payroll.PayrollEntry, error) {
	q := GetQuerier(ctx, r.db)
	start, end := periodBounds(period)

	query := entrySelect + `
		WHERE pr.status <> 'CANCELLED' AND pr.period_start >= $1 AND pr.period_start < $2
		ORDER BY pr.created_at DESC, pr.payroll_run_id DESC, pe.payroll_entry_id DESC
	`

	rows, err := q.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query payroll entries: %w", err)
	}
	defer rows.Close()

	entries := make([]payroll.PayrollEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payroll entries: %w", err)
	}
	return entries, nil
}

func (r *payrollEntryRepository) FindByRunAndAssignment(ctx context.Context, runID, assignmentID int64) (payroll.PayrollEntry, error) {
	query := entrySelect + `
		WHERE pe.payroll_run_id = $1 AND pe.assignment_id = $2
		ORDER BY pe.payroll_entry_id DESC
		LIMIT 1
	`
	return r.getOne(ctx, query, runID, assignmentID)
}

func (r *payrollEntryRepository) LatestMainEntry(ctx context.Context, assignmentID int64, period payroll.Period) (payroll.PayrollEntry, error) {
	start, end := periodBounds(period)
	query := entrySelect + `
		WHERE pe.assignment_id = $1
		  AND pr.run_kind = 'MAIN' AND pr.status <> 'CANCELLED'
		  AND pr.period_start >= $2 AND pr.period_start < $3
		ORDER BY pr.created_at DESC, pr.payroll_run_id DESC, pe.payroll_entry_id DESC
		LIMIT 1
	`
	return r.getOne(ctx, query, assignmentID, start, end)
}

func (r *payrollEntryRepository) ListDeductions(ctx context.Context, entryIDs []int64) ([]payroll.Deduction, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT pd.deduction_id, pd.payroll_entry_id, pd.deduction_type_id, dt.name,
			   pd.amount, pd.reason, pd.effective_date
		FROM payroll_deduction pd
		LEFT JOIN deduction_type dt ON dt.deduction_type_id = pd.deduction_type_id
		WHERE pd.payroll_entry_id = ANY($1)
		ORDER BY pd.payroll_entry_id, pd.deduction_id
	`

	rows, err := q.Query(ctx, query, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query deductions: %w", err)
	}
	defer rows.Close()

	var deductions []payroll.Deduction
	for rows.Next() {
		var d payroll.Deduction
		if err := rows.Scan(&d.ID, &d.EntryID, &d.TypeID, &d.TypeName, &d.Amount, &d.Reason, &d.EffectiveDate); err != nil {
			return nil, fmt.Errorf("failed to scan deduction: %w", err)
		}
		deductions = append(deductions, d)
	}
	return deductions, rows.Err()
}

func (r *payrollEntryRepository) ListBonuses(ctx context.Context, entryIDs []int64) ([]payroll.Bonus, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT pb.bonus_id, pb.payroll_entry_id, pb.bonus_type_id, bt.name, pb.amount, pb.reason
		FROM payroll_bonus pb
		LEFT JOIN bonus_type bt ON bt.bonus_type_id = pb.bonus_type_id
		WHERE pb.payroll_entry_id = ANY($1)
		ORDER BY pb.payroll_entry_id, pb.bonus_id
	`

	rows, err := q.Query(ctx, query, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query bonuses: %w", err)
	}
	defer rows.Close()

	var bonuses []payroll.Bonus
	for rows.Next() {
		var b payroll.Bonus
		if err := rows.Scan(&b.ID, &b.EntryID, &b.TypeID, &b.TypeName, &b.Amount, &b.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan bonus: %w", err)
		}
		bonuses = append(bonuses, b)
	}
	return bonuses, rows.Err()
}

func (r *payrollEntryRepository) ReplaceDeductions(ctx context.Context, entryID int64, deductions []payroll.Deduction) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, "DELETE FROM payroll_deduction WHERE payroll_entry_id = $1", entryID); err != nil {
		return fmt.Errorf("failed to clear deductions: %w", err)
	}

	query := `
		INSERT INTO payroll_deduction (payroll_entry_id, deduction_type_id, amount, reason, effective_date)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, d := range deductions {
		if _, err := q.Exec(ctx, query, entryID, d.TypeID, d.Amount, d.Reason, d.EffectiveDate); err != nil {
			return fmt.Errorf("failed to insert deduction: %w", err)
		}
	}
	return nil
}

func (r *payrollEntryRepository) ReplaceBonuses(ctx context.Context, entryID int64, bonuses []payroll.Bonus) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, "DELETE FROM payroll_bonus WHERE payroll_entry_id = $1", entryID); err != nil {
		return fmt.Errorf("failed to clear bonuses: %w", err)
	}

	query := `
		INSERT INTO payroll_bonus (payroll_entry_id, bonus_type_id, amount, reason)
		VALUES ($1, $2, $3, $4)
	`
	for _, b := range bonuses {
		if _, err := q.Exec(ctx, query, entryID, b.TypeID, b.Amount, b.Reason); err != nil {
			return fmt.Errorf("failed to insert bonus: %w", err)
		}
	}
	return nil
}

func (r *payrollEntryRepository) ListDeductionTypes(ctx context.Context) ([]payroll.DeductionType, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, "SELECT deduction_type_id, name, description FROM deduction_type ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query deduction types: %w", err)
	}
	defer rows.Close()

	types := make([]payroll.DeductionType, 0)
	for rows.Next() {
		var t payroll.DeductionType
		if err := rows.Scan(&t.ID, &t.Name, &t.Description); err != nil {
			return nil, fmt.Errorf("failed to scan deduction type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (r *payrollEntryRepository) ListBonusTypes(ctx context.Context) ([]payroll.BonusType, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, "SELECT bonus_type_id, name, description FROM bonus_type ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query bonus types: %w", err)
	}
	defer rows.Close()

	types := make([]payroll.BonusType, 0)
	for rows.Next() {
		var t payroll.BonusType
		if err := rows.Scan(&t.ID, &t.Name, &t.Description); err != nil {
			return nil, fmt.Errorf("failed to scan bonus type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// ========== WORKFORCE ==========

type workforceRepository struct {
	db *database.DB
}

func NewWorkforceRepository(db *database.DB) payroll.WorkforceRepository {
	return &workforceRepository{db: db}
}

// ListActiveEmployees returns ACTIVE employees with their newest ACTIVE assignment.
func (r *workforceRepository) ListActiveEmployees(ctx context.Context) ([]payroll.PayrollEmployee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT DISTINCT ON (e.employee_id)
			e.employee_id, e.first_name || ' ' || e.last_name,
			ea.assignment_id, ea.start_salary,
			d.name, p.title, e.hire_date, ea.start_date
		FROM employee e
		JOIN employment_assignment ea ON ea.employee_id = e.employee_id AND ea.status = 'ACTIVE'
		LEFT JOIN department d ON d.department_id = ea.department_id
		LEFT JOIN position p ON p.position_id = ea.position_id
		WHERE e.status = 'ACTIVE'
		ORDER BY e.employee_id, ea.start_date DESC NULLS LAST, ea.assignment_id DESC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query payroll employees: %w", err)
	}
	defer rows.Close()

	employees := make([]payroll.PayrollEmployee, 0)
	for rows.Next() {
		var e payroll.PayrollEmployee
		if err := rows.Scan(
			&e.EmployeeID, &e.EmployeeName,
			&e.AssignmentID, &e.StartSalary,
			&e.DepartmentName, &e.PositionTitle, &e.HireDate, &e.AssignmentStartDate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payroll employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payroll employees: %w", err)
	}
	return employees, nil
}

func (r *workforceRepository) GetAssignment(ctx context.Context, assignmentID int64) (payroll.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	var a payroll.Assignment
	err := q.QueryRow(ctx,
		"SELECT assignment_id, employee_id, start_salary FROM employment_assignment WHERE assignment_id = $1",
		assignmentID,
	).Scan(&a.ID, &a.EmployeeID, &a.StartSalary)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Assignment{}, payroll.ErrAssignmentNotFound
		}
		return payroll.Assignment{}, fmt.Errorf("failed to get assignment: %w", err)
	}
	return a, nil
}
