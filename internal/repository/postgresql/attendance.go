package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

// Times travel as "HH:MM" text in both directions.
const attendanceSelect = `
	SELECT
		a.attendance_id, a.employee_id, a.attendance_date,
		to_char(a.check_in, 'HH24:MI'), to_char(a.check_out, 'HH24:MI'),
		a.mark, a.notes, a.created_at, a.updated_at,
		e.first_name || ' ' || e.last_name AS employee_name
	FROM attendance_record a
	LEFT JOIN employee e ON e.employee_id = a.employee_id
`

func scanAttendance(row pgx.Row) (attendance.AttendanceRecord, error) {
	var rec attendance.AttendanceRecord
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.Date,
		&rec.CheckIn, &rec.CheckOut,
		&rec.Mark, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt,
		&rec.EmployeeName,
	)
	return rec, err
}

// Upsert implements attendance.AttendanceRepository.
func (r *attendanceRepository) Upsert(ctx context.Context, record attendance.AttendanceRecord) (attendance.AttendanceRecord, bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_record (employee_id, attendance_date, check_in, check_out, mark, notes)
		VALUES ($1, $2, $3::text::time, $4::text::time, $5, $6)
		ON CONFLICT (employee_id, attendance_date) DO UPDATE SET
			check_in = EXCLUDED.check_in,
			check_out = EXCLUDED.check_out,
			mark = EXCLUDED.mark,
			notes = COALESCE(EXCLUDED.notes, attendance_record.notes),
			updated_at = NOW()
		RETURNING attendance_id, (xmax = 0) AS inserted, created_at, updated_at
	`

	var inserted bool
	err := q.QueryRow(ctx, query,
		record.EmployeeID, record.Date, record.CheckIn, record.CheckOut, record.Mark, record.Notes,
	).Scan(&record.ID, &inserted, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return attendance.AttendanceRecord{}, false, attendance.ErrEmployeeNotFound
		}
		return attendance.AttendanceRecord{}, false, fmt.Errorf("failed to upsert attendance: %w", err)
	}

	return record, inserted, nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByID(ctx context.Context, id int64) (attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, r.db)

	rec, err := scanAttendance(q.QueryRow(ctx, attendanceSelect+" WHERE a.attendance_id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.AttendanceRecord{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to get attendance by ID: %w", err)
	}
	return rec, nil
}

// Update implements attendance.AttendanceRepository.
func (r *attendanceRepository) Update(ctx context.Context, record attendance.AttendanceRecord) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_record SET
			attendance_date = $2,
			check_in = $3::text::time,
			check_out = $4::text::time,
			mark = $5,
			notes = $6,
			updated_at = NOW()
		WHERE attendance_id = $1
	`

	tag, err := q.Exec(ctx, query, record.ID, record.Date, record.CheckIn, record.CheckOut, record.Mark, record.Notes)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// Delete implements attendance.AttendanceRepository.
func (r *attendanceRepository) Delete(ctx context.Context, id int64) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, "DELETE FROM attendance_record WHERE attendance_id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, r.db)

	where := "1 = 1"
	var args []interface{}
	argIdx := 1

	if filter.Month != nil && filter.Year != nil {
		start := time.Date(*filter.Year, time.Month(*filter.Month), 1, 0, 0, 0, 0, time.UTC)
		where += fmt.Sprintf(" AND a.attendance_date >= $%d AND a.attendance_date < $%d", argIdx, argIdx+1)
		args = append(args, start, start.AddDate(0, 1, 0))
		argIdx += 2
	}
	if filter.Date != nil && *filter.Date != "" {
		where += fmt.Sprintf(" AND a.attendance_date = $%d::date", argIdx)
		args = append(args, *filter.Date)
		argIdx++
	}
	if filter.EmployeeID != nil {
		where += fmt.Sprintf(" AND a.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	query := attendanceSelect + " WHERE " + where + " ORDER BY a.attendance_date DESC, employee_name ASC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	records := make([]attendance.AttendanceRecord, 0)
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance: %w", err)
	}
	return records, nil
}

// ListForEmployeePeriod implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListForEmployeePeriod(ctx context.Context, employeeID int64, from, to time.Time) ([]attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := attendanceSelect + `
		WHERE a.employee_id = $1 AND a.attendance_date BETWEEN $2 AND $3
		ORDER BY a.attendance_date
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query employee attendance: %w", err)
	}
	defer rows.Close()

	var records []attendance.AttendanceRecord
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type employeeResolver struct {
	db *database.DB
}

func NewEmployeeResolver(db *database.DB) attendance.EmployeeResolver {
	return &employeeResolver{db: db}
}

// ResolveEmployeeID matches the numeric id first, then the employee code.
func (r *employeeResolver) ResolveEmployeeID(ctx context.Context, identifier string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id
		FROM employee
		WHERE employee_id::text = $1 OR employee_code = $1
		ORDER BY (employee_id::text = $1) DESC
		LIMIT 1
	`

	var id int64
	if err := q.QueryRow(ctx, query, identifier).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, attendance.ErrEmployeeNotFound
		}
		return 0, fmt.Errorf("failed to resolve employee: %w", err)
	}
	return id, nil
}
