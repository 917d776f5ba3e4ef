package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	// Upsert inserts or updates the record keyed by (employee_id, attendance_date).
	// inserted is true when a new row was created.
	Upsert(ctx context.Context, record AttendanceRecord) (saved AttendanceRecord, inserted bool, err error)

	// GetByID retrieves a record joined with the employee name
	GetByID(ctx context.Context, id int64) (AttendanceRecord, error)

	// Update overwrites date, times, mark and notes of an existing record
	Update(ctx context.Context, record AttendanceRecord) error

	Delete(ctx context.Context, id int64) error

	// List retrieves records matching the filter, newest date first
	List(ctx context.Context, filter AttendanceFilter) ([]AttendanceRecord, error)

	// ListForEmployeePeriod returns every record of one employee within [from, to]
	ListForEmployeePeriod(ctx context.Context, employeeID int64, from, to time.Time) ([]AttendanceRecord, error)
}

// EmployeeResolver maps the identifier found in an import row to an employee id.
type EmployeeResolver interface {
	// ResolveEmployeeID accepts a numeric employee id or an employee code.
	// Returns ErrEmployeeNotFound when nothing matches.
	ResolveEmployeeID(ctx context.Context, identifier string) (int64, error)
}
