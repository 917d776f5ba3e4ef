package attendance

import (
	"strings"
	"time"
)

// Mark is the per-day attendance status
type Mark string

const (
	MarkPresent   Mark = "PRESENT"
	MarkAbsent    Mark = "ABSENT"
	MarkOff       Mark = "OFF"
	MarkNoSignOut Mark = "NO_SIGN_OUT"
)

func (m Mark) IsValid() bool {
	switch m {
	case MarkPresent, MarkAbsent, MarkOff, MarkNoSignOut:
		return true
	}
	return false
}

// StandardWorkdayHours is the expected length of one working day.
const StandardWorkdayHours = 8

// AttendanceRecord is one employee-day. Unique per (EmployeeID, Date).
type AttendanceRecord struct {
	ID         int64
	EmployeeID int64
	Date       time.Time
	CheckIn    *string // "HH:MM"
	CheckOut   *string // "HH:MM"
	Mark       Mark
	Notes      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Joined fields
	EmployeeName *string
}

// ImportRow is one data row of an attendance spreadsheet after cell decoding.
type ImportRow struct {
	EmployeeIdentifier any
	Date               any
	TimeIn             any
	TimeOut            any
}

// IsBlank reports whether every used column of the row is empty.
func (r ImportRow) IsBlank() bool {
	return isBlankCell(r.EmployeeIdentifier) && isBlankCell(r.Date) && isBlankCell(r.TimeIn) && isBlankCell(r.TimeOut)
}

func isBlankCell(v any) bool {
	switch c := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(c) == ""
	}
	return false
}
