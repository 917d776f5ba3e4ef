package attendance

import (
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

// ========== REQUEST DTOs ==========

type CreateAttendanceRequest struct {
	EmployeeID     int64   `json:"employee_id"`
	AttendanceDate string  `json:"attendance_date"`
	CheckIn        *string `json:"check_in,omitempty"`
	CheckOut       *string `json:"check_out,omitempty"`
	Mark           *string `json:"mark,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

func (r *CreateAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID <= 0 {
		errs.Add("employee_id", "is required")
	}
	if validator.IsEmpty(r.AttendanceDate) {
		errs.Add("attendance_date", "is required")
	} else if _, ok := NormalizeDate(r.AttendanceDate); !ok {
		errs.Add("attendance_date", "must be a valid date")
	}
	validateTimes(&errs, r.CheckIn, r.CheckOut)
	if r.Mark != nil && !Mark(*r.Mark).IsValid() {
		errs.Add("mark", "must be one of PRESENT, ABSENT, OFF, NO_SIGN_OUT")
	}

	return errs.Err()
}

type UpdateAttendanceRequest struct {
	ID             int64   `json:"-"`
	AttendanceDate *string `json:"attendance_date,omitempty"`
	CheckIn        *string `json:"check_in,omitempty"`
	CheckOut       *string `json:"check_out,omitempty"`
	Mark           *string `json:"mark,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

func (r *UpdateAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.AttendanceDate != nil {
		if _, ok := NormalizeDate(*r.AttendanceDate); !ok {
			errs.Add("attendance_date", "must be a valid date")
		}
	}
	validateTimes(&errs, r.CheckIn, r.CheckOut)
	if r.Mark != nil && !Mark(*r.Mark).IsValid() {
		errs.Add("mark", "must be one of PRESENT, ABSENT, OFF, NO_SIGN_OUT")
	}

	return errs.Err()
}

func validateTimes(errs *validator.ValidationErrors, checkIn, checkOut *string) {
	if checkIn != nil && !validator.IsEmpty(*checkIn) && NormalizeTime(*checkIn).IsAbsent() {
		errs.Add("check_in", "must be a time of day")
	}
	if checkOut != nil && !validator.IsEmpty(*checkOut) && NormalizeTime(*checkOut).IsAbsent() {
		errs.Add("check_out", "must be a time of day")
	}
}

type AttendanceFilter struct {
	Month      *int
	Year       *int
	Date       *string
	EmployeeID *int64
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if (f.Month == nil) != (f.Year == nil) {
		errs.Add("month", "month and year must be supplied together")
	}
	if f.Month != nil && !validator.IsValidMonth(*f.Month) {
		errs.Add("month", "must be between 1 and 12")
	}
	if f.Year != nil && !validator.IsValidYear(*f.Year) {
		errs.Add("year", "must be a four-digit year")
	}
	if f.Date != nil {
		if _, ok := validator.IsValidDate(*f.Date); !ok {
			errs.Add("date", "must be in YYYY-MM-DD format")
		}
	}

	return errs.Err()
}

// ========== RESPONSE DTOs ==========

type AttendanceResponse struct {
	ID             int64   `json:"attendance_id"`
	EmployeeID     int64   `json:"employee_id"`
	EmployeeName   *string `json:"employee_name,omitempty"`
	AttendanceDate string  `json:"attendance_date"`
	CheckIn        *string `json:"check_in"`
	CheckOut       *string `json:"check_out"`
	Mark           Mark    `json:"mark"`
	Notes          *string `json:"notes,omitempty"`
	WorkingHours   float64 `json:"working_hours"`
	HourVariance   int     `json:"hour_variance"`
}

// ImportSummary reports the outcome of one spreadsheet import.
type ImportSummary struct {
	TotalRowsRead          int    `json:"total_rows_read"`
	ValidRows              int    `json:"valid_rows"`
	InsertedRecords        int    `json:"inserted_records"`
	UpdatedRecords         int    `json:"updated_records"`
	SkippedInvalidEmployee int    `json:"skipped_invalid_employee"`
	SkippedEmptyRows       int    `json:"skipped_empty_rows"`
	ArchivedFile           string `json:"archived_file,omitempty"`
}

// ImportFile is an uploaded spreadsheet handed to the import service.
type ImportFile struct {
	Filename string
	Content  []byte
}

// NewAttendanceResponse renders a stored record with derived working hours.
func NewAttendanceResponse(rec AttendanceRecord) AttendanceResponse {
	resp := AttendanceResponse{
		ID:             rec.ID,
		EmployeeID:     rec.EmployeeID,
		EmployeeName:   rec.EmployeeName,
		AttendanceDate: rec.Date.Format(time.DateOnly),
		CheckIn:        FormatForDisplay(rec.CheckIn),
		CheckOut:       FormatForDisplay(rec.CheckOut),
		Mark:           rec.Mark,
		Notes:          rec.Notes,
	}
	if rec.Mark == MarkPresent {
		if hours, ok := WorkedHours(rec.CheckIn, rec.CheckOut); ok && hours > 0 {
			resp.WorkingHours = roundTo(hours, 2)
			resp.HourVariance = RoundHalfUp(hours - StandardWorkdayHours)
		}
	}
	return resp
}
