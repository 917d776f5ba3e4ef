package leave

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

// ========== REQUEST DTOs ==========

type CreateLeaveRequestRequest struct {
	EmployeeID  int64   `json:"employee_id"`
	LeaveTypeID int64   `json:"leave_type_id"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Reason      *string `json:"reason,omitempty"`
}

func (r *CreateLeaveRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID <= 0 {
		errs.Add("employee_id", "employee_id is required")
	}
	if r.LeaveTypeID <= 0 {
		errs.Add("leave_type_id", "leave_type_id is required")
	}

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs.Add("start_date", "must be in YYYY-MM-DD format")
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs.Add("end_date", "must be in YYYY-MM-DD format")
	}
	if startOK && endOK && end.Before(start) {
		errs.Add("end_date", "end_date must not be before start_date")
	}

	return errs.Err()
}

type UpdateLeaveRequestRequest struct {
	ID               int64   `json:"-"`
	Status           string  `json:"status"`
	ApprovedByUserID *int64  `json:"approved_by_user_id,omitempty"`
	Reason           *string `json:"reason,omitempty"`
}

func (r *UpdateLeaveRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Status = strings.ToUpper(strings.TrimSpace(r.Status))
	if r.Status == "" {
		errs.Add("status", "status is required")
	} else if !RequestStatus(r.Status).IsValid() {
		errs.Add("status", "must be one of PENDING, APPROVED, REJECTED, CANCELLED")
	}

	return errs.Err()
}

type LeaveRequestFilter struct {
	Status     *string
	EmployeeID *int64
}

func (f *LeaveRequestFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil {
		s := strings.ToUpper(strings.TrimSpace(*f.Status))
		f.Status = &s
		if !RequestStatus(s).IsValid() {
			errs.Add("status", "must be one of PENDING, APPROVED, REJECTED, CANCELLED")
		}
	}

	return errs.Err()
}

// ========== RESPONSE DTOs ==========

type LeaveTypeResponse struct {
	ID          int64   `json:"leave_type_id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type LeaveRequestResponse struct {
	ID               int64         `json:"leave_request_id"`
	EmployeeID       int64         `json:"employee_id"`
	EmployeeName     string        `json:"employee_name"`
	LeaveTypeID      int64         `json:"leave_type_id"`
	LeaveTypeName    string        `json:"leave_type_name"`
	StartDate        string        `json:"start_date"`
	EndDate          string        `json:"end_date"`
	Reason           *string       `json:"reason"`
	SubmittedOn      string        `json:"submitted_on"`
	Status           RequestStatus `json:"status"`
	ApprovedByUserID *int64        `json:"approved_by_user_id"`
}

func NewLeaveRequestResponse(r LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:               r.ID,
		EmployeeID:       r.EmployeeID,
		EmployeeName:     r.EmployeeName,
		LeaveTypeID:      r.LeaveTypeID,
		LeaveTypeName:    r.LeaveTypeName,
		StartDate:        r.StartDate.Format(time.DateOnly),
		EndDate:          r.EndDate.Format(time.DateOnly),
		Reason:           r.Reason,
		SubmittedOn:      r.SubmittedOn.Format(time.DateOnly),
		Status:           r.Status,
		ApprovedByUserID: r.ApprovedByUserID,
	}
}
