package leave

import "time"

// LeaveType is a lookup row such as Annual or Sick.
type LeaveType struct {
	ID          int64
	Name        string
	Description *string
}

type LeaveRequest struct {
	ID               int64
	EmployeeID       int64
	LeaveTypeID      int64
	StartDate        time.Time
	EndDate          time.Time
	Reason           *string
	SubmittedOn      time.Time
	Status           RequestStatus
	ApprovedByUserID *int64

	// Joined fields
	EmployeeName  string
	LeaveTypeName string
}

type RequestStatus string

const (
	StatusPending   RequestStatus = "PENDING"
	StatusApproved  RequestStatus = "APPROVED"
	StatusRejected  RequestStatus = "REJECTED"
	StatusCancelled RequestStatus = "CANCELLED"
)

func (s RequestStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}
