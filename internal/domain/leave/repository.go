package leave

import "context"

// LeaveTypeRepository - interface for the leave_type lookup table
type LeaveTypeRepository interface {
	List(ctx context.Context) ([]LeaveType, error)
}

// LeaveRequestRepository - interface for the leave_request table
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id int64) (LeaveRequest, error)
	List(ctx context.Context, filter LeaveRequestFilter) ([]LeaveRequest, error)
	UpdateStatus(ctx context.Context, req UpdateLeaveRequestRequest) error
}
