package leave

import "context"

type LeaveService interface {
	ListLeaveTypes(ctx context.Context) ([]LeaveTypeResponse, error)

	ListLeaveRequests(ctx context.Context, filter LeaveRequestFilter) ([]LeaveRequestResponse, error)
	GetLeaveRequest(ctx context.Context, id int64) (LeaveRequestResponse, error)

	// CreateLeaveRequest files a PENDING request submitted today
	CreateLeaveRequest(ctx context.Context, req CreateLeaveRequestRequest) (LeaveRequestResponse, error)

	// UpdateLeaveRequest sets the status and, when given, the approver and reason
	UpdateLeaveRequest(ctx context.Context, req UpdateLeaveRequestRequest) (LeaveRequestResponse, error)
}
