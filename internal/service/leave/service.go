package leave

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/leave"
)

type LeaveServiceImpl struct {
	leave.LeaveTypeRepository
	leave.LeaveRequestRepository
	now func() time.Time
}

func NewLeaveService(leaveTypeRepository leave.LeaveTypeRepository, leaveRequestRepository leave.LeaveRequestRepository) leave.LeaveService {
	return &LeaveServiceImpl{
		LeaveTypeRepository:    leaveTypeRepository,
		LeaveRequestRepository: leaveRequestRepository,
		now:                    time.Now,
	}
}

// ListLeaveTypes implements leave.LeaveService.
func (l *LeaveServiceImpl) ListLeaveTypes(ctx context.Context) ([]leave.LeaveTypeResponse, error) {
	types, err := l.LeaveTypeRepository.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]leave.LeaveTypeResponse, 0, len(types))
	for _, t := range types {
		responses = append(responses, leave.LeaveTypeResponse{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
		})
	}
	return responses, nil
}

// ListLeaveRequests implements leave.LeaveService.
func (l *LeaveServiceImpl) ListLeaveRequests(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	requests, err := l.LeaveRequestRepository.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, leave.NewLeaveRequestResponse(r))
	}
	return responses, nil
}

// GetLeaveRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) GetLeaveRequest(ctx context.Context, id int64) (leave.LeaveRequestResponse, error) {
	request, err := l.LeaveRequestRepository.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return leave.NewLeaveRequestResponse(request), nil
}

// CreateLeaveRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) CreateLeaveRequest(ctx context.Context, req leave.CreateLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	start, _ := time.Parse(time.DateOnly, req.StartDate)
	end, _ := time.Parse(time.DateOnly, req.EndDate)
	now := l.now()

	created, err := l.LeaveRequestRepository.Create(ctx, leave.LeaveRequest{
		EmployeeID:  req.EmployeeID,
		LeaveTypeID: req.LeaveTypeID,
		StartDate:   start,
		EndDate:     end,
		Reason:      req.Reason,
		SubmittedOn: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		Status:      leave.StatusPending,
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	slog.InfoContext(ctx, "leave request submitted", "leave_request_id", created.ID, "employee_id", req.EmployeeID)
	return l.GetLeaveRequest(ctx, created.ID)
}

// UpdateLeaveRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) UpdateLeaveRequest(ctx context.Context, req leave.UpdateLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	if err := l.LeaveRequestRepository.UpdateStatus(ctx, req); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	slog.InfoContext(ctx, "leave request updated", "leave_request_id", req.ID, "status", req.Status)
	return l.GetLeaveRequest(ctx, req.ID)
}
