package http

import (
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
)

type LeaveHandler interface {
	ListTypes(w http.ResponseWriter, r *http.Request)

	ListRequests(w http.ResponseWriter, r *http.Request)
	GetRequest(w http.ResponseWriter, r *http.Request)
	CreateRequest(w http.ResponseWriter, r *http.Request)
	UpdateRequest(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &LeaveHandlerImpl{leaveService: leaveService}
}

// ListTypes implements LeaveHandler.
func (l *LeaveHandlerImpl) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := l.leaveService.ListLeaveTypes(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, types)
}

// ListRequests implements LeaveHandler.
func (l *LeaveHandlerImpl) ListRequests(w http.ResponseWriter, r *http.Request) {
	var filter leave.LeaveRequestFilter

	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = &status
	}
	employeeID, err := queryInt64(r, "employee_id")
	if err != nil {
		response.BadRequest(w, "employee_id must be a number", nil)
		return
	}
	filter.EmployeeID = employeeID

	requests, err := l.leaveService.ListLeaveRequests(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, requests)
}

// GetRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id", "Leave request ID")
	if !ok {
		return
	}

	request, err := l.leaveService.GetLeaveRequest(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, request)
}

// CreateRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var req leave.CreateLeaveRequestRequest
	if !decodeJSON(w, r, &req, "CreateLeaveRequest") {
		return
	}

	request, err := l.leaveService.CreateLeaveRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted successfully", request)
}

// UpdateRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) UpdateRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id", "Leave request ID")
	if !ok {
		return
	}

	var req leave.UpdateLeaveRequestRequest
	if !decodeJSON(w, r, &req, "UpdateLeaveRequest") {
		return
	}
	req.ID = id

	// The approver defaults to the signed-in user.
	if req.ApprovedByUserID == nil {
		if userID, err := jwt.UserIDFromContext(r.Context()); err == nil {
			req.ApprovedByUserID = &userID
		}
	}

	request, err := l.leaveService.UpdateLeaveRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request updated successfully", request)
}
