package http

import (
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/master/department"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/master/position"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-backend-go/internal/service/master"
)

type MasterHandler interface {
	// Department handlers
	ListDepartments(w http.ResponseWriter, r *http.Request)
	GetDepartment(w http.ResponseWriter, r *http.Request)
	ListDepartmentEmployees(w http.ResponseWriter, r *http.Request)
	CreateDepartment(w http.ResponseWriter, r *http.Request)
	UpdateDepartment(w http.ResponseWriter, r *http.Request)

	// Position handlers
	ListPositions(w http.ResponseWriter, r *http.Request)
	CreatePosition(w http.ResponseWriter, r *http.Request)
}

type masterHandlerImpl struct {
	masterService   master.MasterService
	employeeService employee.EmployeeService
}

func NewMasterHandler(masterService master.MasterService, employeeService employee.EmployeeService) MasterHandler {
	return &masterHandlerImpl{
		masterService:   masterService,
		employeeService: employeeService,
	}
}

// ==================== DEPARTMENT HANDLERS ====================

func (h *masterHandlerImpl) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.masterService.ListDepartments(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, departments)
}

func (h *masterHandlerImpl) GetDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id", "Department ID")
	if !ok {
		return
	}

	dept, err := h.masterService.GetDepartment(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, dept)
}

func (h *masterHandlerImpl) ListDepartmentEmployees(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id", "Department ID")
	if !ok {
		return
	}

	employees, err := h.employeeService.ListDepartmentEmployees(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, employees)
}

func (h *masterHandlerImpl) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req department.CreateDepartmentRequest
	if !decodeJSON(w, r, &req, "CreateDepartment") {
		return
	}

	dept, err := h.masterService.CreateDepartment(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Department created successfully", dept)
}

func (h *masterHandlerImpl) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id", "Department ID")
	if !ok {
		return
	}

	var req department.UpdateDepartmentRequest
	if !decodeJSON(w, r, &req, "UpdateDepartment") {
		return
	}
	req.ID = id

	dept, err := h.masterService.UpdateDepartment(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Department updated successfully", dept)
}

// ==================== POSITION HANDLERS ====================

func (h *masterHandlerImpl) ListPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.masterService.ListPositions(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, positions)
}

func (h *masterHandlerImpl) CreatePosition(w http.ResponseWriter, r *http.Request) {
	var req position.CreatePositionRequest
	if !decodeJSON(w, r, &req, "CreatePosition") {
		return
	}

	pos, err := h.masterService.CreatePosition(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Position created successfully", pos)
}
