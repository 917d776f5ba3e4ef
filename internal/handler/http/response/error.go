package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/master/department"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/master/position"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, "Invalid credentials")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrMonthYearRequired):
		BadRequest(w, "Month and year are required", nil)
	case errors.Is(err, payroll.ErrPayIndividualFieldsRequired):
		BadRequest(w, "Month, year, assignment_id, and employee_id are required", nil)
	case errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, "Month must be between 1 and 12 and year between 2000 and 2100", nil)
	case errors.Is(err, payroll.ErrInvalidRunStatus):
		BadRequest(w, "Invalid payroll run status", nil)
	case errors.Is(err, payroll.ErrAssignmentMismatch):
		BadRequest(w, "Assignment does not belong to the employee", nil)
	case errors.Is(err, payroll.ErrPayrollEntryNotFound):
		NotFound(w, "Payroll entry not found")
	case errors.Is(err, payroll.ErrPayrollRunNotFound):
		NotFound(w, "Payroll run not found")
	case errors.Is(err, payroll.ErrAssignmentNotFound):
		NotFound(w, "Employment assignment not found")
	case errors.Is(err, payroll.ErrIllegalStatusTransition):
		Conflict(w, "Payroll run status transition not allowed")
	case errors.Is(err, payroll.ErrIndividualRunExists):
		Conflict(w, "An individual payroll run already exists for this employee and period")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, attendance.ErrImportFileRequired):
		BadRequest(w, "Import file is required", nil)
	case errors.Is(err, attendance.ErrUnsupportedImportFile):
		BadRequest(w, "Unsupported import file type, expected .xlsx or .csv", nil)
	case errors.Is(err, attendance.ErrEmptyWorksheet):
		BadRequest(w, "Worksheet is empty", nil)

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrDepartmentNotFound):
		NotFound(w, "Department or position not found")
	case errors.Is(err, employee.ErrEmployeeCodeExists):
		Conflict(w, "Employee code already exists")
	case errors.Is(err, employee.ErrEmailExists):
		Conflict(w, "Email already registered")

	// Master data errors
	case errors.Is(err, department.ErrDepartmentNotFound):
		NotFound(w, "Department not found")
	case errors.Is(err, department.ErrManagerNotFound):
		NotFound(w, "Manager assignment not found")
	case errors.Is(err, department.ErrDepartmentNameExists):
		Conflict(w, "Department with this name already exists")
	case errors.Is(err, position.ErrPositionNotFound):
		NotFound(w, "Position not found")
	case errors.Is(err, position.ErrPositionTitleExists):
		Conflict(w, "Position with this title already exists")

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrLeaveTypeNotFound):
		NotFound(w, "Leave type or employee not found")

	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrRoleNotFound):
		NotFound(w, "Role not found")
	case errors.Is(err, user.ErrEmployeeNotFound):
		NotFound(w, "Linked employee not found")
	case errors.Is(err, user.ErrUsernameExists):
		Conflict(w, "Username already taken")
	case errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")

	// Default
	default:
		slog.Error("unhandled request error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
