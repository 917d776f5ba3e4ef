package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	Import(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	maxUploadBytes    int64
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, maxUploadBytes int64) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		maxUploadBytes:    maxUploadBytes,
	}
}

// Import implements AttendanceHandler.
func (h *attendanceHandlerImpl) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.BadRequest(w, "Uploaded file is too large", nil)
			return
		}
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		response.HandleError(w, attendance.ErrImportFileRequired)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		slog.Error("Failed to read uploaded file", "error", err)
		response.BadRequest(w, "Failed to read uploaded file", nil)
		return
	}

	summary, err := h.attendanceService.Import(r.Context(), attendance.ImportFile{
		Filename: fileHeader.Filename,
		Content:  content,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance imported successfully", summary)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	var filter attendance.AttendanceFilter
	var err error

	if filter.Month, err = queryInt(r, "month"); err != nil {
		response.BadRequest(w, "Month must be a number", nil)
		return
	}
	if filter.Year, err = queryInt(r, "year"); err != nil {
		response.BadRequest(w, "Year must be a number", nil)
		return
	}
	if filter.EmployeeID, err = queryInt64(r, "employee_id"); err != nil {
		response.BadRequest(w, "employee_id must be a number", nil)
		return
	}
	if date := r.URL.Query().Get("date"); date != "" {
		filter.Date = &date
	}

	records, err := h.attendanceService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, records)
}

// Get implements AttendanceHandler.
func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id", "Attendance ID")
	if !ok {
		return
	}

	record, err := h.attendanceService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, record)
}

// Create implements AttendanceHandler.
func (h *attendanceHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req attendance.CreateAttendanceRequest
	if !decodeJSON(w, r, &req, "CreateAttendance") {
		return
	}

	record, err := h.attendanceService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance record saved successfully", record)
}

// Update implements AttendanceHandler.
func (h *attendanceHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id", "Attendance ID")
	if !ok {
		return
	}

	var req attendance.UpdateAttendanceRequest
	if !decodeJSON(w, r, &req, "UpdateAttendance") {
		return
	}
	req.ID = id

	record, err := h.attendanceService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance record updated successfully", record)
}

// Delete implements AttendanceHandler.
func (h *attendanceHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id", "Attendance ID")
	if !ok {
		return
	}

	if err := h.attendanceService.Delete(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance record deleted successfully", nil)
}
