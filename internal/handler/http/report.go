package http

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	AttendanceReport(w http.ResponseWriter, r *http.Request)
	PayrollReport(w http.ResponseWriter, r *http.Request)
	DepartmentReport(w http.ResponseWriter, r *http.Request)
	PayrollReportPDF(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{reportService: reportService}
}

func (h *reportHandlerImpl) AttendanceReport(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.AttendanceReport(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *reportHandlerImpl) PayrollReport(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.PayrollReport(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *reportHandlerImpl) DepartmentReport(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.DepartmentReport(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *reportHandlerImpl) PayrollReportPDF(w http.ResponseWriter, r *http.Request) {
	month, year, ok := monthYear(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.reportService.WritePayrollPDF(r.Context(), month, year, &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	response.PDF(w, fmt.Sprintf("payroll-%04d-%02d.pdf", year, month), buf.Bytes())
}
