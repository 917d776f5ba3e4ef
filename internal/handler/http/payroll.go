package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
)

type PayrollHandler interface {
	// Period view
	GetEmployeesForPayroll(w http.ResponseWriter, r *http.Request)
	BulkUpdateEntries(w http.ResponseWriter, r *http.Request)

	// Entries
	GetEntry(w http.ResponseWriter, r *http.Request)
	GetPayslip(w http.ResponseWriter, r *http.Request)

	// Runs
	CreateRun(w http.ResponseWriter, r *http.Request)
	ListRuns(w http.ResponseWriter, r *http.Request)
	ApproveRun(w http.ResponseWriter, r *http.Request)
	CancelRun(w http.ResponseWriter, r *http.Request)

	// Payment
	PayIndividual(w http.ResponseWriter, r *http.Request)
	PayAll(w http.ResponseWriter, r *http.Request)

	// Lookups
	ListDeductionTypes(w http.ResponseWriter, r *http.Request)
	ListBonusTypes(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== PERIOD VIEW ==========

func (h *payrollHandlerImpl) GetEmployeesForPayroll(w http.ResponseWriter, r *http.Request) {
	month, year, ok := monthYear(w, r)
	if !ok {
		return
	}

	result, err := h.payrollService.GetEmployeesForPayroll(r.Context(), month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) BulkUpdateEntries(w http.ResponseWriter, r *http.Request) {
	var req payroll.BulkUpdateEntriesRequest
	if !decodeJSON(w, r, &req, "BulkUpdateEntries") {
		return
	}

	result, err := h.payrollService.BulkUpdateEntries(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, result.Message, result)
}

// ========== ENTRIES ==========

func (h *payrollHandlerImpl) GetEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id", "Payroll entry ID")
	if !ok {
		return
	}

	result, err := h.payrollService.GetEntry(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) GetPayslip(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id", "Payroll entry ID")
	if !ok {
		return
	}

	// Rendered into a buffer so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := h.payrollService.WritePayslip(r.Context(), id, &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	response.PDF(w, fmt.Sprintf("payslip-%d.pdf", id), buf.Bytes())
}

// ========== RUNS ==========

func (h *payrollHandlerImpl) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreateRunRequest
	if !decodeJSON(w, r, &req, "CreatePayrollRun") {
		return
	}

	result, err := h.payrollService.CreateRun(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll run created", result)
}

func (h *payrollHandlerImpl) ListRuns(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.ListRuns(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ApproveRun(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id", "Payroll run ID")
	if !ok {
		return
	}

	var req payroll.ApproveRunRequest
	// An empty body means the default status.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("ApprovePayrollRun decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = id

	result, err := h.payrollService.ApproveRun(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, result.Message, result)
}

func (h *payrollHandlerImpl) CancelRun(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id", "Payroll run ID")
	if !ok {
		return
	}

	result, err := h.payrollService.CancelRun(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll run cancelled", result)
}

// ========== PAYMENT ==========

func (h *payrollHandlerImpl) PayIndividual(w http.ResponseWriter, r *http.Request) {
	var req payroll.PayIndividualRequest
	if !decodeJSON(w, r, &req, "PayIndividual") {
		return
	}

	result, err := h.payrollService.PayIndividual(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, result.Message, result)
}

func (h *payrollHandlerImpl) PayAll(w http.ResponseWriter, r *http.Request) {
	var req payroll.PayAllRequest
	if !decodeJSON(w, r, &req, "PayAllUnpaid") {
		return
	}

	result, err := h.payrollService.PayAllUnpaid(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, result.Message, result)
}

// ========== LOOKUPS ==========

func (h *payrollHandlerImpl) ListDeductionTypes(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.ListDeductionTypes(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ListBonusTypes(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.ListBonusTypes(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
