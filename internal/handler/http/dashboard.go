package http

import (
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
)

type DashboardHandler interface {
	GetStats(w http.ResponseWriter, r *http.Request)
	GetDepartmentHeadcounts(w http.ResponseWriter, r *http.Request)
}

type dashboardHandlerImpl struct {
	dashboardService dashboard.DashboardService
}

func NewDashboardHandler(dashboardService dashboard.DashboardService) DashboardHandler {
	return &dashboardHandlerImpl{dashboardService: dashboardService}
}

func (h *dashboardHandlerImpl) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardService.GetStats(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, stats)
}

func (h *dashboardHandlerImpl) GetDepartmentHeadcounts(w http.ResponseWriter, r *http.Request) {
	headcounts, err := h.dashboardService.GetDepartmentHeadcounts(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, headcounts)
}
