package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/sse"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/redis/go-redis/v9"
)

// RouterConfig carries the settings the router needs from the application config.
type RouterConfig struct {
	Logger         *slog.Logger
	LogLevel       slog.Level
	AllowedOrigins []string
	AuthRequired   bool
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	Redis          redis.Cmdable // nil disables idempotency keys
	IdempotencyTTL time.Duration
	JWTService     jwt.Service
}

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Auth       AuthHandler
	Employee   EmployeeHandler
	Master     MasterHandler
	Attendance AttendanceHandler
	Leave      LeaveHandler
	Payroll    PayrollHandler
	User       UserHandler
	Dashboard  DashboardHandler
	Report     ReportHandler
	Events     EventsHandler
}

var apiEndpoints = []string{
	"POST /api/auth/login",
	"GET /api/health",
	"/api/employees",
	"/api/departments",
	"/api/positions",
	"/api/attendance",
	"/api/leave",
	"/api/payroll",
	"/api/users",
	"/api/dashboard",
	"/api/reports",
	"GET /api/payroll/events",
	"GET /api/attendance/events",
}

func NewRouter(cfg RouterConfig, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(httplog.RequestLogger(cfg.Logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", middleware.IdempotencyHeader},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	if cfg.RequestTimeout > 0 {
		r.Use(unlessEventStream(chiMiddleware.Timeout(cfg.RequestTimeout)))
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("HR & Payroll API is running. See /api for the endpoint list.\n"))
	})

	loginLimit := middleware.RateLimitByIP(cfg.RateLimitRPS, cfg.RateLimitBurst)
	importLimit := middleware.RateLimitByIP(cfg.RateLimitRPS, cfg.RateLimitBurst)

	// permit is a no-op when authentication is switched off.
	permit := func(p user.Permission) func(http.Handler) http.Handler {
		if !cfg.AuthRequired {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.RequirePermission(p)
	}
	idempotent := func(next http.Handler) http.Handler { return next }
	if cfg.Redis != nil {
		idempotent = middleware.Idempotency(cfg.Redis, cfg.IdempotencyTTL)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			response.Success(w, map[string]interface{}{
				"message":   "HR & Payroll API",
				"endpoints": apiEndpoints,
			})
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			response.Success(w, map[string]string{
				"status":    "UP",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
		})

		r.With(loginLimit).Post("/auth/login", h.Auth.Login)

		r.Group(func(r chi.Router) {
			if cfg.AuthRequired {
				r.Use(jwtauth.Verifier(cfg.JWTService.JWTAuth()))
				r.Use(middleware.AuthRequired(cfg.JWTService.JWTAuth()))
			}

			r.Route("/employees", func(r chi.Router) {
				r.With(permit(user.PermissionEmployeeView)).Get("/", h.Employee.List)
				r.With(permit(user.PermissionEmployeeView)).Get("/{id}", h.Employee.Get)
				r.With(permit(user.PermissionEmployeeManage)).Post("/", h.Employee.Create)
				r.With(permit(user.PermissionEmployeeManage)).Put("/{id}", h.Employee.Update)
				r.With(permit(user.PermissionEmployeeManage)).Delete("/{id}", h.Employee.Terminate)
			})

			r.Route("/departments", func(r chi.Router) {
				r.With(permit(user.PermissionEmployeeView)).Get("/", h.Master.ListDepartments)
				r.With(permit(user.PermissionEmployeeView)).Get("/{id}", h.Master.GetDepartment)
				r.With(permit(user.PermissionEmployeeView)).Get("/{id}/employees", h.Master.ListDepartmentEmployees)
				r.With(permit(user.PermissionEmployeeManage)).Post("/", h.Master.CreateDepartment)
				r.With(permit(user.PermissionEmployeeManage)).Put("/{id}", h.Master.UpdateDepartment)
			})

			r.Route("/positions", func(r chi.Router) {
				r.With(permit(user.PermissionEmployeeView)).Get("/", h.Master.ListPositions)
				r.With(permit(user.PermissionEmployeeManage)).Post("/", h.Master.CreatePosition)
			})

			r.Route("/attendance", func(r chi.Router) {
				r.With(permit(user.PermissionAttendanceManage), importLimit).Post("/import", h.Attendance.Import)
				r.With(permit(user.PermissionAttendanceView)).Get("/events", h.Events.Stream(sse.TopicAttendance))
				r.With(permit(user.PermissionAttendanceView)).Get("/", h.Attendance.List)
				r.With(permit(user.PermissionAttendanceView)).Get("/{id}", h.Attendance.Get)
				r.With(permit(user.PermissionAttendanceManage)).Post("/", h.Attendance.Create)
				r.With(permit(user.PermissionAttendanceManage)).Put("/{id}", h.Attendance.Update)
				r.With(permit(user.PermissionAttendanceManage)).Delete("/{id}", h.Attendance.Delete)
			})

			r.Route("/leave", func(r chi.Router) {
				r.Get("/types", h.Leave.ListTypes)
				r.With(permit(user.PermissionLeaveViewAll)).Get("/requests", h.Leave.ListRequests)
				r.With(permit(user.PermissionLeaveViewAll)).Get("/requests/{id}", h.Leave.GetRequest)
				r.With(permit(user.PermissionLeaveCreate)).Post("/requests", h.Leave.CreateRequest)
				r.With(permit(user.PermissionLeaveApprove)).Put("/requests/{id}", h.Leave.UpdateRequest)
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(permit(user.PermissionPayrollView))
					r.Get("/events", h.Events.Stream(sse.TopicPayroll))
					r.Get("/employees", h.Payroll.GetEmployeesForPayroll)
					r.Get("/entries/{id}", h.Payroll.GetEntry)
					r.Get("/entries/{id}/payslip", h.Payroll.GetPayslip)
					r.Get("/runs", h.Payroll.ListRuns)
					r.Get("/deduction-types", h.Payroll.ListDeductionTypes)
					r.Get("/bonus-types", h.Payroll.ListBonusTypes)
				})
				r.Group(func(r chi.Router) {
					r.Use(permit(user.PermissionPayrollManage))
					r.With(idempotent).Post("/entries", h.Payroll.BulkUpdateEntries)
					r.Post("/runs", h.Payroll.CreateRun)
					r.Put("/runs/{id}/approve", h.Payroll.ApproveRun)
					r.Post("/runs/{id}/cancel", h.Payroll.CancelRun)
					r.With(idempotent).Post("/pay-individual", h.Payroll.PayIndividual)
					r.With(idempotent).Post("/pay-all", h.Payroll.PayAll)
				})
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(permit(user.PermissionUserManage))
				r.Get("/", h.User.List)
				r.Get("/roles", h.User.ListRoles)
				r.Get("/{id}", h.User.Get)
				r.Post("/", h.User.Create)
				r.Put("/{id}", h.User.Update)
				r.Delete("/{id}", h.User.Deactivate)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/stats", h.Dashboard.GetStats)
				r.Get("/departments", h.Dashboard.GetDepartmentHeadcounts)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(permit(user.PermissionReportsView))
				r.Get("/attendance", h.Report.AttendanceReport)
				r.Get("/payroll", h.Report.PayrollReport)
				r.Get("/payroll/pdf", h.Report.PayrollReportPDF)
				r.Get("/departments", h.Report.DepartmentReport)
			})
		})
	})

	return r
}

// unlessEventStream keeps mw off the long-lived /events streams.
func unlessEventStream(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/events") {
				next.ServeHTTP(w, r)
				return
			}
			wrapped.ServeHTTP(w, r)
		})
	}
}
