package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/payroll-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/payroll-backend-go/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/payroll-backend-go/internal/service/auth"
	dashboardService "github.com/cmlabs-hris/payroll-backend-go/internal/service/dashboard"
	employeeService "github.com/cmlabs-hris/payroll-backend-go/internal/service/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/service/leave"
	"github.com/cmlabs-hris/payroll-backend-go/internal/service/master"
	payrollService "github.com/cmlabs-hris/payroll-backend-go/internal/service/payroll"
	reportService "github.com/cmlabs-hris/payroll-backend-go/internal/service/report"
	userService "github.com/cmlabs-hris/payroll-backend-go/internal/service/user"
	"github.com/go-chi/httplog/v3"
	"github.com/redis/go-redis/v9"
)

const (
	appName         = "hr-payroll"
	appVersion      = "v1.0.0"
	shutdownTimeout = 15 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", appName),
		slog.String("version", appVersion),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize local storage: %w", err)
	}

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return fmt.Errorf("failed to initialize jwt service: %w", err)
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer rdb.Close()
		slog.Info("Idempotency keys enabled", "redis_addr", cfg.Redis.Addr)
	}

	// Repositories
	txManager := postgresql.NewTxManager(db)
	userRepo := postgresql.NewUserRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	departmentRepo := postgresql.NewDepartmentRepository(db)
	positionRepo := postgresql.NewPositionRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	employeeResolver := postgresql.NewEmployeeResolver(db)
	leaveTypeRepo := postgresql.NewLeaveTypeRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	payrollRunRepo := postgresql.NewPayrollRunRepository(db)
	payrollEntryRepo := postgresql.NewPayrollEntryRepository(db)
	workforceRepo := postgresql.NewWorkforceRepository(db)
	dashboardRepo := postgresql.NewDashboardRepository(db)
	reportRepo := postgresql.NewReportRepository(db)

	// Services
	authSvc := serviceAuth.NewAuthService(userRepo, JWTService)
	userSvc := userService.NewUserService(txManager, userRepo)
	employeeSvc := employeeService.NewEmployeeService(txManager, employeeRepo)
	masterSvc := master.NewMasterService(departmentRepo, positionRepo)
	eventHub := sse.NewHub()
	attendanceSvc := attendanceService.NewAttendanceService(txManager, attendanceRepo, employeeResolver, fileStorage, eventHub)
	leaveSvc := leave.NewLeaveService(leaveTypeRepo, leaveRequestRepo)
	varianceCalculator := payrollService.NewVarianceCalculator(attendanceRepo)
	payrollSvc := payrollService.NewPayrollService(
		txManager,
		payrollRunRepo,
		payrollEntryRepo,
		workforceRepo,
		varianceCalculator,
		cfg.Payroll.DefaultCreatedBy,
		eventHub,
	)
	dashboardSvc := dashboardService.NewDashboardService(dashboardRepo)
	reportSvc := reportService.NewReportService(reportRepo, payrollSvc)

	// Background jobs
	scheduler := cron.NewScheduler()
	cron.NewPayrollJobs(payrollSvc, cfg.Cron.OpenPeriodInterval).RegisterJobs(scheduler)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	routerCfg := appHTTP.RouterConfig{
		Logger:         logger,
		LogLevel:       cfg.SlogLevel(),
		AllowedOrigins: cfg.App.CORSAllowedOrigins,
		AuthRequired:   cfg.JWT.Required,
		RequestTimeout: cfg.Database.QueryTimeout,
		RateLimitRPS:   cfg.RateLimit.RequestsPerSecond,
		RateLimitBurst: cfg.RateLimit.Burst,
		IdempotencyTTL: cfg.Redis.IdempotencyTTL,
		JWTService:     JWTService,
	}
	if rdb != nil {
		routerCfg.Redis = rdb
	}

	router := appHTTP.NewRouter(routerCfg, appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(authSvc),
		Employee:   appHTTP.NewEmployeeHandler(employeeSvc),
		Master:     appHTTP.NewMasterHandler(masterSvc, employeeSvc),
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc, cfg.Import.MaxUploadBytes),
		Leave:      appHTTP.NewLeaveHandler(leaveSvc),
		Payroll:    appHTTP.NewPayrollHandler(payrollSvc),
		User:       appHTTP.NewUserHandler(userSvc),
		Dashboard:  appHTTP.NewDashboardHandler(dashboardSvc),
		Report:     appHTTP.NewReportHandler(reportSvc),
		Events:     appHTTP.NewEventsHandler(eventHub),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", "http://localhost"+server.Addr, "auth_required", cfg.JWT.Required)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	slog.Info("Server stopped")
	return nil
}
