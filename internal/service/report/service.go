package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/pdf"
)

type ReportServiceImpl struct {
	reportRepo     report.ReportRepository
	payrollService payroll.PayrollService
}

func NewReportService(reportRepo report.ReportRepository, payrollService payroll.PayrollService) report.ReportService {
	return &ReportServiceImpl{
		reportRepo:     reportRepo,
		payrollService: payrollService,
	}
}

// AttendanceReport returns every attendance row with whole worked hours
func (s *ReportServiceImpl) AttendanceReport(ctx context.Context) (report.AttendanceReportResponse, error) {
	rows, err := s.reportRepo.ListAttendance(ctx)
	if err != nil {
		return report.AttendanceReportResponse{}, fmt.Errorf("failed to get attendance data: %w", err)
	}

	total, err := s.reportRepo.CountActiveEmployees(ctx)
	if err != nil {
		return report.AttendanceReportResponse{}, fmt.Errorf("failed to count employees: %w", err)
	}

	data := make([]report.AttendanceReportRowResponse, 0, len(rows))
	for _, r := range rows {
		hours := 0
		if worked, ok := attendance.WorkedHours(r.CheckIn, r.CheckOut); ok && worked > 0 {
			hours = int(worked)
		}
		data = append(data, report.AttendanceReportRowResponse{
			EmployeeID: r.EmployeeID,
			Name:       r.EmployeeName,
			Date:       r.Date.Format(time.DateOnly),
			Status:     r.Mark,
			Hours:      hours,
			Year:       r.Date.Year(),
			Month:      int(r.Date.Month()),
			Day:        r.Date.Day(),
		})
	}

	return report.AttendanceReportResponse{
		AttendanceData: data,
		TotalEmployees: total,
	}, nil
}

// PayrollReport lists the newest finalized payroll entries
func (s *ReportServiceImpl) PayrollReport(ctx context.Context) ([]report.PayrollReportRowResponse, error) {
	rows, err := s.reportRepo.ListFinalizedPayroll(ctx, report.PayrollReportLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get payroll data: %w", err)
	}

	result := make([]report.PayrollReportRowResponse, 0, len(rows))
	for _, r := range rows {
		row := report.PayrollReportRowResponse{Name: r.EmployeeName, NetPaid: r.NetPaid}
		if r.PayDate != nil {
			d := r.PayDate.Format(time.DateOnly)
			row.PaymentDate = &d
		}
		result = append(result, row)
	}
	return result, nil
}

// DepartmentReport lists staff count and budget per department
func (s *ReportServiceImpl) DepartmentReport(ctx context.Context) ([]report.DepartmentReportRowResponse, error) {
	rows, err := s.reportRepo.ListDepartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get department data: %w", err)
	}

	result := make([]report.DepartmentReportRowResponse, 0, len(rows))
	for _, r := range rows {
		result = append(result, report.DepartmentReportRowResponse{
			Name:       r.Name,
			StaffCount: r.StaffCount,
			Budget:     r.Budget,
		})
	}
	return result, nil
}

// WritePayrollPDF renders the period payroll view, one row per active employee
func (s *ReportServiceImpl) WritePayrollPDF(ctx context.Context, month, year int, w io.Writer) error {
	period, err := payroll.NewPeriod(month, year)
	if err != nil {
		return err
	}

	employees, err := s.payrollService.GetEmployeesForPayroll(ctx, month, year)
	if err != nil {
		return err
	}

	doc := pdf.PayrollReport{
		PeriodStart: period.Start(),
		PeriodEnd:   period.End(),
		Rows:        make([]pdf.PayrollReportRow, 0, len(employees)),
	}
	for _, e := range employees {
		row := pdf.PayrollReportRow{
			EmployeeName: e.EmployeeName,
			RunStatus:    string(e.RunStatus),
			GrossSalary:  e.GrossSalary,
			BonusAmount:  e.BonusAmount,
			NetSalary:    e.NetSalary,
		}
		if e.DepartmentName != nil {
			row.DepartmentName = *e.DepartmentName
		}
		if row.RunStatus == "" {
			row.RunStatus = "-"
		}
		doc.Rows = append(doc.Rows, row)
	}

	return pdf.RenderPayrollReport(w, doc)
}
