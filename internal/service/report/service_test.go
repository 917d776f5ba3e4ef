package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReportRepo struct {
	attendance  []report.AttendanceRow
	payroll     []report.PayrollRow
	departments []report.DepartmentRow
	limit       int
}

func (f *fakeReportRepo) ListAttendance(ctx context.Context) ([]report.AttendanceRow, error) {
	return f.attendance, nil
}

func (f *fakeReportRepo) CountActiveEmployees(ctx context.Context) (int64, error) { return 12, nil }

func (f *fakeReportRepo) ListFinalizedPayroll(ctx context.Context, limit int) ([]report.PayrollRow, error) {
	f.limit = limit
	return f.payroll, nil
}

func (f *fakeReportRepo) ListDepartments(ctx context.Context) ([]report.DepartmentRow, error) {
	return f.departments, nil
}

type fakePayrollService struct {
	payroll.PayrollService
	rows []payroll.EmployeePayrollResponse
}

func (f *fakePayrollService) GetEmployeesForPayroll(ctx context.Context, month, year int) ([]payroll.EmployeePayrollResponse, error) {
	return f.rows, nil
}

func strPtr(s string) *string { return &s }

func TestAttendanceReport_TruncatesHours(t *testing.T) {
	repo := &fakeReportRepo{attendance: []report.AttendanceRow{
		{EmployeeID: 1, EmployeeName: "Ana Putri", Date: time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC), Mark: "PRESENT", CheckIn: strPtr("08:12:00"), CheckOut: strPtr("18:48:00")},
		{EmployeeID: 2, EmployeeName: "Budi", Date: time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC), Mark: "NO_SIGN_OUT", CheckIn: strPtr("08:00:00")},
		{EmployeeID: 3, EmployeeName: "Citra", Date: time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC), Mark: "PRESENT", CheckIn: strPtr("18:00:00"), CheckOut: strPtr("08:00:00")},
	}}
	svc := NewReportService(repo, &fakePayrollService{})

	resp, err := svc.AttendanceReport(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(12), resp.TotalEmployees)
	require.Len(t, resp.AttendanceData, 3)
	first := resp.AttendanceData[0]
	assert.Equal(t, 10, first.Hours)
	assert.Equal(t, "2025-11-03", first.Date)
	assert.Equal(t, 2025, first.Year)
	assert.Equal(t, 11, first.Month)
	assert.Equal(t, 3, first.Day)
	assert.Zero(t, resp.AttendanceData[1].Hours)
	assert.Zero(t, resp.AttendanceData[2].Hours)
}

func TestPayrollReport(t *testing.T) {
	paid := time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC)
	repo := &fakeReportRepo{payroll: []report.PayrollRow{
		{EmployeeName: "Ana Putri", PayDate: &paid, NetPaid: decimal.NewFromInt(9500000)},
		{EmployeeName: "Budi", NetPaid: decimal.NewFromInt(7000000)},
	}}

	rows, err := NewReportService(repo, &fakePayrollService{}).PayrollReport(context.Background())
	require.NoError(t, err)

	assert.Equal(t, report.PayrollReportLimit, repo.limit)
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-10-31", *rows[0].PaymentDate)
	assert.Nil(t, rows[1].PaymentDate)
}

func TestDepartmentReport_EmptyIsNotNil(t *testing.T) {
	rows, err := NewReportService(&fakeReportRepo{}, &fakePayrollService{}).DepartmentReport(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestWritePayrollPDF(t *testing.T) {
	dept := "Finance"
	payrollSvc := &fakePayrollService{rows: []payroll.EmployeePayrollResponse{
		{EmployeeID: 1, EmployeeName: "Ana Putri", DepartmentName: &dept, GrossSalary: decimal.NewFromInt(10000000), NetSalary: decimal.NewFromInt(9500000), RunStatus: payroll.RunStatusPaid},
		{EmployeeID: 2, EmployeeName: "Budi", GrossSalary: decimal.NewFromInt(7000000), NetSalary: decimal.NewFromInt(7000000)},
	}}
	svc := NewReportService(&fakeReportRepo{}, payrollSvc)

	var buf bytes.Buffer
	require.NoError(t, svc.WritePayrollPDF(context.Background(), 11, 2025, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestWritePayrollPDF_InvalidPeriod(t *testing.T) {
	svc := NewReportService(&fakeReportRepo{}, &fakePayrollService{})

	err := svc.WritePayrollPDF(context.Background(), 13, 2025, &bytes.Buffer{})
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)
}
