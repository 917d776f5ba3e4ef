package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPayslip(t *testing.T) {
	paid := time.Date(2025, 11, 28, 0, 0, 0, 0, time.UTC)
	var buf bytes.Buffer

	err := RenderPayslip(&buf, Payslip{
		EmployeeName:          "Ana Lee",
		DepartmentName:        "Finance",
		PositionTitle:         "Accountant",
		PeriodStart:           time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:             time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC),
		PayDate:               &paid,
		RunStatus:             "PAID",
		GrossSalary:           decimal.NewFromInt(3000),
		BonusAmount:           decimal.Zero,
		HourVariance:          -16,
		HourVarianceDeduction: decimal.RequireFromString("272.73"),
		Deductions:            []Line{{Label: "Tax", Amount: decimal.NewFromInt(200)}},
		NetSalary:             decimal.RequireFromString("2527.27"),
	})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestRenderPayrollReport(t *testing.T) {
	var buf bytes.Buffer

	err := RenderPayrollReport(&buf, PayrollReport{
		PeriodStart: time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC),
		Rows: []PayrollReportRow{
			{EmployeeName: "Ana Lee", DepartmentName: "Finance", RunStatus: "PAID", GrossSalary: decimal.NewFromInt(3000), NetSalary: decimal.NewFromInt(2800)},
			{EmployeeName: "Ben Ode", DepartmentName: "Sales", RunStatus: "APPROVED", GrossSalary: decimal.NewFromInt(2000), BonusAmount: decimal.NewFromInt(100), NetSalary: decimal.NewFromInt(2100)},
		},
	})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestRenderPayrollReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPayrollReport(&buf, PayrollReport{}))
	assert.NotZero(t, buf.Len())
}
