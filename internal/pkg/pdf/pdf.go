package pdf

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Line is a labelled amount printed on a payslip.
type Line struct {
	Label  string
	Amount decimal.Decimal
}

type Payslip struct {
	EmployeeName          string
	DepartmentName        string
	PositionTitle         string
	PeriodStart           time.Time
	PeriodEnd             time.Time
	PayDate               *time.Time
	RunStatus             string
	GrossSalary           decimal.Decimal
	BonusAmount           decimal.Decimal
	HourVariance          int
	HourVarianceDeduction decimal.Decimal
	Deductions            []Line
	NetSalary             decimal.Decimal
}

// RenderPayslip writes a single-page A4 payslip to w.
func RenderPayslip(w io.Writer, p Payslip) error {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Payslip", false)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.Cell(40, 10, "Payslip")
	doc.Ln(12)

	doc.SetFont("Helvetica", "", 12)
	doc.Cell(0, 8, fmt.Sprintf("Employee: %s", p.EmployeeName))
	doc.Ln(7)
	if p.DepartmentName != "" || p.PositionTitle != "" {
		doc.Cell(0, 8, fmt.Sprintf("Department: %s    Position: %s", p.DepartmentName, p.PositionTitle))
		doc.Ln(7)
	}
	doc.Cell(0, 8, fmt.Sprintf("Period: %s to %s", p.PeriodStart.Format(dateLayout), p.PeriodEnd.Format(dateLayout)))
	doc.Ln(7)
	payDate := "-"
	if p.PayDate != nil {
		payDate = p.PayDate.Format(dateLayout)
	}
	doc.Cell(0, 8, fmt.Sprintf("Status: %s    Pay date: %s", p.RunStatus, payDate))
	doc.Ln(12)

	amountRow(doc, "Gross salary", p.GrossSalary)
	amountRow(doc, "Bonus", p.BonusAmount)
	for _, d := range p.Deductions {
		amountRow(doc, "Deduction: "+d.Label, d.Amount.Neg())
	}
	if p.HourVarianceDeduction.IsPositive() {
		amountRow(doc, fmt.Sprintf("Hour variance (%d h)", p.HourVariance), p.HourVarianceDeduction.Neg())
	}

	doc.SetFont("Helvetica", "B", 12)
	amountRow(doc, "Net salary", p.NetSalary)

	return doc.Output(w)
}

func amountRow(doc *gofpdf.Fpdf, label string, amount decimal.Decimal) {
	doc.CellFormat(120, 8, label, "B", 0, "L", false, 0, "")
	doc.CellFormat(50, 8, amount.StringFixed(2), "B", 1, "R", false, 0, "")
}

type PayrollReportRow struct {
	EmployeeName   string
	DepartmentName string
	RunStatus      string
	GrossSalary    decimal.Decimal
	BonusAmount    decimal.Decimal
	NetSalary      decimal.Decimal
}

type PayrollReport struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Rows        []PayrollReportRow
}

var reportColumns = []struct {
	title string
	width float64
	align string
}{
	{"Employee", 60, "L"},
	{"Department", 45, "L"},
	{"Status", 25, "L"},
	{"Gross", 30, "R"},
	{"Bonus", 25, "R"},
	{"Net", 30, "R"},
}

// RenderPayrollReport writes a landscape table of payroll entries with a totals row.
func RenderPayrollReport(w io.Writer, r PayrollReport) error {
	doc := gofpdf.New("L", "mm", "A4", "")
	doc.SetTitle("Payroll Report", false)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.Cell(0, 10, fmt.Sprintf("Payroll Report %s to %s", r.PeriodStart.Format(dateLayout), r.PeriodEnd.Format(dateLayout)))
	doc.Ln(14)

	doc.SetFont("Helvetica", "B", 10)
	doc.SetFillColor(220, 220, 220)
	for _, col := range reportColumns {
		doc.CellFormat(col.width, 8, col.title, "1", 0, col.align, true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 10)
	gross, bonus, net := decimal.Zero, decimal.Zero, decimal.Zero
	for _, row := range r.Rows {
		values := []string{
			row.EmployeeName,
			row.DepartmentName,
			row.RunStatus,
			row.GrossSalary.StringFixed(2),
			row.BonusAmount.StringFixed(2),
			row.NetSalary.StringFixed(2),
		}
		for i, col := range reportColumns {
			doc.CellFormat(col.width, 7, values[i], "1", 0, col.align, false, 0, "")
		}
		doc.Ln(-1)
		gross = gross.Add(row.GrossSalary)
		bonus = bonus.Add(row.BonusAmount)
		net = net.Add(row.NetSalary)
	}

	doc.SetFont("Helvetica", "B", 10)
	label := reportColumns[0].width + reportColumns[1].width + reportColumns[2].width
	doc.CellFormat(label, 8, fmt.Sprintf("Total (%d entries)", len(r.Rows)), "1", 0, "L", false, 0, "")
	doc.CellFormat(reportColumns[3].width, 8, gross.StringFixed(2), "1", 0, "R", false, 0, "")
	doc.CellFormat(reportColumns[4].width, 8, bonus.StringFixed(2), "1", 0, "R", false, 0, "")
	doc.CellFormat(reportColumns[5].width, 8, net.StringFixed(2), "1", 1, "R", false, 0, "")

	return doc.Output(w)
}
