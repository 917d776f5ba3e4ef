package payroll

import (
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

type ComposeInput struct {
	// Entry is the stored entry for the assignment in the period, nil when none exists.
	Entry              *payroll.PayrollEntry
	StartSalary        decimal.Decimal
	Deductions         []decimal.Decimal
	CalculatedVariance int
	ExpectedHours      int
	RunStatus          payroll.RunStatus
}

type ComposedEntry struct {
	GrossSalary           decimal.Decimal
	BonusAmount           decimal.Decimal
	HourVariance          int
	HourVarianceOverride  bool
	HourVarianceDeduction decimal.Decimal
	TotalDeductions       decimal.Decimal
	NetSalary             decimal.Decimal
}

// Compose merges the stored entry, the assignment salary and the hour variance into gross and net.
// Entries of finalized runs keep their stored net salary.
func Compose(in ComposeInput) ComposedEntry {
	out := ComposedEntry{
		GrossSalary:  in.StartSalary,
		BonusAmount:  decimal.Zero,
		HourVariance: in.CalculatedVariance,
	}
	if in.Entry != nil {
		out.GrossSalary = in.Entry.GrossSalary
		out.BonusAmount = in.Entry.BonusAmount
		if in.Entry.HourVarianceOverride && in.Entry.HourVariance != nil {
			out.HourVariance = *in.Entry.HourVariance
			out.HourVarianceOverride = true
		}
	}

	out.NetSalary, out.HourVarianceDeduction, out.TotalDeductions = NetSalary(
		out.GrossSalary, out.BonusAmount, in.Deductions, out.HourVariance, in.ExpectedHours,
	)

	if in.Entry != nil && in.RunStatus.IsFinalized() {
		out.NetSalary = in.Entry.NetSalary
	}
	return out
}

// HourVarianceDeduction prices missing hours at gross / expectedHours, rounded to cents.
// Overtime (variance >= 0) is never paid out here.
func HourVarianceDeduction(variance int, gross decimal.Decimal, expectedHours int) decimal.Decimal {
	if variance >= 0 || !gross.IsPositive() || expectedHours <= 0 {
		return decimal.Zero
	}
	missing := decimal.NewFromInt(int64(-variance))
	return gross.Mul(missing).Div(decimal.NewFromInt(int64(expectedHours))).Round(2)
}

// NetSalary returns max(0, gross + bonus - deductions - hour variance deduction) at 2 dp
// together with the variance deduction and the deduction total.
func NetSalary(gross, bonus decimal.Decimal, deductions []decimal.Decimal, variance, expectedHours int) (net, varianceDeduction, total decimal.Decimal) {
	varianceDeduction = HourVarianceDeduction(variance, gross, expectedHours)
	total = varianceDeduction
	for _, d := range deductions {
		total = total.Add(d)
	}

	net = gross.Add(bonus).Sub(total).Round(2)
	if net.IsNegative() {
		net = decimal.Zero
	}
	return net, varianceDeduction, total
}
