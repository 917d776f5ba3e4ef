package dashboard

import "github.com/shopspring/decimal"

// TrendMonths is how many months the payroll trend covers, the current one included.
const TrendMonths = 6

type StatsResponse struct {
	ActiveEmployees  int64                  `json:"active_employees"`
	TotalDepartments int64                  `json:"total_departments"`
	ActiveLeaveCount int64                  `json:"active_leave_count"`
	TotalPayroll     decimal.Decimal        `json:"total_payroll"`
	PayrollTrends    []PayrollTrendResponse `json:"payroll_trends"`
}

type PayrollTrendResponse struct {
	Year  int             `json:"year"`
	Month int             `json:"month"`
	Total decimal.Decimal `json:"total"`
}

type DepartmentHeadcountResponse struct {
	Name  string `json:"name"`
	Staff int64  `json:"staff"`
}
