package report

import "github.com/shopspring/decimal"

// PayrollReportLimit caps the payroll report.
const PayrollReportLimit = 100

type AttendanceReportRowResponse struct {
	EmployeeID int64  `json:"employee_id"`
	Name       string `json:"name"`
	Date       string `json:"date"`
	Status     string `json:"status"`
	Hours      int    `json:"hours"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	Day        int    `json:"day"`
}

type AttendanceReportResponse struct {
	AttendanceData []AttendanceReportRowResponse `json:"attendance_data"`
	TotalEmployees int64                         `json:"total_employees"`
}

type PayrollReportRowResponse struct {
	Name        string          `json:"name"`
	PaymentDate *string         `json:"payment_date"`
	NetPaid     decimal.Decimal `json:"net_paid"`
}

type DepartmentReportRowResponse struct {
	Name       string          `json:"name"`
	StaffCount int64           `json:"staff_count"`
	Budget     decimal.Decimal `json:"budget"`
}
