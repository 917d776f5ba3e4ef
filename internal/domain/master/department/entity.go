package department

import "github.com/shopspring/decimal"

type Department struct {
	ID                  int64
	Name                string
	Description         *string
	Budget              decimal.Decimal
	ManagerAssignmentID *int64

	// Aggregated on read
	StaffCount  int64
	ManagerName *string
}
