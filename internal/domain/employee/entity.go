package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID           int64
	EmployeeCode *string
	FirstName    string
	LastName     string
	Phone        *string
	Email        *string
	HireDate     *time.Time
	Status       Status
	Address      *string
	Nationality  *string
	BloodType    *string
	NSSFNumber   *string

	// Joined from the ACTIVE assignment
	AssignmentID   *int64
	DepartmentID   *int64
	DepartmentName *string
	PositionID     *int64
	PositionTitle  *string
	StartSalary    *decimal.Decimal
}

// FullName joins first and last name the way lists and reports show it.
func (e Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

type Status string

const (
	StatusActive     Status = "ACTIVE"
	StatusInactive   Status = "INACTIVE"
	StatusTerminated Status = "TERMINATED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusTerminated:
		return true
	}
	return false
}

// Assignment places an employee in a department and position at a salary.
type Assignment struct {
	ID              int64
	EmployeeID      int64
	DepartmentID    int64
	PositionID      int64
	StartDate       time.Time
	StartSalary     decimal.Decimal
	ReferenceSalary decimal.Decimal
	Status          Status
}
