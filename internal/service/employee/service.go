package employee

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type EmployeeServiceImpl struct {
	tx   database.Transactor
	repo employee.EmployeeRepository
	now  func() time.Time
}

func NewEmployeeService(tx database.Transactor, repo employee.EmployeeRepository) employee.EmployeeService {
	return &EmployeeServiceImpl{
		tx:   tx,
		repo: repo,
		now:  time.Now,
	}
}

func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context) ([]employee.EmployeeResponse, error) {
	employees, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return toResponses(employees), nil
}

func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id int64) (employee.EmployeeResponse, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.NewEmployeeResponse(e), nil
}

func (s *EmployeeServiceImpl) ListDepartmentEmployees(ctx context.Context, departmentID int64) ([]employee.EmployeeResponse, error) {
	employees, err := s.repo.ListByDepartment(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	return toResponses(employees), nil
}

func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	hireDate := parseDate(req.HireDate)
	status := employee.StatusActive
	if req.Status != nil {
		status = employee.Status(*req.Status)
	}

	var id int64
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		created, err := s.repo.Create(ctx, employee.Employee{
			EmployeeCode: req.EmployeeCode,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Phone:        req.Phone,
			Email:        req.Email,
			HireDate:     hireDate,
			Status:       status,
			Address:      req.Address,
			Nationality:  req.Nationality,
			BloodType:    req.BloodType,
			NSSFNumber:   req.NSSFNumber,
		})
		if err != nil {
			return err
		}
		id = created.ID

		if req.DepartmentID == nil || req.PositionID == nil {
			return nil
		}
		_, err = s.repo.CreateAssignment(ctx, s.newAssignment(id, *req.DepartmentID, *req.PositionID, hireDate, req.StartSalary))
		return err
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	slog.InfoContext(ctx, "employee created", "employee_id", id)
	return s.GetEmployee(ctx, id)
}

func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	hireDate := parseDate(&req.HireDate)
	status := employee.StatusActive
	if req.Status != nil {
		status = employee.Status(*req.Status)
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}

		phone, email := req.Phone, req.Email
		existing.FirstName = req.FirstName
		existing.LastName = req.LastName
		existing.Phone = &phone
		existing.Email = &email
		existing.HireDate = hireDate
		existing.Status = status
		existing.Address = req.Address
		existing.Nationality = req.Nationality
		existing.BloodType = req.BloodType
		existing.NSSFNumber = req.NSSFNumber
		if err := s.repo.Update(ctx, existing); err != nil {
			return err
		}

		if req.DepartmentID == nil || req.PositionID == nil {
			return nil
		}

		assignment, err := s.repo.GetActiveAssignment(ctx, req.ID)
		switch {
		case errors.Is(err, employee.ErrNoActiveAssignment):
			_, err = s.repo.CreateAssignment(ctx, s.newAssignment(req.ID, *req.DepartmentID, *req.PositionID, hireDate, req.StartSalary))
			return err
		case err != nil:
			return err
		}

		salary := salaryOrZero(req.StartSalary)
		assignment.DepartmentID = *req.DepartmentID
		assignment.PositionID = *req.PositionID
		assignment.StartSalary = salary
		assignment.ReferenceSalary = salary
		return s.repo.UpdateAssignment(ctx, assignment)
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	return s.GetEmployee(ctx, req.ID)
}

func (s *EmployeeServiceImpl) TerminateEmployee(ctx context.Context, id int64) error {
	if err := s.repo.UpdateStatus(ctx, id, employee.StatusTerminated); err != nil {
		return err
	}
	slog.InfoContext(ctx, "employee terminated", "employee_id", id)
	return nil
}

// newAssignment opens an ACTIVE assignment; start_salary doubles as the reference salary.
func (s *EmployeeServiceImpl) newAssignment(employeeID, departmentID, positionID int64, hireDate *time.Time, salary *decimal.Decimal) employee.Assignment {
	start := s.now().UTC()
	if hireDate != nil {
		start = *hireDate
	}
	amount := salaryOrZero(salary)
	return employee.Assignment{
		EmployeeID:      employeeID,
		DepartmentID:    departmentID,
		PositionID:      positionID,
		StartDate:       time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
		StartSalary:     amount,
		ReferenceSalary: amount,
		Status:          employee.StatusActive,
	}
}

func salaryOrZero(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return *v
}

// parseDate expects input already checked by Validate.
func parseDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, *s)
	if err != nil {
		return nil
	}
	return &t
}

func toResponses(employees []employee.Employee) []employee.EmployeeResponse {
	result := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		result = append(result, employee.NewEmployeeResponse(e))
	}
	return result
}
