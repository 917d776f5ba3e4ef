package master

import (
	"context"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/master/department"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/master/position"
	"github.com/shopspring/decimal"
)

type MasterService interface {
	// Department operations
	CreateDepartment(ctx context.Context, req department.CreateDepartmentRequest) (department.DepartmentResponse, error)
	GetDepartment(ctx context.Context, id int64) (department.DepartmentResponse, error)
	ListDepartments(ctx context.Context) ([]department.DepartmentResponse, error)
	UpdateDepartment(ctx context.Context, req department.UpdateDepartmentRequest) (department.DepartmentResponse, error)

	// Position operations
	CreatePosition(ctx context.Context, req position.CreatePositionRequest) (position.PositionResponse, error)
	ListPositions(ctx context.Context) ([]position.PositionResponse, error)
}

type masterServiceImpl struct {
	departmentRepo department.DepartmentRepository
	positionRepo   position.PositionRepository
}

func NewMasterService(
	departmentRepo department.DepartmentRepository,
	positionRepo position.PositionRepository,
) MasterService {
	return &masterServiceImpl{
		departmentRepo: departmentRepo,
		positionRepo:   positionRepo,
	}
}

// ==================== DEPARTMENT OPERATIONS ====================

func (s *masterServiceImpl) CreateDepartment(ctx context.Context, req department.CreateDepartmentRequest) (department.DepartmentResponse, error) {
	// Validate request
	if err := req.Validate(); err != nil {
		return department.DepartmentResponse{}, err
	}

	// Budget defaults to zero
	budget := decimal.Zero
	if req.Budget != nil {
		budget = *req.Budget
	}

	created, err := s.departmentRepo.Create(ctx, department.Department{
		Name:                req.Name,
		Description:         req.Description,
		Budget:              budget,
		ManagerAssignmentID: req.ManagerAssignmentID,
	})
	if err != nil {
		return department.DepartmentResponse{}, err
	}

	return s.GetDepartment(ctx, created.ID)
}

func (s *masterServiceImpl) GetDepartment(ctx context.Context, id int64) (department.DepartmentResponse, error) {
	d, err := s.departmentRepo.GetByID(ctx, id)
	if err != nil {
		return department.DepartmentResponse{}, err
	}
	return department.NewDepartmentResponse(d), nil
}

func (s *masterServiceImpl) ListDepartments(ctx context.Context) ([]department.DepartmentResponse, error) {
	departments, err := s.departmentRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]department.DepartmentResponse, 0, len(departments))
	for _, d := range departments {
		responses = append(responses, department.NewDepartmentResponse(d))
	}
	return responses, nil
}

func (s *masterServiceImpl) UpdateDepartment(ctx context.Context, req department.UpdateDepartmentRequest) (department.DepartmentResponse, error) {
	if err := req.Validate(); err != nil {
		return department.DepartmentResponse{}, err
	}

	existing, err := s.departmentRepo.GetByID(ctx, req.ID)
	if err != nil {
		return department.DepartmentResponse{}, err
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.ManagerAssignmentID = req.ManagerAssignmentID
	if req.Budget != nil {
		existing.Budget = *req.Budget
	}

	if err := s.departmentRepo.Update(ctx, existing); err != nil {
		return department.DepartmentResponse{}, err
	}

	return s.GetDepartment(ctx, req.ID)
}

// ==================== POSITION OPERATIONS ====================

func (s *masterServiceImpl) CreatePosition(ctx context.Context, req position.CreatePositionRequest) (position.PositionResponse, error) {
	if err := req.Validate(); err != nil {
		return position.PositionResponse{}, err
	}

	created, err := s.positionRepo.Create(ctx, position.Position{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return position.PositionResponse{}, err
	}

	return toPositionResponse(created), nil
}

func (s *masterServiceImpl) ListPositions(ctx context.Context) ([]position.PositionResponse, error) {
	positions, err := s.positionRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]position.PositionResponse, 0, len(positions))
	for _, p := range positions {
		responses = append(responses, toPositionResponse(p))
	}
	return responses, nil
}

func toPositionResponse(p position.Position) position.PositionResponse {
	return position.PositionResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
	}
}
