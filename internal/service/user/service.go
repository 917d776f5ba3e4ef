package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"golang.org/x/crypto/bcrypt"
)

type UserServiceImpl struct {
	tx database.Transactor
	user.UserRepository
	cost int
}

func NewUserService(tx database.Transactor, userRepository user.UserRepository) user.UserService {
	return &UserServiceImpl{
		tx:             tx,
		UserRepository: userRepository,
		cost:           bcrypt.DefaultCost,
	}
}

func (s *UserServiceImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// ListUsers implements user.UserService.
func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]user.UserResponse, error) {
	users, err := s.UserRepository.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]user.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, user.NewUserResponse(u))
	}
	return responses, nil
}

// GetUser implements user.UserService.
func (s *UserServiceImpl) GetUser(ctx context.Context, id int64) (user.UserResponse, error) {
	u, err := s.UserRepository.GetByID(ctx, id)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.NewUserResponse(u), nil
}

// CreateUser implements user.UserService.
func (s *UserServiceImpl) CreateUser(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	password := user.DefaultPassword
	if req.Password != nil && *req.Password != "" {
		password = *req.Password
	}
	hash, err := s.hashPassword(password)
	if err != nil {
		return user.UserResponse{}, err
	}

	var id int64
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		created, err := s.UserRepository.Create(ctx, user.User{
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: hash,
			EmployeeID:   req.EmployeeID,
			Status:       user.StatusActive,
		})
		if err != nil {
			return err
		}
		id = created.ID

		if req.RoleID == nil {
			return nil
		}
		return s.UserRepository.AssignRole(ctx, id, *req.RoleID)
	})
	if err != nil {
		return user.UserResponse{}, err
	}

	slog.InfoContext(ctx, "user created", "user_id", id, "username", req.Username)
	return s.GetUser(ctx, id)
}

// UpdateUser implements user.UserService.
func (s *UserServiceImpl) UpdateUser(ctx context.Context, req user.UpdateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.UserRepository.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}

		existing.Username = req.Username
		existing.Email = req.Email
		existing.Status = user.Status(req.Status)
		if err := s.UserRepository.Update(ctx, existing); err != nil {
			return err
		}

		if req.RoleID == nil {
			return nil
		}
		return s.UserRepository.AssignRole(ctx, req.ID, *req.RoleID)
	})
	if err != nil {
		return user.UserResponse{}, err
	}

	return s.GetUser(ctx, req.ID)
}

// DeactivateUser implements user.UserService.
func (s *UserServiceImpl) DeactivateUser(ctx context.Context, id int64) error {
	if err := s.UserRepository.UpdateStatus(ctx, id, user.StatusInactive); err != nil {
		return err
	}
	slog.InfoContext(ctx, "user deactivated", "user_id", id)
	return nil
}

// ListRoles implements user.UserService.
func (s *UserServiceImpl) ListRoles(ctx context.Context) ([]user.RoleResponse, error) {
	roles, err := s.UserRepository.ListRoles(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]user.RoleResponse, 0, len(roles))
	for _, r := range roles {
		responses = append(responses, user.RoleResponse{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
		})
	}
	return responses, nil
}
