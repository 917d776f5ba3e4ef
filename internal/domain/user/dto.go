package user

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

// DefaultPassword is set on accounts created without one.
const DefaultPassword = "password123"

// ========== REQUEST DTOs ==========

type CreateUserRequest struct {
	Username   string  `json:"username"`
	Email      string  `json:"email"`
	Password   *string `json:"password,omitempty"`
	EmployeeID *int64  `json:"employee_id,omitempty"`
	RoleID     *int64  `json:"role_id,omitempty"`
}

func (r *CreateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	validateIdentity(&errs, r.Username, r.Email)
	if r.Password != nil && *r.Password != "" && len(*r.Password) < 8 {
		errs.Add("password", "password must be at least 8 characters")
	}

	return errs.Err()
}

type UpdateUserRequest struct {
	ID       int64  `json:"-"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Status   string `json:"status"`
	RoleID   *int64 `json:"role_id,omitempty"`
}

func (r *UpdateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	validateIdentity(&errs, r.Username, r.Email)
	r.Status = strings.ToUpper(strings.TrimSpace(r.Status))
	if r.Status == "" {
		r.Status = string(StatusActive)
	}
	if !Status(r.Status).IsValid() {
		errs.Add("status", "must be ACTIVE or INACTIVE")
	}

	return errs.Err()
}

func validateIdentity(errs *validator.ValidationErrors, username, email string) {
	if validator.IsEmpty(username) {
		errs.Add("username", "username is required")
	} else if len(username) > 50 {
		errs.Add("username", "username must not exceed 50 characters")
	}
	if validator.IsEmpty(email) {
		errs.Add("email", "email is required")
	} else if !validator.IsValidEmail(email) {
		errs.Add("email", "invalid email format")
	}
}

// ========== RESPONSE DTOs ==========

type UserResponse struct {
	ID         int64      `json:"user_id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	EmployeeID *int64     `json:"employee_id"`
	Status     Status     `json:"status"`
	LastLogin  *time.Time `json:"last_login"`
	Roles      []string   `json:"roles"`
}

func NewUserResponse(u User) UserResponse {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		EmployeeID: u.EmployeeID,
		Status:     u.Status,
		LastLogin:  u.LastLogin,
		Roles:      roles,
	}
}

type RoleResponse struct {
	ID          int64   `json:"role_id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}
