package auth

import "github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"

type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UsernameOrEmail) {
		errs = append(errs, validator.ValidationError{
			Field:   "usernameOrEmail",
			Message: "usernameOrEmail is required",
		})
	}
	if r.Password == "" {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LoginResponse struct {
	UserID       int64    `json:"user_id"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	Role         string   `json:"role"`
	Roles        []string `json:"roles"`
	Status       string   `json:"status"`
	DepartmentID *int64   `json:"department_id"`
	AccessToken  string   `json:"access_token"`
	ExpiresAt    int64    `json:"expires_at"`
}
