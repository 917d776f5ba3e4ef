package user

import "context"

type UserService interface {
	ListUsers(ctx context.Context) ([]UserResponse, error)
	GetUser(ctx context.Context, id int64) (UserResponse, error)

	// CreateUser hashes the password (DefaultPassword when omitted) and grants role_id when given
	CreateUser(ctx context.Context, req CreateUserRequest) (UserResponse, error)

	// UpdateUser rewrites username, email and status; a role_id replaces the current grant
	UpdateUser(ctx context.Context, req UpdateUserRequest) (UserResponse, error)

	// DeactivateUser marks the account INACTIVE
	DeactivateUser(ctx context.Context, id int64) error

	ListRoles(ctx context.Context) ([]RoleResponse, error)
}
