package user

import "context"

type UserRepository interface {
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id int64) (User, error)

	// GetActiveByLogin finds an ACTIVE account whose username or email equals login
	GetActiveByLogin(ctx context.Context, login string) (User, error)

	Create(ctx context.Context, newUser User) (User, error)
	Update(ctx context.Context, u User) error
	UpdateStatus(ctx context.Context, id int64, status Status) error
	TouchLastLogin(ctx context.Context, id int64) error

	// AssignRole revokes every open grant of the user and opens one for roleID
	AssignRole(ctx context.Context, userID, roleID int64) error
	ListRoles(ctx context.Context) ([]RoleRecord, error)
}
