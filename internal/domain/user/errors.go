package user

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrUsernameExists          = errors.New("username already taken")
	ErrUserEmailExists         = errors.New("email already registered")
	ErrRoleNotFound            = errors.New("role not found")
	ErrEmployeeNotFound        = errors.New("linked employee not found")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)
