package employee

import "errors"

var (
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrEmployeeCodeExists = errors.New("employee code already exists")
	ErrEmailExists        = errors.New("email already registered")
	ErrDepartmentNotFound = errors.New("department or position not found")
	ErrNoActiveAssignment = errors.New("employee has no active assignment")
)
