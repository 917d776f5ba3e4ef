package department

import "errors"

var (
	ErrDepartmentNotFound   = errors.New("department not found")
	ErrDepartmentNameExists = errors.New("department with this name already exists")
	ErrManagerNotFound      = errors.New("manager assignment not found")
)
