package user

import "time"

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	EmployeeID   *int64
	Status       Status
	LastLogin    *time.Time

	// Join: role names with revoked_on IS NULL, and the department of the ACTIVE assignment
	Roles        []string
	DepartmentID *int64
}

// PrimaryRole is the first granted role, HR_MANAGER when none is granted.
func (u *User) PrimaryRole() string {
	if len(u.Roles) == 0 {
		return string(RoleHRManager)
	}
	return u.Roles[0]
}

// IsActive checks if the account may sign in
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

type RoleRecord struct {
	ID          int64
	Name        string
	Description *string
}
