package user

type Role string

const (
	RoleAdmin          Role = "ADMIN"
	RoleHRManager      Role = "HR_MANAGER"
	RolePayrollOfficer Role = "PAYROLL_OFFICER"
	RoleEmployee       Role = "EMPLOYEE"
)

type Permission string

const (
	// Employee records, departments and positions
	PermissionEmployeeView   Permission = "employee.view"
	PermissionEmployeeManage Permission = "employee.manage"

	// Attendance
	PermissionAttendanceView   Permission = "attendance.view"
	PermissionAttendanceManage Permission = "attendance.manage"

	// Leave
	PermissionLeaveCreate  Permission = "leave.create"
	PermissionLeaveViewAll Permission = "leave.view_all"
	PermissionLeaveApprove Permission = "leave.approve"

	// Payroll
	PermissionPayrollView   Permission = "payroll.view"
	PermissionPayrollManage Permission = "payroll.manage"

	// Reports
	PermissionReportsView Permission = "reports.view"

	// User Management
	PermissionUserManage Permission = "user.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionEmployeeView,
		PermissionEmployeeManage,
		PermissionAttendanceView,
		PermissionAttendanceManage,
		PermissionLeaveCreate,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionPayrollView,
		PermissionPayrollManage,
		PermissionReportsView,
		PermissionUserManage,
	},
	RoleHRManager: {
		PermissionEmployeeView,
		PermissionEmployeeManage,
		PermissionAttendanceView,
		PermissionAttendanceManage,
		PermissionLeaveCreate,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionPayrollView,
		PermissionPayrollManage,
		PermissionReportsView,
	},
	RolePayrollOfficer: {
		PermissionEmployeeView,
		PermissionAttendanceView,
		PermissionAttendanceManage,
		PermissionLeaveViewAll,
		PermissionPayrollView,
		PermissionPayrollManage,
		PermissionReportsView,
	},
	RoleEmployee: {
		PermissionLeaveCreate,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}

// AnyHasPermission reports whether one of the granted role names carries the permission.
func AnyHasPermission(roles []string, permission Permission) bool {
	for _, r := range roles {
		if HasPermission(Role(r), permission) {
			return true
		}
	}
	return false
}
