package constants

// Role is the authorization role stored on employees.role.
type Role string

const (
	RoleHRAdmin   Role = "hr_admin"   // full access
	RoleHRManager Role = "hr_manager" // read, leave approvals, limited updates
	RoleHRViewer  Role = "hr_viewer"  // read-only
	RoleEmployee  Role = "employee"   // self-service
)

// Permission is a granular capability granted to roles.
type Permission string

const (
	PermCreateEmployee       Permission = "create_employee"
	PermUpdateEmployee       Permission = "update_employee"
	PermUpdateEmployeeSalary Permission = "update_employee_salary"
	PermDeleteEmployee       Permission = "delete_employee"
	PermViewEmployee         Permission = "view_employee"

	PermCreateLeaveRequest Permission = "create_leave_request"
	PermApproveLeave       Permission = "approve_leave"
	PermRejectLeave        Permission = "reject_leave"
	PermViewLeave          Permission = "view_leave"
	PermViewTeamLeave      Permission = "view_team_leave"

	PermViewAuditLog Permission = "view_audit_log"
	PermManageRoles  Permission = "manage_roles"
)

// Permission returns what op requires of the caller.
func (o Operation) Permission() Permission {
	switch o {
	case OperationImportEmployees:
		return PermCreateEmployee
	case OperationUpdateManagers:
		return PermUpdateEmployee
	default:
		return ""
	}
}
