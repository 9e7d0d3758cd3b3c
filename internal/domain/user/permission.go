package user

import "sort"

type Permission string

const (
	PermissionViewHorizonDashboard Permission = "view_horizon_dashboard"
	PermissionViewAdminDashboard   Permission = "view_admin_dashboard"

	// Admin
	PermissionManageAdmins Permission = "manage_admins"
	PermissionBrowseAdmins Permission = "browse_admins"
	PermissionReadAdmin    Permission = "read_admin"
	PermissionEditAdmin    Permission = "edit_admin"
	PermissionAddAdmin     Permission = "add_admin"
	PermissionDeleteAdmin  Permission = "delete_admin"

	// User
	PermissionManageUsers Permission = "manage_users"
	PermissionBrowseUsers Permission = "browse_users"
	PermissionReadUser    Permission = "read_user"
	PermissionEditUser    Permission = "edit_user"
	PermissionAddUser     Permission = "add_user"
	PermissionDeleteUser  Permission = "delete_user"

	// My attendance
	PermissionManageAttendances Permission = "manage_attendances"
	PermissionBrowseAttendances Permission = "browse_attendances"
	PermissionReadAttendance    Permission = "read_attendance"
	PermissionEditAttendance    Permission = "edit_attendance"
	PermissionAddAttendance     Permission = "add_attendance"
	PermissionDeleteAttendance  Permission = "delete_attendance"

	// All user attendance
	PermissionManageUserAttendances Permission = "manage_user_attendances"
	PermissionBrowseUserAttendances Permission = "browse_user_attendances"
	PermissionReadUserAttendance    Permission = "read_user_attendance"
	PermissionEditUserAttendance    Permission = "edit_user_attendance"
	PermissionAddUserAttendance     Permission = "add_user_attendance"
	PermissionDeleteUserAttendance  Permission = "delete_user_attendance"
)

// assignments maps every permission to the roles holding it. It is never
// mutated after package initialization; read it through HasPermission.
var assignments = map[Permission][]Role{
	PermissionViewHorizonDashboard: {RoleSuperAdmin},
	PermissionViewAdminDashboard:   {RoleSuperAdmin, RoleAdmin},

	PermissionManageAdmins: {RoleSuperAdmin},
	PermissionBrowseAdmins: {RoleSuperAdmin},
	PermissionReadAdmin:    {RoleSuperAdmin},
	PermissionEditAdmin:    {RoleSuperAdmin},
	PermissionAddAdmin:     {RoleSuperAdmin},
	PermissionDeleteAdmin:  {RoleSuperAdmin},

	PermissionManageUsers: {RoleSuperAdmin, RoleAdmin},
	PermissionBrowseUsers: {RoleSuperAdmin, RoleAdmin},
	PermissionReadUser:    {RoleSuperAdmin, RoleAdmin},
	PermissionEditUser:    {RoleSuperAdmin, RoleAdmin},
	PermissionAddUser:     {RoleSuperAdmin, RoleAdmin},
	PermissionDeleteUser:  {RoleSuperAdmin, RoleAdmin},

	PermissionManageAttendances: {RoleUser},
	PermissionBrowseAttendances: {RoleUser},
	PermissionReadAttendance:    {RoleUser},
	PermissionEditAttendance:    {RoleUser},
	PermissionAddAttendance:     {RoleUser},
	PermissionDeleteAttendance:  {RoleUser},

	PermissionManageUserAttendances: {RoleSuperAdmin, RoleAdmin},
	PermissionBrowseUserAttendances: {RoleSuperAdmin, RoleAdmin},
	PermissionReadUserAttendance:    {RoleSuperAdmin, RoleAdmin},
	PermissionEditUserAttendance:    {RoleSuperAdmin, RoleAdmin},
	PermissionAddUserAttendance:     {RoleSuperAdmin, RoleAdmin},
	PermissionDeleteUserAttendance:  {RoleSuperAdmin, RoleAdmin},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	roles, exists := assignments[permission]
	if !exists {
		return false
	}

	for _, r := range roles {
		if r == role {
			return true
		}
	}

	return false
}

// PermissionsForRole lists the permissions held by role, sorted by name.
func PermissionsForRole(role Role) []Permission {
	var permissions []Permission
	for permission, roles := range assignments {
		for _, r := range roles {
			if r == role {
				permissions = append(permissions, permission)
				break
			}
		}
	}
	sort.Slice(permissions, func(i, j int) bool { return permissions[i] < permissions[j] })
	return permissions
}

// Authorize is called first by every handler. A missing actor, an unknown
// role or an unassigned permission all deny.
func Authorize(actor *Actor, permission Permission) error {
	if actor == nil || actor.UserID == "" || !actor.Role.IsValid() {
		return ErrInsufficientPermissions
	}
	if !HasPermission(actor.Role, permission) {
		return ErrInsufficientPermissions
	}
	return nil
}
