package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission_AssignmentTable(t *testing.T) {
	cases := []struct {
		role       Role
		permission Permission
		want       bool
	}{
		{RoleSuperAdmin, PermissionViewHorizonDashboard, true},
		{RoleAdmin, PermissionViewHorizonDashboard, false},
		{RoleAdmin, PermissionViewAdminDashboard, true},
		{RoleSuperAdmin, PermissionAddAdmin, true},
		{RoleAdmin, PermissionAddAdmin, false},
		{RoleAdmin, PermissionEditUser, true},
		{RoleUser, PermissionEditUser, false},
		{RoleUser, PermissionAddAttendance, true},
		{RoleUser, PermissionBrowseAttendances, true},
		{RoleAdmin, PermissionAddAttendance, false},
		{RoleAdmin, PermissionEditUserAttendance, true},
		{RoleUser, PermissionEditUserAttendance, false},
		{Role("guest"), PermissionBrowseAttendances, false},
		{RoleSuperAdmin, Permission("unknown"), false},
	}

	for _, c := range cases {
		t.Run(string(c.role)+"/"+string(c.permission), func(t *testing.T) {
			assert.Equal(t, c.want, HasPermission(c.role, c.permission))
		})
	}
}

func TestAuthorize_FailsClosed(t *testing.T) {
	assert.ErrorIs(t, Authorize(nil, PermissionAddAttendance), ErrInsufficientPermissions)
	assert.ErrorIs(t, Authorize(&Actor{Role: RoleUser}, PermissionAddAttendance), ErrInsufficientPermissions)
	assert.ErrorIs(t, Authorize(&Actor{UserID: "u1", Role: "root"}, PermissionAddAttendance), ErrInsufficientPermissions)
	assert.ErrorIs(t, Authorize(&Actor{UserID: "u1", Role: RoleUser}, PermissionReadUser), ErrInsufficientPermissions)

	assert.NoError(t, Authorize(&Actor{UserID: "u1", Role: RoleUser}, PermissionAddAttendance))
	assert.NoError(t, Authorize(&Actor{UserID: "a1", Role: RoleAdmin}, PermissionReadUserAttendance))
}

func TestPermissionsForRole(t *testing.T) {
	userPerms := PermissionsForRole(RoleUser)
	assert.Len(t, userPerms, 6)
	assert.Contains(t, userPerms, PermissionAddAttendance)
	assert.NotContains(t, userPerms, PermissionViewAdminDashboard)

	// super admin holds everything except the self-service attendance set
	assert.Len(t, PermissionsForRole(RoleSuperAdmin), len(assignments)-6)
	assert.Empty(t, PermissionsForRole(Role("guest")))

	// results are sorted so responses are stable
	perms := PermissionsForRole(RoleAdmin)
	for i := 1; i < len(perms); i++ {
		assert.Less(t, string(perms[i-1]), string(perms[i]))
	}
}

func TestRole_Kind(t *testing.T) {
	assert.Equal(t, KindAdmin, RoleSuperAdmin.Kind())
	assert.Equal(t, KindAdmin, RoleAdmin.Kind())
	assert.Equal(t, KindUser, RoleUser.Kind())
	assert.Equal(t, []Role{RoleUser}, KindUser.Roles())
	assert.ElementsMatch(t, []Role{RoleSuperAdmin, RoleAdmin}, KindAdmin.Roles())
}
