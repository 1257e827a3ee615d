package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission_SuperAdminBypass(t *testing.T) {
	for _, p := range AllPermissions() {
		assert.True(t, HasPermission(RoleSuperAdmin, p), "perm=%s", p)
	}
}

func TestHasPermission_Table(t *testing.T) {
	assert.True(t, HasPermission(RoleAdmin, PermManageUsers))
	assert.True(t, HasPermission(RoleManager, PermApproveOrder))
	assert.False(t, HasPermission(RoleManager, PermManageUsers))
	assert.False(t, HasPermission(RoleManager, PermViewUsers))
	assert.True(t, HasPermission(RoleOperator, PermViewStock))
	assert.True(t, HasPermission(RoleOperator, PermSubmitOrder))
	assert.False(t, HasPermission(RoleOperator, PermApproveOrder))
	assert.False(t, HasPermission(RoleOperator, PermManageStock))
}

func TestHasPermission_UnknownOrEmptyRole(t *testing.T) {
	assert.False(t, HasPermission("", PermViewDashboard))
	assert.False(t, HasPermission("intern", PermViewDashboard))
	// Legacy spellings are not in the table; normalization is the caller's job.
	assert.False(t, HasPermission("gerente", PermViewDashboard))
}

func TestPermissionsFor_ReturnsCopy(t *testing.T) {
	perms := PermissionsFor(RoleOperator)
	assert.NotEmpty(t, perms)
	perms[0] = "tampered"
	assert.NotContains(t, PermissionsFor(RoleOperator), Permission("tampered"))
}

func TestPermissionsFor_UnknownRoleEmpty(t *testing.T) {
	assert.Empty(t, PermissionsFor("intern"))
}
