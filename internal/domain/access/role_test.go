package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_LegacyAliases(t *testing.T) {
	cases := map[string]Role{
		"admin_rede":  RoleAdmin,
		"gerente":     RoleManager,
		"lider_turno": RoleManager,
		"operador":    RoleOperator,
		"admin":       RoleAdmin,
		"manager":     RoleManager,
		"operator":    RoleOperator,
		"super_admin": RoleSuperAdmin,
	}
	for raw, want := range cases {
		assert.Equal(t, want, Normalize(raw), "raw=%s", raw)
	}
}

func TestNormalize_UnknownPassesThrough(t *testing.T) {
	assert.Equal(t, Role("intern"), Normalize("intern"))
	assert.False(t, Normalize("intern").Known())
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, raw := range []string{
		"admin_rede", "gerente", "lider_turno", "operador",
		"admin", "manager", "operator", "super_admin", "intern", "",
	} {
		once := Normalize(raw)
		assert.Equal(t, once, Normalize(string(once)), "raw=%s", raw)
	}
}

func TestRole_Level(t *testing.T) {
	assert.Less(t, RoleOperator.Level(), RoleManager.Level())
	assert.Less(t, RoleManager.Level(), RoleAdmin.Level())
	assert.Less(t, RoleAdmin.Level(), RoleSuperAdmin.Level())
	assert.Zero(t, Role("intern").Level())
}

func TestCanCreateRole(t *testing.T) {
	tests := []struct {
		acting Role
		target Role
		want   bool
	}{
		{RoleSuperAdmin, RoleAdmin, true},
		{RoleSuperAdmin, RoleManager, true},
		{RoleSuperAdmin, RoleOperator, true},
		{RoleSuperAdmin, RoleSuperAdmin, false},
		{RoleAdmin, RoleManager, true},
		{RoleAdmin, RoleOperator, true},
		{RoleAdmin, RoleAdmin, false},
		{RoleAdmin, RoleSuperAdmin, false},
		{RoleManager, RoleOperator, true},
		{RoleManager, RoleManager, false},
		{RoleOperator, RoleOperator, false},
		// Legacy spellings normalize before evaluation.
		{"gerente", RoleOperator, true},
		{"admin_rede", "operador", true},
		{"lider_turno", RoleManager, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanCreateRole(tt.acting, tt.target),
			"acting=%s target=%s", tt.acting, tt.target)
	}
}

func TestCanManageUser(t *testing.T) {
	tests := []struct {
		acting Role
		target Role
		want   bool
	}{
		{RoleSuperAdmin, RoleAdmin, true},
		{RoleSuperAdmin, RoleSuperAdmin, false},
		{RoleAdmin, RoleManager, true},
		{RoleAdmin, RoleOperator, true},
		{RoleAdmin, RoleAdmin, false},
		{RoleManager, RoleOperator, true},
		{RoleManager, RoleManager, false},
		{RoleOperator, RoleOperator, false},
		{RoleOperator, RoleManager, false},
		{"gerente", "operador", true},
		// Unknown actors and targets have level 0.
		{"intern", RoleOperator, false},
		{RoleOperator, "intern", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanManageUser(tt.acting, tt.target),
			"acting=%s target=%s", tt.acting, tt.target)
	}
}

// Managing a user implies a strictly greater hierarchy level for any
// non-super-admin actor.
func TestCanManageUser_HierarchyMonotonicity(t *testing.T) {
	roles := []Role{RoleOperator, RoleManager, RoleAdmin, "gerente", "operador", "admin_rede", "lider_turno", "intern"}
	for _, acting := range roles {
		for _, target := range roles {
			if CanManageUser(acting, target) {
				assert.Greater(t,
					Normalize(string(acting)).Level(),
					Normalize(string(target)).Level(),
					"acting=%s target=%s", acting, target)
			}
		}
	}
}
