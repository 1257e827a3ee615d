package access

// Package access contains the pure role/permission core: role normalization,
// the permission table, the role hierarchy, and admin view switching.
// It is free of transport, storage, and framework concerns.

// Role represents an application authorization role.
// Kept in string form for easy persistence and JSON serialization.
type Role string

// Canonical roles, in ascending order of power.
const (
	RoleOperator   Role = "operator"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Legacy role spellings still present in historical role assignment rows.
const (
	legacyRoleAdminRede  Role = "admin_rede"
	legacyRoleGerente    Role = "gerente"
	legacyRoleLiderTurno Role = "lider_turno"
	legacyRoleOperador   Role = "operador"
)

// legacyAliases maps historical role spellings onto the canonical set.
var legacyAliases = map[Role]Role{
	legacyRoleAdminRede:  RoleAdmin,
	legacyRoleGerente:    RoleManager,
	legacyRoleLiderTurno: RoleManager,
	legacyRoleOperador:   RoleOperator,
}

// roleHierarchy assigns a power level to each canonical role.
// Higher level means more power. super_admin is special-cased in the
// management rules and never compared purely by level.
var roleHierarchy = map[Role]int{
	RoleOperator:   10,
	RoleManager:    25,
	RoleAdmin:      50,
	RoleSuperAdmin: 100,
}

// Normalize maps a raw role string onto the canonical role set.
// Legacy spellings map many-to-one; canonical roles map to themselves.
// Unrecognized strings pass through unchanged; callers that require a
// canonical role must check Known() and treat unknown roles as an error
// (the resolver degrades them to operator rather than accepting them).
// Normalize is total and idempotent.
func Normalize(raw string) Role {
	r := Role(raw)
	if canonical, ok := legacyAliases[r]; ok {
		return canonical
	}
	return r
}

// Known reports whether the role is a member of the canonical set.
func (r Role) Known() bool {
	_, ok := roleHierarchy[r]
	return ok
}

// Level returns the hierarchy level of the role, or 0 for unknown roles.
func (r Role) Level() int {
	return roleHierarchy[r]
}

// CanCreateRole reports whether an actor holding actingRole may create a user
// with targetRole. Both inputs are normalized first. The rules are strict
// allow-lists, not derived from the numeric hierarchy:
//   - super_admin may create anyone except another super_admin
//   - admin may create manager or operator
//   - manager may create operator
//   - operator may create nobody
func CanCreateRole(actingRole, targetRole Role) bool {
	acting := Normalize(string(actingRole))
	target := Normalize(string(targetRole))

	switch acting {
	case RoleSuperAdmin:
		return target != RoleSuperAdmin
	case RoleAdmin:
		return target == RoleManager || target == RoleOperator
	case RoleManager:
		return target == RoleOperator
	default:
		return false
	}
}

// CanManageUser reports whether an actor holding actingRole may manage a user
// holding targetRole. Both inputs are normalized first. super_admin manages
// everyone except other super_admins; all other actors fall back to a strict
// hierarchy comparison (strictly greater level wins). Note the deliberate
// asymmetry with CanCreateRole, which uses allow-lists instead.
func CanManageUser(actingRole, targetRole Role) bool {
	acting := Normalize(string(actingRole))
	target := Normalize(string(targetRole))

	if acting == RoleSuperAdmin {
		return target != RoleSuperAdmin
	}

	return acting.Level() > target.Level()
}
