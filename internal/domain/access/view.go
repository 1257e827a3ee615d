package access

// AdminView is an admin or super_admin's chosen acting-as role for UI
// purposes. It narrows what the UI shows but, for super_admin, does not
// narrow the permission bypass (see EffectiveRole and HasPermission).
type AdminView string

const (
	ViewOperator AdminView = "OPERATOR"
	ViewManager  AdminView = "MANAGER"
)

// ParseAdminView validates a stored admin view string. Anything other than
// the two valid views (including the empty string) parses to "", i.e. unset.
func ParseAdminView(raw string) AdminView {
	switch AdminView(raw) {
	case ViewOperator, ViewManager:
		return AdminView(raw)
	default:
		return ""
	}
}

// CanSwitchView reports whether a base role is allowed to hold an AdminView.
// Only admin and super_admin may switch views.
func CanSwitchView(baseRole Role) bool {
	return baseRole == RoleAdmin || baseRole == RoleSuperAdmin
}

// EffectiveRole computes the role used for permission checks given a base
// role and the active admin view. For non-admin base roles the view is
// ignored. Note that the super_admin permission bypass is keyed off the
// base super-admin status, not the effective role: a super_admin acting as
// OPERATOR still passes every permission check.
func EffectiveRole(baseRole Role, view AdminView) Role {
	if !CanSwitchView(baseRole) {
		return baseRole
	}
	switch view {
	case ViewOperator:
		return RoleOperator
	case ViewManager:
		return RoleManager
	default:
		return baseRole
	}
}
