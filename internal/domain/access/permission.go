package access

// Permission is an atomic capability gate checked before allowing an action
// or view. The set is closed; routes declare the permission they require.
type Permission string

const (
	PermViewDashboard       Permission = "view_dashboard"
	PermViewStock           Permission = "view_stock"
	PermViewOrders          Permission = "view_orders"
	PermViewChecklists      Permission = "view_checklists"
	PermViewChecklistReview Permission = "view_checklist_review"
	PermViewTraining        Permission = "view_training"
	PermViewProducts        Permission = "view_products"
	PermViewUnits           Permission = "view_units"
	PermViewUsers           Permission = "view_users"
	PermManageStock         Permission = "manage_stock"
	PermManageOrders        Permission = "manage_orders"
	PermManageUsers         Permission = "manage_users"
	PermManageSettings      Permission = "manage_settings"
	PermCreateOrder         Permission = "create_order"
	PermSubmitOrder         Permission = "submit_order"
	PermApproveOrder        Permission = "approve_order"
	PermReceiveOrder        Permission = "receive_order"
)

// AllPermissions returns every permission in the closed set.
func AllPermissions() []Permission {
	return []Permission{
		PermViewDashboard, PermViewStock, PermViewOrders, PermViewChecklists,
		PermViewChecklistReview, PermViewTraining, PermViewProducts,
		PermViewUnits, PermViewUsers, PermManageStock, PermManageOrders,
		PermManageUsers, PermManageSettings, PermCreateOrder, PermSubmitOrder,
		PermApproveOrder, PermReceiveOrder,
	}
}

// rolePermissions is the static role → permission table. Only canonical roles
// appear; legacy spellings must be normalized before lookup. super_admin is
// listed for completeness but is short-circuited by the bypass in
// HasPermission.
var rolePermissions = map[Role][]Permission{
	RoleSuperAdmin: AllPermissions(),
	RoleAdmin:      AllPermissions(),
	RoleManager: {
		PermViewDashboard, PermViewStock, PermViewOrders, PermViewChecklists,
		PermViewChecklistReview, PermViewTraining, PermManageStock,
		PermManageOrders, PermCreateOrder, PermSubmitOrder, PermApproveOrder,
		PermReceiveOrder,
	},
	RoleOperator: {
		PermViewDashboard, PermViewStock, PermViewChecklists, PermViewTraining,
		PermCreateOrder, PermSubmitOrder,
	},
}

// HasPermission reports whether a role holds a permission.
// super_admin holds every permission unconditionally. Unknown or empty roles
// hold none.
func HasPermission(role Role, perm Permission) bool {
	if role == "" {
		return false
	}
	if role == RoleSuperAdmin {
		return true
	}
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// PermissionsFor returns the full permission list for a role.
// The returned slice is a copy and safe to mutate.
func PermissionsFor(role Role) []Permission {
	perms := rolePermissions[role]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}
