package ports

import (
	"context"

	"github.com/codexfoods/opsboard/internal/domain/access"
	"github.com/codexfoods/opsboard/internal/domain/model"
)

// RoleAssignmentRepository reads role assignment rows for an identity.
// Rows for direct-unit grants carry the joined unit.
type RoleAssignmentRepository interface {
	ListByUser(ctx context.Context, userID string) ([]model.RoleAssignment, error)
}

// UnitDirectory reads tenant units.
type UnitDirectory interface {
	// ListActiveByNetworks returns active units under any of the given networks.
	ListActiveByNetworks(ctx context.Context, networkIDs []string) ([]model.Unit, error)
	// ListAll returns every unit regardless of active flag or network.
	// Used only on the super-admin override path.
	ListAll(ctx context.Context) ([]model.Unit, error)
}

// PreferenceStore persists per-user selections that survive sessions:
// the active unit and the admin view. Values are absent when unset and
// removed on sign-out.
type PreferenceStore interface {
	ActiveUnit(ctx context.Context, userID string) (string, error)
	SetActiveUnit(ctx context.Context, userID, unitID string) error

	AdminView(ctx context.Context, userID string) (access.AdminView, error)
	SetAdminView(ctx context.Context, userID string, view access.AdminView) error

	// Clear removes all persisted preferences for the user.
	Clear(ctx context.Context, userID string) error
}
