package model

import (
	"strings"

	apperrors "github.com/codexfoods/opsboard/internal/errors"
)

// RoleAssignment is a persisted grant of a role to an identity, scoped either
// to exactly one unit (UnitID set) or to a whole network (UnitID empty,
// NetworkID set). Rows are read-only from this core's perspective.
type RoleAssignment struct {
	UserID    string `db:"user_id"    json:"user_id"`
	Role      string `db:"role"       json:"role"`
	NetworkID string `db:"network_id" json:"network_id"`
	UnitID    string `db:"unit_id"    json:"unit_id"`

	// Unit carries the joined unit row for direct-unit grants, nil otherwise.
	Unit *Unit `db:"-" json:"unit,omitempty"`
}

// NetworkWide reports whether the grant applies to an entire network.
func (a *RoleAssignment) NetworkWide() bool {
	return a.UnitID == "" && a.NetworkID != ""
}

// Validate rejects rows with unexpected shapes at the data boundary.
// A grant must be scoped to a unit or, failing that, to a network.
func (a *RoleAssignment) Validate() error {
	if strings.TrimSpace(a.Role) == "" {
		return apperrors.ValidationField("role", "role is required")
	}
	if a.UnitID == "" && a.NetworkID == "" {
		return apperrors.ValidationField("network_id", "grant without unit_id must carry network_id")
	}
	if a.Unit != nil {
		if err := a.Unit.Validate(); err != nil {
			return err
		}
	}
	return nil
}
