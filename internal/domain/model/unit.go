package model

import (
	"strings"

	apperrors "github.com/codexfoods/opsboard/internal/errors"
)

// Unit is a tenant-scoped operational location (a store) under a network.
// Stock, orders, checklists, and trainings are all partitioned by unit.
type Unit struct {
	ID        string `db:"id"         json:"id"`
	Name      string `db:"name"       json:"name"`
	IsActive  bool   `db:"is_active"  json:"is_active"`
	NetworkID string `db:"network_id" json:"network_id"`
}

// Validate rejects rows with unexpected shapes at the data boundary.
func (u *Unit) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return apperrors.ValidationField("id", "unit id is required")
	}
	if strings.TrimSpace(u.Name) == "" {
		return apperrors.ValidationField("name", "unit name is required")
	}
	return nil
}
