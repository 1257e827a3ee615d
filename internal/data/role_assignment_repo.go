package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/codexfoods/opsboard/internal/data/pgxutil"
	"github.com/codexfoods/opsboard/internal/domain/model"
	apperrors "github.com/codexfoods/opsboard/internal/errors"
)

// RoleAssignmentRepo reads role assignment rows. The application never
// writes them; provisioning tooling does.
type RoleAssignmentRepo struct {
	DB *sql.DB
}

// NewRoleAssignmentRepo creates a new RoleAssignmentRepo.
func NewRoleAssignmentRepo(db *sql.DB) *RoleAssignmentRepo {
	return &RoleAssignmentRepo{DB: db}
}

// roleAssignmentRow is the raw joined row shape. Joined unit columns are
// nullable because network-wide grants have no unit.
type roleAssignmentRow struct {
	UserID        string  `db:"user_id"`
	Role          string  `db:"role"`
	NetworkID     *string `db:"network_id"`
	UnitID        *string `db:"unit_id"`
	UnitName      *string `db:"unit_name"`
	UnitActive    *bool   `db:"unit_is_active"`
	UnitNetworkID *string `db:"unit_network_id"`
}

const roleAssignmentsByUserQuery = `
	SELECT ur.user_id, ur.role, ur.network_id, ur.unit_id,
	       u.name AS unit_name, u.is_active AS unit_is_active, u.network_id AS unit_network_id
	FROM user_roles ur
	LEFT JOIN units u ON u.id = ur.unit_id
	WHERE ur.user_id = $1
	ORDER BY ur.created_at, ur.id`

// ListByUser returns all role assignment rows for a user, with the unit row
// joined in for direct-unit grants. Rows failing boundary validation are
// rejected as a whole rather than silently dropped.
func (r *RoleAssignmentRepo) ListByUser(ctx context.Context, userID string) ([]model.RoleAssignment, error) {
	if userID == "" {
		return nil, apperrors.ValidationField("user_id", "user id is required")
	}

	var raw []roleAssignmentRow
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, roleAssignmentsByUserQuery, userID)
		if err != nil {
			return err
		}
		defer rows.Close()
		raw, err = pgx.CollectRows(rows, pgx.RowToStructByName[roleAssignmentRow])
		return err
	}); err != nil {
		return nil, fmt.Errorf("list role assignments: %w", apperrors.MapDBError(err))
	}

	out := make([]model.RoleAssignment, 0, len(raw))
	for _, row := range raw {
		a := model.RoleAssignment{
			UserID:    row.UserID,
			Role:      row.Role,
			NetworkID: deref(row.NetworkID),
			UnitID:    deref(row.UnitID),
		}
		if row.UnitID != nil {
			a.Unit = &model.Unit{
				ID:        *row.UnitID,
				Name:      deref(row.UnitName),
				IsActive:  row.UnitActive != nil && *row.UnitActive,
				NetworkID: deref(row.UnitNetworkID),
			}
		}
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("role assignment row for user %s: %w", userID, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
