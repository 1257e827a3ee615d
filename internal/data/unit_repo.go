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

// UnitRepo reads tenant units.
type UnitRepo struct {
	DB *sql.DB
}

// NewUnitRepo creates a new UnitRepo.
func NewUnitRepo(db *sql.DB) *UnitRepo {
	return &UnitRepo{DB: db}
}

const (
	unitsByNetworksQuery = `
		SELECT id, name, is_active, network_id
		FROM units
		WHERE network_id = ANY($1) AND is_active
		ORDER BY name`

	unitsAllQuery = `
		SELECT id, name, is_active, network_id
		FROM units
		ORDER BY name`
)

// ListActiveByNetworks returns active units under any of the given networks.
func (r *UnitRepo) ListActiveByNetworks(ctx context.Context, networkIDs []string) ([]model.Unit, error) {
	if len(networkIDs) == 0 {
		return nil, nil
	}
	return r.list(ctx, "list units by networks", unitsByNetworksQuery, networkIDs)
}

// ListAll returns every unit regardless of active flag or network.
// Only the super-admin override path uses this.
func (r *UnitRepo) ListAll(ctx context.Context) ([]model.Unit, error) {
	return r.list(ctx, "list all units", unitsAllQuery)
}

func (r *UnitRepo) list(ctx context.Context, op, query string, args ...any) ([]model.Unit, error) {
	var units []model.Unit
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		units, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Unit])
		return err
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, apperrors.MapDBError(err))
	}

	for i := range units {
		if err := units[i].Validate(); err != nil {
			return nil, fmt.Errorf("%s: unit row %q: %w", op, units[i].ID, err)
		}
	}
	return units, nil
}
