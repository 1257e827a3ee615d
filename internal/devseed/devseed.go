// Package devseed populates the tenant directory with fixture data for
// local development. It is idempotent and only ever runs in dev mode.
package devseed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// Options controls what the seeder writes.
type Options struct {
	// DevUserID receives role assignments so the mock identity can sign in
	// with something to see. Matches DEV_AUTH_USER_ID.
	DevUserID string
}

type network struct {
	ID   string
	Name string
}

type unit struct {
	ID        string
	Name      string
	IsActive  bool
	NetworkID string
}

type roleGrant struct {
	UserID    string
	Role      string
	NetworkID string
	UnitID    string // empty for network-wide grants
}

func defaultNetworks() []network {
	return []network{
		{ID: "net-centro", Name: "Rede Centro"},
		{ID: "net-litoral", Name: "Rede Litoral"},
	}
}

func defaultUnits() []unit {
	return []unit{
		{ID: "unit-centro-01", Name: "Centro 01", IsActive: true, NetworkID: "net-centro"},
		{ID: "unit-centro-02", Name: "Centro 02", IsActive: true, NetworkID: "net-centro"},
		{ID: "unit-centro-03", Name: "Centro 03 (fechada)", IsActive: false, NetworkID: "net-centro"},
		{ID: "unit-litoral-01", Name: "Litoral 01", IsActive: true, NetworkID: "net-litoral"},
	}
}

func defaultGrants(devUserID string) []roleGrant {
	grants := []roleGrant{
		// Fixture accounts exercising each tier and the legacy spellings.
		{UserID: "seed-operator", Role: "operador", NetworkID: "net-centro", UnitID: "unit-centro-01"},
		{UserID: "seed-manager", Role: "gerente", NetworkID: "net-centro"},
		{UserID: "seed-admin", Role: "admin_rede", NetworkID: "net-centro"},
		{UserID: "seed-multi", Role: "lider_turno", NetworkID: "net-litoral"},
		{UserID: "seed-multi", Role: "operador", NetworkID: "net-centro", UnitID: "unit-centro-02"},
	}
	if devUserID != "" {
		grants = append(grants,
			roleGrant{UserID: devUserID, Role: "admin", NetworkID: "net-centro"},
			roleGrant{UserID: devUserID, Role: "manager", NetworkID: "net-litoral"},
		)
	}
	return grants
}

// Run inserts the fixture networks, units, and role assignments. Existing
// rows are left untouched so repeated startups stay clean.
func Run(ctx context.Context, db *sql.DB, opts Options, logger *slog.Logger) error {
	for _, n := range defaultNetworks() {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO networks (id, name) VALUES ($1, $2)
			 ON CONFLICT (id) DO NOTHING`, n.ID, n.Name); err != nil {
			return fmt.Errorf("seed network %s: %w", n.ID, err)
		}
	}

	for _, u := range defaultUnits() {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO units (id, name, is_active, network_id) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO NOTHING`, u.ID, u.Name, u.IsActive, u.NetworkID); err != nil {
			return fmt.Errorf("seed unit %s: %w", u.ID, err)
		}
	}

	seeded := 0
	for _, g := range defaultGrants(opts.DevUserID) {
		inserted, err := seedGrant(ctx, db, g)
		if err != nil {
			return err
		}
		if inserted {
			seeded++
		}
	}

	if logger != nil {
		logger.InfoContext(ctx, "development seed applied",
			"networks", len(defaultNetworks()),
			"units", len(defaultUnits()),
			"new_role_assignments", seeded)
	}
	return nil
}

func seedGrant(ctx context.Context, db *sql.DB, g roleGrant) (bool, error) {
	var networkID, unitID any
	if g.NetworkID != "" {
		networkID = g.NetworkID
	}
	if g.UnitID != "" {
		unitID = g.UnitID
	}

	// user_roles has no natural key, so dedupe by probing first.
	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM user_roles
			WHERE user_id = $1 AND role = $2
			  AND network_id IS NOT DISTINCT FROM $3
			  AND unit_id IS NOT DISTINCT FROM $4
		 )`, g.UserID, g.Role, networkID, unitID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check role assignment for %s: %w", g.UserID, err)
	}
	if exists {
		return false, nil
	}

	if _, err = db.ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role, network_id, unit_id)
		 VALUES ($1, $2, $3, $4)`, g.UserID, g.Role, networkID, unitID); err != nil {
		return false, fmt.Errorf("seed role assignment for %s: %w", g.UserID, err)
	}
	return true, nil
}
