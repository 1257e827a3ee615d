package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/codexfoods/opsboard/internal/domain/access"
	domainauth "github.com/codexfoods/opsboard/internal/domain/auth"
	"github.com/codexfoods/opsboard/internal/domain/model"
	apperrors "github.com/codexfoods/opsboard/internal/errors"
	"github.com/codexfoods/opsboard/internal/observability/statsd"
	"github.com/codexfoods/opsboard/internal/ports"
)

// ResolutionState tracks where a snapshot is in the resolution lifecycle.
// Guards treat Ready and Errored snapshots as settled (Errored carries
// least-privilege values) and everything else as pending.
type ResolutionState int

const (
	StateUninitialized ResolutionState = iota
	StateLoading
	StateReady
	StateErrored
)

func (s ResolutionState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateErrored:
		return "errored"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Snapshot is the fully resolved access picture for one identity: base and
// effective roles, super-admin status, the visible unit set, the active unit,
// and the admin view. A snapshot is computed per request and never cached
// across requests, so role or unit changes take effect on the next request.
type Snapshot struct {
	State ResolutionState

	BaseRole      access.Role
	EffectiveRole access.Role
	IsSuperAdmin  bool
	AdminView     access.AdminView

	Units        []model.Unit
	ActiveUnitID string

	// ViewPending marks a switchable identity whose stored view could not be
	// read. The guard holds page access until a retry settles it.
	ViewPending bool

	// Err carries a non-fatal resolution problem (timeouts, store errors,
	// unrecognized role rows). When set the rest of the snapshot holds
	// least-privilege values.
	Err error
}

// Settled reports whether resolution finished, successfully or degraded.
func (s Snapshot) Settled() bool {
	return s.State == StateReady || s.State == StateErrored
}

// HasPermission checks a permission against the snapshot. The super-admin
// bypass is keyed off the base status, not the effective role, so a
// super_admin acting as OPERATOR still passes.
func (s Snapshot) HasPermission(p access.Permission) bool {
	if s.IsSuperAdmin {
		return true
	}
	return access.HasPermission(s.EffectiveRole, p)
}

// Permissions returns the permission list granted by the snapshot.
func (s Snapshot) Permissions() []access.Permission {
	if s.IsSuperAdmin {
		return access.AllPermissions()
	}
	return access.PermissionsFor(s.EffectiveRole)
}

// CanSeeUnit reports whether the unit is in the visible set.
func (s Snapshot) CanSeeUnit(unitID string) bool {
	for _, u := range s.Units {
		if u.ID == unitID {
			return true
		}
	}
	return false
}

// AccessServiceOptions groups dependencies for AccessService.
type AccessServiceOptions struct {
	Roles  ports.RoleAssignmentRepository
	Units  ports.UnitDirectory
	Prefs  ports.PreferenceStore
	Logger *slog.Logger

	// IsSuperAdmin checks an email against the super-admin allow-list.
	IsSuperAdmin func(email string) bool

	// ResolveTimeout bounds one whole resolution pass; zero means no bound.
	ResolveTimeout time.Duration

	// Metrics receives resolution timings and degrade counts when set.
	Metrics statsd.Sink
}

// AccessService resolves roles, permissions, and tenant scope for an
// authenticated identity. Resolution always settles: store failures and
// timeouts degrade the snapshot to least privilege instead of failing the
// request.
type AccessService struct {
	roles          ports.RoleAssignmentRepository
	units          ports.UnitDirectory
	prefs          ports.PreferenceStore
	logger         *slog.Logger
	isSuperAdmin   func(email string) bool
	resolveTimeout time.Duration
	metrics        statsd.Sink
}

// NewAccessService constructs a new AccessService.
func NewAccessService(opts AccessServiceOptions) *AccessService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	isSuper := opts.IsSuperAdmin
	if isSuper == nil {
		isSuper = func(string) bool { return false }
	}
	return &AccessService{
		roles:          opts.Roles,
		units:          opts.Units,
		prefs:          opts.Prefs,
		logger:         logger,
		isSuperAdmin:   isSuper,
		resolveTimeout: opts.ResolveTimeout,
		metrics:        opts.Metrics,
	}
}

// Resolve computes the access snapshot for an identity. The pass is bounded
// by ResolveTimeout; on any failure it returns a settled, degraded snapshot
// (operator base, no units, no active unit) rather than an error, so callers
// never block on a broken permission backend.
func (s *AccessService) Resolve(ctx context.Context, ident domainauth.Identity) Snapshot {
	start := time.Now()
	snap := s.resolve(ctx, ident)
	if s.metrics != nil {
		tags := map[string]string{"state": snap.State.String()}
		s.metrics.Count("access.resolve", 1, tags)
		s.metrics.Timing("access.resolve.duration", time.Since(start), tags)
	}
	return snap
}

func (s *AccessService) resolve(ctx context.Context, ident domainauth.Identity) Snapshot {
	snap := Snapshot{State: StateLoading}
	if ident.UserID == "" {
		return s.degrade(ctx, snap, false, apperrors.ValidationField("user_id", "user id is required"))
	}

	isSuper := s.isSuperAdmin(ident.Email)
	snap.IsSuperAdmin = isSuper

	if s.resolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.resolveTimeout)
		defer cancel()
	}

	assignments, err := s.roles.ListByUser(ctx, ident.UserID)
	if err != nil {
		return s.degrade(ctx, snap, isSuper, err)
	}

	baseRoles, networkIDs, directUnits, unknown := partitionAssignments(assignments)
	if len(unknown) > 0 {
		snap.Err = apperrors.Permissions(
			fmt.Sprintf("unrecognized role(s) %s ignored", strings.Join(unknown, ", ")), nil)
		s.logger.WarnContext(ctx, "role rows with unrecognized roles ignored",
			"user_id", ident.UserID, "roles", unknown)
	}

	snap.BaseRole = baseRole(baseRoles, isSuper)

	units, err := s.visibleUnits(ctx, isSuper, directUnits, networkIDs)
	if err != nil {
		return s.degrade(ctx, snap, isSuper, err)
	}
	snap.Units = units

	snap.ActiveUnitID = s.restoreActiveUnit(ctx, ident.UserID, units)

	view, viewPending := s.restoreAdminView(ctx, ident.UserID, snap.BaseRole)
	snap.AdminView = view
	snap.ViewPending = viewPending
	snap.EffectiveRole = access.EffectiveRole(snap.BaseRole, view)

	snap.State = StateReady
	return snap
}

// degrade settles a snapshot at least privilege after a resolution failure.
// Super-admin status survives because it is derived from the allow-list, not
// from the failed stores.
func (s *AccessService) degrade(ctx context.Context, snap Snapshot, isSuper bool, cause error) Snapshot {
	s.logger.WarnContext(ctx, "access resolution degraded to least privilege", "error", cause)
	snap.State = StateErrored
	snap.BaseRole = access.RoleOperator
	snap.EffectiveRole = access.RoleOperator
	snap.IsSuperAdmin = isSuper
	snap.Units = nil
	snap.ActiveUnitID = ""
	snap.AdminView = ""
	snap.Err = apperrors.Permissions("resolving permissions failed", cause)
	return snap
}

// partitionAssignments splits role rows into the inputs of resolution:
// normalized known roles, deduplicated network ids from network-wide grants,
// directly granted units in row order, and raw unknown role strings. A direct
// grant counts even when its unit is inactive; only network-wide expansion
// filters on the active flag.
func partitionAssignments(assignments []model.RoleAssignment) (roles []access.Role, networkIDs []string, directUnits []model.Unit, unknown []string) {
	seenNetwork := make(map[string]bool)
	seenUnit := make(map[string]bool)
	seenUnknown := make(map[string]bool)

	for _, a := range assignments {
		role := access.Normalize(a.Role)
		if role.Known() {
			roles = append(roles, role)
		} else if !seenUnknown[a.Role] {
			seenUnknown[a.Role] = true
			unknown = append(unknown, a.Role)
		}

		if a.NetworkWide() {
			if !seenNetwork[a.NetworkID] {
				seenNetwork[a.NetworkID] = true
				networkIDs = append(networkIDs, a.NetworkID)
			}
			continue
		}
		if a.Unit != nil && !seenUnit[a.Unit.ID] {
			seenUnit[a.Unit.ID] = true
			directUnits = append(directUnits, *a.Unit)
		}
	}
	return roles, networkIDs, directUnits, unknown
}

// baseRole picks the highest-privilege role among the known assignment roles.
// The allow-list always wins for super admins, and an identity without any
// usable role row lands on operator.
func baseRole(roles []access.Role, isSuper bool) access.Role {
	if isSuper {
		return access.RoleSuperAdmin
	}
	base := access.RoleOperator
	for _, r := range roles {
		if r.Level() > base.Level() {
			base = r
		}
	}
	return base
}

// visibleUnits assembles the visible unit set: directly granted units first in
// assignment order, then active units of each network-wide grant. Network
// fetches run concurrently but merge in network order, so the set is
// deterministic for a fixed directory state. The super-admin override replaces
// the set with every unit, active or not.
func (s *AccessService) visibleUnits(ctx context.Context, isSuper bool, directUnits []model.Unit, networkIDs []string) ([]model.Unit, error) {
	if isSuper {
		all, err := s.units.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("list all units: %w", err)
		}
		return all, nil
	}

	units := make([]model.Unit, 0, len(directUnits))
	seen := make(map[string]bool, len(directUnits))
	for _, u := range directUnits {
		seen[u.ID] = true
		units = append(units, u)
	}

	if len(networkIDs) > 0 {
		byNetwork := make([][]model.Unit, len(networkIDs))
		g, gctx := errgroup.WithContext(ctx)
		for i, networkID := range networkIDs {
			g.Go(func() error {
				list, err := s.units.ListActiveByNetworks(gctx, []string{networkID})
				if err != nil {
					return fmt.Errorf("list units of network %s: %w", networkID, err)
				}
				byNetwork[i] = list
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for _, list := range byNetwork {
			for _, u := range list {
				if !seen[u.ID] {
					seen[u.ID] = true
					units = append(units, u)
				}
			}
		}
	}
	return units, nil
}

// restoreActiveUnit applies the selection rule: a stored selection survives
// only while it is still visible; otherwise the first visible unit is
// auto-selected and persisted. No visible units means no selection.
// Preference store failures are non-fatal.
func (s *AccessService) restoreActiveUnit(ctx context.Context, userID string, units []model.Unit) string {
	stored, err := s.prefs.ActiveUnit(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "reading active unit preference failed", "error", err)
		stored = ""
	}
	if stored != "" {
		for _, u := range units {
			if u.ID == stored {
				return stored
			}
		}
	}
	if len(units) == 0 {
		return ""
	}
	selected := units[0].ID
	if err := s.prefs.SetActiveUnit(ctx, userID, selected); err != nil {
		s.logger.WarnContext(ctx, "persisting auto-selected unit failed", "error", err)
	}
	return selected
}

// restoreAdminView loads the stored admin view for switchable roles,
// defaulting first-time admins to OPERATOR and persisting the default.
// Non-switchable roles get no view and any stale stored view is removed.
// A failed read leaves the view pending so guards hold page access.
func (s *AccessService) restoreAdminView(ctx context.Context, userID string, base access.Role) (access.AdminView, bool) {
	if !access.CanSwitchView(base) {
		if err := s.prefs.SetAdminView(ctx, userID, ""); err != nil {
			s.logger.WarnContext(ctx, "removing stale admin view failed", "error", err)
		}
		return "", false
	}

	view, err := s.prefs.AdminView(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "reading admin view preference failed", "error", err)
		return access.ViewOperator, true
	}
	if view == "" {
		view = access.ViewOperator
		if err := s.prefs.SetAdminView(ctx, userID, view); err != nil {
			s.logger.WarnContext(ctx, "persisting default admin view failed", "error", err)
		}
	}
	return view, false
}

// SetActiveUnit changes the persisted unit selection. A non-empty unit id
// must be in the caller's visible set. An empty id clears the selection; the
// next resolution auto-selects again.
func (s *AccessService) SetActiveUnit(ctx context.Context, ident domainauth.Identity, unitID string) (Snapshot, error) {
	snap := s.Resolve(ctx, ident)
	if unitID != "" && !snap.CanSeeUnit(unitID) {
		return snap, apperrors.ValidationField("unit_id", "unit is not in your visible set")
	}
	if err := s.prefs.SetActiveUnit(ctx, ident.UserID, unitID); err != nil {
		return snap, fmt.Errorf("persist active unit: %w", err)
	}
	snap.ActiveUnitID = unitID
	return snap, nil
}

// SetAdminView changes the persisted admin view. Only admin and super_admin
// base roles may hold a view. An empty value removes the stored view; the
// next resolution falls back to the OPERATOR default.
func (s *AccessService) SetAdminView(ctx context.Context, ident domainauth.Identity, raw string) (Snapshot, error) {
	snap := s.Resolve(ctx, ident)
	if !access.CanSwitchView(snap.BaseRole) {
		return snap, apperrors.Permissions("only admins may switch views", nil)
	}
	view := access.ParseAdminView(raw)
	if raw != "" && view == "" {
		return snap, apperrors.ValidationField("view", "view must be OPERATOR or MANAGER")
	}
	if err := s.prefs.SetAdminView(ctx, ident.UserID, view); err != nil {
		return snap, fmt.Errorf("persist admin view: %w", err)
	}
	snap.AdminView = view
	snap.EffectiveRole = access.EffectiveRole(snap.BaseRole, view)
	return snap, nil
}
