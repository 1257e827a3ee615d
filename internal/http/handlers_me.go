package httpx

import (
	"errors"
	"net/http"
	"time"

	"github.com/codexfoods/opsboard/internal/domain/access"
	"github.com/codexfoods/opsboard/internal/service"
)

// MeHandlers exposes the resolved access picture of the calling identity and
// the two persisted selections (active unit, admin view).
type MeHandlers struct {
	Access AccessServiceInterface
}

// mePayload is the JSON shape of the resolved access picture.
type mePayload struct {
	User   meUser   `json:"user"`
	Access meAccess `json:"access"`
}

type meUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

type meAccess struct {
	BaseRole      access.Role         `json:"base_role"`
	EffectiveRole access.Role         `json:"effective_role"`
	IsSuperAdmin  bool                `json:"is_super_admin"`
	AdminView     access.AdminView    `json:"admin_view,omitempty"`
	Permissions   []access.Permission `json:"permissions"`
	Units         []meUnit            `json:"units"`
	ActiveUnitID  string              `json:"active_unit_id,omitempty"`
	Degraded      bool                `json:"degraded,omitempty"`
}

type meUnit struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active"`
	NetworkID string `json:"network_id"`
}

func buildMePayload(w http.ResponseWriter, r *http.Request, snap service.Snapshot) (mePayload, bool) {
	session, ok := GetSessionFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return mePayload{}, false
	}

	units := make([]meUnit, len(snap.Units))
	for i, u := range snap.Units {
		units[i] = meUnit{ID: u.ID, Name: u.Name, IsActive: u.IsActive, NetworkID: u.NetworkID}
	}

	return mePayload{
		User: meUser{ID: session.UserID, Email: session.Email, ExpiresAt: session.ExpiresAt},
		Access: meAccess{
			BaseRole:      snap.BaseRole,
			EffectiveRole: snap.EffectiveRole,
			IsSuperAdmin:  snap.IsSuperAdmin,
			AdminView:     snap.AdminView,
			Permissions:   snap.Permissions(),
			Units:         units,
			ActiveUnitID:  snap.ActiveUnitID,
			Degraded:      snap.Err != nil,
		},
	}, true
}

// Me returns the caller's resolved access picture.
// GET /api/me.
func (h *MeHandlers) Me(w http.ResponseWriter, r *http.Request) {
	snap, ok := GetSnapshotFromContext(r.Context())
	if !ok {
		retryLater(w)
		return
	}
	payload, ok := buildMePayload(w, r, snap)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, payload)
}

// SetActiveUnit changes the caller's persisted unit selection.
// PUT /api/me/active-unit with body {"unit_id": "<id>"}; an empty id clears
// the selection.
func (h *MeHandlers) SetActiveUnit(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSessionFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	var body struct {
		UnitID string `json:"unit_id"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}

	snap, err := h.Access.SetActiveUnit(r.Context(), IdentityFromSession(session), body.UnitID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	payload, ok := buildMePayload(w, r, snap)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, payload)
}

// SetAdminView changes the caller's persisted admin view.
// PUT /api/me/admin-view with body {"view": "OPERATOR"|"MANAGER"}; an empty
// view removes the stored value.
func (h *MeHandlers) SetAdminView(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSessionFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	var body struct {
		View string `json:"view"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}

	snap, err := h.Access.SetAdminView(r.Context(), IdentityFromSession(session), body.View)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	payload, ok := buildMePayload(w, r, snap)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, payload)
}
