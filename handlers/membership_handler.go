package handlers

import (
	"net/http"

	"github.com/raceclub/portal/middleware"
	"github.com/raceclub/portal/models"
	"github.com/raceclub/portal/services"
)

type MembershipHandler struct {
	membershipService *services.MembershipService
}

func NewMembershipHandler(membershipService *services.MembershipService) *MembershipHandler {
	return &MembershipHandler{membershipService: membershipService}
}

// GetState godoc
// @Summary Current membership state for the signed-in household
// @Tags membership
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /membership [get]
func (h *MembershipHandler) GetState(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	state, record, err := h.membershipService.GetState(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, envelope{"state": state, "membership": record}, nil)
}

type joinRequest struct {
	Type models.MembershipType `json:"membership_type"`
}

// Join creates a one-year household membership.
func (h *MembershipHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	clubID, err := middleware.GetClubIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var input joinRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	m, err := h.membershipService.Join(r.Context(), userID, clubID, input.Type)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	_ = writeJSON(w, http.StatusCreated, envelope{"membership": m}, nil)
}

// Renew extends the current membership by one year.
func (h *MembershipHandler) Renew(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	m, err := h.membershipService.Renew(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, envelope{"membership": m}, nil)
}

// Upgrade moves the membership to the family tier, charging the
// price difference.
func (h *MembershipHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	m, charged, err := h.membershipService.Upgrade(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, envelope{"membership": m, "charged": charged}, nil)
}
