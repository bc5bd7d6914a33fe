package handlers

import (
	"net/http"

	"github.com/raceclub/portal/middleware"
	"github.com/raceclub/portal/services"
)

type NominationHandler struct {
	nominationService *services.NominationService
	membershipService *services.MembershipService
}

func NewNominationHandler(nominationService *services.NominationService, membershipService *services.MembershipService) *NominationHandler {
	return &NominationHandler{
		nominationService: nominationService,
		membershipService: membershipService,
	}
}

// StartEntry godoc
// @Summary Open a nomination entry for an event
// @Description Returns the household drivers, the enabled classes and an
// @Description attempt id the client echoes back on submit.
// @Tags nominations
// @Produce json
// @Param eventID path int true "event id"
// @Success 200 {object} map[string]interface{}
// @Router /events/{eventID}/nomination-entry [get]
func (h *NominationHandler) StartEntry(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	state, _, err := h.membershipService.GetState(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	wf, err := h.nominationService.StartEntry(r.Context(), eventID, userID, state)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, envelope{
		"attempt_id": wf.AttemptID(),
		"event":      wf.Event,
		"drivers":    wf.Drivers,
		"classes":    wf.Classes,
	}, nil)
}

type submitNominationRequest struct {
	AttemptID         string `json:"attempt_id"`
	DriverID          int    `json:"driver_id"`
	Class1ID          int    `json:"class_1_id"`
	Class2ID          int    `json:"class_2_id"`          // 0 = none
	PreferenceClassID int    `json:"preference_class_id"` // 0 = none
}

// Submit godoc
// @Summary Submit a nomination
// @Description Re-runs the entry guards, walks the selection through the
// @Description workflow and persists it. Safe to retry with the same
// @Description attempt id: a retry whose insert already landed confirms
// @Description instead of conflicting.
// @Tags nominations
// @Accept json
// @Produce json
// @Param eventID path int true "event id"
// @Param input body submitNominationRequest true "selection"
// @Success 201 {object} map[string]interface{}
// @Router /events/{eventID}/nominations [post]
func (h *NominationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input submitNominationRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	state, _, err := h.membershipService.GetState(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	wf, err := h.nominationService.StartEntry(r.Context(), eventID, userID, state)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	wf.SetAttemptID(input.AttemptID)

	if err := wf.SelectDriver(input.DriverID); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	if err := wf.SelectClass1(input.Class1ID); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	if err := wf.SelectClass2(input.Class2ID); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	if err := wf.SelectPreference(input.PreferenceClassID); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	nomination, err := wf.Submit(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	_ = writeJSON(w, http.StatusCreated, envelope{"nomination": nomination}, nil)
}

// ListByEvent returns an event's nominations with driver details.
func (h *NominationHandler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	nominations, err := h.nominationService.ListByEvent(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, envelope{"nominations": nominations}, nil)
}
