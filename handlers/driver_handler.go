package handlers

import (
	"net/http"

	"github.com/raceclub/portal/middleware"
	"github.com/raceclub/portal/services"
)

type DriverHandler struct {
	driverService *services.DriverService
}

func NewDriverHandler(driverService *services.DriverService) *DriverHandler {
	return &DriverHandler{driverService: driverService}
}

// List returns the household roster: the account holder plus any
// linked family drivers.
func (h *DriverHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	drivers, err := h.driverService.ListHousehold(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, envelope{"drivers": drivers}, nil)
}

func (h *DriverHandler) AddFamilyDriver(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var input services.AddFamilyDriverInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	driver, err := h.driverService.AddFamilyDriver(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	_ = writeJSON(w, http.StatusCreated, envelope{"driver": driver}, nil)
}

func (h *DriverHandler) RemoveFamilyDriver(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	driverID, err := getIDFromURL(r, "driverID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.driverService.RemoveFamilyDriver(r.Context(), userID, driverID); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, envelope{"message": "driver removed"}, nil)
}

func (h *DriverHandler) ListNumbers(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	numbers, err := h.driverService.ListNumbers(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, envelope{"numbers": numbers}, nil)
}

type addNumberRequest struct {
	Number int `json:"number"`
}

func (h *DriverHandler) AddNumber(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var input addNumberRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	number, err := h.driverService.AddNumber(r.Context(), userID, input.Number)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	_ = writeJSON(w, http.StatusCreated, envelope{"number": number}, nil)
}

func (h *DriverHandler) RemoveNumber(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	numberID, err := getIDFromURL(r, "numberID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.driverService.RemoveNumber(r.Context(), userID, numberID); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, envelope{"message": "number released"}, nil)
}
