package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/raceclub/portal/services"
)

type envelope map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	_ = writeJSON(w, status, envelope{"error": message}, nil)
}

func badRequestResponse(w http.ResponseWriter, err error) {
	errorResponse(w, http.StatusBadRequest, err.Error())
}

func serverErrorResponse(w http.ResponseWriter) {
	errorResponse(w, http.StatusInternalServerError, "the server encountered a problem")
}

// mapServiceErrorToHTTP translates service errors into HTTP responses.
func mapServiceErrorToHTTP(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrClubNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrEventNotFound),
		errors.Is(err, services.ErrTrackNotFound),
		errors.Is(err, services.ErrDriverNotFound),
		errors.Is(err, services.ErrMembershipNotFound),
		errors.Is(err, services.ErrChampionshipNotFound):
		errorResponse(w, http.StatusNotFound, err.Error())

	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrEventNameRequired),
		errors.Is(err, services.ErrEventInvalidWindow),
		errors.Is(err, services.ErrEventInvalidPrices),
		errors.Is(err, services.ErrChampionshipNameRequired),
		errors.Is(err, services.ErrChampionshipInvalidRounds),
		errors.Is(err, services.ErrDriverNameRequired),
		errors.Is(err, services.ErrDriverNotSelected),
		errors.Is(err, services.ErrClass1Required),
		errors.Is(err, services.ErrDuplicateClassSelection),
		errors.Is(err, services.ErrClassNotOffered),
		errors.Is(err, services.ErrPreferenceDisabled),
		errors.Is(err, services.ErrWorkflowNotSubmittable),
		errors.Is(err, services.ErrMembershipInvalidType):
		errorResponse(w, http.StatusUnprocessableEntity, err.Error())

	case errors.Is(err, services.ErrNominationsClosed),
		errors.Is(err, services.ErrMembersOnlyEvent),
		errors.Is(err, services.ErrDriverNotInHousehold),
		errors.Is(err, services.ErrDriverLimitExceeded),
		errors.Is(err, services.ErrForbiddenOperation):
		errorResponse(w, http.StatusForbidden, err.Error())

	case errors.Is(err, services.ErrUserEmailConflict),
		errors.Is(err, services.ErrNominationConflict),
		errors.Is(err, services.ErrDriverNumberConflict),
		errors.Is(err, services.ErrChampionshipNameConflict),
		errors.Is(err, services.ErrMembershipExists),
		errors.Is(err, services.ErrAlreadyFamily):
		errorResponse(w, http.StatusConflict, err.Error())

	case errors.Is(err, services.ErrAuthInvalidCredentials):
		errorResponse(w, http.StatusUnauthorized, err.Error())

	default:
		serverErrorResponse(w)
	}
}

func getIDFromURL(r *http.Request, param string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, param))
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s parameter", param)
	}
	return id, nil
}
