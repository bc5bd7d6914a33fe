package handlers

import (
	"net/http"

	"github.com/raceclub/portal/middleware"
	"github.com/raceclub/portal/services"
)

type SessionHandler struct {
	sessionService *services.SessionService
}

func NewSessionHandler(sessionService *services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// Get godoc
// @Summary Household snapshot for the signed-in user
// @Description Membership state and the driver roster, fetched together.
// @Tags session
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /session [get]
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	sess, err := h.sessionService.Open(r.Context(), userID, clubID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, envelope{
		"user_id":    sess.UserID,
		"club_id":    sess.ClubID,
		"state":      sess.MembershipState(),
		"membership": sess.Membership(),
		"drivers":    sess.Drivers(),
	}, nil)
}
