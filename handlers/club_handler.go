package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/raceclub/portal/middleware"
	"github.com/raceclub/portal/services"
)

type ClubHandler struct {
	clubService *services.ClubService
}

func NewClubHandler(clubService *services.ClubService) *ClubHandler {
	return &ClubHandler{clubService: clubService}
}

// GetBySlug resolves the tenant club from its URL slug.
func (h *ClubHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	club, err := h.clubService.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, envelope{"club": club}, nil)
}

func (h *ClubHandler) ListTracks(w http.ResponseWriter, r *http.Request) {
	club, err := h.clubService.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	tracks, err := h.clubService.ListTracks(r.Context(), club.ID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, envelope{"tracks": tracks}, nil)
}

// ListTrackClasses returns a track's class catalog.
func (h *ClubHandler) ListTrackClasses(w http.ResponseWriter, r *http.Request) {
	trackID, err := getIDFromURL(r, "trackID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	classes, err := h.clubService.ListTrackClasses(r.Context(), trackID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, envelope{"classes": classes}, nil)
}

// UploadLogo stores a new club logo.
func (h *ClubHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	clubID, err := middleware.GetClubIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	file, header, err := r.FormFile("logo")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "logo file is required")
		return
	}
	defer file.Close()

	url, err := h.clubService.UploadLogo(r.Context(), clubID, header.Header.Get("Content-Type"), file)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, envelope{"logo_url": url}, nil)
}
