package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/raceclub/portal/events"
	"github.com/raceclub/portal/models"
	"github.com/raceclub/portal/services"
)

type EventHandler struct {
	eventService *services.EventService
	clubService  *services.ClubService
}

func NewEventHandler(eventService *services.EventService, clubService *services.ClubService) *EventHandler {
	return &EventHandler{eventService: eventService, clubService: clubService}
}

// List godoc
// @Summary Filtered event listing for a club, grouped by year and month
// @Tags events
// @Produce json
// @Param slug path string true "club slug"
// @Param search query string false "name/description/track search"
// @Param track query string false "track name filter"
// @Param type query string false "race | practice | meeting"
// @Param status query string false "open | closed"
// @Param sort query string false "asc | desc (default desc)"
// @Success 200 {object} services.Listing
// @Router /clubs/{slug}/events [get]
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	club, err := h.clubService.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	q := r.URL.Query()
	filter := events.Filter{
		Search: q.Get("search"),
		Track:  q.Get("track"),
		Type:   models.EventType(q.Get("type")),
		Status: q.Get("status"),
	}
	asc := q.Get("sort") == "asc"

	listing, err := h.eventService.List(r.Context(), club.ID, filter, asc)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, listing, nil)
}

// Calendar returns one month of events for a club.
func (h *EventHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	club, err := h.clubService.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	q := r.URL.Query()
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil || year < 1 {
		errorResponse(w, http.StatusBadRequest, "invalid year parameter")
		return
	}
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil || month < 1 || month > 12 {
		errorResponse(w, http.StatusBadRequest, "invalid month parameter")
		return
	}

	list, err := h.eventService.Calendar(r.Context(), club.ID, year, time.Month(month))
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, envelope{"events": list}, nil)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	ev, err := h.eventService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, envelope{"event": ev}, nil)
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var ev models.Event
	if err := readJSON(w, r, &ev); err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.eventService.Create(r.Context(), &ev); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	_ = writeJSON(w, http.StatusCreated, envelope{"event": ev}, nil)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var ev models.Event
	if err := readJSON(w, r, &ev); err != nil {
		badRequestResponse(w, err)
		return
	}
	ev.ID = id

	if err := h.eventService.Update(r.Context(), &ev); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, envelope{"event": ev}, nil)
}

// Duplicate copies an event. The copy's nomination window is cleared so
// nominations cannot open by accident.
func (h *EventHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	copyEv, err := h.eventService.Duplicate(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	_ = writeJSON(w, http.StatusCreated, envelope{"event": copyEv}, nil)
}

func (h *EventHandler) GetClassList(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	list, err := h.eventService.GetClassList(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, envelope{"classes": list.Entries()}, nil)
}

type toggleClassRequest struct {
	ClassID int `json:"class_id"`
}

// ToggleClass flips one class's enabled flag without touching the order.
func (h *EventHandler) ToggleClass(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input toggleClassRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	list, err := h.eventService.GetClassList(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	list.ToggleEnabled(input.ClassID)

	if err := h.eventService.SaveClassList(r.Context(), list); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, envelope{"classes": list.Entries()}, nil)
}

type reorderClassRequest struct {
	ClassID  int `json:"class_id"`
	Position int `json:"position"`
}

// ReorderClass moves one class to a new position; the list keeps a
// dense 1..N order.
func (h *EventHandler) ReorderClass(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input reorderClassRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	list, err := h.eventService.GetClassList(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	list.Reorder(input.ClassID, input.Position)

	if err := h.eventService.SaveClassList(r.Context(), list); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, envelope{"classes": list.Entries()}, nil)
}

// UploadLogo accepts a multipart image for the event.
func (h *EventHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	file, header, err := r.FormFile("logo")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "logo file is required")
		return
	}
	defer file.Close()

	url, err := h.eventService.UploadLogo(r.Context(), id, header.Header.Get("Content-Type"), file)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, envelope{"logo_url": url}, nil)
}
