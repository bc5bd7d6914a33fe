package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/raceclub/portal/models"
	"github.com/raceclub/portal/services"
)

type ChampionshipHandler struct {
	championshipService *services.ChampionshipService
	clubService         *services.ClubService
}

func NewChampionshipHandler(championshipService *services.ChampionshipService, clubService *services.ClubService) *ChampionshipHandler {
	return &ChampionshipHandler{championshipService: championshipService, clubService: clubService}
}

func (h *ChampionshipHandler) ListByClub(w http.ResponseWriter, r *http.Request) {
	club, err := h.clubService.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	list, err := h.championshipService.ListByClub(r.Context(), club.ID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, envelope{"championships": list}, nil)
}

func (h *ChampionshipHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	c, err := h.championshipService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, envelope{"championship": c}, nil)
}

func (h *ChampionshipHandler) Create(w http.ResponseWriter, r *http.Request) {
	var c models.Championship
	if err := readJSON(w, r, &c); err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.championshipService.Create(r.Context(), &c); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	_ = writeJSON(w, http.StatusCreated, envelope{"championship": c}, nil)
}

func (h *ChampionshipHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var c models.Championship
	if err := readJSON(w, r, &c); err != nil {
		badRequestResponse(w, err)
		return
	}
	c.ID = id

	if err := h.championshipService.Update(r.Context(), &c); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, envelope{"championship": c}, nil)
}

func (h *ChampionshipHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.championshipService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, envelope{"message": "championship deleted"}, nil)
}
