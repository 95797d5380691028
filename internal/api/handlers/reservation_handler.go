package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pawmate/dogwalk-marketplace/internal/application/services"
	"github.com/pawmate/dogwalk-marketplace/internal/domain/entities"
	"github.com/pawmate/dogwalk-marketplace/internal/domain/repositories"
)

// ReservationHandler handles reservation-related HTTP requests
type ReservationHandler struct {
	reservationService *services.ReservationService
}

// NewReservationHandler creates a new reservation handler
func NewReservationHandler(reservationService *services.ReservationService) *ReservationHandler {
	return &ReservationHandler{
		reservationService: reservationService,
	}
}

// CreateReservation handles POST /reservations
func (h *ReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var input services.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reservation, err := h.reservationService.Create(r.Context(), input)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, reservation)
}

// GetReservation handles GET /reservations/{id}
func (h *ReservationHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	reservation, err := h.reservationService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, reservation)
}

// UpdateStatus handles PUT /reservations/{id}
func (h *ReservationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Status  string `json:"status"`
		ActorID string `json:"actorId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reservation, err := h.reservationService.Transition(
		r.Context(), r.PathValue("id"), input.ActorID, entities.ReservationStatus(input.Status))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, reservation)
}

// SubmitReview handles POST /reservations/{id}/reviews
func (h *ReservationHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var input services.ReviewInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reservation, err := h.reservationService.SubmitReview(r.Context(), r.PathValue("id"), input)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, reservation)
}

// ListForUser handles GET /user/reservations/{id}
func (h *ReservationHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	reservations, err := h.reservationService.ListForUser(
		r.Context(), r.PathValue("id"), reservationFilter(r))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, reservations)
}

// ListForWalker handles GET /user/walker/reservations/{id}
func (h *ReservationHandler) ListForWalker(w http.ResponseWriter, r *http.Request) {
	reservations, err := h.reservationService.ListForWalker(
		r.Context(), r.PathValue("id"), reservationFilter(r))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, reservations)
}

func reservationFilter(r *http.Request) repositories.ReservationFilter {
	return repositories.ReservationFilter{
		Status: entities.ReservationStatus(r.URL.Query().Get("status")),
	}
}
