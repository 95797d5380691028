package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/pawmate/dogwalk-marketplace/internal/application/services"
	"github.com/pawmate/dogwalk-marketplace/internal/domain/entities"
	"github.com/pawmate/dogwalk-marketplace/internal/domain/repositories"
	apperrors "github.com/pawmate/dogwalk-marketplace/pkg/errors"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	filter := repositories.UserFilter{
		Type:       entities.UserType(r.URL.Query().Get("type")),
		OnlineOnly: r.URL.Query().Get("online") == "true",
	}

	users, err := h.userService.List(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, users)
}

// GetUser handles GET /user/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, user)
}

// Login handles GET /user/{email}/{password}
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByCredentials(r.Context(), r.PathValue("email"), r.PathValue("password"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, user)
}

// Register handles POST /user
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userService.Register(r.Context(), input)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, user)
}

// UpdateUser handles PUT /user/{id}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var input services.UpdateDetailsInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := r.PathValue("id")
	if err := h.userService.UpdateDetails(r.Context(), id, input); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"id": id})
}

// UpdateLocation handles PUT /user/{id}/location
func (h *UserHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := r.PathValue("id")
	if err := h.userService.UpdateLocation(r.Context(), id, input.Latitude, input.Longitude); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"id": id})
}

// UpdateOnlineStatus handles PUT /user/onlineStatus
func (h *UserHandler) UpdateOnlineStatus(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ID           string `json:"id"`
		OnlineStatus int    `json:"onlineStatus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.ID == "" {
		respondWithError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.userService.UpdateOnlineStatus(r.Context(), input.ID, input.OnlineStatus); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"id": input.ID})
}

// UpdateWalkerScore handles PUT /user/walkers/{id}/score
func (h *UserHandler) UpdateWalkerScore(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Score float64 `json:"score"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := r.PathValue("id")
	if err := h.userService.UpdateScore(r.Context(), id, input.Score); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"id": id})
}

// MatchCandidates handles GET /users/match/{actorId}
func (h *UserHandler) MatchCandidates(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filters := services.RosterFilters{
		OnlineOnly:     query.Get("online") == "true",
		Type:           entities.UserType(query.Get("type")),
		Query:          query.Get("q"),
		SortByDistance: query.Get("sortByDistance") == "true",
		SortByScore:    query.Get("sortByScore") == "true",
		SortByPrice:    query.Get("sortByPrice") == "true",
	}

	// sort=distance&sort=price is equivalent to the boolean flags; the
	// flags are applied in their fixed priority order either way.
	for _, mode := range query["sort"] {
		switch mode {
		case "distance":
			filters.SortByDistance = true
		case "score":
			filters.SortByScore = true
		case "price":
			filters.SortByPrice = true
		}
	}

	candidates, err := h.userService.MatchCandidates(r.Context(), r.PathValue("actorId"), filters)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"candidates": candidates,
		"count":      len(candidates),
	})
}

// SearchUsers handles GET /users/search
func (h *UserHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	limit := 25
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	users, err := h.userService.SearchByName(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
		"count": len(users),
	})
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps the error taxonomy onto HTTP status codes
func respondWithAppError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	switch appErr.Type {
	case apperrors.ErrorTypeValidation, apperrors.ErrorTypeConflict:
		respondWithError(w, http.StatusBadRequest, appErr.Message)
	case apperrors.ErrorTypeUnauthorized:
		respondWithError(w, http.StatusForbidden, appErr.Message)
	case apperrors.ErrorTypeNotFound:
		respondWithError(w, http.StatusNotFound, appErr.Message)
	default:
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
