package handlers

import (
	"net/http"

	"github.com/pawmate/dogwalk-marketplace/internal/application/services"
)

// PetHandler handles pet-related HTTP requests
type PetHandler struct {
	petService *services.PetService
}

// NewPetHandler creates a new pet handler
func NewPetHandler(petService *services.PetService) *PetHandler {
	return &PetHandler{
		petService: petService,
	}
}

// ListPets handles GET /pets
func (h *PetHandler) ListPets(w http.ResponseWriter, r *http.Request) {
	pets, err := h.petService.List(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, pets)
}

// ListUserPets handles GET /user/{id}/pets
func (h *PetHandler) ListUserPets(w http.ResponseWriter, r *http.Request) {
	pets, err := h.petService.ListByUser(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, pets)
}
