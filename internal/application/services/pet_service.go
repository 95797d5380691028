package services

import (
	"context"

	"github.com/pawmate/dogwalk-marketplace/internal/domain/entities"
	"github.com/pawmate/dogwalk-marketplace/internal/domain/repositories"
	apperrors "github.com/pawmate/dogwalk-marketplace/pkg/errors"
)

// PetService exposes the pet registry
type PetService struct {
	repo repositories.PetRepository
}

// NewPetService creates a new pet service
func NewPetService(repo repositories.PetRepository) *PetService {
	return &PetService{repo: repo}
}

// List retrieves all pets
func (s *PetService) List(ctx context.Context) ([]*entities.Pet, error) {
	return s.repo.List(ctx)
}

// ListByUser retrieves the pets owned by a user
func (s *PetService) ListByUser(ctx context.Context, userID string) ([]*entities.Pet, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("user id is required")
	}
	return s.repo.ListByUser(ctx, userID)
}
