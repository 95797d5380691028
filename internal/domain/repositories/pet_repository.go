package repositories

import (
	"context"

	"github.com/pawmate/dogwalk-marketplace/internal/domain/entities"
)

// PetRepository defines the interface for pet data operations
type PetRepository interface {
	// List retrieves all pets
	List(ctx context.Context) ([]*entities.Pet, error)

	// ListByUser retrieves the pets of an owner
	ListByUser(ctx context.Context, userID string) ([]*entities.Pet, error)
}
