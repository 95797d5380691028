package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/pawmate/dogwalk-marketplace/internal/domain/entities"
	"github.com/pawmate/dogwalk-marketplace/internal/domain/repositories"
	"github.com/pawmate/dogwalk-marketplace/internal/infrastructure/clients/postgres"
	apperrors "github.com/pawmate/dogwalk-marketplace/pkg/errors"
)

var petColumns = []interface{}{
	"id", "user_id", "name", "breed", "age", "created_at", "updated_at",
}

// PetAdapter implements the PetRepository interface
type PetAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPetAdapter creates a new pet adapter
func NewPetAdapter(client *postgres.Client) *PetAdapter {
	return &PetAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var _ repositories.PetRepository = (*PetAdapter)(nil)

// List retrieves all pets
func (a *PetAdapter) List(ctx context.Context) ([]*entities.Pet, error) {
	return a.list(ctx, nil)
}

// ListByUser retrieves the pets owned by a user
func (a *PetAdapter) ListByUser(ctx context.Context, userID string) ([]*entities.Pet, error) {
	return a.list(ctx, goqu.Ex{"user_id": userID})
}

func (a *PetAdapter) list(ctx context.Context, where goqu.Ex) ([]*entities.Pet, error) {
	ds := a.db.Select(petColumns...).From("pets")
	if where != nil {
		ds = ds.Where(where)
	}
	ds = ds.Order(goqu.I("name").Asc())

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list pets", err)
	}
	defer rows.Close()

	var pets []*entities.Pet
	for rows.Next() {
		pet := &entities.Pet{}
		err := rows.Scan(
			&pet.ID,
			&pet.UserID,
			&pet.Name,
			&pet.Breed,
			&pet.Age,
			&pet.CreatedAt,
			&pet.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan pet", err)
		}
		pets = append(pets, pet)
	}

	return pets, nil
}
