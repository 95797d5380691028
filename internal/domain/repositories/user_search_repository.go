package repositories

import (
	"context"

	"github.com/pawmate/dogwalk-marketplace/internal/domain/entities"
)

// UserSearchRepository defines the interface for roster name search
// (e.g. Typesense). The database remains the source of truth; the index is
// updated best-effort after writes.
type UserSearchRepository interface {
	// Index adds or updates a user document in the search index
	Index(ctx context.Context, user *entities.User) error

	// Delete removes a user from the index
	Delete(ctx context.Context, id string) error

	// SearchByName searches users by name, case-insensitive substring
	// semantics
	SearchByName(ctx context.Context, query string, limit int) ([]*entities.User, error)
}
