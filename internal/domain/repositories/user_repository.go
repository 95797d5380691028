package repositories

import (
	"context"

	"github.com/pawmate/dogwalk-marketplace/internal/domain/entities"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create inserts a new user. Duplicate email or number surfaces as a
	// conflict error mapped from the unique constraint violation.
	Create(ctx context.Context, user *entities.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*entities.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*entities.User, error)

	// GetByNumber retrieves a user by phone number
	GetByNumber(ctx context.Context, number string) (*entities.User, error)

	// GetByCredentials retrieves a user matching email and password
	GetByCredentials(ctx context.Context, email, password string) (*entities.User, error)

	// List retrieves users with filters
	List(ctx context.Context, filter UserFilter) ([]*entities.User, error)

	// UpdateDetails updates the mutable profile fields
	UpdateDetails(ctx context.Context, id, name, email, number string) error

	// UpdateLocation stores the last reported coordinates
	UpdateLocation(ctx context.Context, id string, latitude, longitude float64) error

	// UpdateOnlineStatus stores the connected flag
	UpdateOnlineStatus(ctx context.Context, id string, onlineStatus int) error

	// UpdateScore overwrites a walker's aggregate score
	UpdateScore(ctx context.Context, walkerID string, score float64) error
}

// UserFilter defines filters for listing users
type UserFilter struct {
	Type       entities.UserType
	OnlineOnly bool
	Limit      int
	Offset     int
}
