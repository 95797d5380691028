package repositories

import (
	"context"

	"github.com/pawmate/dogwalk-marketplace/internal/domain/entities"
)

// ScoreMode selects how a submitted rating updates the walker's aggregate
// score.
type ScoreMode string

const (
	// ScoreModeAverage maintains a running average over rating_count.
	ScoreModeAverage ScoreMode = "average"

	// ScoreModeOverwrite replaces the score with the latest rating. Kept
	// for compatibility with data written by the legacy system.
	ScoreModeOverwrite ScoreMode = "overwrite"
)

// Valid reports whether the mode is a known score mode
func (m ScoreMode) Valid() bool {
	return m == ScoreModeAverage || m == ScoreModeOverwrite
}

// ReservationRepository defines the interface for reservation data operations
type ReservationRepository interface {
	// Create creates a new reservation
	Create(ctx context.Context, reservation *entities.Reservation) error

	// GetByID retrieves a reservation by ID
	GetByID(ctx context.Context, id string) (*entities.Reservation, error)

	// UpdateStatus stores a new lifecycle status
	UpdateStatus(ctx context.Context, id string, status entities.ReservationStatus) error

	// AttachReview stores the rating and review on the reservation and
	// updates the walker's aggregate score in the same transaction.
	AttachReview(ctx context.Context, id, walkerID string, rating int, review string, mode ScoreMode) error

	// ListByUser retrieves reservations placed by a user
	ListByUser(ctx context.Context, userID string, filter ReservationFilter) ([]*entities.Reservation, error)

	// ListByWalker retrieves reservations assigned to a walker
	ListByWalker(ctx context.Context, walkerID string, filter ReservationFilter) ([]*entities.Reservation, error)
}

// ReservationFilter defines filters for listing reservations
type ReservationFilter struct {
	Status entities.ReservationStatus
	Limit  int
	Offset int
}
