package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pawmate/dogwalk-marketplace/internal/domain/entities"
	"github.com/pawmate/dogwalk-marketplace/internal/domain/providers"
	"github.com/pawmate/dogwalk-marketplace/internal/domain/repositories"
	apperrors "github.com/pawmate/dogwalk-marketplace/pkg/errors"
)

// Rating bounds for submitted reviews
const (
	minRating = 1
	maxRating = 5
)

const dateLayout = "2006-01-02"

// ReservationService handles the booking lifecycle and review submission
type ReservationService struct {
	repo      repositories.ReservationRepository
	userRepo  repositories.UserRepository
	eventBus  providers.EventBus
	scoreMode repositories.ScoreMode
}

// NewReservationService creates a new reservation service. eventBus may be
// nil; score events are then dropped.
func NewReservationService(
	repo repositories.ReservationRepository,
	userRepo repositories.UserRepository,
	eventBus providers.EventBus,
	scoreMode repositories.ScoreMode,
) *ReservationService {
	if !scoreMode.Valid() {
		scoreMode = repositories.ScoreModeAverage
	}
	return &ReservationService{
		repo:      repo,
		userRepo:  userRepo,
		eventBus:  eventBus,
		scoreMode: scoreMode,
	}
}

// CreateInput carries the fields accepted when booking a walk
type CreateInput struct {
	UserID   string `json:"userId"`
	WalkerID string `json:"walkerId"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Duration int    `json:"duration"`
}

// Create books a walk. The reservation starts pending; only the walker can
// confirm it.
func (s *ReservationService) Create(ctx context.Context, input CreateInput) (*entities.Reservation, error) {
	if input.UserID == "" || input.WalkerID == "" {
		return nil, apperrors.NewValidationError("userId and walkerId are required")
	}
	if input.UserID == input.WalkerID {
		return nil, apperrors.NewValidationError("a user cannot book themselves")
	}
	if input.Duration < entities.MinWalkDuration || input.Duration > entities.MaxWalkDuration {
		return nil, apperrors.NewValidationError(fmt.Sprintf(
			"duration must be between %d and %d minutes", entities.MinWalkDuration, entities.MaxWalkDuration))
	}
	if strings.TrimSpace(input.Time) == "" {
		return nil, apperrors.NewValidationError("time is required")
	}

	date, err := time.Parse(dateLayout, input.Date)
	if err != nil {
		return nil, apperrors.NewValidationError("date must be formatted as YYYY-MM-DD")
	}
	today, _ := time.Parse(dateLayout, time.Now().Format(dateLayout))
	if date.Before(today) {
		return nil, apperrors.NewValidationError("cannot book a walk in the past")
	}

	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if user.IsWalker() {
		return nil, apperrors.NewValidationError("reservations are placed by pet owners")
	}

	walker, err := s.userRepo.GetByID(ctx, input.WalkerID)
	if err != nil {
		return nil, err
	}
	if !walker.IsWalker() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("user %s is not a walker", input.WalkerID))
	}

	now := time.Now()
	reservation := &entities.Reservation{
		ID:        uuid.New().String(),
		UserID:    input.UserID,
		WalkerID:  input.WalkerID,
		Date:      input.Date,
		Time:      input.Time,
		Duration:  input.Duration,
		Status:    entities.ReservationStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, reservation); err != nil {
		return nil, err
	}

	return reservation, nil
}

// Get retrieves a reservation by ID
func (s *ReservationService) Get(ctx context.Context, id string) (*entities.Reservation, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("reservation id is required")
	}
	return s.repo.GetByID(ctx, id)
}

// Transition moves a reservation to a new lifecycle status on behalf of an
// actor. The actor must be a party to the reservation and the move must be
// permitted for their role; anything else is rejected before any write.
func (s *ReservationService) Transition(ctx context.Context, id, actorID string, to entities.ReservationStatus) (*entities.Reservation, error) {
	if !to.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown status %q", to))
	}
	if actorID == "" {
		return nil, apperrors.NewValidationError("actorId is required")
	}

	reservation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	role, err := partyRole(reservation, actorID)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(role, reservation.Status, to) {
		if reservation.Status.Terminal() {
			return nil, apperrors.NewValidationError(fmt.Sprintf(
				"reservation is already %s", reservation.Status))
		}
		return nil, apperrors.NewUnauthorizedError(fmt.Sprintf(
			"%s cannot move reservation from %s to %s", role, reservation.Status, to))
	}

	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}

	reservation.Status = to
	reservation.UpdatedAt = time.Now()
	return reservation, nil
}

// ReviewInput carries a rating and optional review text
type ReviewInput struct {
	ActorID string `json:"actorId"`
	Rating  int    `json:"rating"`
	Review  string `json:"review"`
}

// SubmitReview attaches a rating and review to a completed reservation and
// folds the rating into the walker's score. Only the owning user may review,
// exactly once.
func (s *ReservationService) SubmitReview(ctx context.Context, id string, input ReviewInput) (*entities.Reservation, error) {
	if input.Rating < minRating || input.Rating > maxRating {
		return nil, apperrors.NewValidationError(fmt.Sprintf(
			"rating must be between %d and %d", minRating, maxRating))
	}

	reservation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.ActorID != reservation.UserID {
		return nil, apperrors.NewUnauthorizedError("only the booking user may review a walk")
	}
	if reservation.Status != entities.ReservationStatusCompleted {
		return nil, apperrors.NewValidationError("only completed walks can be reviewed")
	}
	if reservation.Reviewed() {
		return nil, apperrors.NewConflictError("walk has already been reviewed")
	}

	if err := s.repo.AttachReview(ctx, id, reservation.WalkerID, input.Rating, input.Review, s.scoreMode); err != nil {
		return nil, err
	}

	s.publishScoreUpdate(ctx, reservation.WalkerID, input.Rating)

	rating := input.Rating
	review := input.Review
	reservation.Rating = &rating
	reservation.Review = &review
	reservation.UpdatedAt = time.Now()
	return reservation, nil
}

// ListForUser retrieves reservations placed by a user
func (s *ReservationService) ListForUser(ctx context.Context, userID string, filter repositories.ReservationFilter) ([]*entities.Reservation, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("user id is required")
	}
	return s.repo.ListByUser(ctx, userID, filter)
}

// ListForWalker retrieves reservations assigned to a walker
func (s *ReservationService) ListForWalker(ctx context.Context, walkerID string, filter repositories.ReservationFilter) ([]*entities.Reservation, error) {
	if walkerID == "" {
		return nil, apperrors.NewValidationError("walker id is required")
	}
	return s.repo.ListByWalker(ctx, walkerID, filter)
}

func (s *ReservationService) publishScoreUpdate(ctx context.Context, walkerID string, rating int) {
	if s.eventBus == nil {
		return
	}
	event := entities.NewRosterEvent(walkerID, entities.RosterEventTypeScoreUpdate, map[string]interface{}{
		"rating": rating,
	})
	if err := s.eventBus.Publish(ctx, providers.EventChannelRosterUpdates, event); err != nil {
		log.Warn().Err(err).Str("walker_id", walkerID).Msg("failed to publish score event")
	}
}

// partyRole identifies which side of the reservation the actor is on
func partyRole(r *entities.Reservation, actorID string) (entities.UserType, error) {
	switch actorID {
	case r.UserID:
		return entities.UserTypeOwner, nil
	case r.WalkerID:
		return entities.UserTypeWalker, nil
	default:
		return "", apperrors.NewUnauthorizedError("actor is not a party to this reservation")
	}
}

// transitionAllowed encodes the lifecycle rules. Pending walks can be
// cancelled by either party but only confirmed by the walker; confirmed
// walks can only be completed, and only by the walker. Terminal states
// accept nothing.
func transitionAllowed(role entities.UserType, from, to entities.ReservationStatus) bool {
	switch from {
	case entities.ReservationStatusPending:
		switch to {
		case entities.ReservationStatusCancelled:
			return true
		case entities.ReservationStatusConfirmed:
			return role == entities.UserTypeWalker
		}
	case entities.ReservationStatusConfirmed:
		if to == entities.ReservationStatusCompleted {
			return role == entities.UserTypeWalker
		}
	}
	return false
}
