package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pawmate/dogwalk-marketplace/internal/domain/entities"
	"github.com/pawmate/dogwalk-marketplace/internal/domain/providers"
	"github.com/pawmate/dogwalk-marketplace/internal/domain/repositories"
	apperrors "github.com/pawmate/dogwalk-marketplace/pkg/errors"
)

// Coordinate bounds in decimal degrees
const (
	maxLatitude  = 90
	maxLongitude = 180
)

// UserService handles registration, profile upkeep and roster matching
type UserService struct {
	repo       repositories.UserRepository
	searchRepo repositories.UserSearchRepository
	matching   *MatchingService
	eventBus   providers.EventBus
}

// NewUserService creates a new user service. searchRepo and eventBus may be
// nil; name search then falls back to an in-memory scan and events are
// dropped.
func NewUserService(
	repo repositories.UserRepository,
	searchRepo repositories.UserSearchRepository,
	matching *MatchingService,
	eventBus providers.EventBus,
) *UserService {
	return &UserService{
		repo:       repo,
		searchRepo: searchRepo,
		matching:   matching,
		eventBus:   eventBus,
	}
}

// RegisterInput carries the fields accepted at registration
type RegisterInput struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Number       string  `json:"number"`
	Password     string  `json:"password"`
	Type         string  `json:"type"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	PricePerWalk float64 `json:"pricePerWalk"`
}

// Register creates a new user. Duplicate email or number surfaces as a
// conflict from the insert itself; there is no read-then-write window.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*entities.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	number := strings.TrimSpace(input.Number)

	if name == "" {
		return nil, apperrors.NewValidationError("name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.NewValidationError("invalid email address")
	}
	if number == "" {
		return nil, apperrors.NewValidationError("number is required")
	}
	if input.Password == "" {
		return nil, apperrors.NewValidationError("password is required")
	}
	userType := entities.UserType(input.Type)
	if !userType.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown user type %q", input.Type))
	}
	if input.Latitude != nil || input.Longitude != nil {
		if input.Latitude == nil || input.Longitude == nil {
			return nil, apperrors.NewValidationError("latitude and longitude must be provided together")
		}
		if err := validateCoordinates(*input.Latitude, *input.Longitude); err != nil {
			return nil, err
		}
	}
	if input.PricePerWalk < 0 {
		return nil, apperrors.NewValidationError("pricePerWalk cannot be negative")
	}

	now := time.Now()
	user := &entities.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		Number:       number,
		Password:     input.Password,
		Type:         userType,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		PricePerWalk: input.PricePerWalk,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.index(user.ID)
	s.publish(ctx, user.ID, entities.RosterEventTypeRegistration, map[string]interface{}{
		"type": string(user.Type),
	})

	return user, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id string) (*entities.User, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("user id is required")
	}
	return s.repo.GetByID(ctx, id)
}

// GetByCredentials retrieves the user matching email and password
func (s *UserService) GetByCredentials(ctx context.Context, email, password string) (*entities.User, error) {
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password are required")
	}
	return s.repo.GetByCredentials(ctx, email, password)
}

// List retrieves users with filters
func (s *UserService) List(ctx context.Context, filter repositories.UserFilter) ([]*entities.User, error) {
	return s.repo.List(ctx, filter)
}

// MatchCandidates loads the roster of counterpart users for the actor and
// ranks it according to the filters.
func (s *UserService) MatchCandidates(ctx context.Context, actorID string, filters RosterFilters) ([]*Candidate, error) {
	actor, err := s.repo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	roster, err := s.repo.List(ctx, repositories.UserFilter{Type: actor.Type.Opposite()})
	if err != nil {
		return nil, err
	}

	return s.matching.Rank(roster, actor, filters), nil
}

// SearchByName finds users whose name matches the query. The search index
// serves the query when configured; otherwise the roster is scanned with a
// case-insensitive substring match.
func (s *UserService) SearchByName(ctx context.Context, query string, limit int) ([]*entities.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewValidationError("search query is required")
	}

	if s.searchRepo != nil {
		users, err := s.searchRepo.SearchByName(ctx, query, limit)
		if err == nil {
			return users, nil
		}
		log.Warn().Err(err).Msg("search index unavailable, falling back to roster scan")
	}

	roster, err := s.repo.List(ctx, repositories.UserFilter{})
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	matched := make([]*entities.User, 0)
	for _, u := range roster {
		if strings.Contains(strings.ToLower(u.Name), needle) {
			matched = append(matched, u)
			if limit > 0 && len(matched) >= limit {
				break
			}
		}
	}
	return matched, nil
}

// UpdateDetailsInput carries the editable profile fields
type UpdateDetailsInput struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Number string `json:"number"`
}

// UpdateDetails updates the mutable profile fields
func (s *UserService) UpdateDetails(ctx context.Context, id string, input UpdateDetailsInput) error {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	number := strings.TrimSpace(input.Number)

	if name == "" {
		return apperrors.NewValidationError("name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apperrors.NewValidationError("invalid email address")
	}
	if number == "" {
		return apperrors.NewValidationError("number is required")
	}

	if err := s.repo.UpdateDetails(ctx, id, name, email, number); err != nil {
		return err
	}

	s.index(id)
	s.publish(ctx, id, entities.RosterEventTypeProfileUpdate, map[string]interface{}{
		"name": name,
	})
	return nil
}

// UpdateLocation stores the last reported coordinates
func (s *UserService) UpdateLocation(ctx context.Context, id string, latitude, longitude float64) error {
	if err := validateCoordinates(latitude, longitude); err != nil {
		return err
	}

	if err := s.repo.UpdateLocation(ctx, id, latitude, longitude); err != nil {
		return err
	}

	s.index(id)
	s.publish(ctx, id, entities.RosterEventTypeLocationUpdate, map[string]interface{}{
		"latitude":  latitude,
		"longitude": longitude,
	})
	return nil
}

// UpdateOnlineStatus stores the connected flag
func (s *UserService) UpdateOnlineStatus(ctx context.Context, id string, onlineStatus int) error {
	if onlineStatus != 0 && onlineStatus != entities.OnlineStatusConnected {
		return apperrors.NewValidationError("onlineStatus must be 0 or 1")
	}

	if err := s.repo.UpdateOnlineStatus(ctx, id, onlineStatus); err != nil {
		return err
	}

	s.index(id)
	s.publish(ctx, id, entities.RosterEventTypeOnlineStatusUpdate, map[string]interface{}{
		"online_status": onlineStatus,
	})
	return nil
}

// UpdateScore overwrites a walker's aggregate score directly. Review
// submission is the preferred path; this remains for compatibility with
// clients that set the score themselves.
func (s *UserService) UpdateScore(ctx context.Context, walkerID string, score float64) error {
	if score < 0 || score > 5 {
		return apperrors.NewValidationError("score must be between 0 and 5")
	}

	if err := s.repo.UpdateScore(ctx, walkerID, score); err != nil {
		return err
	}

	s.index(walkerID)
	s.publish(ctx, walkerID, entities.RosterEventTypeScoreUpdate, map[string]interface{}{
		"score": score,
	})
	return nil
}

// index refreshes the user's search index entry in the background
func (s *UserService) index(id string) {
	if s.searchRepo == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		user, err := s.repo.GetByID(ctx, id)
		if err != nil {
			log.Warn().Err(err).Str("user_id", id).Msg("failed to load user for indexing")
			return
		}
		if err := s.searchRepo.Index(ctx, user); err != nil {
			log.Warn().Err(err).Str("user_id", id).Msg("failed to index user")
		}
	}()
}

func (s *UserService) publish(ctx context.Context, userID string, eventType entities.RosterEventType, changed map[string]interface{}) {
	if s.eventBus == nil {
		return
	}
	event := entities.NewRosterEvent(userID, eventType, changed)
	if err := s.eventBus.Publish(ctx, providers.EventChannelRosterUpdates, event); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("failed to publish roster event")
	}
	if err := s.eventBus.Publish(ctx, providers.GetUserChannel(userID), event); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("failed to publish user event")
	}
}

func validateCoordinates(latitude, longitude float64) error {
	if latitude < -maxLatitude || latitude > maxLatitude {
		return apperrors.NewValidationError("latitude must be between -90 and 90")
	}
	if longitude < -maxLongitude || longitude > maxLongitude {
		return apperrors.NewValidationError("longitude must be between -180 and 180")
	}
	return nil
}
