package handlers_test

import (
	"context"
	"fmt"
	"sort"

	"github.com/pawmate/dogwalk-marketplace/internal/domain/entities"
	"github.com/pawmate/dogwalk-marketplace/internal/domain/repositories"
	apperrors "github.com/pawmate/dogwalk-marketplace/pkg/errors"
)

// fakeUserRepo is an in-memory UserRepository for handler tests
type fakeUserRepo struct {
	users map[string]*entities.User
}

func newFakeUserRepo(users ...*entities.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*entities.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user *entities.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return apperrors.NewConflictError("email already in use")
		}
		if existing.Number == user.Number {
			return apperrors.NewConflictError("number already in use")
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entities.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("user with id %s not found", id))
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("user with email %s not found", email))
}

func (r *fakeUserRepo) GetByNumber(_ context.Context, number string) (*entities.User, error) {
	for _, u := range r.users {
		if u.Number == number {
			return u, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("user with number %s not found", number))
}

func (r *fakeUserRepo) GetByCredentials(_ context.Context, email, password string) (*entities.User, error) {
	for _, u := range r.users {
		if u.Email == email && u.Password == password {
			return u, nil
		}
	}
	return nil, apperrors.NewNotFoundError("no user matching credentials")
}

func (r *fakeUserRepo) List(_ context.Context, filter repositories.UserFilter) ([]*entities.User, error) {
	var users []*entities.User
	for _, u := range r.users {
		if filter.Type != "" && u.Type != filter.Type {
			continue
		}
		if filter.OnlineOnly && !u.IsOnline() {
			continue
		}
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *fakeUserRepo) UpdateDetails(ctx context.Context, id, name, email, number string) error {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	user.Name, user.Email, user.Number = name, email, number
	return nil
}

func (r *fakeUserRepo) UpdateLocation(ctx context.Context, id string, latitude, longitude float64) error {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	user.Latitude, user.Longitude = &latitude, &longitude
	return nil
}

func (r *fakeUserRepo) UpdateOnlineStatus(ctx context.Context, id string, onlineStatus int) error {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	user.OnlineStatus = onlineStatus
	return nil
}

func (r *fakeUserRepo) UpdateScore(ctx context.Context, walkerID string, score float64) error {
	user, err := r.GetByID(ctx, walkerID)
	if err != nil {
		return err
	}
	if !user.IsWalker() {
		return apperrors.NewNotFoundError(fmt.Sprintf("user with id %s not found", walkerID))
	}
	user.Score = score
	return nil
}

// fakeReservationRepo is an in-memory ReservationRepository for handler tests
type fakeReservationRepo struct {
	reservations map[string]*entities.Reservation
	users        *fakeUserRepo
}

func newFakeReservationRepo(users *fakeUserRepo) *fakeReservationRepo {
	return &fakeReservationRepo{
		reservations: make(map[string]*entities.Reservation),
		users:        users,
	}
}

func (r *fakeReservationRepo) Create(_ context.Context, reservation *entities.Reservation) error {
	r.reservations[reservation.ID] = reservation
	return nil
}

func (r *fakeReservationRepo) GetByID(_ context.Context, id string) (*entities.Reservation, error) {
	reservation, ok := r.reservations[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("reservation with id %s not found", id))
	}
	copied := *reservation
	return &copied, nil
}

func (r *fakeReservationRepo) UpdateStatus(_ context.Context, id string, status entities.ReservationStatus) error {
	reservation, ok := r.reservations[id]
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("reservation with id %s not found", id))
	}
	reservation.Status = status
	return nil
}

func (r *fakeReservationRepo) AttachReview(ctx context.Context, id, walkerID string, rating int, review string, mode repositories.ScoreMode) error {
	reservation, ok := r.reservations[id]
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("reservation with id %s not found", id))
	}
	walker, err := r.users.GetByID(ctx, walkerID)
	if err != nil {
		return err
	}

	reservation.Rating = &rating
	reservation.Review = &review

	if mode == repositories.ScoreModeOverwrite {
		walker.Score = float64(rating)
	} else {
		walker.Score = (walker.Score*float64(walker.RatingCount) + float64(rating)) / float64(walker.RatingCount+1)
	}
	walker.RatingCount++
	return nil
}

func (r *fakeReservationRepo) ListByUser(_ context.Context, userID string, filter repositories.ReservationFilter) ([]*entities.Reservation, error) {
	return r.list(func(res *entities.Reservation) bool { return res.UserID == userID }, filter), nil
}

func (r *fakeReservationRepo) ListByWalker(_ context.Context, walkerID string, filter repositories.ReservationFilter) ([]*entities.Reservation, error) {
	return r.list(func(res *entities.Reservation) bool { return res.WalkerID == walkerID }, filter), nil
}

func (r *fakeReservationRepo) list(match func(*entities.Reservation) bool, filter repositories.ReservationFilter) []*entities.Reservation {
	matched := make([]*entities.Reservation, 0)
	for _, res := range r.reservations {
		if !match(res) {
			continue
		}
		if filter.Status != "" && res.Status != filter.Status {
			continue
		}
		matched = append(matched, res)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched
}

// fakePetRepo is an in-memory PetRepository for handler tests
type fakePetRepo struct {
	pets []*entities.Pet
}

func (r *fakePetRepo) List(_ context.Context) ([]*entities.Pet, error) {
	return r.pets, nil
}

func (r *fakePetRepo) ListByUser(_ context.Context, userID string) ([]*entities.Pet, error) {
	matched := make([]*entities.Pet, 0)
	for _, p := range r.pets {
		if p.UserID == userID {
			matched = append(matched, p)
		}
	}
	return matched, nil
}
