package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pawmate/dogwalk-marketplace/internal/application/services"
	"github.com/pawmate/dogwalk-marketplace/internal/domain/entities"
	"github.com/pawmate/dogwalk-marketplace/internal/domain/repositories"
	apperrors "github.com/pawmate/dogwalk-marketplace/pkg/errors"
)

func newUserService(repo *MockUserRepository) *services.UserService {
	return services.NewUserService(repo, nil, services.NewMatchingService(), nil)
}

func validRegisterInput() services.RegisterInput {
	return services.RegisterInput{
		Name:     "Maria Costa",
		Email:    "maria@example.com",
		Number:   "+351910000001",
		Password: "secret",
		Type:     "user",
	}
}

func TestUserService_Register(t *testing.T) {
	t.Run("creates a user with a generated id", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(u *entities.User) bool {
			return u.ID != "" && u.Email == "maria@example.com" && u.Type == entities.UserTypeOwner
		})).Return(nil)

		user, err := newUserService(repo).Register(context.Background(), validRegisterInput())

		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		repo.AssertExpectations(t)
	})

	t.Run("walker registration keeps price", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(u *entities.User) bool {
			return u.Type == entities.UserTypeWalker && u.PricePerWalk == 12.5
		})).Return(nil)

		input := validRegisterInput()
		input.Type = "walker"
		input.PricePerWalk = 12.5

		_, err := newUserService(repo).Register(context.Background(), input)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("validation failures", func(t *testing.T) {
		lat := 10.0
		cases := []struct {
			name   string
			mutate func(*services.RegisterInput)
		}{
			{"empty name", func(i *services.RegisterInput) { i.Name = " " }},
			{"bad email", func(i *services.RegisterInput) { i.Email = "not-an-email" }},
			{"empty number", func(i *services.RegisterInput) { i.Number = "" }},
			{"empty password", func(i *services.RegisterInput) { i.Password = "" }},
			{"unknown type", func(i *services.RegisterInput) { i.Type = "admin" }},
			{"latitude without longitude", func(i *services.RegisterInput) { i.Latitude = &lat }},
			{"negative price", func(i *services.RegisterInput) { i.PricePerWalk = -1 }},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				repo := new(MockUserRepository)
				input := validRegisterInput()
				tc.mutate(&input)

				_, err := newUserService(repo).Register(context.Background(), input)

				assertErrorType(t, err, apperrors.ErrorTypeValidation)
				repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("duplicate surfaces as conflict", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("Create", mock.Anything, mock.Anything).
			Return(apperrors.NewConflictError("email already in use"))

		_, err := newUserService(repo).Register(context.Background(), validRegisterInput())

		assertErrorType(t, err, apperrors.ErrorTypeConflict)
	})
}

func TestUserService_GetByCredentials(t *testing.T) {
	t.Run("empty credentials rejected without repository call", func(t *testing.T) {
		repo := new(MockUserRepository)

		_, err := newUserService(repo).GetByCredentials(context.Background(), "", "")

		assertErrorType(t, err, apperrors.ErrorTypeValidation)
		repo.AssertNotCalled(t, "GetByCredentials", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown credentials surface as not found", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByCredentials", mock.Anything, "maria@example.com", "wrong").
			Return(nil, apperrors.NewNotFoundError("no user matching credentials"))

		_, err := newUserService(repo).GetByCredentials(context.Background(), "maria@example.com", "wrong")

		assertErrorType(t, err, apperrors.ErrorTypeNotFound)
	})
}

func TestUserService_MatchCandidates(t *testing.T) {
	t.Run("loads the counterpart roster for the actor", func(t *testing.T) {
		repo := new(MockUserRepository)
		actor := owner("o1", coord(38.72), coord(-9.14))
		repo.On("GetByID", mock.Anything, "o1").Return(actor, nil)
		repo.On("List", mock.Anything, repositories.UserFilter{Type: entities.UserTypeWalker}).
			Return([]*entities.User{
				walker("w1", coord(38.73), coord(-9.14), 1, 4.5, 10),
				walker("w2", nil, nil, 0, 3.5, 8),
			}, nil)

		candidates, err := newUserService(repo).MatchCandidates(context.Background(), "o1", services.RosterFilters{})

		require.NoError(t, err)
		assert.Len(t, candidates, 2)
	})

	t.Run("unknown actor surfaces as not found", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByID", mock.Anything, "missing").
			Return(nil, apperrors.NewNotFoundError("user with id missing not found"))

		_, err := newUserService(repo).MatchCandidates(context.Background(), "missing", services.RosterFilters{})

		assertErrorType(t, err, apperrors.ErrorTypeNotFound)
	})
}

func TestUserService_SearchByName(t *testing.T) {
	t.Run("falls back to a roster scan without a search index", func(t *testing.T) {
		repo := new(MockUserRepository)
		w1 := walker("w1", nil, nil, 1, 4, 10)
		w1.Name = "Pedro Santos"
		w2 := walker("w2", nil, nil, 1, 4, 10)
		w2.Name = "Sofia Almeida"
		repo.On("List", mock.Anything, repositories.UserFilter{}).
			Return([]*entities.User{w1, w2}, nil)

		users, err := newUserService(repo).SearchByName(context.Background(), "PEDRO", 10)

		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "w1", users[0].ID)
	})

	t.Run("limit caps the scan", func(t *testing.T) {
		repo := new(MockUserRepository)
		w1 := walker("w1", nil, nil, 1, 4, 10)
		w2 := walker("w2", nil, nil, 1, 4, 10)
		repo.On("List", mock.Anything, repositories.UserFilter{}).
			Return([]*entities.User{w1, w2}, nil)

		users, err := newUserService(repo).SearchByName(context.Background(), "walker", 1)

		require.NoError(t, err)
		assert.Len(t, users, 1)
	})

	t.Run("blank query rejected", func(t *testing.T) {
		_, err := newUserService(new(MockUserRepository)).SearchByName(context.Background(), "  ", 10)
		assertErrorType(t, err, apperrors.ErrorTypeValidation)
	})
}

func TestUserService_Updates(t *testing.T) {
	t.Run("location bounds", func(t *testing.T) {
		cases := []struct {
			name     string
			lat, lon float64
			wantErr  bool
		}{
			{"valid", 38.72, -9.14, false},
			{"north pole", 90, 0, false},
			{"latitude too high", 90.01, 0, true},
			{"latitude too low", -91, 0, true},
			{"longitude too high", 0, 180.5, true},
			{"longitude too low", 0, -181, true},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				repo := new(MockUserRepository)
				repo.On("UpdateLocation", mock.Anything, "u1", tc.lat, tc.lon).Return(nil).Maybe()

				err := newUserService(repo).UpdateLocation(context.Background(), "u1", tc.lat, tc.lon)

				if tc.wantErr {
					assertErrorType(t, err, apperrors.ErrorTypeValidation)
					repo.AssertNotCalled(t, "UpdateLocation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				} else {
					assert.NoError(t, err)
				}
			})
		}
	})

	t.Run("online status accepts only 0 and 1", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("UpdateOnlineStatus", mock.Anything, "u1", 1).Return(nil)

		svc := newUserService(repo)
		require.NoError(t, svc.UpdateOnlineStatus(context.Background(), "u1", 1))

		err := svc.UpdateOnlineStatus(context.Background(), "u1", 2)
		assertErrorType(t, err, apperrors.ErrorTypeValidation)
	})

	t.Run("score bounds", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("UpdateScore", mock.Anything, "w1", 4.5).Return(nil)

		svc := newUserService(repo)
		require.NoError(t, svc.UpdateScore(context.Background(), "w1", 4.5))

		assertErrorType(t, svc.UpdateScore(context.Background(), "w1", 5.5), apperrors.ErrorTypeValidation)
		assertErrorType(t, svc.UpdateScore(context.Background(), "w1", -0.5), apperrors.ErrorTypeValidation)
	})

	t.Run("details validation", func(t *testing.T) {
		repo := new(MockUserRepository)

		err := newUserService(repo).UpdateDetails(context.Background(), "u1", services.UpdateDetailsInput{
			Name:   "Maria",
			Email:  "broken",
			Number: "+351910000001",
		})

		assertErrorType(t, err, apperrors.ErrorTypeValidation)
		repo.AssertNotCalled(t, "UpdateDetails", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
