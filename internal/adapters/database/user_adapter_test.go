package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawmate/dogwalk-marketplace/internal/domain/entities"
	"github.com/pawmate/dogwalk-marketplace/internal/domain/repositories"
	"github.com/pawmate/dogwalk-marketplace/internal/infrastructure/clients/postgres"
	apperrors "github.com/pawmate/dogwalk-marketplace/pkg/errors"
)

func setupUserAdapter(t *testing.T) (*UserAdapter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserAdapter(postgres.NewClientWithDB(db)), mock
}

func userRowColumns() []string {
	return []string{
		"id", "name", "email", "number", "password", "type",
		"latitude", "longitude", "online_status", "score", "rating_count",
		"price_per_walk", "created_at", "updated_at",
	}
}

func sampleUserRow(rows *sqlmock.Rows, id string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(
		id, "Maria Costa", "maria@example.com", "+351910000001", "secret", "user",
		38.7223, -9.1393, 1, 0.0, 0, 0.0, now, now,
	)
}

func TestUserAdapter_Create(t *testing.T) {
	user := &entities.User{
		ID:        "u1",
		Name:      "Maria Costa",
		Email:     "maria@example.com",
		Number:    "+351910000001",
		Password:  "secret",
		Type:      entities.UserTypeOwner,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	t.Run("inserts the user", func(t *testing.T) {
		adapter, mock := setupUserAdapter(t)
		mock.ExpectExec(`INSERT INTO "users"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := adapter.Create(context.Background(), user)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email becomes a conflict", func(t *testing.T) {
		adapter, mock := setupUserAdapter(t)
		mock.ExpectExec(`INSERT INTO "users"`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

		err := adapter.Create(context.Background(), user)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
		assert.Contains(t, err.Error(), "email")
	})

	t.Run("duplicate number becomes a conflict", func(t *testing.T) {
		adapter, mock := setupUserAdapter(t)
		mock.ExpectExec(`INSERT INTO "users"`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_number_key"})

		err := adapter.Create(context.Background(), user)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
		assert.Contains(t, err.Error(), "number")
	})

	t.Run("other database errors stay internal", func(t *testing.T) {
		adapter, mock := setupUserAdapter(t)
		mock.ExpectExec(`INSERT INTO "users"`).
			WillReturnError(&pq.Error{Code: "53300"})

		err := adapter.Create(context.Background(), user)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
	})
}

func TestUserAdapter_GetByID(t *testing.T) {
	t.Run("returns the user", func(t *testing.T) {
		adapter, mock := setupUserAdapter(t)
		mock.ExpectQuery(`SELECT .+ FROM "users" WHERE`).
			WillReturnRows(sampleUserRow(sqlmock.NewRows(userRowColumns()), "u1"))

		user, err := adapter.GetByID(context.Background(), "u1")

		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
		require.NotNil(t, user.Latitude)
		assert.InDelta(t, 38.7223, *user.Latitude, 1e-9)
	})

	t.Run("missing user is not found", func(t *testing.T) {
		adapter, mock := setupUserAdapter(t)
		mock.ExpectQuery(`SELECT .+ FROM "users" WHERE`).
			WillReturnRows(sqlmock.NewRows(userRowColumns()))

		_, err := adapter.GetByID(context.Background(), "ghost")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})

	t.Run("null coordinates stay nil", func(t *testing.T) {
		adapter, mock := setupUserAdapter(t)
		now := time.Now()
		rows := sqlmock.NewRows(userRowColumns()).AddRow(
			"u2", "Ana Ferreira", "ana@example.com", "+351910000003", "secret", "user",
			nil, nil, 0, 0.0, 0, 0.0, now, now,
		)
		mock.ExpectQuery(`SELECT .+ FROM "users" WHERE`).WillReturnRows(rows)

		user, err := adapter.GetByID(context.Background(), "u2")

		require.NoError(t, err)
		assert.Nil(t, user.Latitude)
		assert.Nil(t, user.Longitude)
	})
}

func TestUserAdapter_List(t *testing.T) {
	t.Run("returns all matching users", func(t *testing.T) {
		adapter, mock := setupUserAdapter(t)
		rows := sqlmock.NewRows(userRowColumns())
		sampleUserRow(rows, "u1")
		sampleUserRow(rows, "u2")
		mock.ExpectQuery(`SELECT .+ FROM "users"`).WillReturnRows(rows)

		users, err := adapter.List(context.Background(), repositories.UserFilter{})

		require.NoError(t, err)
		assert.Len(t, users, 2)
	})

	t.Run("type filter reaches the query", func(t *testing.T) {
		adapter, mock := setupUserAdapter(t)
		mock.ExpectQuery(`SELECT .+ FROM "users" WHERE \("type" = 'walker'\)`).
			WillReturnRows(sqlmock.NewRows(userRowColumns()))

		users, err := adapter.List(context.Background(), repositories.UserFilter{Type: entities.UserTypeWalker})

		require.NoError(t, err)
		assert.Empty(t, users)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("online filter reaches the query", func(t *testing.T) {
		adapter, mock := setupUserAdapter(t)
		mock.ExpectQuery(`SELECT .+ FROM "users" WHERE .*"online_status" = 1`).
			WillReturnRows(sqlmock.NewRows(userRowColumns()))

		_, err := adapter.List(context.Background(), repositories.UserFilter{OnlineOnly: true})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserAdapter_Updates(t *testing.T) {
	t.Run("update location touches one row", func(t *testing.T) {
		adapter, mock := setupUserAdapter(t)
		mock.ExpectExec(`UPDATE "users" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := adapter.UpdateLocation(context.Background(), "u1", 38.72, -9.14)

		assert.NoError(t, err)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		adapter, mock := setupUserAdapter(t)
		mock.ExpectExec(`UPDATE "users" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := adapter.UpdateOnlineStatus(context.Background(), "ghost", 1)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})

	t.Run("score update is scoped to walkers", func(t *testing.T) {
		adapter, mock := setupUserAdapter(t)
		mock.ExpectExec(`UPDATE "users" SET .+ WHERE \(\("id" = 'o1'\) AND \("type" = 'walker'\)\)`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := adapter.UpdateScore(context.Background(), "o1", 4.5)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate number on details update becomes a conflict", func(t *testing.T) {
		adapter, mock := setupUserAdapter(t)
		mock.ExpectExec(`UPDATE "users" SET`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_number_key"})

		err := adapter.UpdateDetails(context.Background(), "u1", "Maria", "maria@example.com", "+351910000001")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
		assert.Contains(t, err.Error(), "number")
	})
}
