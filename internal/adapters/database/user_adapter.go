package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"

	"github.com/pawmate/dogwalk-marketplace/internal/domain/entities"
	"github.com/pawmate/dogwalk-marketplace/internal/domain/repositories"
	"github.com/pawmate/dogwalk-marketplace/internal/infrastructure/clients/postgres"
	apperrors "github.com/pawmate/dogwalk-marketplace/pkg/errors"
)

var userColumns = []interface{}{
	"id", "name", "email", "number", "password", "type",
	"latitude", "longitude", "online_status", "score", "rating_count",
	"price_per_walk", "created_at", "updated_at",
}

// UserAdapter implements the UserRepository interface
type UserAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewUserAdapter creates a new user adapter
func NewUserAdapter(client *postgres.Client) *UserAdapter {
	return &UserAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var _ repositories.UserRepository = (*UserAdapter)(nil)

// Create inserts a new user. Email and number uniqueness is enforced by the
// users_email_key and users_number_key constraints; the violation is
// translated into a conflict error instead of being checked pre-insert.
func (a *UserAdapter) Create(ctx context.Context, user *entities.User) error {
	record := goqu.Record{
		"id":             user.ID,
		"name":           user.Name,
		"email":          user.Email,
		"number":         user.Number,
		"password":       user.Password,
		"type":           user.Type,
		"latitude":       user.Latitude,
		"longitude":      user.Longitude,
		"online_status":  user.OnlineStatus,
		"score":          user.Score,
		"rating_count":   user.RatingCount,
		"price_per_walk": user.PricePerWalk,
		"created_at":     user.CreatedAt,
		"updated_at":     user.UpdatedAt,
	}

	query, args, err := a.db.Insert("users").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			switch constraint {
			case "users_email_key":
				return apperrors.NewConflictError("email already in use")
			case "users_number_key":
				return apperrors.NewConflictError("number already in use")
			}
			return apperrors.NewConflictError("user already exists")
		}
		return apperrors.NewInternalError("failed to create user", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (a *UserAdapter) GetByID(ctx context.Context, id string) (*entities.User, error) {
	return a.getOne(ctx, goqu.Ex{"id": id}, fmt.Sprintf("user with id %s not found", id))
}

// GetByEmail retrieves a user by email
func (a *UserAdapter) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return a.getOne(ctx, goqu.Ex{"email": email}, fmt.Sprintf("user with email %s not found", email))
}

// GetByNumber retrieves a user by phone number
func (a *UserAdapter) GetByNumber(ctx context.Context, number string) (*entities.User, error) {
	return a.getOne(ctx, goqu.Ex{"number": number}, fmt.Sprintf("user with number %s not found", number))
}

// GetByCredentials retrieves a user matching email and password. Passwords
// are stored and compared as opaque strings.
func (a *UserAdapter) GetByCredentials(ctx context.Context, email, password string) (*entities.User, error) {
	return a.getOne(ctx, goqu.Ex{"email": email, "password": password}, "no user matching credentials")
}

func (a *UserAdapter) getOne(ctx context.Context, where goqu.Ex, notFoundMsg string) (*entities.User, error) {
	query, args, err := a.db.Select(userColumns...).
		From("users").
		Where(where).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	user, err := scanUser(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(notFoundMsg)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user", err)
	}

	return user, nil
}

// List retrieves users with filters
func (a *UserAdapter) List(ctx context.Context, filter repositories.UserFilter) ([]*entities.User, error) {
	ds := a.db.Select(userColumns...).From("users")

	if filter.Type != "" {
		ds = ds.Where(goqu.Ex{"type": filter.Type})
	}
	if filter.OnlineOnly {
		ds = ds.Where(goqu.Ex{"online_status": entities.OnlineStatusConnected})
	}

	ds = ds.Order(goqu.I("created_at").Asc())

	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list users", err)
	}
	defer rows.Close()

	var users []*entities.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan user", err)
		}
		users = append(users, user)
	}

	return users, nil
}

// UpdateDetails updates the mutable profile fields
func (a *UserAdapter) UpdateDetails(ctx context.Context, id, name, email, number string) error {
	record := goqu.Record{
		"name":       name,
		"email":      email,
		"number":     number,
		"updated_at": time.Now(),
	}

	err := a.update(ctx, id, record, goqu.Ex{"id": id})
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			if constraint == "users_number_key" {
				return apperrors.NewConflictError("number already in use")
			}
			return apperrors.NewConflictError("email already in use")
		}
	}
	return err
}

// UpdateLocation stores the last reported coordinates
func (a *UserAdapter) UpdateLocation(ctx context.Context, id string, latitude, longitude float64) error {
	return a.update(ctx, id, goqu.Record{
		"latitude":   latitude,
		"longitude":  longitude,
		"updated_at": time.Now(),
	}, goqu.Ex{"id": id})
}

// UpdateOnlineStatus stores the connected flag
func (a *UserAdapter) UpdateOnlineStatus(ctx context.Context, id string, onlineStatus int) error {
	return a.update(ctx, id, goqu.Record{
		"online_status": onlineStatus,
		"updated_at":    time.Now(),
	}, goqu.Ex{"id": id})
}

// UpdateScore overwrites a walker's aggregate score
func (a *UserAdapter) UpdateScore(ctx context.Context, walkerID string, score float64) error {
	return a.update(ctx, walkerID, goqu.Record{
		"score":      score,
		"updated_at": time.Now(),
	}, goqu.Ex{"id": walkerID, "type": entities.UserTypeWalker})
}

func (a *UserAdapter) update(ctx context.Context, id string, record goqu.Record, where goqu.Ex) error {
	query, args, err := a.db.Update("users").
		Set(record).
		Where(where).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return err
		}
		return apperrors.NewInternalError("failed to update user", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("user with id %s not found", id))
	}

	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*entities.User, error) {
	user := &entities.User{}
	var latitude, longitude sql.NullFloat64

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Number,
		&user.Password,
		&user.Type,
		&latitude,
		&longitude,
		&user.OnlineStatus,
		&user.Score,
		&user.RatingCount,
		&user.PricePerWalk,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if latitude.Valid {
		user.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		user.Longitude = &longitude.Float64
	}

	return user, nil
}

// uniqueViolation reports whether err is a postgres unique constraint
// violation, returning the constraint name when it is.
func uniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return pqErr.Constraint, true
	}
	return "", false
}
