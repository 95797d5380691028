package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/pawmate/dogwalk-marketplace/internal/domain/entities"
	"github.com/pawmate/dogwalk-marketplace/internal/domain/repositories"
	"github.com/pawmate/dogwalk-marketplace/internal/infrastructure/clients/postgres"
	apperrors "github.com/pawmate/dogwalk-marketplace/pkg/errors"
)

var reservationColumns = []interface{}{
	"id", "user_id", "walker_id", "date", "time", "duration",
	"status", "rating", "review", "created_at", "updated_at",
}

// ReservationAdapter implements the ReservationRepository interface
type ReservationAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewReservationAdapter creates a new reservation adapter
func NewReservationAdapter(client *postgres.Client) *ReservationAdapter {
	return &ReservationAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var _ repositories.ReservationRepository = (*ReservationAdapter)(nil)

// Create creates a new reservation
func (a *ReservationAdapter) Create(ctx context.Context, reservation *entities.Reservation) error {
	record := goqu.Record{
		"id":         reservation.ID,
		"user_id":    reservation.UserID,
		"walker_id":  reservation.WalkerID,
		"date":       reservation.Date,
		"time":       reservation.Time,
		"duration":   reservation.Duration,
		"status":     reservation.Status,
		"rating":     reservation.Rating,
		"review":     reservation.Review,
		"created_at": reservation.CreatedAt,
		"updated_at": reservation.UpdatedAt,
	}

	query, args, err := a.db.Insert("reservations").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create reservation", err)
	}

	return nil
}

// GetByID retrieves a reservation by ID
func (a *ReservationAdapter) GetByID(ctx context.Context, id string) (*entities.Reservation, error) {
	query, args, err := a.db.Select(reservationColumns...).
		From("reservations").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	reservation, err := scanReservation(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("reservation with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get reservation", err)
	}

	return reservation, nil
}

// UpdateStatus stores a new lifecycle status
func (a *ReservationAdapter) UpdateStatus(ctx context.Context, id string, status entities.ReservationStatus) error {
	query, args, err := a.db.Update("reservations").
		Set(goqu.Record{
			"status":     status,
			"updated_at": time.Now(),
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update reservation status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("reservation with id %s not found", id))
	}

	return nil
}

// AttachReview stores the rating and review on the reservation and updates
// the walker's aggregate score. Both writes run in one transaction so a
// failure cannot leave a reviewed reservation without its score effect.
func (a *ReservationAdapter) AttachReview(ctx context.Context, id, walkerID string, rating int, review string, mode repositories.ScoreMode) error {
	reviewQuery, reviewArgs, err := a.db.Update("reservations").
		Set(goqu.Record{
			"rating":     rating,
			"review":     review,
			"updated_at": time.Now(),
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build review query", err)
	}

	var scoreExpr interface{}
	if mode == repositories.ScoreModeOverwrite {
		scoreExpr = rating
	} else {
		// Running average folded in one statement so no score is lost
		// between reads.
		scoreExpr = goqu.L("(score * rating_count + ?) / (rating_count + 1)", rating)
	}

	scoreQuery, scoreArgs, err := a.db.Update("users").
		Set(goqu.Record{
			"score":        scoreExpr,
			"rating_count": goqu.L("rating_count + 1"),
			"updated_at":   time.Now(),
		}).
		Where(goqu.Ex{"id": walkerID, "type": entities.UserTypeWalker}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build score query", err)
	}

	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}

	result, err := tx.ExecContext(ctx, reviewQuery, reviewArgs...)
	if err != nil {
		tx.Rollback()
		return apperrors.NewInternalError("failed to attach review", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		tx.Rollback()
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		tx.Rollback()
		return apperrors.NewNotFoundError(fmt.Sprintf("reservation with id %s not found", id))
	}

	result, err = tx.ExecContext(ctx, scoreQuery, scoreArgs...)
	if err != nil {
		tx.Rollback()
		return apperrors.NewInternalError("failed to update walker score", err)
	}
	rowsAffected, err = result.RowsAffected()
	if err != nil {
		tx.Rollback()
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		tx.Rollback()
		return apperrors.NewNotFoundError(fmt.Sprintf("walker with id %s not found", walkerID))
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit review", err)
	}

	return nil
}

// ListByUser retrieves reservations placed by a user
func (a *ReservationAdapter) ListByUser(ctx context.Context, userID string, filter repositories.ReservationFilter) ([]*entities.Reservation, error) {
	return a.list(ctx, goqu.Ex{"user_id": userID}, filter)
}

// ListByWalker retrieves reservations assigned to a walker
func (a *ReservationAdapter) ListByWalker(ctx context.Context, walkerID string, filter repositories.ReservationFilter) ([]*entities.Reservation, error) {
	return a.list(ctx, goqu.Ex{"walker_id": walkerID}, filter)
}

func (a *ReservationAdapter) list(ctx context.Context, where goqu.Ex, filter repositories.ReservationFilter) ([]*entities.Reservation, error) {
	ds := a.db.Select(reservationColumns...).
		From("reservations").
		Where(where)

	if filter.Status != "" {
		ds = ds.Where(goqu.Ex{"status": filter.Status})
	}

	ds = ds.Order(goqu.I("date").Desc(), goqu.I("time").Desc())

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
		return nil, apperrors.NewInternalError("failed to list reservations", err)
	}
	defer rows.Close()

	var reservations []*entities.Reservation
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan reservation", err)
		}
		reservations = append(reservations, reservation)
	}

	return reservations, nil
}

func scanReservation(row rowScanner) (*entities.Reservation, error) {
	reservation := &entities.Reservation{}
	var rating sql.NullInt64
	var review sql.NullString

	err := row.Scan(
		&reservation.ID,
		&reservation.UserID,
		&reservation.WalkerID,
		&reservation.Date,
		&reservation.Time,
		&reservation.Duration,
		&reservation.Status,
		&rating,
		&review,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if rating.Valid {
		r := int(rating.Int64)
		reservation.Rating = &r
	}
	if review.Valid {
		reservation.Review = &review.String
	}

	return reservation, nil
}
