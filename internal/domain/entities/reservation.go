package entities

import (
	"time"
)

// ReservationStatus represents the lifecycle state of a booked walk
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusCompleted ReservationStatus = "completed"
)

// Walk duration bounds in minutes
const (
	MinWalkDuration = 10
	MaxWalkDuration = 60
)

// Valid reports whether the status is one of the known lifecycle states
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusConfirmed,
		ReservationStatusCancelled, ReservationStatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether no further status transition is permitted.
// A completed reservation may still receive a rating and review.
func (s ReservationStatus) Terminal() bool {
	return s == ReservationStatusCancelled || s == ReservationStatusCompleted
}

// Reservation represents a booked walk between an owner and a walker
type Reservation struct {
	ID        string            `json:"id" db:"id"`
	UserID    string            `json:"userId" db:"user_id"`
	WalkerID  string            `json:"walkerId" db:"walker_id"`
	Date      string            `json:"date" db:"date"`
	Time      string            `json:"time" db:"time"`
	Duration  int               `json:"duration" db:"duration"`
	Status    ReservationStatus `json:"status" db:"status"`
	Rating    *int              `json:"rating" db:"rating"`
	Review    *string           `json:"review" db:"review"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" db:"updated_at"`
}

// Reviewed reports whether a rating has already been attached
func (r *Reservation) Reviewed() bool {
	return r.Rating != nil
}
