package entities

import (
	"time"
)

// UserType represents the role of a user in the marketplace
type UserType string

const (
	UserTypeOwner  UserType = "user"
	UserTypeWalker UserType = "walker"
)

// OnlineStatusConnected is the sentinel stored in online_status for a user
// whose app is currently in the foreground.
const OnlineStatusConnected = 1

// Opposite returns the counterpart role: owners are matched against walkers
// and walkers against owners.
func (t UserType) Opposite() UserType {
	if t == UserTypeOwner {
		return UserTypeWalker
	}
	return UserTypeOwner
}

// Valid reports whether the type is one of the known roles
func (t UserType) Valid() bool {
	return t == UserTypeOwner || t == UserTypeWalker
}

// User represents a pet owner or a dog walker
type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Number       string    `json:"number" db:"number"`
	Password     string    `json:"-" db:"password"`
	Type         UserType  `json:"type" db:"type"`
	Latitude     *float64  `json:"latitude" db:"latitude"`
	Longitude    *float64  `json:"longitude" db:"longitude"`
	OnlineStatus int       `json:"online_status" db:"online_status"`
	Score        float64   `json:"score" db:"score"`
	RatingCount  int       `json:"rating_count" db:"rating_count"`
	PricePerWalk float64   `json:"pricePerWalk" db:"price_per_walk"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Coordinates returns the user's last reported position. ok is false when
// the user has never reported a location; callers must treat the distance
// to such a user as unavailable rather than zero.
func (u *User) Coordinates() (lat, lon float64, ok bool) {
	if u.Latitude == nil || u.Longitude == nil {
		return 0, 0, false
	}
	return *u.Latitude, *u.Longitude, true
}

// IsWalker reports whether the user offers walks
func (u *User) IsWalker() bool {
	return u.Type == UserTypeWalker
}

// IsOnline reports whether the user is currently connected
func (u *User) IsOnline() bool {
	return u.OnlineStatus == OnlineStatusConnected
}
