package services

import (
	"math"
	"sort"
	"strings"

	"github.com/pawmate/dogwalk-marketplace/internal/domain/entities"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371

// RosterFilters controls which candidates survive and how they are ordered.
// Sort flags are applied in a fixed sequence (distance, then score, then
// price) with stable sorts, so when several flags are set the last one
// applied dominates and earlier ones break its ties.
type RosterFilters struct {
	OnlineOnly bool

	// Type narrows the candidate set to a specific role. The opposite-role
	// rule still applies first, so this can only shrink the result.
	Type entities.UserType

	// Query, when set, replaces the filtered and sorted result with a
	// case-insensitive name substring match over it.
	Query string

	SortByDistance bool
	SortByScore    bool
	SortByPrice    bool
}

// Candidate is a roster entry decorated with the distance from the
// requesting user. DistanceKm is nil when either party has no coordinates.
type Candidate struct {
	*entities.User
	DistanceKm *float64 `json:"distance_km"`
}

// MatchingService ranks the roster of counterpart users for an actor.
// It is purely computational; the roster is loaded by the caller.
type MatchingService struct{}

// NewMatchingService creates a new matching service
func NewMatchingService() *MatchingService {
	return &MatchingService{}
}

// Rank filters the roster down to the actor's counterpart role and orders it
// according to the filters. The actor never appears in the result.
func (s *MatchingService) Rank(roster []*entities.User, actor *entities.User, filters RosterFilters) []*Candidate {
	wantType := actor.Type.Opposite()

	candidates := make([]*Candidate, 0, len(roster))
	for _, u := range roster {
		if u.ID == actor.ID {
			continue
		}
		if u.Type != wantType {
			continue
		}
		if filters.Type != "" && u.Type != filters.Type {
			continue
		}
		if filters.OnlineOnly && !u.IsOnline() {
			continue
		}
		candidates = append(candidates, &Candidate{
			User:       u,
			DistanceKm: distanceBetween(actor, u),
		})
	}

	if filters.SortByDistance {
		sort.SliceStable(candidates, func(i, j int) bool {
			return lessByDistance(candidates[i], candidates[j])
		})
	}
	if filters.SortByScore {
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Score > candidates[j].Score
		})
	}
	if filters.SortByPrice {
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].PricePerWalk < candidates[j].PricePerWalk
		})
	}

	if filters.Query != "" {
		return s.SearchByName(candidates, filters.Query)
	}

	return candidates
}

// SearchByName filters candidates whose name contains the query,
// case-insensitively.
func (s *MatchingService) SearchByName(candidates []*Candidate, query string) []*Candidate {
	needle := strings.ToLower(query)
	matched := make([]*Candidate, 0, len(candidates))
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			matched = append(matched, c)
		}
	}
	return matched
}

// lessByDistance orders known distances ascending and places candidates with
// no reported location after every candidate with one.
func lessByDistance(a, b *Candidate) bool {
	switch {
	case a.DistanceKm == nil:
		return false
	case b.DistanceKm == nil:
		return true
	default:
		return *a.DistanceKm < *b.DistanceKm
	}
}

func distanceBetween(a, b *entities.User) *float64 {
	latA, lonA, ok := a.Coordinates()
	if !ok {
		return nil
	}
	latB, lonB, ok := b.Coordinates()
	if !ok {
		return nil
	}
	d := Haversine(latA, lonA, latB, lonB)
	return &d
}

// Haversine returns the great-circle distance in kilometers between two
// points given in decimal degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLon := degreesToRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(lat1))*math.Cos(degreesToRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
