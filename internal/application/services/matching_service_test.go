package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawmate/dogwalk-marketplace/internal/application/services"
	"github.com/pawmate/dogwalk-marketplace/internal/domain/entities"
)

func coord(v float64) *float64 {
	return &v
}

func walker(id string, lat, lon *float64, online int, score, price float64) *entities.User {
	return &entities.User{
		ID:           id,
		Name:         "Walker " + id,
		Type:         entities.UserTypeWalker,
		Latitude:     lat,
		Longitude:    lon,
		OnlineStatus: online,
		Score:        score,
		PricePerWalk: price,
	}
}

func owner(id string, lat, lon *float64) *entities.User {
	return &entities.User{
		ID:        id,
		Name:      "Owner " + id,
		Type:      entities.UserTypeOwner,
		Latitude:  lat,
		Longitude: lon,
	}
}

func TestHaversine(t *testing.T) {
	t.Run("zero distance for identical points", func(t *testing.T) {
		assert.Equal(t, 0.0, services.Haversine(38.7223, -9.1393, 38.7223, -9.1393))
	})

	t.Run("symmetric", func(t *testing.T) {
		d1 := services.Haversine(38.7223, -9.1393, 41.1579, -8.6291)
		d2 := services.Haversine(41.1579, -8.6291, 38.7223, -9.1393)
		assert.InDelta(t, d1, d2, 1e-9)
	})

	t.Run("one degree of longitude at the equator", func(t *testing.T) {
		// 2*pi*6371/360 km
		d := services.Haversine(0, 0, 0, 1)
		assert.InDelta(t, 111.19, d, 0.01)
	})
}

func TestMatchingService_Rank(t *testing.T) {
	svc := services.NewMatchingService()

	t.Run("only counterpart role survives", func(t *testing.T) {
		actor := owner("o1", coord(38.72), coord(-9.14))
		roster := []*entities.User{
			walker("w1", coord(38.73), coord(-9.14), 1, 4, 10),
			owner("o2", coord(38.74), coord(-9.14)),
		}

		candidates := svc.Rank(roster, actor, services.RosterFilters{})

		require.Len(t, candidates, 1)
		assert.Equal(t, "w1", candidates[0].ID)
	})

	t.Run("walkers are matched against owners", func(t *testing.T) {
		actor := walker("w1", coord(38.72), coord(-9.14), 1, 4, 10)
		roster := []*entities.User{
			owner("o1", coord(38.73), coord(-9.14)),
			walker("w2", coord(38.74), coord(-9.14), 1, 5, 8),
		}

		candidates := svc.Rank(roster, actor, services.RosterFilters{})

		require.Len(t, candidates, 1)
		assert.Equal(t, "o1", candidates[0].ID)
	})

	t.Run("actor excluded from results", func(t *testing.T) {
		actor := owner("o1", coord(38.72), coord(-9.14))
		roster := []*entities.User{actor, walker("w1", coord(38.73), coord(-9.14), 1, 4, 10)}

		candidates := svc.Rank(roster, actor, services.RosterFilters{})

		require.Len(t, candidates, 1)
		assert.Equal(t, "w1", candidates[0].ID)
	})

	t.Run("type filter can only narrow the counterpart set", func(t *testing.T) {
		actor := owner("o1", coord(38.72), coord(-9.14))
		roster := []*entities.User{walker("w1", coord(38.73), coord(-9.14), 1, 4, 10)}

		narrowed := svc.Rank(roster, actor, services.RosterFilters{Type: entities.UserTypeWalker})
		assert.Len(t, narrowed, 1)

		emptied := svc.Rank(roster, actor, services.RosterFilters{Type: entities.UserTypeOwner})
		assert.Empty(t, emptied)
	})

	t.Run("query replaces the filtered and sorted result", func(t *testing.T) {
		actor := owner("o1", coord(0), coord(0))
		w1 := walker("w1", coord(0), coord(2), 1, 4, 10)
		w1.Name = "Pedro Santos"
		w2 := walker("w2", coord(0), coord(1), 1, 5, 8)
		w2.Name = "Sofia Almeida"

		candidates := svc.Rank([]*entities.User{w1, w2}, actor, services.RosterFilters{
			SortByDistance: true,
			Query:          "pedro",
		})

		require.Len(t, candidates, 1)
		assert.Equal(t, "w1", candidates[0].ID)
	})

	t.Run("online filter drops disconnected candidates", func(t *testing.T) {
		actor := owner("o1", coord(38.72), coord(-9.14))
		roster := []*entities.User{
			walker("w1", coord(38.73), coord(-9.14), 1, 4, 10),
			walker("w2", coord(38.74), coord(-9.14), 0, 5, 8),
		}

		candidates := svc.Rank(roster, actor, services.RosterFilters{OnlineOnly: true})

		require.Len(t, candidates, 1)
		assert.Equal(t, "w1", candidates[0].ID)
	})

	t.Run("distance is computed against the actor", func(t *testing.T) {
		actor := owner("o1", coord(0), coord(0))
		roster := []*entities.User{walker("w1", coord(0), coord(1), 1, 4, 10)}

		candidates := svc.Rank(roster, actor, services.RosterFilters{})

		require.Len(t, candidates, 1)
		require.NotNil(t, candidates[0].DistanceKm)
		assert.InDelta(t, 111.19, *candidates[0].DistanceKm, 0.01)
	})

	t.Run("distance unavailable when candidate has no coordinates", func(t *testing.T) {
		actor := owner("o1", coord(0), coord(0))
		roster := []*entities.User{walker("w1", nil, nil, 1, 4, 10)}

		candidates := svc.Rank(roster, actor, services.RosterFilters{})

		require.Len(t, candidates, 1)
		assert.Nil(t, candidates[0].DistanceKm)
	})

	t.Run("distance unavailable when actor has no coordinates", func(t *testing.T) {
		actor := owner("o1", nil, nil)
		roster := []*entities.User{walker("w1", coord(0), coord(1), 1, 4, 10)}

		candidates := svc.Rank(roster, actor, services.RosterFilters{})

		require.Len(t, candidates, 1)
		assert.Nil(t, candidates[0].DistanceKm)
	})

	t.Run("sort by distance puts unlocated candidates last", func(t *testing.T) {
		actor := owner("o1", coord(0), coord(0))
		roster := []*entities.User{
			walker("far", coord(0), coord(2), 1, 4, 10),
			walker("lost", nil, nil, 1, 5, 8),
			walker("near", coord(0), coord(0.5), 1, 3, 12),
		}

		candidates := svc.Rank(roster, actor, services.RosterFilters{SortByDistance: true})

		require.Len(t, candidates, 3)
		assert.Equal(t, "near", candidates[0].ID)
		assert.Equal(t, "far", candidates[1].ID)
		assert.Equal(t, "lost", candidates[2].ID)
	})

	t.Run("sort by score descending", func(t *testing.T) {
		actor := owner("o1", coord(0), coord(0))
		roster := []*entities.User{
			walker("mid", coord(0), coord(1), 1, 4.1, 10),
			walker("top", coord(0), coord(2), 1, 4.9, 8),
			walker("low", coord(0), coord(3), 1, 3.2, 12),
		}

		candidates := svc.Rank(roster, actor, services.RosterFilters{SortByScore: true})

		ids := []string{candidates[0].ID, candidates[1].ID, candidates[2].ID}
		assert.Equal(t, []string{"top", "mid", "low"}, ids)
	})

	t.Run("sort by price ascending", func(t *testing.T) {
		actor := owner("o1", coord(0), coord(0))
		roster := []*entities.User{
			walker("mid", coord(0), coord(1), 1, 4, 10),
			walker("cheap", coord(0), coord(2), 1, 5, 7),
			walker("dear", coord(0), coord(3), 1, 3, 15),
		}

		candidates := svc.Rank(roster, actor, services.RosterFilters{SortByPrice: true})

		ids := []string{candidates[0].ID, candidates[1].ID, candidates[2].ID}
		assert.Equal(t, []string{"cheap", "mid", "dear"}, ids)
	})

	t.Run("score and price together order by price", func(t *testing.T) {
		actor := owner("o1", coord(0), coord(0))
		roster := []*entities.User{
			walker("top-dear", coord(0), coord(1), 1, 4.9, 15),
			walker("low-cheap", coord(0), coord(2), 1, 3.1, 7),
		}

		candidates := svc.Rank(roster, actor, services.RosterFilters{
			SortByScore: true,
			SortByPrice: true,
		})

		ids := []string{candidates[0].ID, candidates[1].ID}
		assert.Equal(t, []string{"low-cheap", "top-dear"}, ids)
	})

	t.Run("last sort flag wins, earlier ones break its ties", func(t *testing.T) {
		actor := owner("o1", coord(0), coord(0))
		// Two walkers at the same price; distance was applied first so the
		// nearer one ends up ahead within the price tie.
		roster := []*entities.User{
			walker("far-cheap", coord(0), coord(2), 1, 4, 7),
			walker("near-cheap", coord(0), coord(0.5), 1, 4, 7),
			walker("near-dear", coord(0), coord(0.1), 1, 4, 20),
		}

		candidates := svc.Rank(roster, actor, services.RosterFilters{
			SortByDistance: true,
			SortByPrice:    true,
		})

		ids := []string{candidates[0].ID, candidates[1].ID, candidates[2].ID}
		assert.Equal(t, []string{"near-cheap", "far-cheap", "near-dear"}, ids)
	})
}

func TestMatchingService_SearchByName(t *testing.T) {
	svc := services.NewMatchingService()
	actor := owner("o1", coord(0), coord(0))

	w1 := walker("w1", coord(0), coord(1), 1, 4, 10)
	w1.Name = "Pedro Santos"
	w2 := walker("w2", coord(0), coord(2), 1, 5, 8)
	w2.Name = "Sofia Almeida"

	candidates := svc.Rank([]*entities.User{w1, w2}, actor, services.RosterFilters{})

	t.Run("case-insensitive substring match", func(t *testing.T) {
		matched := svc.SearchByName(candidates, "pEdRo")
		require.Len(t, matched, 1)
		assert.Equal(t, "w1", matched[0].ID)
	})

	t.Run("matches inside the name", func(t *testing.T) {
		matched := svc.SearchByName(candidates, "alme")
		require.Len(t, matched, 1)
		assert.Equal(t, "w2", matched[0].ID)
	})

	t.Run("no match yields empty slice", func(t *testing.T) {
		matched := svc.SearchByName(candidates, "zzz")
		assert.Empty(t, matched)
	})
}
