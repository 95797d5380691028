package search

import (
	"context"
	"fmt"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/pawmate/dogwalk-marketplace/internal/domain/entities"
	"github.com/pawmate/dogwalk-marketplace/internal/domain/repositories"
	tsclient "github.com/pawmate/dogwalk-marketplace/internal/infrastructure/clients/typesense"
)

const collectionName = "users"

// TypesenseAdapter implements user name search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

var _ repositories.UserSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	_, err := a.client.Client().Collection(collectionName).Retrieve(ctx)
	if err == nil {
		return nil // Collection exists
	}

	schema := &api.CollectionSchema{
		Name: collectionName,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "name", Type: "string"},
			{Name: "type", Type: "string", Facet: pointer.True()},
			{Name: "online_status", Type: "int32"},
			{Name: "score", Type: "float"},
			{Name: "price_per_walk", Type: "float"},
			{Name: "location", Type: "geopoint", Optional: pointer.True()},
			{Name: "created_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("created_at"),
	}

	_, err = a.client.Client().Collections().Create(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}

	return nil
}

// Index upserts a user into the search index
func (a *TypesenseAdapter) Index(ctx context.Context, user *entities.User) error {
	document := map[string]interface{}{
		"id":             user.ID,
		"name":           user.Name,
		"type":           string(user.Type),
		"online_status":  user.OnlineStatus,
		"score":          user.Score,
		"price_per_walk": user.PricePerWalk,
		"created_at":     user.CreatedAt.Unix(),
	}
	if lat, lon, ok := user.Coordinates(); ok {
		document["location"] = []float64{lat, lon}
	}

	_, err := a.client.Client().Collection(collectionName).Documents().Upsert(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to index user: %w", err)
	}

	return nil
}

// Delete removes a user from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(collectionName).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete user from index: %w", err)
	}
	return nil
}

// SearchByName searches users by name
func (a *TypesenseAdapter) SearchByName(ctx context.Context, query string, limit int) ([]*entities.User, error) {
	if limit <= 0 {
		limit = 25
	}

	searchParams := &api.SearchCollectionParams{
		Q:       pointer.String(query),
		QueryBy: pointer.String("name"),
		PerPage: pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	users := []*entities.User{}
	if result.Hits == nil {
		return users, nil
	}

	for _, hit := range *result.Hits {
		doc := *hit.Document

		// Typesense returns map[string]interface{}, so cast field by field
		user := &entities.User{
			ID:   doc["id"].(string),
			Name: doc["name"].(string),
			Type: entities.UserType(doc["type"].(string)),
		}

		if val, ok := doc["online_status"].(float64); ok {
			user.OnlineStatus = int(val)
		}
		if val, ok := doc["score"].(float64); ok {
			user.Score = val
		}
		if val, ok := doc["price_per_walk"].(float64); ok {
			user.PricePerWalk = val
		}
		if loc, ok := doc["location"].([]interface{}); ok && len(loc) == 2 {
			if lat, ok := loc[0].(float64); ok {
				user.Latitude = &lat
			}
			if lon, ok := loc[1].(float64); ok {
				user.Longitude = &lon
			}
		}

		users = append(users, user)
	}

	return users, nil
}
